package preview1

import "github.com/wippyai/witx-bindgen/idl"

// ModuleName is the wasm import namespace of every preview1 function.
const ModuleName = "wasi_snapshot_preview1"

var errnoCases = []string{
	"success", "2big", "acces", "addrinuse", "addrnotavail", "afnosupport",
	"again", "already", "badf", "badmsg", "busy", "canceled", "child",
	"connaborted", "connrefused", "connreset", "deadlk", "destaddrreq", "dom",
	"dquot", "exist", "fault", "fbig", "hostunreach", "idrm", "ilseq",
	"inprogress", "intr", "inval", "io", "isconn", "isdir", "loop", "mfile",
	"mlink", "msgsize", "multihop", "nametoolong", "netdown", "netreset",
	"netunreach", "nfile", "nobufs", "nodev", "noent", "noexec", "nolck",
	"nolink", "nomem", "nomsg", "noprotoopt", "nospc", "nosys", "notconn",
	"notdir", "notempty", "notrecoverable", "notsock", "notsup", "notty",
	"nxio", "overflow", "ownerdead", "perm", "pipe", "proto", "protonosupport",
	"prototype", "range", "rofs", "spipe", "srch", "stale", "timedout",
	"txtbsy", "xdev", "notcapable",
}

var rightsFlags = []string{
	"fd_datasync", "fd_read", "fd_seek", "fd_fdstat_set_flags", "fd_sync",
	"fd_tell", "fd_write", "fd_advise", "fd_allocate", "path_create_directory",
	"path_create_file", "path_link_source", "path_link_target", "path_open",
	"fd_readdir", "path_readlink", "path_rename_source", "path_rename_target",
	"path_filestat_get", "path_filestat_set_size", "path_filestat_set_times",
	"fd_filestat_get", "fd_filestat_set_size", "fd_filestat_set_times",
	"path_symlink", "path_remove_directory", "path_unlink_file",
	"poll_fd_readwrite", "sock_shutdown", "sock_accept",
}

func enum(tag idl.IntRepr, cases ...string) idl.TypeRef {
	v := idl.EnumType(cases...)
	v.Tag = tag
	return idl.Val(v)
}

func named(name, docs string, r idl.TypeRef) *idl.NamedType {
	nt := idl.Named(name, r)
	nt.Docs = docs
	return nt
}

func param(name string, r idl.TypeRef, docs string) *idl.Param {
	return &idl.Param{Name: name, Type: r, Docs: docs}
}

// Document builds the preview1 interface document. Each call returns a fresh
// document.
func Document() *idl.Document {
	size := named("size", "", idl.Val(idl.U32))
	filesize := named("filesize", "Non-negative file size or length of a region within a file.", idl.Val(idl.U64))
	timestamp := named("timestamp", "Timestamp in nanoseconds.", idl.Val(idl.U64))
	clockid := named("clockid", "Identifiers for clocks.", enum(idl.ReprU32,
		"realtime", "monotonic", "process_cputime_id", "thread_cputime_id"))
	errno := named("errno", "Error codes returned by functions.\nNot all of these error codes are returned by the functions provided by this\nAPI; some are used in higher-level library layers, and others are provided\nmerely for alignment with POSIX.",
		enum(idl.ReprU16, errnoCases...))
	rights := named("rights", "File descriptor rights, determining which actions may be performed.",
		idl.Val(idl.FlagsType(idl.ReprU64, rightsFlags...)))
	fd := named("fd", "A file descriptor handle.", idl.Val(&idl.Handle{Resource: "fd"}))

	iovecRec := idl.StructType(
		&idl.Member{Name: "buf", Type: idl.PointerTo(idl.Val(idl.U8)), Docs: "The address of the buffer to be filled."},
		&idl.Member{Name: "buf_len", Type: idl.Ref(size), Docs: "The length of the buffer to be filled."},
	)
	iovec := named("iovec", "A region of memory for scatter/gather reads.", idl.Val(iovecRec))
	iovecArray := named("iovec_array", "", idl.ListOf(idl.Ref(iovec)))

	ciovecRec := idl.StructType(
		&idl.Member{Name: "buf", Type: idl.ConstPointerTo(idl.Val(idl.U8)), Docs: "The address of the buffer to be written."},
		&idl.Member{Name: "buf_len", Type: idl.Ref(size), Docs: "The length of the buffer to be written."},
	)
	ciovec := named("ciovec", "A region of memory for scatter/gather writes.", idl.Val(ciovecRec))
	ciovecArray := named("ciovec_array", "", idl.ListOf(idl.Ref(ciovec)))

	filedelta := named("filedelta", "Relative offset within a file.", idl.Val(idl.S64))
	whence := named("whence", "The position relative to which to set the offset of the file descriptor.",
		enum(idl.ReprU8, "set", "cur", "end"))
	dircookie := named("dircookie", "A reference to the offset of a directory entry.", idl.Val(idl.U64))
	fdflags := named("fdflags", "File descriptor flags.",
		idl.Val(idl.FlagsType(idl.ReprU16, "append", "dsync", "nonblock", "rsync", "sync")))
	filetype := named("filetype", "The type of a file descriptor or file.", enum(idl.ReprU8,
		"unknown", "block_device", "character_device", "directory", "regular_file",
		"socket_dgram", "socket_stream", "symbolic_link"))
	fdstat := named("fdstat", "File descriptor attributes.", idl.Val(idl.StructType(
		&idl.Member{Name: "fs_filetype", Type: idl.Ref(filetype), Docs: "File type."},
		&idl.Member{Name: "fs_flags", Type: idl.Ref(fdflags), Docs: "File descriptor flags."},
		&idl.Member{Name: "fs_rights_base", Type: idl.Ref(rights), Docs: "Rights that apply to this file descriptor."},
		&idl.Member{Name: "fs_rights_inheriting", Type: idl.Ref(rights), Docs: "Maximum set of rights that may be installed on new file descriptors that\nare created through this file descriptor."},
	)))
	exitcode := named("exitcode", "Exit code generated by a process when exiting.", idl.Val(idl.U32))
	preopentype := named("preopentype", "Identifiers for preopened capabilities.", enum(idl.ReprU8, "dir"))
	prestatDir := named("prestat_dir", "The contents of a $prestat when type is `preopentype::dir`.", idl.Val(idl.StructType(
		&idl.Member{Name: "pr_name_len", Type: idl.Ref(size), Docs: "The length of the directory name for use with `fd_prestat_dir_name`."},
	)))
	dirPayload := idl.Ref(prestatDir)
	prestat := named("prestat", "Information about a pre-opened capability.", idl.Val(&idl.Variant{
		Tag:   idl.ReprU8,
		Cases: []*idl.Case{{Name: "dir", Type: &dirPayload}},
	}))

	errRef := idl.Ref(errno)
	result := func(ok *idl.TypeRef) idl.TypeRef { return idl.ResultType(ok, &errRef) }
	ok := func(nt *idl.NamedType) *idl.TypeRef { return idl.RefPtr(idl.Ref(nt)) }
	sizes := idl.Val(idl.TupleType(idl.Ref(size), idl.Ref(size)))

	funcs := []*idl.Function{
		{
			Name:    "args_sizes_get",
			Docs:    "Return command-line argument data sizes.",
			Results: []*idl.Param{param("error", result(&sizes), "Returns the number of arguments and the size of the argument string\ndata, or an error.")},
		},
		{
			Name: "clock_time_get",
			Docs: "Return the time value of a clock.\nNote: This is similar to `clock_gettime` in POSIX.",
			Params: []*idl.Param{
				param("id", idl.Ref(clockid), "The clock for which to return the time."),
				param("precision", idl.Ref(timestamp), "The maximum lag (exclusive) that the returned time value may have, compared to its actual value."),
			},
			Results: []*idl.Param{param("error", result(ok(timestamp)), "The time value of the clock.")},
		},
		{
			Name:    "fd_close",
			Docs:    "Close a file descriptor.\nNote: This is similar to `close` in POSIX.",
			Params:  []*idl.Param{param("fd", idl.Ref(fd), "")},
			Results: []*idl.Param{param("error", result(nil), "")},
		},
		{
			Name:    "fd_fdstat_get",
			Docs:    "Get the attributes of a file descriptor.\nNote: This returns similar flags to `fcntl(fd, F_GETFL)` in POSIX, as well as additional fields.",
			Params:  []*idl.Param{param("fd", idl.Ref(fd), "")},
			Results: []*idl.Param{param("error", result(ok(fdstat)), "The buffer where the file descriptor's attributes are stored.")},
		},
		{
			Name:    "fd_prestat_get",
			Docs:    "Return a description of the given preopened file descriptor.",
			Params:  []*idl.Param{param("fd", idl.Ref(fd), "")},
			Results: []*idl.Param{param("error", result(ok(prestat)), "The buffer where the description is stored.")},
		},
		{
			Name: "fd_read",
			Docs: "Read from a file descriptor.\nNote: This is similar to `readv` in POSIX.",
			Params: []*idl.Param{
				param("fd", idl.Ref(fd), ""),
				param("iovs", idl.Ref(iovecArray), "List of scatter/gather vectors to which to store data."),
			},
			Results: []*idl.Param{param("error", result(ok(size)), "The number of bytes read.")},
		},
		{
			Name: "fd_seek",
			Docs: "Move the offset of a file descriptor.\nNote: This is similar to `lseek` in POSIX.",
			Params: []*idl.Param{
				param("fd", idl.Ref(fd), ""),
				param("offset", idl.Ref(filedelta), "The number of bytes to move."),
				param("whence", idl.Ref(whence), "The base from which the offset is relative."),
			},
			Results: []*idl.Param{param("error", result(ok(filesize)), "The new offset of the file descriptor, relative to the start of the file.")},
		},
		{
			Name: "fd_write",
			Docs: "Write to a file descriptor.\nNote: This is similar to `writev` in POSIX.",
			Params: []*idl.Param{
				param("fd", idl.Ref(fd), ""),
				param("iovs", idl.Ref(ciovecArray), "List of scatter/gather vectors from which to retrieve data."),
			},
			Results: []*idl.Param{param("error", result(ok(size)), "The number of bytes written.")},
		},
		{
			Name:     "proc_exit",
			Docs:     "Terminate the process normally. An exit code of 0 indicates successful\ntermination of the program. The meanings of other values is dependent on\nthe environment.",
			Params:   []*idl.Param{param("rval", idl.Ref(exitcode), "The exit code returned by the process.")},
			NoReturn: true,
		},
		{
			Name: "random_get",
			Docs: "Write high-quality random data into a buffer.",
			Params: []*idl.Param{
				param("buf", idl.PointerTo(idl.Val(idl.U8)), "The buffer to fill with random data."),
				param("buf_len", idl.Ref(size), ""),
			},
			Results: []*idl.Param{param("error", result(nil), "")},
		},
		{
			Name:    "sched_yield",
			Docs:    "Temporarily yield execution of the calling thread.\nNote: This is similar to `sched_yield` in POSIX.",
			Results: []*idl.Param{param("error", result(nil), "")},
		},
	}

	return &idl.Document{
		Types: []*idl.NamedType{
			size, filesize, timestamp, clockid, errno, rights, fd,
			iovec, iovecArray, ciovec, ciovecArray, filedelta, whence,
			dircookie, fdflags, filetype, fdstat, exitcode, preopentype,
			prestatDir, prestat,
		},
		Modules: []*idl.Module{{
			Name:       ModuleName,
			ImportName: ModuleName,
			Funcs:      funcs,
		}},
		Constants: []*idl.Constant{{
			Type: dircookie,
			Name: "start",
			Docs: "The first entry in a directory.",
		}},
	}
}
