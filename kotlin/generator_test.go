package kotlin

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/wasi/preview1"
)

func closeDocument() *idl.Document {
	size := idl.Named("size", idl.Val(idl.U32))
	errno := idl.Named("errno", idl.Val(idl.EnumType("success", "badf")))
	fd := idl.Named("fd", idl.Val(&idl.Handle{Resource: "fd"}))
	errRef := idl.Ref(errno)

	return &idl.Document{
		Types: []*idl.NamedType{size, errno, fd},
		Modules: []*idl.Module{{
			Name:       "wasi_snapshot_preview1",
			ImportName: "wasi_snapshot_preview1",
			Funcs: []*idl.Function{{
				Name:    "fd_close",
				Docs:    "Close a file descriptor.",
				Params:  []*idl.Param{{Name: "fd", Type: idl.Ref(fd)}},
				Results: []*idl.Param{{Name: "error", Type: idl.ResultType(nil, &errRef)}},
			}},
		}},
		Constants: []*idl.Constant{{Type: size, Name: "max", Value: 0xffffffff}},
	}
}

func TestGenerate(t *testing.T) {
	want := `// This file is automatically generated, DO NOT EDIT
//
// To regenerate this file run the ` + "`witx-bindgen`" + ` command

package kotlinx.wasi

import kotlin.wasm.unsafe.*
import kotlin.wasm.WasmImport

typealias Size = Int

enum class Errno {
    SUCCESS,
    BADF,
}

typealias Fd = Int

/**
 * Close a file descriptor.
 */
fun fd_close(fd: Fd): Unit {
    withScopedMemoryAllocator { allocator ->
        val ret = _raw_wasm__fd_close(fd)
        return if (ret == 0) {
            Unit
        } else {
            throw WasiError(Errno.values()[ret])
        }
    }
}

/**
 * Close a file descriptor.
 */
@WasmImport("wasi_snapshot_preview1", "fd_close")
private external fun _raw_wasm__fd_close(arg0: Int): Int

const val SIZE_MAX: Size = -1
`
	got, err := Generate(closeDocument(), DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(preview1.Document(), DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(preview1.Document(), DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a != b {
		t.Error("two runs over the same document differ")
	}
}

func TestGeneratePreview1(t *testing.T) {
	got, err := Generate(preview1.Document(), DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	snippets := []string{
		"typealias Size = Int\n",
		"typealias Filesize = Long\n",
		"enum class Clockid {\n    REALTIME,\n",
		"    _2BIG,\n",
		"typealias Rights = Long\nobject RIGHTS {\n",
		"    const val SOCK_ACCEPT: Rights = 1L shl 29\n",
		"typealias Fdflags = Short\nobject FDFLAGS {\n",
		"    const val SYNC: Fdflags = (1 shl 4).toShort()\n",
		"internal data class __unsafe__Iovec(\n",
		"internal typealias __unsafe__CiovecArray = List<__unsafe__Ciovec>\n",
		"sealed class Prestat {\n    data class Dir(var value: PrestatDir) : Prestat()\n}\n",
		"internal fun __load_Fdstat(ptr: Int): Fdstat {\n" +
			"    return Fdstat(Filetype.values()[loadByte(ptr).toInt()], loadShort(ptr + 2), loadLong(ptr + 8), loadLong(ptr + 16))\n" +
			"}\n",

		"fun args_sizes_get(): Pair<Size, Size> {\n" +
			"    withScopedMemoryAllocator { allocator ->\n" +
			"        val rp0 = allocator.allocate(4)\n" +
			"        val rp1 = allocator.allocate(4)\n" +
			"        val ret = _raw_wasm__args_sizes_get(rp0, rp1)\n" +
			"        return if (ret == 0) {\n" +
			"            Pair(loadInt(rp0), loadInt(rp1))\n" +
			"        } else {\n" +
			"            throw WasiError(Errno.values()[ret])\n" +
			"        }\n" +
			"    }\n" +
			"}\n",

		"fun clock_time_get(id: Clockid, precision: Timestamp): Timestamp {\n" +
			"    withScopedMemoryAllocator { allocator ->\n" +
			"        val rp0 = allocator.allocate(8)\n" +
			"        val ret = _raw_wasm__clock_time_get(id.ordinal, precision, rp0)\n",

		"fun fd_fdstat_get(fd: Fd): Fdstat {\n" +
			"    withScopedMemoryAllocator { allocator ->\n" +
			"        val rp0 = allocator.allocate(24)\n" +
			"        val ret = _raw_wasm__fd_fdstat_get(fd, rp0)\n" +
			"        return if (ret == 0) {\n" +
			"            Fdstat(Filetype.values()[loadByte(rp0).toInt()], loadShort(rp0 + 2), loadLong(rp0 + 8), loadLong(rp0 + 16))\n",

		"        return if (ret == 0) {\n" +
			"            when (loadByte(rp0).toInt()) {\n" +
			"                0 -> Prestat.Dir(PrestatDir(loadInt(rp0 + 4)))\n" +
			"                else -> error(\"Invalid variant\")\n" +
			"            }\n" +
			"        } else {\n",

		"internal fun __unsafe__fd_write(allocator: MemoryAllocator, fd: Fd, iovs: __unsafe__CiovecArray): Size {\n" +
			"    val rp0 = allocator.allocate(4)\n" +
			"    val ret = _raw_wasm__fd_write(fd, allocator.writeToLinearMemory(iovs), iovs.size, rp0)\n" +
			"    return if (ret == 0) {\n" +
			"        loadInt(rp0)\n" +
			"    } else {\n" +
			"        throw WasiError(Errno.values()[ret])\n" +
			"    }\n" +
			"}\n",

		"fun fd_seek(fd: Fd, offset: Filedelta, whence: Whence): Filesize {\n",
		"        val ret = _raw_wasm__fd_seek(fd, offset, whence.ordinal, rp0)\n",
		"@WasmImport(\"wasi_snapshot_preview1\", \"fd_seek\")\n" +
			"private external fun _raw_wasm__fd_seek(arg0: Int, arg1: Long, arg2: Int, arg3: Int): Int\n",

		"fun proc_exit(rval: Exitcode) {\n" +
			"    withScopedMemoryAllocator { allocator ->\n" +
			"        _raw_wasm__proc_exit(rval)\n" +
			"    }\n" +
			"}\n",
		"private external fun _raw_wasm__proc_exit(arg0: Int): Unit\n",

		"internal fun __unsafe__random_get(allocator: MemoryAllocator, buf: Pointer/*<Byte>*/, buf_len: Size): Unit {\n" +
			"    val ret = _raw_wasm__random_get(buf.address.toInt(), buf_len)\n",

		" * @param precision The maximum lag (exclusive) that the returned time value may have, compared to its actual value.\n",
		" * @return The time value of the clock.\n",
		"const val DIRCOOKIE_START: Dircookie = 0\n",
	}
	for _, s := range snippets {
		if !strings.Contains(got, s) {
			t.Errorf("output missing:\n%s", s)
		}
	}

	// Wrappers precede their raw imports.
	wrapper := strings.Index(got, "internal fun __unsafe__fd_read(")
	raw := strings.Index(got, "private external fun _raw_wasm__fd_read(")
	if wrapper < 0 || raw < 0 || wrapper > raw {
		t.Errorf("fd_read wrapper at %d, raw import at %d", wrapper, raw)
	}
	// Constants come last.
	if strings.LastIndex(got, "private external fun") > strings.Index(got, "const val DIRCOOKIE_START") {
		t.Error("constants rendered before functions")
	}
}

func TestGenerateNaming(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		present []string
	}{
		{
			name: "flat",
			cfg:  DefaultConfig(),
			present: []string{
				"fun fd_close(fd: Fd): Unit {\n",
				"val ret = _raw_wasm__fd_close(fd)\n",
				"private external fun _raw_wasm__fd_close(arg0: Int): Int\n",
			},
		},
		{
			name: "prefixed",
			cfg:  Config{Naming: Prefixed},
			present: []string{
				"fun wasi_snapshot_preview1_fd_close(fd: Fd): Unit {\n",
				"val ret = _raw_wasm__wasi_snapshot_preview1_fd_close(fd)\n",
				"@WasmImport(\"wasi_snapshot_preview1\", \"fd_close\")\n",
				"private external fun _raw_wasm__wasi_snapshot_preview1_fd_close(arg0: Int): Int\n",
			},
		},
		{
			name: "overrides",
			cfg:  Config{Package: "org.example.bindings", ImportModule: "env", ErrorClass: "HostError"},
			present: []string{
				"\npackage org.example.bindings\n",
				"@WasmImport(\"env\", \"fd_close\")\n",
				"throw HostError(Errno.values()[ret])\n",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Generate(closeDocument(), tc.cfg)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			for _, s := range tc.present {
				if !strings.Contains(got, s) {
					t.Errorf("output missing %q", s)
				}
			}
		})
	}
}

func TestGenerateImportName(t *testing.T) {
	doc := closeDocument()
	doc.Modules[0].Name = "wasi:io/streams"
	doc.Modules[0].ImportName = "wasi:io/streams@0.2.0"
	doc.Modules[0].Funcs[0].ImportName = "[method]fd.close"

	got, err := Generate(doc, Config{Naming: Prefixed})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, s := range []string{
		"@WasmImport(\"wasi:io/streams@0.2.0\", \"[method]fd.close\")\n",
		"private external fun _raw_wasm__wasi_io_streams_fd_close(arg0: Int): Int\n",
	} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %q", s)
		}
	}
}

func TestGenerateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*idl.Document)
		target error
		path   []string
	}{
		{
			name:   "camel_case_function",
			mutate: func(d *idl.Document) { d.Modules[0].Funcs[0].Name = "fdClose" },
			target: errors.ErrInvalidName,
			path:   []string{"wasi_snapshot_preview1", "fdClose"},
		},
		{
			name: "two_results",
			mutate: func(d *idl.Document) {
				fn := d.Modules[0].Funcs[0]
				fn.Results = append(fn.Results, &idl.Param{Name: "extra", Type: idl.Val(idl.U32)})
			},
			target: errors.ErrUnsupportedShape,
		},
		{
			name: "anonymous_ok",
			mutate: func(d *idl.Document) {
				u32 := idl.Val(idl.U32)
				errRef := idl.Ref(d.Type("errno"))
				d.Modules[0].Funcs[0].Results[0].Type = idl.ResultType(&u32, &errRef)
			},
			target: errors.ErrUnsupportedShape,
		},
		{
			name: "struct_param",
			mutate: func(d *idl.Document) {
				rec := idl.Named("pair", idl.Val(idl.StructType(idl.Field("a", idl.Val(idl.U32)))))
				d.Types = append(d.Types, rec)
				d.Modules[0].Funcs[0].Params[0].Type = idl.Ref(rec)
			},
			target: errors.ErrUnsupportedShape,
		},
		{
			name: "char_type",
			mutate: func(d *idl.Document) {
				d.Types = append(d.Types, idl.Named("letter", idl.Val(idl.Char)))
			},
			target: errors.ErrUnsupportedShape,
		},
		{
			name: "untyped_constant",
			mutate: func(d *idl.Document) {
				d.Constants = append(d.Constants, &idl.Constant{Name: "loose"})
			},
			target: errors.ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := closeDocument()
			tc.mutate(doc)
			out, err := Generate(doc, DefaultConfig())
			if !stderrors.Is(err, tc.target) {
				t.Fatalf("got %v, want %v", err, tc.target)
			}
			if out != "" {
				t.Errorf("partial output returned on error:\n%s", out)
			}
			if tc.path != nil {
				var e *errors.Error
				if !stderrors.As(err, &e) {
					t.Fatalf("not a structured error: %T", err)
				}
				if diff := cmp.Diff(tc.path, e.Path); diff != "" {
					t.Errorf("path mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestConstValue(t *testing.T) {
	tests := []struct {
		carrier string
		v       uint64
		want    string
	}{
		{"Byte", 0xff, "-1"},
		{"Byte", 0x7f, "127"},
		{"Short", 0x8000, "-32768"},
		{"Int", 0, "0"},
		{"Int", 0xffffffff, "-1"},
		{"Long", 1 << 63, "Long.MIN_VALUE"},
		{"Long", 42, "42"},
	}
	for _, tc := range tests {
		got, err := constValue(tc.carrier, tc.v)
		if err != nil {
			t.Fatalf("constValue(%s, %d): %v", tc.carrier, tc.v, err)
		}
		if got != tc.want {
			t.Errorf("constValue(%s, %d) = %q, want %q", tc.carrier, tc.v, got, tc.want)
		}
	}

	if _, err := constValue("Float", 1); !stderrors.Is(err, errors.ErrUnsupportedShape) {
		t.Errorf("float constant: got %v", err)
	}

	overflows := []struct {
		carrier string
		v       uint64
	}{
		{"Byte", 300},
		{"Short", 0x10000},
		{"Int", 1 << 32},
	}
	for _, tc := range overflows {
		if _, err := constValue(tc.carrier, tc.v); !stderrors.Is(err, errors.ErrOverflow) {
			t.Errorf("constValue(%s, %d): got %v, want overflow", tc.carrier, tc.v, err)
		}
	}
}

func TestGenerateConstantOverflow(t *testing.T) {
	flags := idl.Named("mode", idl.Val(idl.U8))
	doc := &idl.Document{
		Types:     []*idl.NamedType{flags},
		Constants: []*idl.Constant{{Type: flags, Name: "all", Value: 300}},
	}

	out, err := Generate(doc, DefaultConfig())
	if !stderrors.Is(err, errors.ErrOverflow) {
		t.Fatalf("got %v, want overflow", err)
	}
	if out != "" {
		t.Error("output produced on error")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("unstructured error %T", err)
	}
	if diff := cmp.Diff([]string{"mode", "all"}, e.Path); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
}
