package kotlin

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

func TestIsSnakeCase(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"fd_close", true},
		{"sched_yield", true},
		{"args2_get", true},
		{"x", true},
		{"fdClose", false},
		{"FdClose", false},
		{"fd-close", false},
		{"_fd", false},
		{"fd_", false},
		{"fd__close", false},
		{"2big", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsSnakeCase(tc.name); got != tc.want {
			t.Errorf("IsSnakeCase(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNames(t *testing.T) {
	safe := idl.Named("prestat_dir", idl.Val(idl.U32))
	unsafe := idl.Named("iovec", idl.PointerTo(idl.Val(idl.U8)))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"type", typeName(safe), "PrestatDir"},
		{"unsafe_type", typeName(unsafe), "__unsafe__Iovec"},
		{"shouty", shouty("fd_datasync"), "FD_DATASYNC"},
		{"enum_case", enumCase("notcapable"), "NOTCAPABLE"},
		{"enum_digit", enumCase("2big"), "_2BIG"},
		{"shouty_digits", shouty("u8_list"), "U8_LIST"},
		{"shouty_camel", shouty("fdFlags"), "FD_FLAGS"},
		{"case_class", caseClass("dir"), "Dir"},
		{"keyword", ident("in"), "in_"},
		{"plain", ident("fd"), "fd"},
		{"module_snake", moduleIdent("wasi_snapshot_preview1"), "wasi_snapshot_preview1"},
		{"module_wit", moduleIdent("wasi:cli/environment@0.2.0"), "wasi_cli_environment_0_2_0"},
		{"module_kebab", moduleIdent("wasi:io/poll-events"), "wasi_io_poll_events"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestParseNamingMode(t *testing.T) {
	tests := []struct {
		in   string
		want NamingMode
	}{
		{"", Flat},
		{"flat", Flat},
		{"Prefixed", Prefixed},
		{" prefixed ", Prefixed},
	}
	for _, tc := range tests {
		got, err := ParseNamingMode(tc.in)
		if err != nil {
			t.Fatalf("ParseNamingMode(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseNamingMode(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseNamingMode("camel"); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("unknown mode: got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Naming: Prefixed}.withDefaults()
	if cfg.Package != "kotlinx.wasi" || cfg.ErrorClass != "WasiError" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Naming != Prefixed {
		t.Errorf("naming overwritten: %s", cfg.Naming)
	}
	if cfg.ImportModule != "" {
		t.Errorf("import module defaulted: %q", cfg.ImportModule)
	}
}
