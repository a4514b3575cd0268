package kotlin

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/wasi/preview1"
)

func TestLoad(t *testing.T) {
	doc := preview1.Document()
	size := doc.Type("size")
	sizes := idl.Named("sizes", idl.Val(idl.TupleType(idl.Ref(size), idl.Val(idl.U64))))
	flag := idl.Named("flag", idl.BoolType())
	alias := idl.Named("stat", idl.Ref(doc.Type("fdstat")))

	tests := []struct {
		name   string
		ref    idl.TypeRef
		offset uint32
		want   string
	}{
		{"u8", idl.Val(idl.U8), 0, "loadByte(p)"},
		{"u16_offset", idl.Val(idl.U16), 2, "loadShort(p + 2)"},
		{"size", idl.Ref(size), 4, "loadInt(p + 4)"},
		{"s64", idl.Val(idl.S64), 0, "loadLong(p)"},
		{"f32", idl.Val(idl.F32), 0, "Float.fromBits(loadInt(p))"},
		{"f64", idl.Val(idl.F64), 8, "Double.fromBits(loadLong(p + 8))"},
		{"handle", idl.Ref(doc.Type("fd")), 0, "loadInt(p)"},
		{"pointer", idl.PointerTo(idl.Val(idl.U8)), 0, "Pointer(loadInt(p).toUInt())"},
		{"bool", idl.Ref(flag), 0, "loadByte(p).toInt() != 0"},
		{"bitflags_u16", idl.Ref(doc.Type("fdflags")), 0, "loadShort(p)"},
		{"bitflags_u64", idl.Ref(doc.Type("rights")), 0, "loadLong(p)"},
		{"enum_u16", idl.Ref(doc.Type("errno")), 0, "Errno.values()[loadShort(p).toInt()]"},
		{"pair", idl.Ref(sizes), 0, "Pair(loadInt(p), loadLong(p + 8))"},
		{"record", idl.Ref(doc.Type("fdstat")), 0,
			"Fdstat(Filetype.values()[loadByte(p).toInt()], loadShort(p + 2), loadLong(p + 8), loadLong(p + 16))"},
		{"record_alias", idl.Ref(alias), 8,
			"Fdstat(Filetype.values()[loadByte(p + 8).toInt()], loadShort(p + 10), loadLong(p + 16), loadLong(p + 24))"},
		{"unsafe_record", idl.Ref(doc.Type("iovec")), 0,
			"__unsafe__Iovec(Pointer(loadInt(p).toUInt()), loadInt(p + 4))"},
		{"variant", idl.Ref(doc.Type("prestat")), 0,
			"when (loadByte(p).toInt()) {\n" +
				"    0 -> Prestat.Dir(PrestatDir(loadInt(p + 4)))\n" +
				"    else -> error(\"Invalid variant\")\n" +
				"}"},
	}

	g := New(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.load(tc.ref, "p", tc.offset)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadVariantWithEmptyCase(t *testing.T) {
	payload := idl.Val(idl.U64)
	opt := idl.Named("maybe", idl.Val(&idl.Variant{Cases: []*idl.Case{
		{Name: "none"},
		{Name: "some", Type: &payload},
	}}))

	want := "when (loadByte(p).toInt()) {\n" +
		"    0 -> Maybe.None\n" +
		"    1 -> Maybe.Some(loadLong(p + 8))\n" +
		"    else -> error(\"Invalid variant\")\n" +
		"}"
	got, err := New(DefaultConfig()).load(idl.Ref(opt), "p", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("load mismatch (-want +got):\n%s", diff)
	}
}

func wideEnum(name string, n int) *idl.NamedType {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return idl.Named(name, idl.Val(idl.EnumType(names...)))
}

func TestLoadWideTags(t *testing.T) {
	payload := idl.Val(idl.U32)
	cases := make([]*idl.Case, 200)
	for i := range cases {
		cases[i] = &idl.Case{Name: fmt.Sprintf("c%d", i)}
	}
	cases[199].Type = &payload
	wide := idl.Named("wide", idl.Val(&idl.Variant{Cases: cases}))

	tests := []struct {
		name string
		ref  idl.TypeRef
		want string
	}{
		{"u8_signed_range", idl.Ref(wideEnum("small", 128)), "Small.values()[loadByte(p).toInt()]"},
		{"u8_past_signed_range", idl.Ref(wideEnum("big", 200)), "Big.values()[loadByte(p).toInt() and 0xFF]"},
		{"u16_past_signed_range", idl.Ref(wideEnum("huge", 40000)), "Huge.values()[loadShort(p).toInt() and 0xFFFF]"},
	}

	g := New(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.load(tc.ref, "p", 0)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("load mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, err := g.load(idl.Ref(wide), "p", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(got, "when (loadByte(p).toInt() and 0xFF) {\n") {
		t.Errorf("variant tag not masked: %q", firstLine(got))
	}
	if !strings.Contains(got, "    199 -> Wide.C199(loadInt(p + 4))\n") {
		t.Errorf("case 199 missing:\n%s", got)
	}
}

func TestStore(t *testing.T) {
	doc := preview1.Document()
	size := doc.Type("size")
	sizes := idl.Named("sizes", idl.Val(idl.TupleType(idl.Ref(size), idl.Val(idl.U64))))
	flag := idl.Named("flag", idl.BoolType())

	tests := []struct {
		name   string
		ref    idl.TypeRef
		offset uint32
		want   string
	}{
		{"u8", idl.Val(idl.U8), 0, "storeByte(p, v)"},
		{"size", idl.Ref(size), 4, "storeInt(p + 4, v)"},
		{"f32", idl.Val(idl.F32), 0, "storeInt(p, v.toRawBits())"},
		{"f64", idl.Val(idl.F64), 0, "storeLong(p, v.toRawBits())"},
		{"pointer", idl.ConstPointerTo(idl.Val(idl.U8)), 0, "storeInt(p, v.address.toInt())"},
		{"bool", idl.Ref(flag), 1, "storeByte(p + 1, if (v) 1 else 0)"},
		{"bitflags", idl.Ref(doc.Type("rights")), 0, "storeLong(p, v)"},
		{"enum", idl.Ref(doc.Type("whence")), 0, "storeByte(p, v.ordinal.toByte())"},
		{"pair", idl.Ref(sizes), 0, "storeInt(p, v.first)\nstoreLong(p + 8, v.second)"},
		{"record", idl.Ref(doc.Type("fdstat")), 0,
			"storeByte(p, v.fs_filetype.ordinal.toByte())\n" +
				"storeShort(p + 2, v.fs_flags)\n" +
				"storeLong(p + 8, v.fs_rights_base)\n" +
				"storeLong(p + 16, v.fs_rights_inheriting)"},
		{"nested", idl.Ref(doc.Type("prestat_dir")), 4, "storeInt(p + 4, v.pr_name_len)"},
	}

	g := New(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.store(tc.ref, "v", "p", tc.offset)
			if err != nil {
				t.Fatalf("store: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("store mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryUnsupported(t *testing.T) {
	doc := preview1.Document()

	tests := []struct {
		name  string
		ref   idl.TypeRef
		store bool
	}{
		{"list", idl.Ref(doc.Type("iovec_array")), false},
		{"string", idl.StringType(), true},
		{"char", idl.Val(idl.Char), false},
		{"anonymous_record", idl.Val(idl.StructType(idl.Field("a", idl.Val(idl.U8)))), false},
		{"anonymous_enum", idl.Val(idl.EnumType("a", "b")), true},
		{"triple", idl.Val(idl.TupleType(idl.Val(idl.U8), idl.Val(idl.U8), idl.Val(idl.U8))), false},
		{"variant_store", idl.Ref(doc.Type("prestat")), true},
	}

	g := New(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.store {
				_, err = g.store(tc.ref, "v", "p", 0)
			} else {
				_, err = g.load(tc.ref, "p", 0)
			}
			if !stderrors.Is(err, errors.ErrUnsupportedShape) {
				t.Errorf("got %v, want unsupported_shape", err)
			}
		})
	}
}
