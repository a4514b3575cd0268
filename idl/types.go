package idl

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete shape of a Type.
type Kind uint8

const (
	KindRecord Kind = iota + 1
	KindVariant
	KindHandle
	KindList
	KindPointer
	KindConstPointer
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindVariant:
		return "variant"
	case KindHandle:
		return "handle"
	case KindList:
		return "list"
	case KindPointer:
		return "pointer"
	case KindConstPointer:
		return "const_pointer"
	case KindBuiltin:
		return "builtin"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Type is one of *Record, *Variant, *Handle, *List, *Pointer, *ConstPointer
// or Builtin.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// TypeRef refers to a type either by name or by inline definition. Exactly
// one of Named and Value is set.
type TypeRef struct {
	Named *NamedType
	Value Type
}

// Ref returns a reference to a declared type.
func Ref(nt *NamedType) TypeRef { return TypeRef{Named: nt} }

// Val returns an inline type reference.
func Val(t Type) TypeRef { return TypeRef{Value: t} }

// IsNamed reports whether r names a declared type.
func (r TypeRef) IsNamed() bool { return r.Named != nil }

// Resolve follows named references down to the concrete type.
func (r TypeRef) Resolve() Type {
	for r.Named != nil {
		r = r.Named.Type
	}
	return r.Value
}

func (r TypeRef) String() string {
	if r.Named != nil {
		return r.Named.Name
	}
	if r.Value == nil {
		return "<nil>"
	}
	return r.Value.String()
}

// IntRepr is the integer representation of a tag or a bitflags set. The zero
// value means "derive from the number of cases or members".
type IntRepr uint8

const (
	ReprU8 IntRepr = iota + 1
	ReprU16
	ReprU32
	ReprU64
)

// Size returns the width of the representation in bytes.
func (r IntRepr) Size() uint32 {
	switch r {
	case ReprU8:
		return 1
	case ReprU16:
		return 2
	case ReprU32:
		return 4
	case ReprU64:
		return 8
	}
	return 0
}

// Bits returns the width of the representation in bits.
func (r IntRepr) Bits() int { return int(r.Size()) * 8 }

func (r IntRepr) String() string {
	switch r {
	case ReprU8:
		return "u8"
	case ReprU16:
		return "u16"
	case ReprU32:
		return "u32"
	case ReprU64:
		return "u64"
	}
	return "auto"
}

// TagRepr returns the smallest representation able to enumerate n cases.
func TagRepr(n int) IntRepr {
	switch {
	case n <= 1<<8:
		return ReprU8
	case n <= 1<<16:
		return ReprU16
	default:
		return ReprU32
	}
}

// FlagsRepr returns the smallest representation holding n one-bit flags, or
// false when n exceeds 64.
func FlagsRepr(n int) (IntRepr, bool) {
	switch {
	case n <= 8:
		return ReprU8, true
	case n <= 16:
		return ReprU16, true
	case n <= 32:
		return ReprU32, true
	case n <= 64:
		return ReprU64, true
	}
	return 0, false
}

// Builtin is a scalar type.
type Builtin uint8

const (
	U8 Builtin = iota + 1
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	F32
	F64
	Char
	// Char8 is a u8 that stands for a C char.
	Char8
	// Usize is a pointer-sized u32.
	Usize
)

var builtinNames = map[Builtin]string{
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	S8: "s8", S16: "s16", S32: "s32", S64: "s64",
	F32: "f32", F64: "f64", Char: "char", Char8: "char8", Usize: "usize",
}

func (Builtin) Kind() Kind { return KindBuiltin }
func (Builtin) isType()    {}

func (b Builtin) String() string {
	if s, ok := builtinNames[b]; ok {
		return s
	}
	return fmt.Sprintf("builtin(%d)", uint8(b))
}

// Size returns the width of the scalar in bytes.
func (b Builtin) Size() uint32 {
	switch b {
	case U8, S8, Char8:
		return 1
	case U16, S16:
		return 2
	case U32, S32, F32, Char, Usize:
		return 4
	case U64, S64, F64:
		return 8
	}
	return 0
}

// RecordShape distinguishes plain records from their alternate encodings.
type RecordShape uint8

const (
	Struct RecordShape = iota
	Tuple
	Bitflags
)

// Record is an ordered sequence of members.
type Record struct {
	Shape   RecordShape
	Repr    IntRepr
	Members []*Member
}

// Member is a record field. Tuple members carry their position as name.
type Member struct {
	Name string
	Type TypeRef
	Docs string
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) isType()    {}

func (r *Record) String() string {
	var b strings.Builder
	switch r.Shape {
	case Tuple:
		b.WriteString("tuple<")
		for i, m := range r.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.Type.String())
		}
		b.WriteByte('>')
		return b.String()
	case Bitflags:
		b.WriteString("flags {")
	default:
		b.WriteString("record {")
	}
	for i, m := range r.Members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(m.Name)
		if r.Shape != Bitflags {
			b.WriteString(": ")
			b.WriteString(m.Type.String())
		}
	}
	b.WriteString(" }")
	return b.String()
}

// IsTuple reports whether members are positional.
func (r *Record) IsTuple() bool { return r.Shape == Tuple }

// BitflagsRepr returns the integer representation of a bitflags record.
// ok is false for other records or when the members do not fit in 64 bits.
func (r *Record) BitflagsRepr() (repr IntRepr, ok bool) {
	if r.Shape != Bitflags {
		return 0, false
	}
	if r.Repr != 0 {
		return r.Repr, len(r.Members) <= r.Repr.Bits()
	}
	return FlagsRepr(len(r.Members))
}

// Variant is a tagged union of cases.
type Variant struct {
	Tag   IntRepr
	Cases []*Case
}

// Case is one alternative of a variant; Type is nil when it has no payload.
type Case struct {
	Name string
	Type *TypeRef
	Docs string
}

func (*Variant) Kind() Kind { return KindVariant }
func (*Variant) isType()    {}

func (v *Variant) String() string {
	if v.IsBool() {
		return "bool"
	}
	if ok, err, isResult := v.AsResult(); isResult {
		return "result<" + optString(ok) + ", " + optString(err) + ">"
	}
	var b strings.Builder
	if v.IsEnumLike() {
		b.WriteString("enum {")
	} else {
		b.WriteString("variant {")
	}
	for i, c := range v.Cases {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(c.Name)
		if c.Type != nil {
			b.WriteByte('(')
			b.WriteString(c.Type.String())
			b.WriteByte(')')
		}
	}
	b.WriteString(" }")
	return b.String()
}

func optString(r *TypeRef) string {
	if r == nil {
		return "_"
	}
	return r.String()
}

// TagRepr returns the representation of the discriminant.
func (v *Variant) TagRepr() IntRepr {
	if v.Tag != 0 {
		return v.Tag
	}
	return TagRepr(len(v.Cases))
}

// IsEnumLike reports whether no case carries a payload.
func (v *Variant) IsEnumLike() bool {
	for _, c := range v.Cases {
		if c.Type != nil {
			return false
		}
	}
	return true
}

// IsBool reports whether v is the two-case false/true variant.
func (v *Variant) IsBool() bool {
	return len(v.Cases) == 2 &&
		v.Cases[0].Name == "false" && v.Cases[0].Type == nil &&
		v.Cases[1].Name == "true" && v.Cases[1].Type == nil
}

// AsResult returns the success and failure payloads of a result variant.
func (v *Variant) AsResult() (ok, err *TypeRef, isResult bool) {
	if len(v.Cases) != 2 || v.Cases[0].Name != "ok" || v.Cases[1].Name != "err" {
		return nil, nil, false
	}
	return v.Cases[0].Type, v.Cases[1].Type, true
}

// CaseIndex returns the position of the named case, or -1.
func (v *Variant) CaseIndex(name string) int {
	for i, c := range v.Cases {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Handle is an opaque reference to a host resource.
type Handle struct {
	Resource string
}

func (*Handle) Kind() Kind { return KindHandle }
func (*Handle) isType()    {}

func (h *Handle) String() string {
	if h.Resource == "" {
		return "handle"
	}
	return "handle<" + h.Resource + ">"
}

// List is a sequence passed as pointer and length.
type List struct {
	Elem TypeRef
}

func (*List) Kind() Kind { return KindList }
func (*List) isType()    {}

func (l *List) String() string {
	if l.IsString() {
		return "string"
	}
	return "list<" + l.Elem.String() + ">"
}

// IsString reports whether l is a list of char.
func (l *List) IsString() bool {
	b, ok := l.Elem.Resolve().(Builtin)
	return ok && b == Char
}

// Pointer is a raw mutable address into linear memory.
type Pointer struct {
	Elem TypeRef
}

func (*Pointer) Kind() Kind { return KindPointer }
func (*Pointer) isType()    {}

func (p *Pointer) String() string { return "pointer<" + p.Elem.String() + ">" }

// ConstPointer is a raw read-only address into linear memory.
type ConstPointer struct {
	Elem TypeRef
}

func (*ConstPointer) Kind() Kind { return KindConstPointer }
func (*ConstPointer) isType()    {}

func (p *ConstPointer) String() string { return "const_pointer<" + p.Elem.String() + ">" }
