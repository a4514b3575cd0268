package idl

import "strconv"

// Named declares a type called name.
func Named(name string, r TypeRef) *NamedType {
	return &NamedType{Name: name, Type: r}
}

// StringType returns list<char>.
func StringType() TypeRef {
	return Val(&List{Elem: Val(Char)})
}

// BoolType returns the anonymous boolean variant.
func BoolType() TypeRef {
	return Val(&Variant{Cases: []*Case{{Name: "false"}, {Name: "true"}}})
}

// ResultType returns an anonymous ok/err variant. Either payload may be nil.
func ResultType(ok, err *TypeRef) TypeRef {
	return Val(&Variant{Cases: []*Case{{Name: "ok", Type: ok}, {Name: "err", Type: err}}})
}

// OptionType returns variant{none, some(t)}.
func OptionType(t TypeRef) TypeRef {
	return Val(&Variant{Cases: []*Case{{Name: "none"}, {Name: "some", Type: &t}}})
}

// EnumType returns an enum-like variant with the given cases.
func EnumType(names ...string) *Variant {
	v := &Variant{Cases: make([]*Case, len(names))}
	for i, n := range names {
		v.Cases[i] = &Case{Name: n}
	}
	return v
}

// FlagsType returns a bitflags record. A zero repr is derived from the count.
func FlagsType(repr IntRepr, names ...string) *Record {
	r := &Record{Shape: Bitflags, Repr: repr, Members: make([]*Member, len(names))}
	for i, n := range names {
		r.Members[i] = &Member{Name: n, Type: BoolType()}
	}
	return r
}

// StructType returns a plain record.
func StructType(members ...*Member) *Record {
	return &Record{Shape: Struct, Members: members}
}

// Field returns a record member.
func Field(name string, t TypeRef) *Member {
	return &Member{Name: name, Type: t}
}

// TupleType returns a record with positional members.
func TupleType(types ...TypeRef) *Record {
	r := &Record{Shape: Tuple, Members: make([]*Member, len(types))}
	for i, t := range types {
		r.Members[i] = &Member{Name: strconv.Itoa(i), Type: t}
	}
	return r
}

// PointerTo returns a mutable pointer to t.
func PointerTo(t TypeRef) TypeRef { return Val(&Pointer{Elem: t}) }

// ConstPointerTo returns a read-only pointer to t.
func ConstPointerTo(t TypeRef) TypeRef { return Val(&ConstPointer{Elem: t}) }

// ListOf returns list<t>.
func ListOf(t TypeRef) TypeRef { return Val(&List{Elem: t}) }

// RefPtr returns a pointer to a copy of r, for optional payload slots.
func RefPtr(r TypeRef) *TypeRef { return &r }
