package idl

// IsSafe reports whether t can be exposed without raw pointers.
func IsSafe(t Type) bool {
	switch t := t.(type) {
	case *Record:
		for _, m := range t.Members {
			if !m.Type.IsSafe() {
				return false
			}
		}
		return true
	case *Variant:
		for _, c := range t.Cases {
			if c.Type != nil && !c.Type.IsSafe() {
				return false
			}
		}
		return true
	case *List:
		return t.Elem.IsSafe()
	case *Pointer, *ConstPointer:
		return false
	default:
		return true
	}
}

// IsSafe reports whether the referenced type is safe.
func (r TypeRef) IsSafe() bool {
	return IsSafe(r.Resolve())
}

// IsSafe reports whether the named type is safe.
func (nt *NamedType) IsSafe() bool { return nt.Type.IsSafe() }

// IsSafe reports whether every parameter and result is safe.
func (f *Function) IsSafe() bool {
	for _, p := range f.Params {
		if !p.Type.IsSafe() {
			return false
		}
	}
	for _, r := range f.Results {
		if !r.Type.IsSafe() {
			return false
		}
	}
	return true
}
