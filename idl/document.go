package idl

// Document is a loaded interface description.
type Document struct {
	Types     []*NamedType
	Modules   []*Module
	Constants []*Constant
}

// Type returns the named type called name, or nil.
func (d *Document) Type(name string) *NamedType {
	for _, nt := range d.Types {
		if nt.Name == name {
			return nt
		}
	}
	return nil
}

// Module returns the module called name, or nil.
func (d *Document) Module(name string) *Module {
	for _, m := range d.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// NamedType binds a name to a type; it is the unit of top-level declaration.
type NamedType struct {
	Name string
	Type TypeRef
	Docs string
}

// Resolve returns the concrete type behind the name.
func (nt *NamedType) Resolve() Type { return nt.Type.Resolve() }

// Module groups functions imported from one ABI namespace.
type Module struct {
	Name string
	// ImportName is the namespace key of the raw entry points.
	ImportName string
	Funcs      []*Function
	Docs       string
}

// Func returns the function called name, or nil.
func (m *Module) Func(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Function is an interface function. Results holds at most one element in
// the ABI modeled here; longer lists are rejected by the generator.
type Function struct {
	Name string
	// ImportName is the symbol of the raw entry point; defaults to Name.
	ImportName string
	Params     []*Param
	Results    []*Param
	NoReturn   bool
	Docs       string
}

// Symbol returns the raw entry point symbol.
func (f *Function) Symbol() string {
	if f.ImportName != "" {
		return f.ImportName
	}
	return f.Name
}

// Param is a named function parameter or result.
type Param struct {
	Name string
	Type TypeRef
	Docs string
}

// Constant is a named value of a declared type.
type Constant struct {
	Type  *NamedType
	Name  string
	Value uint64
	Docs  string
}
