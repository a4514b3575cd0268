package witload

import (
	"encoding/json"
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// mapper converts wit types to idl references. Named definitions map to
// references to their declaration; anonymous ones are inlined.
type mapper struct {
	named map[*wit.TypeDef]*idl.NamedType
	defs  []*wit.TypeDef
}

func newMapper(defs []*wit.TypeDef) *mapper {
	return &mapper{named: make(map[*wit.TypeDef]*idl.NamedType), defs: defs}
}

var primitives = map[string]idl.TypeRef{
	"u8":  idl.Val(idl.U8),
	"u16": idl.Val(idl.U16),
	"u32": idl.Val(idl.U32),
	"u64": idl.Val(idl.U64),
	"s8":  idl.Val(idl.S8),
	"s16": idl.Val(idl.S16),
	"s32": idl.Val(idl.S32),
	"s64": idl.Val(idl.S64),
	"f32": idl.Val(idl.F32),
	"f64": idl.Val(idl.F64),
	// pre-0.220 encoders
	"float32": idl.Val(idl.F32),
	"float64": idl.Val(idl.F64),
	"char":    idl.Val(idl.Char),
}

// rawRef maps a JSON type reference: a primitive name or a type index.
func (m *mapper) rawRef(raw json.RawMessage) (idl.TypeRef, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		switch name {
		case "bool":
			return idl.BoolType(), nil
		case "string":
			return idl.StringType(), nil
		}
		if r, ok := primitives[name]; ok {
			return r, nil
		}
		return idl.TypeRef{}, errors.New(errors.PhaseLoad, errors.KindUnsupportedShape).
			Type(name).
			Detail("unknown primitive").
			Build()
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return idl.TypeRef{}, errors.ParseFailed("type reference "+string(raw), err)
	}
	if idx < 0 || idx >= len(m.defs) {
		return idl.TypeRef{}, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("type index %d out of range", idx).
			Build()
	}
	return m.ref(m.defs[idx])
}

// ref maps a wit type.
func (m *mapper) ref(t wit.Type) (idl.TypeRef, error) {
	switch t := t.(type) {
	case *wit.TypeDef:
		if nt, ok := m.named[t]; ok {
			return idl.Ref(nt), nil
		}
		return m.kind(t)
	case wit.Bool:
		return idl.BoolType(), nil
	case wit.U8:
		return idl.Val(idl.U8), nil
	case wit.U16:
		return idl.Val(idl.U16), nil
	case wit.U32:
		return idl.Val(idl.U32), nil
	case wit.U64:
		return idl.Val(idl.U64), nil
	case wit.S8:
		return idl.Val(idl.S8), nil
	case wit.S16:
		return idl.Val(idl.S16), nil
	case wit.S32:
		return idl.Val(idl.S32), nil
	case wit.S64:
		return idl.Val(idl.S64), nil
	case wit.F32:
		return idl.Val(idl.F32), nil
	case wit.F64:
		return idl.Val(idl.F64), nil
	case wit.Char:
		return idl.Val(idl.Char), nil
	case wit.String:
		return idl.StringType(), nil
	}
	return idl.TypeRef{}, errors.UnsupportedShape(errors.PhaseLoad, nil, fmt.Sprintf("wit type %T", t))
}

func (m *mapper) opt(t wit.Type) (*idl.TypeRef, error) {
	if t == nil {
		return nil, nil
	}
	r, err := m.ref(t)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func resourceName(td *wit.TypeDef) string {
	if td != nil && td.Name != nil {
		return snake(*td.Name)
	}
	return ""
}

// kind maps the structure of a definition.
func (m *mapper) kind(td *wit.TypeDef) (idl.TypeRef, error) {
	switch k := td.Kind.(type) {
	case *wit.Record:
		members := make([]*idl.Member, len(k.Fields))
		for i, f := range k.Fields {
			r, err := m.ref(f.Type)
			if err != nil {
				return idl.TypeRef{}, errors.At(err, f.Name)
			}
			members[i] = &idl.Member{Name: snake(f.Name), Type: r, Docs: f.Docs.Contents}
		}
		return idl.Val(idl.StructType(members...)), nil

	case *wit.Tuple:
		types := make([]idl.TypeRef, len(k.Types))
		for i, t := range k.Types {
			r, err := m.ref(t)
			if err != nil {
				return idl.TypeRef{}, err
			}
			types[i] = r
		}
		return idl.Val(idl.TupleType(types...)), nil

	case *wit.Flags:
		names := make([]string, len(k.Flags))
		for i, f := range k.Flags {
			names[i] = snake(f.Name)
		}
		rec := idl.FlagsType(0, names...)
		for i, f := range k.Flags {
			rec.Members[i].Docs = f.Docs.Contents
		}
		return idl.Val(rec), nil

	case *wit.Enum:
		v := &idl.Variant{Cases: make([]*idl.Case, len(k.Cases))}
		for i, c := range k.Cases {
			v.Cases[i] = &idl.Case{Name: snake(c.Name), Docs: c.Docs.Contents}
		}
		return idl.Val(v), nil

	case *wit.Variant:
		v := &idl.Variant{Cases: make([]*idl.Case, len(k.Cases))}
		for i, c := range k.Cases {
			payload, err := m.opt(c.Type)
			if err != nil {
				return idl.TypeRef{}, errors.At(err, c.Name)
			}
			v.Cases[i] = &idl.Case{Name: snake(c.Name), Type: payload, Docs: c.Docs.Contents}
		}
		return idl.Val(v), nil

	case *wit.Option:
		r, err := m.ref(k.Type)
		if err != nil {
			return idl.TypeRef{}, err
		}
		return idl.OptionType(r), nil

	case *wit.Result:
		ok, err := m.opt(k.OK)
		if err != nil {
			return idl.TypeRef{}, errors.At(err, "ok")
		}
		fail, err := m.opt(k.Err)
		if err != nil {
			return idl.TypeRef{}, errors.At(err, "err")
		}
		return idl.ResultType(ok, fail), nil

	case *wit.List:
		r, err := m.ref(k.Type)
		if err != nil {
			return idl.TypeRef{}, err
		}
		return idl.ListOf(r), nil

	case *wit.Resource:
		return idl.Val(&idl.Handle{Resource: resourceName(td)}), nil
	case *wit.Own:
		return idl.Val(&idl.Handle{Resource: resourceName(k.Type)}), nil
	case *wit.Borrow:
		return idl.Val(&idl.Handle{Resource: resourceName(k.Type)}), nil

	case wit.Type:
		return m.ref(k)
	}
	return idl.TypeRef{}, errors.New(errors.PhaseLoad, errors.KindUnsupportedShape).
		Detail("wit kind %T", td.Kind).
		Build()
}
