package idl

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witx-bindgen/errors"
)

// WasmType is a core wasm value type of the flattened ABI.
type WasmType = api.ValueType

// Signature is the flattened scalar signature of a raw entry point.
type Signature struct {
	Params  []WasmType
	Results []WasmType
	// RetPtrs is the number of trailing Params that are return pointers.
	RetPtrs int
}

// WasmSignature flattens f into core wasm parameter and result types.
//
// Params flatten in order. A result variant passes one return pointer per
// success value and returns its discriminant as i32; any other result must
// flatten to a single scalar.
func (f *Function) WasmSignature() (Signature, error) {
	var sig Signature
	for _, p := range f.Params {
		flat, err := Flatten(p.Type)
		if err != nil {
			return Signature{}, errors.At(err, f.Name, p.Name)
		}
		sig.Params = append(sig.Params, flat...)
	}

	switch len(f.Results) {
	case 0:
	case 1:
		r := f.Results[0]
		if v, ok := r.Type.Resolve().(*Variant); ok {
			if okType, errType, isResult := v.AsResult(); isResult {
				if errType != nil && !isScalarVariant(errType.Resolve()) {
					return Signature{}, errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
						Path(f.Name, r.Name).
						Type(errType.String()).
						Detail("result error payload must be enum-like").
						Build()
				}
				sig.RetPtrs = len(ReturnValues(okType))
				for i := 0; i < sig.RetPtrs; i++ {
					sig.Params = append(sig.Params, api.ValueTypeI32)
				}
				sig.Results = []WasmType{api.ValueTypeI32}
				return sig, nil
			}
		}
		flat, err := Flatten(r.Type)
		if err != nil {
			return Signature{}, errors.At(err, f.Name, r.Name)
		}
		if len(flat) != 1 {
			return Signature{}, errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
				Path(f.Name, r.Name).
				Type(r.Type.String()).
				Detail("result flattens to %d values", len(flat)).
				Build()
		}
		sig.Results = flat
	default:
		return Signature{}, errors.UnsupportedShape(errors.PhaseLower, []string{f.Name}, "more than one result")
	}
	return sig, nil
}

// ReturnValues lists the values a result's success payload is written
// through: one per tuple member, one for any other payload, none without one.
func ReturnValues(ok *TypeRef) []TypeRef {
	if ok == nil {
		return nil
	}
	if rec, isRec := ok.Resolve().(*Record); isRec && rec.IsTuple() {
		out := make([]TypeRef, len(rec.Members))
		for i, m := range rec.Members {
			out[i] = m.Type
		}
		return out
	}
	return []TypeRef{*ok}
}

// Flatten returns the core wasm types r is passed as.
func Flatten(r TypeRef) ([]WasmType, error) {
	switch t := r.Resolve().(type) {
	case Builtin:
		switch t {
		case U64, S64:
			return []WasmType{api.ValueTypeI64}, nil
		case F32:
			return []WasmType{api.ValueTypeF32}, nil
		case F64:
			return []WasmType{api.ValueTypeF64}, nil
		default:
			return []WasmType{api.ValueTypeI32}, nil
		}
	case *Handle, *Pointer, *ConstPointer:
		return []WasmType{api.ValueTypeI32}, nil
	case *List:
		return []WasmType{api.ValueTypeI32, api.ValueTypeI32}, nil
	case *Record:
		if repr, ok := t.BitflagsRepr(); ok {
			if repr == ReprU64 {
				return []WasmType{api.ValueTypeI64}, nil
			}
			return []WasmType{api.ValueTypeI32}, nil
		}
		if t.IsTuple() {
			var flat []WasmType
			for _, m := range t.Members {
				mf, err := Flatten(m.Type)
				if err != nil {
					return nil, errors.At(err, m.Name)
				}
				flat = append(flat, mf...)
			}
			return flat, nil
		}
		// passed by address
		return []WasmType{api.ValueTypeI32}, nil
	case *Variant:
		if isScalarVariant(t) {
			return []WasmType{api.ValueTypeI32}, nil
		}
		return nil, errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
			Type(r.String()).
			Detail("variant with payloads cannot be flattened").
			Build()
	}
	return nil, errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
		Type(r.String()).
		Detail("unknown type").
		Build()
}

func isScalarVariant(t Type) bool {
	v, ok := t.(*Variant)
	return ok && v.IsEnumLike()
}

// WasmTypeName returns the text-format name of t, such as "i32".
func WasmTypeName(t WasmType) string { return api.ValueTypeName(t) }
