package kotlin

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/layout"
)

const header = `// This file is automatically generated, DO NOT EDIT
//
// To regenerate this file run the ` + "`witx-bindgen`" + ` command
`

// Generator renders an interface document as one Kotlin compilation unit.
type Generator struct {
	layouts *layout.Calculator
	cfg     Config
}

// New creates a generator. Empty Config fields take their defaults.
func New(cfg Config) *Generator {
	return &Generator{
		cfg:     cfg.withDefaults(),
		layouts: layout.NewCalculator(),
	}
}

// Generate renders doc with cfg.
func Generate(doc *idl.Document, cfg Config) (string, error) {
	return New(cfg).Generate(doc)
}

// Generate renders the header, every named type, every module's functions
// and then the constants. Any error aborts generation and no text is
// returned.
func (g *Generator) Generate(doc *idl.Document) (string, error) {
	var b strings.Builder

	b.WriteString(header)
	fmt.Fprintf(&b, "\npackage %s\n\n", g.cfg.Package)
	b.WriteString("import kotlin.wasm.unsafe.*\n")
	b.WriteString("import kotlin.wasm.WasmImport\n\n")

	for _, nt := range doc.Types {
		if err := g.renderNamedType(&b, nt); err != nil {
			return "", err
		}
		b.WriteString("\n")
		Logger().Debug("rendered type", zap.String("type", nt.Name))
	}

	for _, m := range doc.Modules {
		for _, fn := range m.Funcs {
			if err := g.renderFunction(&b, m, fn); err != nil {
				return "", err
			}
			b.WriteString("\n")
		}
	}

	for _, c := range doc.Constants {
		if err := g.renderConstant(&b, c); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// renderConstant renders c as TYPE_NAME: Type = value.
func (g *Generator) renderConstant(b *strings.Builder, c *idl.Constant) error {
	if c.Type == nil {
		return errors.New(errors.PhaseRender, errors.KindInvalidInput).
			Path(c.Name).
			Detail("constant without type").
			Build()
	}
	carrier, err := carrierType(idl.Ref(c.Type))
	if err != nil {
		return errors.At(err, c.Type.Name, c.Name)
	}
	value, err := constValue(carrier, c.Value)
	if err != nil {
		return errors.At(err, c.Type.Name, c.Name)
	}
	kdoc(b, c.Docs, "")
	fmt.Fprintf(b, "const val %s_%s: %s = %s\n", shouty(c.Type.Name), shouty(c.Name), typeName(c.Type), value)
	return nil
}

// constValue renders v as a literal of carrier, reinterpreting the bits as
// the signed Kotlin type. Values wider than the carrier fail with an
// overflow error.
func constValue(carrier string, v uint64) (string, error) {
	var limit uint64
	switch carrier {
	case "Byte":
		limit = math.MaxUint8
	case "Short":
		limit = math.MaxUint16
	case "Int":
		limit = math.MaxUint32
	case "Long":
		limit = math.MaxUint64
	default:
		return "", errors.UnsupportedShape(errors.PhaseRender, nil, "constant of type "+carrier)
	}
	if v > limit {
		return "", errors.Overflow(errors.PhaseRender, nil, v, carrier)
	}

	switch carrier {
	case "Byte":
		return fmt.Sprint(int8(v)), nil
	case "Short":
		return fmt.Sprint(int16(v)), nil
	case "Int":
		return fmt.Sprint(int32(v)), nil
	}
	if int64(v) == math.MinInt64 {
		return "Long.MIN_VALUE", nil
	}
	return fmt.Sprint(int64(v)), nil
}
