package kotlin

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/abi"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// funcName returns the identifier shared by the wrapper and the raw import.
func (g *Generator) funcName(m *idl.Module, fn *idl.Function) string {
	if g.cfg.Naming == Prefixed {
		return moduleIdent(m.Name) + "_" + fn.Name
	}
	return ident(fn.Name)
}

// importModule returns the wasm import namespace of m.
func (g *Generator) importModule(m *idl.Module) string {
	switch {
	case g.cfg.ImportModule != "":
		return g.cfg.ImportModule
	case m.ImportName != "":
		return m.ImportName
	}
	return m.Name
}

// renderFunction renders the wrapper of fn followed by its raw import.
func (g *Generator) renderFunction(b *strings.Builder, m *idl.Module, fn *idl.Function) error {
	if !IsSnakeCase(fn.Name) {
		err := errors.InvalidName(errors.PhaseRender, fn.Name, "snake_case")
		err.Path = []string{m.Name, fn.Name}
		return err
	}
	if len(fn.Results) > 1 {
		return errors.UnsupportedShape(errors.PhaseRender, []string{m.Name, fn.Name}, "more than one result")
	}

	name := g.funcName(m, fn)
	if err := g.renderWrapper(b, m, fn, name); err != nil {
		return errors.At(err, m.Name)
	}
	b.WriteString("\n")
	if err := g.renderRawImport(b, m, fn, name); err != nil {
		return errors.At(err, m.Name)
	}

	Logger().Debug("rendered function",
		zap.String("module", m.Name),
		zap.String("func", fn.Name),
		zap.Bool("safe", fn.IsSafe()))
	return nil
}

func (g *Generator) renderWrapper(b *strings.Builder, m *idl.Module, fn *idl.Function, name string) error {
	safe := fn.IsSafe()

	params := make([]string, 0, len(fn.Params)+1)
	if !safe {
		params = append(params, "allocator: MemoryAllocator")
	}
	for _, p := range fn.Params {
		ty, err := typeRef(p.Type)
		if err != nil {
			return errors.At(err, fn.Name, p.Name)
		}
		params = append(params, ident(p.Name)+": "+ty)
	}

	ret := ""
	if len(fn.Results) == 1 {
		ty, err := typeRef(fn.Results[0].Type)
		if err != nil {
			return errors.At(err, fn.Name, fn.Results[0].Name)
		}
		ret = ": " + ty
	}

	in := newInterp(g, fn, name)
	if err := abi.Call[string](fn, g.importModule(m), in); err != nil {
		return err
	}

	funcDoc(b, fn)
	if safe {
		fmt.Fprintf(b, "fun %s(%s)%s {\n", name, strings.Join(params, ", "), ret)
		b.WriteString("    withScopedMemoryAllocator { allocator ->\n")
		if body := in.body(); body != "" {
			b.WriteString(indent(body, "        "))
			b.WriteByte('\n')
		}
		b.WriteString("    }\n")
	} else {
		fmt.Fprintf(b, "internal fun %s%s(%s)%s {\n", unsafePrefix, name, strings.Join(params, ", "), ret)
		if body := in.body(); body != "" {
			b.WriteString(indent(body, "    "))
			b.WriteByte('\n')
		}
	}
	b.WriteString("}\n")
	return nil
}

func (g *Generator) renderRawImport(b *strings.Builder, m *idl.Module, fn *idl.Function, name string) error {
	sig, err := fn.WasmSignature()
	if err != nil {
		return err
	}

	args := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		args[i] = fmt.Sprintf("arg%d: %s", i, wasmType(p))
	}

	ret := ""
	switch {
	case fn.NoReturn:
		ret = ": Unit"
	case len(sig.Results) == 1:
		ret = ": " + wasmType(sig.Results[0])
	}

	kdoc(b, fn.Docs, "")
	fmt.Fprintf(b, "@WasmImport(%q, %q)\n", g.importModule(m), fn.Symbol())
	fmt.Fprintf(b, "private external fun %s%s(%s)%s\n", rawPrefix, name, strings.Join(args, ", "), ret)
	return nil
}
