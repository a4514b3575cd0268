package witload

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// Load reads a WIT JSON file.
func Load(path string) (*idl.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads WIT JSON from r.
func Decode(r io.Reader) (*idl.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Load("read wit json", err)
	}

	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Load("decode wit json", err)
	}

	var raw rawResolve
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Load("decode interfaces", err)
	}
	if len(raw.Types) != len(res.TypeDefs) {
		return nil, errors.New(errors.PhaseLoad, errors.KindMismatch).
			Detail("%d types in json, %d decoded", len(raw.Types), len(res.TypeDefs)).
			Build()
	}

	return build(res, &raw)
}

// rawResolve is the part of the WIT JSON read directly: interface membership
// and function signatures.
type rawResolve struct {
	Interfaces []rawInterface `json:"interfaces"`
	Types      []rawTypeDef   `json:"types"`
	Packages   []rawPackage   `json:"packages"`
}

type rawInterface struct {
	Name      *string                `json:"name"`
	Types     map[string]int         `json:"types"`
	Functions map[string]rawFunction `json:"functions"`
	Package   *int                   `json:"package"`
	Docs      rawDocs                `json:"docs"`
}

type rawTypeDef struct {
	Name *string `json:"name"`
}

type rawPackage struct {
	Name string `json:"name"`
}

type rawFunction struct {
	Name   string          `json:"name"`
	Params []rawParam      `json:"params"`
	Result json.RawMessage `json:"result"`
	// Results is the multi-value form of older encoders.
	Results []rawParam `json:"results"`
	Docs    rawDocs    `json:"docs"`
}

type rawParam struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type rawDocs struct {
	Contents *string `json:"contents"`
}

func (d rawDocs) String() string {
	if d.Contents == nil {
		return ""
	}
	return *d.Contents
}

// snake converts a kebab-case WIT identifier.
func snake(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// funcName derives the snake_case name of a freestanding function, method,
// static function or constructor.
func funcName(name string) string {
	if !strings.HasPrefix(name, "[") {
		return snake(name)
	}
	end := strings.IndexByte(name, ']')
	if end < 0 {
		return snake(name)
	}
	kind, rest := name[1:end], name[end+1:]
	if kind == "constructor" {
		return snake(rest) + "_new"
	}
	return snake(strings.ReplaceAll(rest, ".", "_"))
}

// qualified returns the interface name qualified by its package, with and
// without the package version.
func qualified(pkg, iface string) (name, importName string) {
	if pkg == "" {
		return iface, iface
	}
	base, version, hasVersion := strings.Cut(pkg, "@")
	name = base + "/" + iface
	if hasVersion {
		return name, name + "@" + version
	}
	return name, name
}

func build(res *wit.Resolve, raw *rawResolve) (*idl.Document, error) {
	m := newMapper(res.TypeDefs)
	doc := &idl.Document{}

	owners := make(map[int]string)
	for _, iface := range raw.Interfaces {
		if iface.Name == nil {
			continue
		}
		for _, idx := range iface.Types {
			owners[idx] = *iface.Name
		}
	}

	used := make(map[string]bool)
	for i, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		name := snake(*td.Name)
		if used[name] {
			if owner, ok := owners[i]; ok {
				name = snake(owner) + "_" + name
			}
		}
		if used[name] {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidName).
				Path(name).
				Detail("duplicate type name").
				Build()
		}
		used[name] = true
		nt := &idl.NamedType{Name: name, Docs: td.Docs.Contents}
		m.named[td] = nt
		doc.Types = append(doc.Types, nt)
	}

	for _, td := range res.TypeDefs {
		nt, ok := m.named[td]
		if !ok {
			continue
		}
		r, err := m.kind(td)
		if err != nil {
			return nil, errors.At(err, nt.Name)
		}
		nt.Type = r
	}

	for _, iface := range raw.Interfaces {
		if iface.Name == nil {
			continue
		}
		pkg := ""
		if iface.Package != nil && *iface.Package < len(raw.Packages) {
			pkg = raw.Packages[*iface.Package].Name
		}
		name, importName := qualified(pkg, *iface.Name)
		mod := &idl.Module{Name: name, ImportName: importName, Docs: iface.Docs.String()}

		keys := make([]string, 0, len(iface.Functions))
		for k := range iface.Functions {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fn, err := m.function(iface.Functions[k])
			if err != nil {
				return nil, errors.At(err, name, k)
			}
			mod.Funcs = append(mod.Funcs, fn)
		}
		doc.Modules = append(doc.Modules, mod)
		Logger().Debug("loaded interface",
			zap.String("module", name),
			zap.Int("functions", len(mod.Funcs)))
	}

	Logger().Debug("loaded document",
		zap.Int("types", len(doc.Types)),
		zap.Int("modules", len(doc.Modules)))
	return doc, nil
}

func (m *mapper) function(f rawFunction) (*idl.Function, error) {
	fn := &idl.Function{
		Name:       funcName(f.Name),
		ImportName: f.Name,
		Docs:       f.Docs.String(),
	}
	if fn.ImportName == fn.Name {
		fn.ImportName = ""
	}

	for _, p := range f.Params {
		r, err := m.rawRef(p.Type)
		if err != nil {
			return nil, errors.At(err, p.Name)
		}
		fn.Params = append(fn.Params, &idl.Param{Name: snake(p.Name), Type: r})
	}

	if len(f.Result) > 0 && string(f.Result) != "null" {
		r, err := m.rawRef(f.Result)
		if err != nil {
			return nil, errors.At(err, "result")
		}
		fn.Results = append(fn.Results, &idl.Param{Name: "result", Type: r})
	}
	for i, p := range f.Results {
		r, err := m.rawRef(p.Type)
		if err != nil {
			return nil, errors.At(err, "result")
		}
		name := snake(p.Name)
		if name == "" {
			name = "result"
			if i > 0 {
				name = "result" + string(rune('0'+i))
			}
		}
		fn.Results = append(fn.Results, &idl.Param{Name: name, Type: r})
	}
	return fn, nil
}
