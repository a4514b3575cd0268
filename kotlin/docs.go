package kotlin

import (
	"strings"

	"github.com/wippyai/witx-bindgen/idl"
)

// kdoc renders docs as a KDoc block, or nothing when docs are blank.
func kdoc(b *strings.Builder, docs, indent string) {
	if strings.TrimSpace(docs) == "" {
		return
	}
	b.WriteString(indent + "/**\n")
	writeDocLines(b, docs, indent)
	b.WriteString(indent + " */\n")
}

func writeDocLines(b *strings.Builder, docs, indent string) {
	for _, line := range strings.Split(strings.TrimRight(docs, "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + line + "\n")
	}
}

// funcDoc renders the function docs followed by @param and @return tags.
func funcDoc(b *strings.Builder, fn *idl.Function) {
	var tags []string
	for _, p := range fn.Params {
		if d := strings.TrimSpace(p.Docs); d != "" {
			tags = append(tags, "@param "+ident(p.Name)+" "+firstLine(d))
		}
	}
	for _, r := range fn.Results {
		if d := strings.TrimSpace(r.Docs); d != "" {
			tags = append(tags, "@return "+firstLine(d))
		}
	}

	hasDocs := strings.TrimSpace(fn.Docs) != ""
	if !hasDocs && len(tags) == 0 {
		return
	}
	b.WriteString("/**\n")
	if hasDocs {
		writeDocLines(b, fn.Docs, "")
		if len(tags) > 0 {
			b.WriteString(" *\n")
		}
	}
	for _, t := range tags {
		b.WriteString(" * " + t + "\n")
	}
	b.WriteString(" */\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
