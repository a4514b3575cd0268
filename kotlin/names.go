package kotlin

import (
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/wippyai/witx-bindgen/idl"
)

const (
	rawPrefix    = "_raw_wasm__"
	unsafePrefix = "__unsafe__"
)

var (
	snakeCase  = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	lowerSnake = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// IsSnakeCase reports whether name is lower snake_case.
func IsSnakeCase(name string) bool { return snakeCase.MatchString(name) }

var keywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true, "val": true,
	"var": true, "when": true, "while": true,
}

// ident returns name usable as a Kotlin identifier.
func ident(name string) string {
	if keywords[name] {
		return name + "_"
	}
	return name
}

// typeName returns the CamelCase name of a declaration, prefixed when the
// declared type is unsafe.
func typeName(nt *idl.NamedType) string {
	name := strcase.ToCamel(nt.Name)
	if !nt.IsSafe() {
		return unsafePrefix + name
	}
	return name
}

// shouty returns the SCREAMING_SNAKE_CASE form of name. Lowercase snake names
// keep their word boundaries; strcase would also split letters from digits.
func shouty(name string) string {
	if lowerSnake.MatchString(name) {
		return strings.ToUpper(name)
	}
	return strcase.ToScreamingSnake(name)
}

// enumCase returns the constant name of an enum case.
func enumCase(name string) string {
	s := shouty(name)
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	return s
}

// caseClass returns the nested class name of a sealed class case.
func caseClass(name string) string {
	s := strcase.ToCamel(name)
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	return s
}

// moduleIdent turns a module name such as "wasi:cli/env@0.2.0" into a
// snake_case prefix.
func moduleIdent(name string) string {
	var b strings.Builder
	under := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			under = false
			continue
		}
		if !under && b.Len() > 0 {
			b.WriteByte('_')
			under = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
