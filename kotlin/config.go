package kotlin

import (
	"fmt"
	"strings"

	"github.com/wippyai/witx-bindgen/errors"
)

// NamingMode controls how wrapper and raw import names are derived.
type NamingMode uint8

const (
	// Flat names functions by their interface name alone.
	Flat NamingMode = iota
	// Prefixed prepends the snake_case module name, for documents that
	// import several modules into one package.
	Prefixed
)

func (m NamingMode) String() string {
	switch m {
	case Flat:
		return "flat"
	case Prefixed:
		return "prefixed"
	}
	return fmt.Sprintf("naming(%d)", uint8(m))
}

// ParseNamingMode parses "flat" or "prefixed".
func ParseNamingMode(s string) (NamingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat":
		return Flat, nil
	case "prefixed":
		return Prefixed, nil
	}
	return Flat, errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("unknown naming mode %q (want flat or prefixed)", s))
}

// Config holds generation options. It is resolved once per run.
type Config struct {
	// Package is the Kotlin package of the generated file.
	Package string
	// ImportModule overrides the wasm import namespace of every module.
	// Empty uses each module's own import name.
	ImportModule string
	// ErrorClass is thrown with the lifted error payload of a result.
	ErrorClass string
	Naming     NamingMode
}

// DefaultConfig returns the configuration used for WASI bindings.
func DefaultConfig() Config {
	return Config{
		Package:    "kotlinx.wasi",
		ErrorClass: "WasiError",
		Naming:     Flat,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Package == "" {
		c.Package = d.Package
	}
	if c.ErrorClass == "" {
		c.ErrorClass = d.ErrorClass
	}
	return c
}
