package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/witx-bindgen/abi"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/idl/witload"
	"github.com/wippyai/witx-bindgen/kotlin"
	"github.com/wippyai/witx-bindgen/memory"
	"github.com/wippyai/witx-bindgen/verify"
	"github.com/wippyai/witx-bindgen/wasi/preview1"
)

type options struct {
	witFile      string
	builtin      string
	output       string
	pkg          string
	importModule string
	errorClass   string
	naming       string
	check        bool
	layout       bool
	verify       bool
	interactive  bool
	verbose      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.witFile, "wit", "", "Path to a WIT JSON document (wasm-tools component wit --json)")
	flag.StringVar(&opts.builtin, "builtin", "", "Built-in document: preview1")
	flag.StringVar(&opts.output, "o", "", "Output file (stdout if empty)")
	flag.StringVar(&opts.pkg, "package", "", "Kotlin package of the generated file")
	flag.StringVar(&opts.importModule, "import-module", "", "Override the wasm import module of every function")
	flag.StringVar(&opts.errorClass, "error-class", "", "Exception class thrown with result errors")
	flag.StringVar(&opts.naming, "naming", "flat", "Function naming: flat or prefixed")
	flag.BoolVar(&opts.check, "check", false, "Fail if the output file differs from the generated text")
	flag.BoolVar(&opts.layout, "layout", false, "Print the memory layout of every named type")
	flag.BoolVar(&opts.verify, "verify", false, "Round-trip sample values of every type through a wazero memory")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if opts.witFile == "" && opts.builtin == "" {
		fmt.Fprintln(os.Stderr, "Usage: witx-bindgen -builtin preview1 [-o file.kt] [-package name] [-naming flat|prefixed]")
		fmt.Fprintln(os.Stderr, "       witx-bindgen -wit <file.json> [-o file.kt] [-check]")
		fmt.Fprintln(os.Stderr, "       witx-bindgen -builtin preview1 -layout | -verify | -i")
		os.Exit(1)
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	installLogger(logger)

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func installLogger(l *zap.Logger) {
	abi.SetLogger(l.Named("abi"))
	kotlin.SetLogger(l.Named("kotlin"))
	verify.SetLogger(l.Named("verify"))
	witload.SetLogger(l.Named("witload"))
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	doc, err := loadDocument(opts.witFile, opts.builtin)
	if err != nil {
		return err
	}

	cfg, err := opts.config()
	if err != nil {
		return err
	}

	if opts.interactive {
		return runInteractive(doc, cfg)
	}
	if opts.layout {
		return printLayout(stdout, doc)
	}
	if opts.verify {
		return runVerify(ctx, stdout, doc)
	}

	text, err := kotlin.Generate(doc, cfg)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if opts.check {
		return checkOutput(opts.output, text)
	}
	if opts.output == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	return writeOutput(opts.output, text)
}

func (o options) config() (kotlin.Config, error) {
	naming, err := kotlin.ParseNamingMode(o.naming)
	if err != nil {
		return kotlin.Config{}, err
	}
	return kotlin.Config{
		Package:      o.pkg,
		ImportModule: o.importModule,
		ErrorClass:   o.errorClass,
		Naming:       naming,
	}, nil
}

// loadDocument reads the WIT document at witFile, or the named built-in
// document. Exactly one must be given.
func loadDocument(witFile, builtin string) (*idl.Document, error) {
	switch {
	case witFile != "" && builtin != "":
		return nil, fmt.Errorf("-wit and -builtin are mutually exclusive")
	case witFile != "":
		return witload.Load(witFile)
	}
	switch builtin {
	case "preview1", "wasi_snapshot_preview1":
		return preview1.Document(), nil
	}
	return nil, fmt.Errorf("unknown built-in document %q (want preview1)", builtin)
}

// fingerprintSuffix names the file written next to the output holding the
// xxhash of the text as generated.
const fingerprintSuffix = ".xxh64"

func fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// writeOutput writes text to path and its fingerprint beside it.
func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	stamp := fingerprint([]byte(text)) + "\n"
	if err := os.WriteFile(path+fingerprintSuffix, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("write fingerprint: %w", err)
	}
	return nil
}

// checkOutput fails when the contents of path differ from text. The stored
// fingerprint tells a hand-edited file apart from one generated from an older
// document.
func checkOutput(path, text string) error {
	if path == "" {
		return fmt.Errorf("-check requires -o")
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read output: %w", err)
	}
	if bytes.Equal(existing, []byte(text)) {
		return nil
	}
	stamp, err := os.ReadFile(path + fingerprintSuffix)
	if err == nil && strings.TrimSpace(string(stamp)) != fingerprint(existing) {
		return fmt.Errorf("%s was edited after generation, regenerate it", path)
	}
	return fmt.Errorf("%s is out of date, regenerate it", path)
}

// runVerify round-trips samples of every declared type through a one-page
// wazero memory and prints a table of the results.
func runVerify(ctx context.Context, w io.Writer, doc *idl.Document) error {
	mem, err := memory.NewWazero(ctx, 1)
	if err != nil {
		return fmt.Errorf("create memory: %w", err)
	}
	defer mem.Close(ctx)

	results, first := verify.RoundTrip(doc, mem, memory.ArenaFor(mem, 0))
	if err := printVerify(w, results); err != nil {
		return err
	}
	if first != nil {
		return fmt.Errorf("verify: %w", first)
	}
	return nil
}
