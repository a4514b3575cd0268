// Package preview1 provides the interface document of a WASI
// snapshot-preview1 subset.
//
// The subset covers argument sizes, clocks, file descriptor status, reads,
// writes and seeks, preopens, randomness, yielding and process exit. It
// exercises every shape the generator supports: builtin aliases, enums with
// explicit tag widths, 16- and 64-bit bitflags, handles, records with
// pointer members (unsafe), lists of records, a variant with a payload and
// tuple results.
//
// Usage:
//
//	src, err := kotlin.Generate(preview1.Document(), kotlin.DefaultConfig())
package preview1
