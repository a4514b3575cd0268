// Package verify checks computed layouts by marshalling values through a
// linear memory.
//
// Codec is a reference encoder that stores and loads dynamic values exactly
// where layout.Info places them: integers as their raw bits, records member
// by member, variants as a tag followed by the shared payload slot. RoundTrip
// stores zero, max and mid samples of every record, bitflags and variant
// declared in a document, loads them back and compares.
//
// Values are represented as:
//
//   - uint64 for integers, chars, handles, pointers and bitflags (raw bits)
//   - float32 and float64 for floats
//   - bool for the boolean variant
//   - Record for records and tuples, one element per member
//   - Case for enums and variants
package verify
