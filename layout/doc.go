// Package layout computes the linear-memory layout of interface types.
//
// Every type has a size and an alignment. Composite types additionally carry
// member offsets (records) or tag and payload placement (variants).
//
// # Layout Rules
//
//   - Builtins: size equals alignment (u8=1, u16=2, u32=4, u64=8); char,
//     usize, handles and pointers are 4-byte integers
//   - Records: members in declared order, each aligned to its own alignment,
//     total size rounded up to the largest member alignment
//   - Bitflags: one integer of the smallest width holding a bit per member
//   - Variants: tag of the smallest width enumerating all cases, followed by
//     a single payload slot shared by every case
//   - Lists: not laid out; a list nested in a composite is unsupported
//
// # Usage
//
//	c := layout.NewCalculator()
//	info, err := c.Calculate(idl.Ref(fdstat))
//	// info.Size, info.Align, info.Offsets
package layout
