package interp

import "strconv"

// Trap message strings, verbatim per spec.md §6 — used by conformance
// tests, so the text must match exactly. The memory- and global-related
// messages live in internal/rt (rt.MsgOOBMemory, rt.MsgImmutableGlobal and
// siblings): they're raised from rt.MemoryInstance/rt.GlobalInstance,
// outside this package.
const (
	msgUnreachable        = "unreachable executed"
	msgIndirectMismatch   = "indirect call type mismatch"
	msgCallStackExhausted = "call stack exhausted"
)

func msgUninitializedElement(i uint32) string {
	return "uninitialized element " + strconv.FormatUint(uint64(i), 10)
}
