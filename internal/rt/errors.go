package rt

import (
	"errors"
	"fmt"
)

// Kind categorizes an EvalError per spec.md §7's taxonomy.
type Kind byte

const (
	KindLink Kind = iota
	KindTrap
	KindCrash
	KindMemory
	KindTable
	KindGlobal
	KindExhaustion
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "LinkError"
	case KindTrap:
		return "TrapError"
	case KindCrash:
		return "CrashError"
	case KindMemory:
		return "MemoryError"
	case KindTable:
		return "TableError"
	case KindGlobal:
		return "GlobalError"
	case KindExhaustion:
		return "ExhaustionError"
	default:
		return "NumericError"
	}
}

// Memory trap/link message strings, verbatim per spec.md §6 — used by
// conformance tests, so the text must match exactly. Exported because they
// are raised here in internal/rt, not in the stepper: MemoryInstance's
// loads and stores return MsgOOBMemory traps, and NewMemory's limit errors
// are wrapped into LinkErrors by instantiate.
const (
	MsgOOBMemory          = "out of bounds memory access"
	MsgMemorySizeOverflow = "memory size overflow"
	MsgMemorySizeLimit    = "memory size limit reached"
	MsgMemoryTypeMismatch = "type mismatch at memory access"
	MsgOutOfMemory        = "out of memory"
)

// Global trap message strings, verbatim per spec.md §6, shared by
// NewGlobal and GlobalInstance.Set (internal/rt/global.go).
const (
	MsgImmutableGlobal    = "write to immutable global"
	MsgGlobalTypeMismatch = "type mismatch at global write"
)

// Region is a source-code byte span, or the zero value ("default") when no
// originating region exists (spec.md §6).
type Region struct {
	Start, End uint32
	Known      bool
}

// DefaultRegion is used where the caller has no originating AST position,
// e.g. invoking a host function directly.
var DefaultRegion = Region{}

// EvalError is the single error type every core operation returns,
// carrying the region and kind spec.md §6-7 require. It implements error
// the way the teacher's internal/wasm/errors.go sentinels do — plain,
// wrappable, comparable by Kind rather than by pointer identity.
type EvalError struct {
	Kind   Kind
	Region Region
	Msg    string
	Cause  error
}

func (e *EvalError) Error() string {
	if e.Region.Known {
		return fmt.Sprintf("%s at %d-%d: %s", e.Kind, e.Region.Start, e.Region.End, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *EvalError) Unwrap() error { return e.Cause }

func newErr(k Kind, r Region, msg string) *EvalError {
	return &EvalError{Kind: k, Region: r, Msg: msg}
}

func LinkError(r Region, msg string) *EvalError      { return newErr(KindLink, r, msg) }
func TrapError(r Region, msg string) *EvalError      { return newErr(KindTrap, r, msg) }
func CrashError(msg string) *EvalError               { return newErr(KindCrash, DefaultRegion, msg) }
func MemoryErrorf(r Region, format string, args ...any) *EvalError {
	return newErr(KindMemory, r, fmt.Sprintf(format, args...))
}
func TableErrorf(r Region, format string, args ...any) *EvalError {
	return newErr(KindTable, r, fmt.Sprintf(format, args...))
}
func GlobalError(r Region, msg string) *EvalError { return newErr(KindGlobal, r, msg) }
func ExhaustionError(msg string) *EvalError        { return newErr(KindExhaustion, DefaultRegion, msg) }
func NumericError(msg string) *EvalError           { return newErr(KindNumeric, DefaultRegion, msg) }

// IsTrap reports whether err is a TrapError, the only EvalError kind a
// well-formed embedding should treat as a recoverable runtime failure
// rather than a bug (spec.md §7).
func IsTrap(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Kind == KindTrap
}
