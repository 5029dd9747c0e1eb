// Package interp implements the small-step operational semantics over
// Wasm instructions spec.md §4.3-§4.5 describes: the stepper, the plain
// instruction interpreter, the call/invoke protocol, and the constant
// initializer evaluator. It is deliberately a tree-walker over the
// decoded ast.Instr stream rather than a bytecode compiler — the teacher's
// own internal/wasm/interpreter package compiles to a flat op stream with
// a program counter; spec.md §1 places that kind of compilation out of
// scope, so this stepper instead walks nested ast.Instr slices directly,
// the way spec.md §9's "administrative instructions as tagged variants"
// describes.
package interp

import (
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// DefaultBudget is the starting call budget (spec.md §6).
const DefaultBudget = 300

// CallBudget is the budget NewConfig starts from. It is a variable, not a
// constant, so Config.WithCallBudget (root package) can shrink it for
// tests that want to exercise ExhaustionError without 300 levels of
// nested frames; production embeddings leave it at DefaultBudget.
var CallBudget = DefaultBudget

// SetCallBudget overrides CallBudget — Config.WithCallBudget's underlying
// primitive.
func SetCallBudget(n int) { CallBudget = n }

// Frame is a call activation: the owning module (for local/global/table/
// memory resolution) and the locals themselves (spec.md §3).
type Frame struct {
	ModRef rt.ModuleRef
	Locals []*rt.Cell
}

// Config bundles the store, the currently executing frame, and the
// remaining call budget — spec.md §3's Config.
type Config struct {
	Store  *rt.Store
	Frame  *Frame
	Budget int
}

// NewConfig starts a Config with the current call budget (CallBudget).
func NewConfig(store *rt.Store, frame *Frame) *Config {
	return &Config{Store: store, Frame: frame, Budget: CallBudget}
}

// AdminKind discriminates the stepper's administrative-instruction
// alphabet (spec.md §3 AdminInstr).
type AdminKind byte

const (
	AdminPlain AdminKind = iota
	AdminInvoke
	AdminTrapping
	AdminReturning
	AdminBreaking
	AdminLabel
	AdminFramed
)

// AdminInstr is the stepper's working alphabet. Only the fields relevant
// to Kind are populated, mirroring ast.Instr's single-struct approach
// rather than one Go type per variant — the stepper's dispatch is then a
// single switch, matching the shape of spec.md §4.3's case analysis.
type AdminInstr struct {
	Kind AdminKind

	// AdminPlain
	Plain  ast.Instr
	Region rt.Region

	// AdminInvoke
	Func rt.ModuleFunc

	// AdminTrapping
	Msg string

	// AdminReturning / AdminBreaking
	Values []rt.Value
	Depth  uint32 // AdminBreaking only

	// AdminLabel
	Arity int
	Cont  []AdminInstr // prepended to the outer stream on a break to depth 0
	Inner *Code

	// AdminFramed
	FrameArity int
	ActFrame   *Frame
}

// Code is the evaluator's working state: an operand stack and the pending
// administrative-instruction stream (spec.md §3). The stack's top is its
// last element — idiomatic for a Go slice — rather than its first, as the
// source's list representation has it; every push/pop below preserves the
// LIFO contract spec.md §3 actually cares about.
type Code struct {
	Values []rt.Value
	Instrs []AdminInstr
}

// NewCode builds a Code from an initial stack (bottom-to-top order) and an
// instruction stream.
func NewCode(values []rt.Value, instrs []AdminInstr) *Code {
	return &Code{Values: values, Instrs: instrs}
}

func (c *Code) Push(v rt.Value) { c.Values = append(c.Values, v) }

// Pop removes and returns the top of the value stack.
func (c *Code) Pop() (rt.Value, bool) {
	if len(c.Values) == 0 {
		return rt.Value{}, false
	}
	v := c.Values[len(c.Values)-1]
	c.Values = c.Values[:len(c.Values)-1]
	return v, true
}

// PopN removes and returns the top n values in bottom-to-top order (i.e.
// the order they'd be pushed back in to restore the stack).
func (c *Code) PopN(n int) ([]rt.Value, bool) {
	if len(c.Values) < n {
		return nil, false
	}
	split := len(c.Values) - n
	vs := append([]rt.Value(nil), c.Values[split:]...)
	c.Values = c.Values[:split]
	return vs, true
}

func (c *Code) PushN(vs []rt.Value) { c.Values = append(c.Values, vs...) }

// PrependInstrs inserts is at the front of the instruction stream — the
// deque "short prepend" operation spec.md §9 calls out.
func (c *Code) PrependInstrs(is ...AdminInstr) {
	if len(is) == 0 {
		return
	}
	c.Instrs = append(append([]AdminInstr(nil), is...), c.Instrs...)
}

func plainInstrs(is []ast.Instr, r rt.Region) []AdminInstr {
	out := make([]AdminInstr, len(is))
	for i, ins := range is {
		out[i] = AdminInstr{Kind: AdminPlain, Plain: ins, Region: r}
	}
	return out
}
