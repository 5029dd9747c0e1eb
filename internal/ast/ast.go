// Package ast defines the decoded-module representation the interpreter core
// consumes. Producing this tree from the WebAssembly binary or text format,
// and validating it, are the job of an external decoder/validator; this core
// only walks an already-built tree. See spec.md §1.
package ast

// ValueType is one of the four numeric value types the core supports.
type ValueType byte

const (
	ValueTypeI32 ValueType = iota
	ValueTypeI64
	ValueTypeF32
	ValueTypeF64
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// FuncType is a function signature: an ordered list of parameter types and
// an ordered list of result types. Per spec.md §3, len(Results) <= 1 here;
// the multi-value proposal is a non-goal.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// Index is a namespace-relative index (function, table, memory, global,
// type, local, or label index, depending on context).
type Index = uint32

// ExternType tags the four kinds of importable/exportable entity.
type ExternType byte

const (
	ExternTypeFunc ExternType = iota
	ExternTypeTable
	ExternTypeMemory
	ExternTypeGlobal
)

// Limits bounds a Table or Memory: Min is required, Max is optional.
type Limits struct {
	Min uint32
	Max *uint32
}

// TableType describes a table import or table section entry.
type TableType struct {
	Limits Limits
}

// MemoryType describes a memory import or memory section entry, expressed
// in pages (see spec.md §6, PageSize = 65536).
type MemoryType struct {
	Limits Limits
}

// GlobalType describes a global's declared value type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Import names a two-level (module, name) import together with the type
// the importing module expects the resolved extern to have.
type Import struct {
	Module, Name string
	Type         ExternType
	FuncTypeIdx  Index // valid when Type == ExternTypeFunc
	Table        TableType
	Memory       MemoryType
	Global       GlobalType
}

// Export names a module-local index under an externally visible name.
type Export struct {
	Name  string
	Type  ExternType
	Index Index
}

// Func is a module-defined function: a type index, its declared locals
// (beyond the parameters, which come from the FuncType), and its body.
type Func struct {
	TypeIdx Index
	Locals  []ValueType
	Body    []Instr
}

// ElementSegment initializes a range of a table with function indices.
// OffsetExpr is a constant expression (spec.md §4.5) evaluated once, at
// instantiation.
type ElementSegment struct {
	TableIdx   Index
	OffsetExpr []Instr
	Init       []Index
}

// DataSegment initializes a range of linear memory with raw bytes.
type DataSegment struct {
	MemIdx     Index
	OffsetExpr []Instr
	Init       []byte
}

// Module is the decoded abstract syntax the core consumes. It carries no
// name or custom sections: those are decoder-facing concerns outside this
// core's boundary.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []Func
	Tables   []TableType
	Memories []MemoryType
	Globals  []GlobalDef
	Exports  []Export
	Start    *Index
	Elems    []ElementSegment
	Datas    []DataSegment
}

// GlobalDef is a module-defined global: its type plus a constant
// initializer expression.
type GlobalDef struct {
	Type GlobalType
	Init []Instr
}
