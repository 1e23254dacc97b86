package ir

import (
	"fmt"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	Opcode uint8

	// Reg is a virtual register. Registers are numbered from 1
	// and each one is assigned by exactly one instruction.
	Reg int

	// Var is a program variable, one of a b c d e.
	Var byte

	// Imm is an immediate constant 0-9.
	Imm int

	Kind uint8

	// Operand is a tagged instruction field.
	// The zero Operand is the empty field.
	Operand struct {
		Kind Kind
		Val  int
	}

	Instr struct {
		Op   Opcode
		Args [3]Operand

		Critical bool
	}
)

const (
	OpLoad Opcode = iota
	OpLoadI
	OpStore
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpXor
	OpRead
	OpWrite

	numOpcodes
)

const (
	KindNone Kind = iota
	KindReg
	KindVar
	KindImm
)

const (
	FirstVar Var = 'a'
	LastVar  Var = 'e'
)

var None Operand

var opnames = [...]string{
	OpLoad:  "LOAD",
	OpLoadI: "LOADI",
	OpStore: "STORE",
	OpAdd:   "ADD",
	OpSub:   "SUB",
	OpMul:   "MUL",
	OpAnd:   "AND",
	OpXor:   "XOR",
	OpRead:  "READ",
	OpWrite: "WRITE",
}

// layout is the field kinds of each opcode.
var layout = [numOpcodes][3]Kind{
	OpLoad:  {KindReg, KindVar, KindNone},
	OpLoadI: {KindReg, KindImm, KindNone},
	OpStore: {KindVar, KindReg, KindNone},
	OpAdd:   {KindReg, KindReg, KindReg},
	OpSub:   {KindReg, KindReg, KindReg},
	OpMul:   {KindReg, KindReg, KindReg},
	OpAnd:   {KindReg, KindReg, KindReg},
	OpXor:   {KindReg, KindReg, KindReg},
	OpRead:  {KindVar, KindNone, KindNone},
	OpWrite: {KindVar, KindNone, KindNone},
}

func Load(dst Reg, v Var) Instr {
	return Instr{Op: OpLoad, Args: [3]Operand{dst.Operand(), v.Operand()}}
}

func LoadI(dst Reg, x Imm) Instr {
	return Instr{Op: OpLoadI, Args: [3]Operand{dst.Operand(), x.Operand()}}
}

func Store(v Var, src Reg) Instr {
	return Instr{Op: OpStore, Args: [3]Operand{v.Operand(), src.Operand()}}
}

// Bin is one of ADD SUB MUL AND XOR: dst := l op r.
func Bin(op Opcode, dst, l, r Reg) Instr {
	if !op.IsBinary() {
		panic(op)
	}

	return Instr{Op: op, Args: [3]Operand{dst.Operand(), l.Operand(), r.Operand()}}
}

func Read(v Var) Instr {
	return Instr{Op: OpRead, Args: [3]Operand{v.Operand()}}
}

func Write(v Var) Instr {
	return Instr{Op: OpWrite, Args: [3]Operand{v.Operand()}}
}

func ParseOpcode(s string) (Opcode, error) {
	for op, n := range opnames {
		if n == s {
			return Opcode(op), nil
		}
	}

	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Opcode(s[0] - '0'), nil
	}

	return 0, errors.New("unknown opcode: %q", s)
}

func (op Opcode) Valid() bool { return op < numOpcodes }

func (op Opcode) IsBinary() bool { return op >= OpAdd && op <= OpXor }

// Arity is the number of non-empty fields.
func (op Opcode) Arity() (n int) {
	for _, k := range layout[op] {
		if k != KindNone {
			n++
		}
	}

	return n
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}

	return opnames[op]
}

func IsVar(c byte) bool { return c >= byte(FirstVar) && c <= byte(LastVar) }

func (r Reg) Operand() Operand { return Operand{Kind: KindReg, Val: int(r)} }
func (v Var) Operand() Operand { return Operand{Kind: KindVar, Val: int(v)} }
func (x Imm) Operand() Operand { return Operand{Kind: KindImm, Val: int(x)} }

func (r Reg) String() string { return "r" + strconv.Itoa(int(r)) }
func (v Var) String() string { return string(rune(v)) }
func (x Imm) String() string { return "#" + strconv.Itoa(int(x)) }

func (o Operand) Empty() bool { return o.Kind == KindNone }

func (o Operand) Reg() Reg { return Reg(o.Val) }
func (o Operand) Var() Var { return Var(o.Val) }
func (o Operand) Imm() Imm { return Imm(o.Val) }

func (o Operand) String() string {
	switch o.Kind {
	case KindReg:
		return o.Reg().String()
	case KindVar:
		return o.Var().String()
	case KindImm:
		return o.Imm().String()
	case KindNone:
		return "_"
	default:
		return fmt.Sprintf("Operand(%d:%d)", o.Kind, o.Val)
	}
}

// Check reports whether fields match the opcode layout.
func (x Instr) Check() error {
	if !x.Op.Valid() {
		return errors.New("bad opcode: %d", int(x.Op))
	}

	for i, k := range layout[x.Op] {
		a := x.Args[i]

		if a.Kind != k {
			return errors.New("%v: field%d: expected %v, got %v", x.Op, i+1, k, a.Kind)
		}

		switch {
		case k == KindReg && a.Val < 1:
			return errors.New("%v: field%d: bad register: %d", x.Op, i+1, a.Val)
		case k == KindVar && !IsVar(byte(a.Val)):
			return errors.New("%v: field%d: bad variable: %d", x.Op, i+1, a.Val)
		case k == KindImm && (a.Val < 0 || a.Val > 9):
			return errors.New("%v: field%d: bad immediate: %d", x.Op, i+1, a.Val)
		}
	}

	return nil
}

// Def returns the register the instruction assigns.
func (x Instr) Def() (Reg, bool) {
	if layout[x.Op][0] != KindReg {
		return 0, false
	}

	return x.Args[0].Reg(), true
}

// Uses returns the source registers of the instruction.
func (x Instr) Uses() (r []Reg) {
	for i := 1; i < 3; i++ {
		if x.Args[i].Kind == KindReg {
			r = append(r, x.Args[i].Reg())
		}
	}

	return r
}

func (x Instr) String() string {
	s := x.Op.String()

	for _, a := range x.Args {
		if a.Empty() {
			break
		}

		s += " " + a.String()
	}

	return s
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "empty"
	case KindReg:
		return "register"
	case KindVar:
		return "variable"
	case KindImm:
		return "immediate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (o Operand) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if o.Empty() {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "%v", o)
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendKeyValue(b, "op", x.Op.String())
	b = e.AppendKeyValue(b, "text", x.String())
	b = e.AppendKeyValue(b, "critical", x.Critical)

	return b
}
