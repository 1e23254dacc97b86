package eval

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	// Input supplies values for READ.
	Input interface {
		Read(v ir.Var) (int64, error)
	}

	// Output receives values of WRITE.
	Output interface {
		Write(v ir.Var, x int64) error
	}

	// Machine holds register and variable values.
	// Variables start at zero.
	// Registers are kept by number, only those assigned.
	Machine struct {
		regs map[ir.Reg]int64

		vars [ir.LastVar - ir.FirstVar + 1]int64
	}

	// Ints reads values in order.
	Ints []int64

	// Record collects written values.
	Record struct {
		Vars   []ir.Var
		Values []int64
	}
)

var ErrNoInput = errors.New("no more input")

// Run executes code from head to tail.
func Run(ctx context.Context, code *ir.Code, in Input, out Output) (err error) {
	var m Machine

	return m.Run(ctx, code, in, out)
}

func (m *Machine) Run(ctx context.Context, code *ir.Code, in Input, out Output) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "eval: run", "instrs", code.Len())
	defer tr.Finish("err", &err)

	n := 0

	for id := code.Head(); id != ir.Nil; id = code.Next(id) {
		x := code.At(id)

		err = m.Step(*x, in, out)
		if err != nil {
			return errors.Wrap(err, "instr %d: %v", n, x)
		}

		tr.V("eval_step").Printw("step", "n", n, "instr", x)

		n++
	}

	return nil
}

// Step executes one instruction.
func (m *Machine) Step(x ir.Instr, in Input, out Output) (err error) {
	if err = x.Check(); err != nil {
		return err
	}

	a := x.Args

	switch x.Op {
	case ir.OpLoad:
		d, _ := x.Def()
		m.set(d, m.Var(a[1].Var()))
	case ir.OpLoadI:
		d, _ := x.Def()
		m.set(d, int64(a[1].Imm()))
	case ir.OpStore:
		v, err := m.Reg(a[1].Reg())
		if err != nil {
			return err
		}

		m.vars[a[0].Var()-ir.FirstVar] = v
	case ir.OpRead:
		v, err := in.Read(a[0].Var())
		if err != nil {
			return errors.Wrap(err, "read %v", a[0].Var())
		}

		m.vars[a[0].Var()-ir.FirstVar] = v
	case ir.OpWrite:
		err = out.Write(a[0].Var(), m.Var(a[0].Var()))
		if err != nil {
			return errors.Wrap(err, "write %v", a[0].Var())
		}
	default:
		u := x.Uses()

		l, err := m.Reg(u[0])
		if err != nil {
			return err
		}

		r, err := m.Reg(u[1])
		if err != nil {
			return err
		}

		d, _ := x.Def()
		m.set(d, binop(x.Op, l, r))
	}

	return nil
}

// Reg returns register value. Reading unassigned register is an error.
func (m *Machine) Reg(r ir.Reg) (int64, error) {
	x, ok := m.regs[r]
	if !ok {
		return 0, errors.New("undefined register: %v", r)
	}

	return x, nil
}

func (m *Machine) Var(v ir.Var) int64 {
	return m.vars[v-ir.FirstVar]
}

func (m *Machine) set(r ir.Reg, x int64) {
	if m.regs == nil {
		m.regs = make(map[ir.Reg]int64)
	}

	m.regs[r] = x
}

func binop(op ir.Opcode, l, r int64) int64 {
	switch op {
	case ir.OpAdd:
		return l + r
	case ir.OpSub:
		return l - r
	case ir.OpMul:
		return l * r
	case ir.OpAnd:
		return l & r
	case ir.OpXor:
		return l ^ r
	}

	panic(op)
}

func (s *Ints) Read(v ir.Var) (int64, error) {
	if len(*s) == 0 {
		return 0, ErrNoInput
	}

	x := (*s)[0]
	*s = (*s)[1:]

	return x, nil
}

func (r *Record) Write(v ir.Var, x int64) error {
	r.Vars = append(r.Vars, v)
	r.Values = append(r.Values, x)

	return nil
}
