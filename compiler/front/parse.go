package front

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"

	"github.com/slowlang/tinyl/compiler/ir"
)

/*
	program   ::= stmtList '.'
	stmtList  ::= stmt moreStmts
	moreStmts ::= ';' stmtList | ε
	stmt      ::= assign | '!' variable | '#' variable
	assign    ::= variable '=' expr
	expr      ::= op expr expr | variable | digit    op is one of + - * & ^
	variable  ::= a | b | c | d | e
	digit     ::= 0 | 1 | ... | 9
*/

var binops = map[byte]ir.Opcode{
	'+': ir.OpAdd,
	'-': ir.OpSub,
	'*': ir.OpMul,
	'&': ir.OpAnd,
	'^': ir.OpXor,
}

func (f *Front) program() (err error) {
	err = f.stmtList()
	if err != nil {
		return err
	}

	t, err := f.tok()
	if err != nil {
		return err
	}

	if t != '.' {
		return f.unexpected("program", "'.'")
	}

	// Stricter than stopping at the first '.': nothing may follow it.
	if end := f.i + 1; end != len(f.b) {
		return PartialReadError{End: end}
	}

	return nil
}

func (f *Front) stmtList() (err error) {
	err = f.stmt()
	if err != nil {
		return err
	}

	return f.moreStmts()
}

func (f *Front) moreStmts() (err error) {
	t, err := f.tok()
	if err != nil {
		return err
	}

	switch t {
	case ';':
		if err = f.next(); err != nil {
			return err
		}

		return f.stmtList()
	case '.':
		return nil
	default:
		return f.unexpected("morestmts", "';' or '.'")
	}
}

func (f *Front) stmt() (err error) {
	t, err := f.tok()
	if err != nil {
		return err
	}

	f.trace("stmt")

	switch {
	case ir.IsVar(t):
		return f.assign()
	case t == '!':
		if err = f.next(); err != nil {
			return err
		}

		return f.read()
	case t == '#':
		if err = f.next(); err != nil {
			return err
		}

		return f.print()
	default:
		return f.unexpected("stmt", "variable, '!' or '#'")
	}
}

func (f *Front) assign() (err error) {
	v, err := f.varName("assign")
	if err != nil {
		return err
	}

	t, err := f.tok()
	if err != nil {
		return err
	}

	if t != '=' {
		return f.unexpected("assign", "'='")
	}

	if err = f.next(); err != nil {
		return err
	}

	r, err := f.expr()
	if err != nil {
		return errors.Wrap(err, "assign %v", v)
	}

	f.emit(ir.Store(v, r))

	return nil
}

func (f *Front) read() (err error) {
	v, err := f.varName("read")
	if err != nil {
		return err
	}

	f.emit(ir.Read(v))

	return nil
}

func (f *Front) print() (err error) {
	v, err := f.varName("print")
	if err != nil {
		return err
	}

	f.emit(ir.Write(v))

	return nil
}

// expr returns the register holding the expression value.
func (f *Front) expr() (r ir.Reg, err error) {
	t, err := f.tok()
	if err != nil {
		return 0, err
	}

	f.trace("expr")

	if op, ok := binops[t]; ok {
		if err = f.next(); err != nil {
			return 0, err
		}

		l, err := f.expr()
		if err != nil {
			return 0, err
		}

		rr, err := f.expr()
		if err != nil {
			return 0, err
		}

		r = f.newReg()
		f.emit(ir.Bin(op, r, l, rr))

		return r, nil
	}

	switch {
	case ir.IsVar(t):
		return f.variable()
	case isDigit(t):
		return f.digit()
	default:
		return 0, f.unexpected("expr", "operator, variable or digit")
	}
}

func (f *Front) variable() (r ir.Reg, err error) {
	v, err := f.varName("variable")
	if err != nil {
		return 0, err
	}

	r = f.newReg()
	f.emit(ir.Load(r, v))

	return r, nil
}

func (f *Front) digit() (r ir.Reg, err error) {
	t, err := f.tok()
	if err != nil {
		return 0, err
	}

	if !isDigit(t) {
		return 0, f.unexpected("digit", "digit")
	}

	r = f.newReg()
	f.emit(ir.LoadI(r, ir.Imm(t-'0')))

	return r, f.next()
}

// varName consumes one variable token.
func (f *Front) varName(rule string) (v ir.Var, err error) {
	t, err := f.tok()
	if err != nil {
		return 0, err
	}

	if !ir.IsVar(t) {
		return 0, f.unexpected(rule, "variable")
	}

	return ir.Var(t), f.next()
}

func (f *Front) trace(rule string) {
	f.tr.V("front_rule").Printw("rule", "rule", rule, "pos", f.i, "tok", string(f.b[f.i:f.i+1]), "from", loc.Caller(1))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
