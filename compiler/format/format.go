package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/tinyl/compiler/ir"
)

// Format appends code to b, one instruction per line:
//
//	LOADI r1 #3
//	LOAD r2 a
//	MUL r4 r2 r3
//	STORE c r5
//	WRITE d
//
// Empty fields are not written.
func Format(ctx context.Context, b []byte, code *ir.Code) (_ []byte, err error) {
	for id := code.Head(); id != ir.Nil; id = code.Next(id) {
		b, err = formatInstr(ctx, b, *code.At(id))
		if err != nil {
			return nil, errors.Wrap(err, "instr %d", id)
		}
	}

	return b, nil
}

func formatInstr(ctx context.Context, b []byte, x ir.Instr) (_ []byte, err error) {
	if err = x.Check(); err != nil {
		return nil, err
	}

	b = append(b, x.Op.String()...)

	for _, a := range x.Args[:x.Op.Arity()] {
		b = append(b, ' ')
		b = formatOperand(b, a)
	}

	b = append(b, '\n')

	return b, nil
}

func formatOperand(b []byte, a ir.Operand) []byte {
	switch a.Kind {
	case ir.KindReg:
		return hfmt.Appendf(b, "r%d", a.Val)
	case ir.KindVar:
		return append(b, byte(a.Val))
	case ir.KindImm:
		return hfmt.Appendf(b, "#%d", a.Val)
	default:
		return append(b, Empty)
	}
}
