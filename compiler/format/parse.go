package format

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

// Empty may stand for an absent field in parsed text.
const Empty = '_'

// Parse reads code in the format written by Format.
// Opcodes may also be given by their numbers 0-9.
func Parse(ctx context.Context, text []byte) (code *ir.Code, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "format: parse", "size", len(text))
	defer tr.Finish("err", &err)

	code = ir.NewCode()

	for i, line := 0, 1; i < len(text); line++ {
		end := skipLine(text, i)

		x, ok, err := parseLine(text[i:end])
		if err != nil {
			return nil, errors.Wrap(err, "line %d", line)
		}

		if ok {
			code.Append(x)
		}

		i = end + 1
	}

	tr.Printw("parsed", "instrs", code.Len())

	return code, nil
}

func parseLine(b []byte) (x ir.Instr, ok bool, err error) {
	var words [4][]byte
	n := 0

	for i := skipSpaces(b, 0); i < len(b); i = skipSpaces(b, i) {
		if n == len(words) {
			return x, false, errors.New("too many fields")
		}

		j := skipWord(b, i)
		words[n] = b[i:j]
		n++

		i = j
	}

	if n == 0 {
		return x, false, nil
	}

	x.Op, err = ir.ParseOpcode(string(words[0]))
	if err != nil {
		return x, false, err
	}

	for k, w := range words[1:n] {
		x.Args[k], err = parseOperand(w)
		if err != nil {
			return x, false, errors.Wrap(err, "field%d", k+1)
		}
	}

	if err = x.Check(); err != nil {
		return x, false, err
	}

	return x, true, nil
}

func parseOperand(w []byte) (a ir.Operand, err error) {
	switch {
	case len(w) == 1 && w[0] == Empty:
		return ir.None, nil
	case len(w) == 1 && ir.IsVar(w[0]):
		return ir.Var(w[0]).Operand(), nil
	case len(w) > 1 && w[0] == 'r':
		v, err := strconv.Atoi(string(w[1:]))
		if err != nil {
			return a, errors.Wrap(err, "register")
		}

		return ir.Reg(v).Operand(), nil
	case len(w) > 1 && w[0] == '#':
		v, err := strconv.Atoi(string(w[1:]))
		if err != nil {
			return a, errors.Wrap(err, "immediate")
		}

		return ir.Imm(v).Operand(), nil
	default:
		return a, errors.New("bad operand: %q", w)
	}
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r':
			i++
			continue
		}

		break
	}

	return i
}

func skipWord(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r':
			return i
		}

		i++
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}
