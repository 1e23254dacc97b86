package front

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	// Front is the parser and code generator state for one program.
	Front struct {
		b []byte // program text, spaces stripped
		i int

		reg  ir.Reg // last allocated register
		code *ir.Code

		tr tlog.Span
	}

	UnexpectedTokenError struct {
		Pos  int
		Got  byte
		Rule string
		Want string
	}

	// PartialReadError means the program was followed by more text.
	PartialReadError struct {
		End int
	}

	Spaces uint64
)

var ErrUnexpectedEOF = errors.New("unexpected end of program input")

var SpaceAll = NewSpaces(' ', '\t', '\n', '\v', '\f', '\r')

// Compile parses text and returns generated code.
// Nothing is returned if the program is malformed.
func Compile(ctx context.Context, text []byte) (*ir.Code, error) {
	return New(text).Compile(ctx)
}

func New(text []byte) *Front {
	return &Front{
		b:    SpaceAll.Strip(text),
		code: ir.NewCode(),
	}
}

func (f *Front) Compile(ctx context.Context) (code *ir.Code, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "front: compile", "size", len(f.b))
	defer tr.Finish("err", &err)

	f.tr = tr

	err = f.program()
	if err != nil {
		return nil, err
	}

	tr.Printw("compiled", "instrs", f.code.Len(), "regs", f.reg)

	return f.code, nil
}

func (f *Front) tok() (byte, error) {
	if f.i >= len(f.b) {
		return 0, ErrUnexpectedEOF
	}

	return f.b[f.i], nil
}

// next moves to the next token.
// Landing on the end of input is an error,
// the program ends with '.' which is never skipped.
func (f *Front) next() error {
	if f.i >= len(f.b) {
		return ErrUnexpectedEOF
	}

	f.i++

	if f.i >= len(f.b) {
		return ErrUnexpectedEOF
	}

	return nil
}

func (f *Front) newReg() ir.Reg {
	f.reg++

	return f.reg
}

func (f *Front) emit(x ir.Instr) {
	f.tr.V("front_emit").Printw("emit", "pos", f.i, "instr", x)

	f.code.Append(x)
}

func (f *Front) unexpected(rule, want string) error {
	return UnexpectedTokenError{
		Pos:  f.i,
		Got:  f.b[f.i],
		Rule: rule,
		Want: want,
	}
}

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s: unexpected symbol %q at %d, expected %s", e.Rule, e.Got, e.Pos, e.Want)
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("text after end of program at %d", e.End)
}

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Is(c byte) bool {
	return c < 64 && s&(1<<c) != 0
}

// Strip returns a copy of b without space characters.
func (s Spaces) Strip(b []byte) []byte {
	r := make([]byte, 0, len(b))

	for _, c := range b {
		if !s.Is(c) {
			r = append(r, c)
		}
	}

	return r
}
