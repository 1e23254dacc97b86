package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/format"
	"github.com/slowlang/tinyl/compiler/front"
	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/opt"
)

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, text)
}

// Compile translates tinyL program into serialized code.
func Compile(ctx context.Context, text []byte) (obj []byte, err error) {
	code, err := front.Compile(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	obj, err = format.Format(ctx, nil, code)
	if err != nil {
		return nil, errors.Wrap(err, "format")
	}

	return obj, nil
}

// Optimize removes dead instructions from serialized code.
func Optimize(ctx context.Context, text []byte) (obj []byte, err error) {
	code, err := Load(ctx, text)
	if err != nil {
		return nil, err
	}

	err = opt.Optimize(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "optimize")
	}

	obj, err = format.Format(ctx, nil, code)
	if err != nil {
		return nil, errors.Wrap(err, "format")
	}

	return obj, nil
}

// Load parses serialized code.
func Load(ctx context.Context, text []byte) (*ir.Code, error) {
	code, err := format.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse code")
	}

	return code, nil
}
