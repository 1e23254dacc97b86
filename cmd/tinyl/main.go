package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tebeka/atexit"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler"
	"github.com/slowlang/tinyl/compiler/eval"
	"github.com/slowlang/tinyl/compiler/format"
	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/opt"
)

// OutFile is where compile writes generated code.
const OutFile = "tinyL.out"

type stdout struct{}

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile tinyL program into " + OutFile,
		Action:      compileAct,
		Args:        cli.Args{},
	}

	optimizeCmd := &cli.Command{
		Name:        "optimize",
		Description: "remove dead instructions, reads code from stdin and writes to stdout",
		Action:      optimizeAct,
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "execute code, READ takes integers from stdin",
		Action:      runAct,
		Args:        cli.Args{},
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print code as a table with critical instructions marked",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "tinyl",
		Description: "tinyl is a compiler and optimizer for tinyL programs",
		Commands: []*cli.Command{
			compileCmd,
			optimizeCmd,
			runCmd,
			dumpCmd,
		},
	}

	err := cli.Run(app, os.Args, os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func compileAct(c *cli.Command) (err error) {
	if len(c.Args) != 1 {
		return errors.New("usage: tinyl compile <tinyL file>")
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	obj, err := compiler.CompileFile(ctx, c.Args[0])
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	err = writeArtifact(OutFile, obj)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	tlog.Printw("code written", "file", OutFile, "size", len(obj))

	return nil
}

func optimizeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "read stdin")
	}

	obj, err := compiler.Optimize(ctx, text)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(obj)

	return err
}

func runAct(c *cli.Command) (err error) {
	if len(c.Args) != 1 {
		return errors.New("usage: tinyl run <code file>")
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	code, err := loadFile(ctx, c.Args[0])
	if err != nil {
		return err
	}

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	var in eval.Ints

	for _, w := range strings.Fields(string(text)) {
		x, err := strconv.ParseInt(w, 10, 64)
		if err != nil {
			return errors.Wrap(err, "parse input")
		}

		in = append(in, x)
	}

	return eval.Run(ctx, code, &in, stdout{})
}

func dumpAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	var name string

	switch len(c.Args) {
	case 0:
		name = "-"
	case 1:
		name = c.Args[0]
	default:
		return errors.New("usage: tinyl dump [code file]")
	}

	code, err := loadFile(ctx, name)
	if err != nil {
		return err
	}

	opt.Mark(ctx, code)

	format.Table(os.Stdout, code)

	return nil
}

func loadFile(ctx context.Context, name string) (*ir.Code, error) {
	var text []byte
	var err error

	if name == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(name)
	}

	if err != nil {
		return nil, errors.Wrap(err, "read %v", name)
	}

	return compiler.Load(ctx, text)
}

// writeArtifact replaces name with data or leaves it untouched.
func writeArtifact(name string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}

	tmp := f.Name()

	atexit.Register(func() {
		_ = os.Remove(tmp)
	})

	_, err = f.Write(data)

	if e := f.Close(); err == nil {
		err = e
	}

	if err != nil {
		return errors.Wrap(err, "write %v", tmp)
	}

	return os.Rename(tmp, name)
}

func (stdout) Write(v ir.Var, x int64) error {
	_, err := fmt.Printf("%v = %d\n", v, x)

	return err
}
