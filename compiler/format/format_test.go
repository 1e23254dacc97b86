package format

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tinyl/compiler/ir"
)

const example = `READ a
READ b
LOADI r1 #3
LOAD r2 a
LOAD r3 b
MUL r4 r2 r3
ADD r5 r1 r4
STORE c r5
LOAD r6 c
LOADI r7 #1
ADD r8 r6 r7
STORE d r8
WRITE d
`

func exampleCode() *ir.Code {
	code := ir.NewCode()

	for _, x := range []ir.Instr{
		ir.Read('a'),
		ir.Read('b'),
		ir.LoadI(1, 3),
		ir.Load(2, 'a'),
		ir.Load(3, 'b'),
		ir.Bin(ir.OpMul, 4, 2, 3),
		ir.Bin(ir.OpAdd, 5, 1, 4),
		ir.Store('c', 5),
		ir.Load(6, 'c'),
		ir.LoadI(7, 1),
		ir.Bin(ir.OpAdd, 8, 6, 7),
		ir.Store('d', 8),
		ir.Write('d'),
	} {
		code.Append(x)
	}

	return code
}

func TestFormat(t *testing.T) {
	b, err := Format(context.Background(), nil, exampleCode())
	require.NoError(t, err)

	assert.Equal(t, example, string(b))
}

func TestFormatEmpty(t *testing.T) {
	b, err := Format(context.Background(), nil, ir.NewCode())
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestFormatBadInstr(t *testing.T) {
	code := ir.NewCode()
	code.Append(ir.Instr{Op: ir.OpWrite})

	_, err := Format(context.Background(), nil, code)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	code := exampleCode()

	b, err := Format(ctx, nil, code)
	require.NoError(t, err)

	back, err := Parse(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, code.Instrs(), back.Instrs())
}

func TestParseVariants(t *testing.T) {
	text := "\n  1 r1 #3 _\n0\tr2   a\r\n\n5 r3 r1 r2\nSTORE e r3 _\n8 b _ _\n9 e\n"

	code, err := Parse(context.Background(), []byte(text))
	require.NoError(t, err)

	assert.Equal(t, []ir.Instr{
		ir.LoadI(1, 3),
		ir.Load(2, 'a'),
		ir.Bin(ir.OpMul, 3, 1, 2),
		ir.Store('e', 3),
		ir.Read('b'),
		ir.Write('e'),
	}, code.Instrs())
}

func TestParseNoTrailingNewline(t *testing.T) {
	code, err := Parse(context.Background(), []byte("READ a\nWRITE a"))
	require.NoError(t, err)

	assert.Equal(t, []ir.Instr{ir.Read('a'), ir.Write('a')}, code.Instrs())
}

func TestParseEmpty(t *testing.T) {
	code, err := Parse(context.Background(), []byte(" \n\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, code.Len())
}

func TestParseErrors(t *testing.T) {
	ctx := context.Background()

	for _, text := range []string{
		"NOP r1",
		"LOADI r1",
		"LOADI r1 a",
		"LOADI r1 #10",
		"LOAD r0 a",
		"LOAD r1 f",
		"STORE r1 a",
		"ADD r3 r1",
		"ADD r3 r1 r2 r4",
		"READ a b",
		"WRITE",
		"WRITE _",
		"READ a\nLOAD rx a",
		"READ %",
		"12 a",
	} {
		code, err := Parse(ctx, []byte(text))
		assert.Error(t, err, "%q", text)
		assert.Nil(t, code, "%q", text)
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse(context.Background(), []byte("READ a\n\nLOAD r1 z\n"))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "line 3")
}

func TestTable(t *testing.T) {
	code := exampleCode()
	code.At(code.Tail()).Critical = true

	var buf bytes.Buffer
	Table(&buf, code)

	out := buf.String()

	assert.Contains(t, out, "LOADI")
	assert.Contains(t, out, "r8")
	assert.Contains(t, out, "Critical")
}
