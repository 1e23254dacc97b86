package format

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"

	"github.com/slowlang/tinyl/compiler/ir"
)

// Table prints code as a table with critical marks.
func Table(w io.Writer, code *ir.Code) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("N").SetAlign(tabulate.MR)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Field1").SetAlign(tabulate.ML)
	tab.Header("Field2").SetAlign(tabulate.ML)
	tab.Header("Field3").SetAlign(tabulate.ML)
	tab.Header("Critical").SetAlign(tabulate.ML)

	n := 0

	for id := code.Head(); id != ir.Nil; id = code.Next(id) {
		x := code.At(id)

		row := tab.Row()
		row.Column(fmt.Sprintf("%d", n))
		row.Column(x.Op.String())

		for _, a := range x.Args {
			if a.Empty() {
				row.Column("")
				continue
			}

			row.Column(a.String())
		}

		if x.Critical {
			row.Column("yes").SetFormat(tabulate.FmtBold)
		} else {
			row.Column("")
		}

		n++
	}

	tab.Print(w)
}
