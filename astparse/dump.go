package astparse

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"
)

// Dump renders an indented tree view of a parsed program's AST, one line
// per node with its type, source position, and (for single-line nodes)
// the slice of source it covers. Used by debugger integration and by
// development tooling, never by the interpreter itself.
func Dump(r *Result) string {
	var b strings.Builder
	w := &dumper{file: r.File, out: &b}
	ast.Walk(w, r.Program)
	return b.String()
}

type dumper struct {
	file   *parserFile.File
	out    *strings.Builder
	indent int
}

func (d *dumper) Enter(n ast.Node) ast.Visitor {
	d.out.WriteString(strings.Repeat("|   ", d.indent))

	start := n.Idx0() - parserFile.Idx(d.file.Base())
	end := n.Idx1() - parserFile.Idx(d.file.Base())
	src := ""
	if int(start) <= int(end) && int(end) <= len(d.file.Source()) {
		src = d.file.Source()[start:end]
		if strings.Contains(src, "\n") {
			src = ""
		}
	}

	pos := d.file.Position(n.Idx0())
	fmt.Fprintf(d.out, "%s:  %s  %s\n", reflect.TypeOf(n).String(), pos, src)

	d.indent++
	return d
}

func (d *dumper) Exit(n ast.Node) {
	d.indent--
}
