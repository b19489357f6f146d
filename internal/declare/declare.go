// Package declare reads a command unit's declarations out of its shell source without running
// any of it.
//
// A unit declares itself with top-level assignments:
//
//	summary="Deploy a service"
//	args=(
//	    "--env:target environment"
//	    "--dry_run:[o,b] print the plan only"
//	)
//	help=("Deploy" "Rolls the service out to the given environment.")
//
//	main() {
//	    echo "deploying to $env"
//	}
//
// Words are expanded as literals, so quoting and escapes behave as in the shell while
// parameter expansion sees an empty environment. Command substitution is rejected.
package declare

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Names of the declaration variables and the entry routine.
const (
	SummaryVar = "summary"
	ArgsVar    = "args"
	HelpVar    = "help"
	EntryFunc  = "main"
)

// Declaration is what a command unit's source declares about itself.
type Declaration struct {
	Summary   string
	Specs     []string
	HelpTitle string
	HelpBody  string

	// HasEntry reports whether the source defines the entry function at top level.
	HasEntry bool

	// File is the parsed source, ready to be run.
	File *syntax.File
}

// ReadFile parses the named file from fsys.
func ReadFile(fsys fs.FS, name string) (*Declaration, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Parse(data, name)
}

// Parse parses shell source and extracts its declarations. Only top-level statements are
// considered; later assignments override earlier ones.
func Parse(src []byte, name string) (*Declaration, error) {
	file, err := syntax.NewParser(syntax.KeepComments(false)).Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, err
	}
	d := &Declaration{File: file}
	for _, stmt := range file.Stmts {
		switch cmd := stmt.Cmd.(type) {
		case *syntax.FuncDecl:
			if cmd.Name != nil && cmd.Name.Value == EntryFunc {
				d.HasEntry = true
			}
		case *syntax.CallExpr:
			// Assignments followed by a command only apply to that command.
			if len(cmd.Args) > 0 {
				continue
			}
			for _, as := range cmd.Assigns {
				if err := d.assign(as); err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
			}
		case *syntax.DeclClause:
			for _, as := range cmd.Args {
				if err := d.assign(as); err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
			}
		}
	}
	return d, nil
}

func (d *Declaration) assign(as *syntax.Assign) error {
	if as.Name == nil || as.Naked {
		return nil
	}
	switch as.Name.Value {
	case SummaryVar:
		s, err := literal(as.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", SummaryVar, err)
		}
		d.Summary = s
	case ArgsVar:
		specs, err := array(as)
		if err != nil {
			return fmt.Errorf("%s: %w", ArgsVar, err)
		}
		if as.Append {
			d.Specs = append(d.Specs, specs...)
		} else {
			d.Specs = specs
		}
	case HelpVar:
		elems, err := array(as)
		if err != nil {
			return fmt.Errorf("%s: %w", HelpVar, err)
		}
		if len(elems) > 2 {
			return fmt.Errorf("%s: want a (title, description) pair, got %d elements", HelpVar, len(elems))
		}
		d.HelpTitle, d.HelpBody = "", ""
		if len(elems) > 0 {
			d.HelpTitle = elems[0]
		}
		if len(elems) > 1 {
			d.HelpBody = elems[1]
		}
	}
	return nil
}

func array(as *syntax.Assign) ([]string, error) {
	if as.Array == nil {
		return nil, errors.New("want an array")
	}
	out := make([]string, 0, len(as.Array.Elems))
	for _, elem := range as.Array.Elems {
		if elem.Index != nil {
			return nil, errors.New("indexed elements are not supported")
		}
		s, err := literal(elem.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func literal(w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	return expand.Literal(nil, w)
}
