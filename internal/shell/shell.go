// Package shell runs a parsed shell entry routine inside an in-process interpreter. Every run
// gets its own interpreter, so "exit", "cd", and variable changes never leak out of it.
package shell

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Options configures one run.
type Options struct {
	// Env is the inherited environment as NAME=VALUE pairs.
	Env []string
	// ReadOnly names variables from Env that the script may not reassign.
	ReadOnly []string
	// Vars are NAME=VALUE pairs exported on top of Env. When Entry is set they are exported
	// again right before it is called, so assignments made by the file body do not hide them.
	Vars []string
	// Unset names variables that must not be set when the script starts, nor when Entry is
	// called, whatever Env holds.
	Unset []string
	// Dir is the starting working directory. Empty means the current process directory.
	Dir string
	// Params are the positional parameters ($1, $2, ...).
	Params []string
	// Entry, if non-empty, is a function called with Params after the file body ran.
	Entry string

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run runs file and then, if set, the entry function. It returns the exit status of whatever
// ran last; an "exit" anywhere ends the run with that status.
func Run(ctx context.Context, file *syntax.File, opts Options) (int, error) {
	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(environ(opts)...)),
		interp.Params(append([]string{"--"}, opts.Params...)...),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}
	r, err := interp.New(runnerOpts...)
	if err != nil {
		return 0, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if len(opts.ReadOnly) > 0 {
		prelude, err := parse("readonly " + strings.Join(opts.ReadOnly, " "))
		if err != nil {
			return 0, err
		}
		if code, done, err := runStmts(ctx, r, prelude); done {
			return code, err
		}
	}

	// Statements run one at a time: running a whole file ends the interpreter's shell.
	code, done, err := runStmts(ctx, r, file)
	if done || opts.Entry == "" {
		return code, err
	}

	call, err := entrySource(opts)
	if err != nil {
		return 0, err
	}
	code, _, err = runStmts(ctx, r, call)
	return code, err
}

// runStmts runs the statements of f in order and returns the status of the last one. done is
// true when the script exited or failed with something other than a status.
func runStmts(ctx context.Context, r *interp.Runner, f *syntax.File) (code int, done bool, err error) {
	for _, stmt := range f.Stmts {
		code, err = status(r.Run(ctx, stmt))
		if err != nil || r.Exited() {
			return code, true, err
		}
	}
	return code, false, nil
}

// environ returns Env without the names in Unset or Vars, followed by Vars.
func environ(opts Options) []string {
	drop := slices.Clone(opts.Unset)
	for _, kv := range opts.Vars {
		name, _, _ := strings.Cut(kv, "=")
		drop = append(drop, name)
	}
	env := make([]string, 0, len(opts.Env)+len(opts.Vars))
	for _, kv := range opts.Env {
		name, _, _ := strings.Cut(kv, "=")
		if !slices.Contains(drop, name) {
			env = append(env, kv)
		}
	}
	return append(env, opts.Vars...)
}

// entrySource restores Vars and Unset, then calls the entry function with the positional
// parameters.
func entrySource(opts Options) (*syntax.File, error) {
	var b strings.Builder
	if len(opts.Unset) > 0 {
		b.WriteString("unset -v " + strings.Join(opts.Unset, " ") + "\n")
	}
	for _, kv := range opts.Vars {
		name, value, _ := strings.Cut(kv, "=")
		quoted, err := syntax.Quote(value, syntax.LangBash)
		if err != nil {
			return nil, fmt.Errorf("failed to quote %s: %w", name, err)
		}
		b.WriteString("export " + name + "=" + quoted + "\n")
	}
	b.WriteString(opts.Entry + ` "$@"`)
	return parse(b.String())
}

func parse(src string) (*syntax.File, error) {
	return syntax.NewParser().Parse(strings.NewReader(src), "")
}

func status(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if code, ok := interp.IsExitStatus(err); ok {
		return int(code), nil
	}
	return 0, err
}
