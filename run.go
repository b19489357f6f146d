package cmdtree

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mfridman/cmdtree/internal/ctxlog"
	"github.com/mfridman/cmdtree/internal/declare"
	"github.com/mfridman/cmdtree/internal/shell"
)

// Entry is a leaf's entry routine.
type Entry interface {
	Run(ctx context.Context, s *Scope) error
}

// EntryFunc adapts a function to [Entry].
type EntryFunc func(ctx context.Context, s *Scope) error

func (f EntryFunc) Run(ctx context.Context, s *Scope) error {
	return f(ctx, s)
}

// scriptEntry runs a leaf's shell source in its own interpreter.
type scriptEntry struct {
	decl *declare.Declaration
}

func (e *scriptEntry) Run(ctx context.Context, s *Scope) error {
	env := slices.DeleteFunc(s.Environ(), func(kv string) bool {
		return strings.HasPrefix(kv, RootVar+"=")
	})
	env = append(env, RootVar+"="+s.Root)
	// Declared flags that were not given are unset, so an inherited variable of the same name
	// never reads as a bound flag.
	var unset []string
	for _, spec := range s.Flags.Specs() {
		if !s.Flags.Has(spec.Name) {
			unset = append(unset, spec.Name)
		}
	}
	opts := shell.Options{
		Env:      env,
		ReadOnly: []string{RootVar},
		Vars:     s.Flags.Environ(),
		Unset:    unset,
		Dir:      s.Dir,
		Params:   s.Args,
		Stdin:    s.Stdin,
		Stdout:   s.Stdout,
		Stderr:   s.Stderr,
	}
	if e.decl.HasEntry {
		opts.Entry = declare.EntryFunc
	}
	code, err := shell.Run(ctx, e.decl.File, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Command: s.Command, Code: code}
	}
	return nil
}

// Invocation is the outcome of [Parse]: a resolved command and, for leaves that bound
// successfully, its flag values.
type Invocation struct {
	Node *Node
	// Specs is the leaf's parsed flag set. Nil for groups.
	Specs []ArgSpec
	// Binding is nil unless binding succeeded.
	Binding *Binding
}

// Help renders the command's help text: a listing for groups, usage and flags for leaves.
func (inv *Invocation) Help() string {
	if inv.Node.Kind == KindGroup {
		return Listing(inv.Node)
	}
	return Help(inv.Node, inv.Specs)
}

// Parse resolves tokens against the tree, parses the resolved leaf's specifications, and binds
// the remaining tokens. Nothing runs.
//
// When the user asked for help, or resolved a group, Parse returns the invocation together
// with [flag.ErrHelp]. Any other failure is an [*Error] whose Usage field holds the help text
// to show with it.
func Parse(t *Tree, tokens []string) (*Invocation, error) {
	if t == nil || t.Root == nil {
		return nil, errors.New("failed to parse: tree is nil")
	}
	node, rest, err := t.Resolve(tokens)
	if err != nil {
		var cliErr *Error
		if errors.As(err, &cliErr) {
			cliErr.Usage = Listing(node)
		}
		return nil, err
	}
	if node.err != nil {
		return nil, &Error{Kind: ErrMalformedSpec, Command: node.FullName(), err: node.err}
	}
	inv := &Invocation{Node: node}
	if node.Kind == KindGroup {
		return inv, flag.ErrHelp
	}

	inv.Specs, err = ParseSpecs(node.Specs)
	if err != nil {
		var cliErr *Error
		if errors.As(err, &cliErr) {
			cliErr.Command = node.FullName()
		}
		return nil, err
	}
	inv.Binding, err = Bind(inv.Specs, rest)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return inv, err
		}
		var cliErr *Error
		if errors.As(err, &cliErr) {
			cliErr.Command = node.FullName()
			cliErr.Usage = inv.Help()
		}
		return nil, err
	}
	return inv, nil
}

// RunOptions specifies options for running a command.
type RunOptions struct {
	// Stdin, Stdout, and Stderr are the standard input, output, and error streams for the command.
	// If any of these are nil, the command will use the default streams ([os.Stdin], [os.Stdout],
	// and [os.Stderr], respectively).
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	// Env is the base environment as NAME=VALUE pairs. If nil, [os.Environ] is used.
	Env []string
	// Dir is the scope's starting working directory. Empty means the process directory.
	Dir string
}

// Run executes a parsed invocation inside a fresh [Scope].
//
// The options parameter may be nil, in which case default values are used. See [RunOptions] for
// more details.
func Run(ctx context.Context, t *Tree, inv *Invocation, options *RunOptions) error {
	if inv == nil || inv.Binding == nil {
		return errors.New("command has not been parsed")
	}
	if inv.Node.Kind != KindLeaf {
		return fmt.Errorf("command %q is a group", inv.Node.FullName())
	}
	if inv.Node.Entry == nil {
		return &NoEntryError{Command: inv.Node.FullName()}
	}
	options = checkAndSetRunOptions(options)
	scope := newScope(t, inv, options)

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running command.", "command", scope.Command, "flags", inv.Binding.Names(), "forwarded", len(scope.Args))
	err := runEntry(ctx, inv.Node.Entry, scope)
	logger.Debug("Command finished.", "command", scope.Command, "error", err)
	return err
}

// ParseAndRun parses tokens and runs the resolved command. A convenience function that combines
// [Parse] and [Run] into a single call. Help is written to the output stream and reported as
// [flag.ErrHelp].
func ParseAndRun(ctx context.Context, t *Tree, tokens []string, options *RunOptions) error {
	logger := ctxlog.FromContext(ctx)
	inv, err := Parse(t, tokens)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) && inv != nil {
			options = checkAndSetRunOptions(options)
			logger.Debug("Help requested.", "command", inv.Node.FullName())
			fmt.Fprintln(options.Stdout, inv.Help())
		}
		return err
	}
	logger.Debug("Command resolved.", "command", inv.Node.FullName())
	return Run(ctx, t, inv, options)
}

func newScope(t *Tree, inv *Invocation, opt *RunOptions) *Scope {
	env := make(map[string]string, len(opt.Env))
	for _, kv := range opt.Env {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return &Scope{
		Command: inv.Node.FullName(),
		Root:    t.Dir,
		Flags:   inv.Binding,
		Args:    inv.Binding.Forwarded,
		Env:     env,
		Dir:     opt.Dir,
		Stdin:   opt.Stdin,
		Stdout:  opt.Stdout,
		Stderr:  opt.Stderr,
	}
}

func runEntry(ctx context.Context, entry Entry, s *Scope) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sig, ok := r.(exitSignal)
		if !ok {
			panic(r)
		}
		if sig.code != 0 {
			err = &ExitError{Command: s.Command, Code: sig.code}
		}
	}()
	return entry.Run(ctx, s)
}

func checkAndSetRunOptions(opt *RunOptions) *RunOptions {
	if opt == nil {
		opt = &RunOptions{}
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Env == nil {
		opt.Env = os.Environ()
	}
	return opt
}
