package cmdtree

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// RootVar names the read-only value through which entry routines find the command tree
// directory.
const RootVar = "CMDTREE_ROOT"

// Scope is the isolated execution scope of one invocation. The host builds a fresh Scope for
// every call and discards it afterwards, so changes an entry routine makes to Env or Dir are
// never seen by anyone else.
type Scope struct {
	// Command is the full name of the running command, e.g. "ops k8s deploy".
	Command string
	// Root is the command tree directory. Empty for in-memory trees.
	Root string

	// Flags holds the validated flag values. Use [GetFlag] to read them.
	Flags *Binding
	// Args holds the forwarded tokens, verbatim and in order.
	Args []string

	// Env is a private copy of the environment.
	Env map[string]string
	// Dir is the working directory of the scope. Empty means the process directory.
	Dir string

	// Standard I/O streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// exitSignal carries an abrupt termination request up to the host.
type exitSignal struct {
	code int
}

// Exit ends the entry routine immediately. The host recovers the request, so only this
// invocation terminates; a non-zero code is reported as an [*ExitError].
func (s *Scope) Exit(code int) {
	panic(exitSignal{code: code})
}

// Environ returns Env as sorted NAME=VALUE pairs.
func (s *Scope) Environ() []string {
	env := make([]string, 0, len(s.Env))
	for _, k := range slices.Sorted(maps.Keys(s.Env)) {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}

// GetFlag retrieves a bound flag by name, without the "--" prefix. Boolean flags read as bool
// and report presence; value flags read as string and are empty when an optional flag was not
// given. Example usage:
//
//	env := GetFlag[string](s, "env")
//	dryRun := GetFlag[bool](s, "dry_run")
//
// It panics if the command does not declare the flag or the requested type does not match the
// declaration. Both are programming errors in the entry routine.
func GetFlag[T string | bool](s *Scope, name string) T {
	spec, ok := s.Flags.spec(name)
	if !ok {
		panic(fmt.Errorf("internal error: flag %q not declared by command %q", flagPrefix+name, s.Command))
	}
	var value any
	if spec.Boolean {
		value = s.Flags.present[name]
	} else {
		value = s.Flags.values[name]
	}
	v, ok := value.(T)
	if !ok {
		panic(fmt.Errorf("internal error: type mismatch for flag %q in command %q: registered %T, requested %T",
			flagPrefix+name, s.Command, value, *new(T)))
	}
	return v
}
