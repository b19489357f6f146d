package cmdtree

import (
	"fmt"
	"strings"
)

// ErrorKind identifies the class of a resolution, parsing, or binding failure.
type ErrorKind int

const (
	// ErrUnresolvedCommand is returned when no command unit matches a token.
	ErrUnresolvedCommand ErrorKind = iota + 1
	// ErrMalformedSpec is returned when a specification string, or the declaration that holds
	// it, cannot be parsed.
	ErrMalformedSpec
	// ErrUnknownFlag is returned for a runtime token that matches no declared flag.
	ErrUnknownFlag
	// ErrMissingFlagValue is returned when a value-bearing flag is not followed by a value.
	ErrMissingFlagValue
	// ErrMissingRequiredArgs is returned when required flags are absent after the full scan.
	ErrMissingRequiredArgs
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnresolvedCommand:
		return "unresolved command"
	case ErrMalformedSpec:
		return "malformed spec"
	case ErrUnknownFlag:
		return "unknown flag"
	case ErrMissingFlagValue:
		return "missing flag value"
	case ErrMissingRequiredArgs:
		return "missing required arguments"
	default:
		return "unknown error"
	}
}

// Error is a user-facing failure detected before a command's entry routine runs. Only the fields
// relevant to Kind are set.
type Error struct {
	Kind ErrorKind

	// Command is the space-separated path of the command unit the error belongs to. For
	// ErrUnresolvedCommand it is the deepest group that was resolved.
	Command string
	// Token is the offending runtime token (unresolved command name or unknown flag).
	Token string
	// Flag is the flag name, without prefix, for ErrMissingFlagValue.
	Flag string
	// Spec is the offending specification string for ErrMalformedSpec.
	Spec string
	// Missing lists every absent required flag, without prefix, in declaration order.
	Missing []string
	// Suggestions holds similar command names for ErrUnresolvedCommand.
	Suggestions []string

	// Usage is the help text to show alongside the error. It may be empty.
	Usage string

	err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case ErrUnresolvedCommand:
		msg = fmt.Sprintf("no such command %q", e.Token)
		if len(e.Suggestions) > 0 {
			msg += ". Did you mean one of these?\n\t" + strings.Join(e.Suggestions, "\n\t")
		}
		return msg
	case ErrMalformedSpec:
		if e.Spec != "" {
			msg = fmt.Sprintf("malformed spec %q", e.Spec)
		} else {
			msg = "malformed declaration"
		}
	case ErrUnknownFlag:
		msg = fmt.Sprintf("unknown flag %q", e.Token)
	case ErrMissingFlagValue:
		msg = fmt.Sprintf("missing value for flag %q", flagPrefix+e.Flag)
	case ErrMissingRequiredArgs:
		names := make([]string, 0, len(e.Missing))
		for _, name := range e.Missing {
			names = append(names, flagPrefix+name)
		}
		msg = fmt.Sprintf("missing required arguments: %s", strings.Join(names, ", "))
	default:
		msg = e.Kind.String()
	}
	if e.Command != "" {
		msg = fmt.Sprintf("command %q: %s", e.Command, msg)
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// ExitError is returned when an entry routine requested termination with a non-zero code.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Code)
}

// NoEntryError is returned when a leaf has no entry routine.
type NoEntryError struct {
	Command string
}

func (e *NoEntryError) Error() string {
	return fmt.Sprintf("command %q has no entry routine", e.Command)
}
