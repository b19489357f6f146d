package cmdtree

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	flagPrefix = "--"
	// separator splits flag tokens from forwarded tokens.
	separator = "--"

	helpName        = "help"
	helpDescription = "show help for this command"
)

var flagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ArgSpec is one declared flag of a leaf command.
type ArgSpec struct {
	// Name is the flag name without the "--" prefix.
	Name string
	// Optional flags may be absent at bind time. Flags are required unless declared with "o".
	Optional bool
	// Boolean flags are satisfied by presence alone and never take a value.
	Boolean bool
	// Description is shown in help text.
	Description string
}

// Required reports whether binding fails when the flag is absent. A boolean flag declared
// without "o" is still never enforced.
func (a ArgSpec) Required() bool {
	return !a.Optional && !a.Boolean
}

// HelpSpec is the flag synthesized for every leaf. Its presence short-circuits binding.
var HelpSpec = ArgSpec{
	Name:        helpName,
	Optional:    true,
	Boolean:     true,
	Description: helpDescription,
}

// ParseSpecs parses a leaf's declared specification strings in order and appends [HelpSpec].
// Declaring the same name twice, including "help", is a malformed spec.
func ParseSpecs(specs []string) ([]ArgSpec, error) {
	out := make([]ArgSpec, 0, len(specs)+1)
	seen := make(map[string]bool, len(specs)+1)
	seen[helpName] = true
	for _, s := range specs {
		spec, err := ParseSpec(s)
		if err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, malformed(s, fmt.Errorf("duplicate flag name %q", spec.Name))
		}
		seen[spec.Name] = true
		out = append(out, spec)
	}
	return append(out, HelpSpec), nil
}

// ParseSpec parses a single specification string of the form "--name:[options]description" or
// "--name:description". Options are a comma-separated subset of "o" (optional) and "b"
// (boolean). The description is kept verbatim, except for one separating space.
//
// Any description beginning with "[" is read as an option block; an unterminated block is a
// malformed spec.
func ParseSpec(s string) (ArgSpec, error) {
	colon := unescapedIndex(s, ':')
	if colon < 0 {
		return ArgSpec{}, malformed(s, errors.New("missing ':' after flag name"))
	}
	rawName := s[:colon]
	name, ok := strings.CutPrefix(rawName, flagPrefix)
	if !ok || !flagNamePattern.MatchString(name) {
		return ArgSpec{}, malformed(s, fmt.Errorf("malformed flag name %q", rawName))
	}
	spec := ArgSpec{Name: name}

	rest := s[colon+1:]
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return ArgSpec{}, malformed(s, errors.New("unterminated option block"))
		}
		if interior := rest[1:end]; interior != "" {
			for _, opt := range strings.Split(interior, ",") {
				switch strings.TrimSpace(opt) {
				case "o":
					spec.Optional = true
				case "b":
					spec.Boolean = true
				default:
					return ArgSpec{}, malformed(s, fmt.Errorf("unknown option %q", opt))
				}
			}
		}
		rest = rest[end+1:]
	}
	spec.Description = strings.TrimPrefix(rest, " ")
	return spec, nil
}

// unescapedIndex returns the index of the first c in s not preceded by a backslash, or -1.
func unescapedIndex(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}

func malformed(spec string, err error) *Error {
	return &Error{Kind: ErrMalformedSpec, Spec: spec, err: err}
}
