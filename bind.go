package cmdtree

import (
	"flag"
	"slices"
	"strings"
)

// Binding is the validated mapping from flag names to runtime values for one invocation.
type Binding struct {
	// Forwarded holds every token after the first "--" separator, verbatim and in order.
	Forwarded []string

	specs   []ArgSpec
	values  map[string]string
	present map[string]bool
}

// Specs returns the flag specifications the binding was validated against, including the
// synthesized help flag.
func (b *Binding) Specs() []ArgSpec {
	return slices.Clone(b.specs)
}

// Lookup returns the value bound to a value-bearing flag and whether it was given.
func (b *Binding) Lookup(name string) (string, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Has reports whether a flag of either kind was given.
func (b *Binding) Has(name string) bool {
	if b.present[name] {
		return true
	}
	_, ok := b.values[name]
	return ok
}

// Names returns the names of all given flags, in declaration order.
func (b *Binding) Names() []string {
	var names []string
	for _, spec := range b.specs {
		if b.Has(spec.Name) {
			names = append(names, spec.Name)
		}
	}
	return names
}

func (b *Binding) spec(name string) (ArgSpec, bool) {
	i := slices.IndexFunc(b.specs, func(s ArgSpec) bool { return s.Name == name })
	if i < 0 {
		return ArgSpec{}, false
	}
	return b.specs[i], true
}

// SplitForwarded splits tokens at the first literal "--". The separator itself belongs to
// neither half.
func SplitForwarded(tokens []string) (leading, forwarded []string) {
	i := slices.Index(tokens, separator)
	if i < 0 {
		return tokens, nil
	}
	return tokens[:i], slices.Clone(tokens[i+1:])
}

// Bind matches runtime tokens against specs. specs must come from [ParseSpecs].
//
// If "--help" appears among the flag tokens, Bind returns [flag.ErrHelp] without validating
// anything else. Unknown flags and missing values stop the scan at the first offending token.
// Absent required flags are collected and reported together after the scan.
func Bind(specs []ArgSpec, tokens []string) (*Binding, error) {
	leading, forwarded := SplitForwarded(tokens)
	if slices.Contains(leading, flagPrefix+helpName) {
		return nil, flag.ErrHelp
	}

	byName := make(map[string]ArgSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}
	b := &Binding{
		Forwarded: forwarded,
		specs:     specs,
		values:    make(map[string]string),
		present:   make(map[string]bool),
	}
	for i := 0; i < len(leading); i++ {
		tok := leading[i]
		name, ok := strings.CutPrefix(tok, flagPrefix)
		spec, declared := byName[name]
		if !ok || !declared {
			return nil, &Error{Kind: ErrUnknownFlag, Token: tok}
		}
		if spec.Boolean {
			b.present[name] = true
			continue
		}
		if i+1 >= len(leading) || strings.HasPrefix(leading[i+1], flagPrefix) {
			return nil, &Error{Kind: ErrMissingFlagValue, Flag: name}
		}
		i++
		// A repeated flag keeps its last value.
		b.values[name] = leading[i]
	}

	var missing []string
	for _, spec := range specs {
		if spec.Required() && !b.Has(spec.Name) {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: ErrMissingRequiredArgs, Missing: missing}
	}
	return b, nil
}

// Environ returns one NAME=VALUE pair per given flag, in declaration order. Boolean flags are
// exposed with the value "true".
func (b *Binding) Environ() []string {
	var env []string
	for _, name := range b.Names() {
		if v, ok := b.values[name]; ok {
			env = append(env, name+"="+v)
			continue
		}
		env = append(env, name+"=true")
	}
	return env
}
