package cmdtree

import (
	"slices"
	"strings"
)

// Complete returns completion candidates for the last of tokens, the word being typed. The
// preceding tokens are resolved as usual. At a group the candidates are child names; at a leaf
// they are the flags not used yet. A word following a value-bearing flag, or any word after a
// "--" separator, has no candidates.
func Complete(t *Tree, tokens []string) []string {
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	word := tokens[len(tokens)-1]
	node, rest, err := t.Resolve(tokens[:len(tokens)-1])
	if err != nil || node.err != nil {
		return nil
	}

	var candidates []string
	switch node.Kind {
	case KindGroup:
		if len(rest) > 0 {
			return nil
		}
		for _, c := range node.Children {
			if strings.HasPrefix(c.Name, word) {
				candidates = append(candidates, c.Name)
			}
		}
	case KindLeaf:
		if slices.Contains(rest, separator) {
			return nil
		}
		specs, err := ParseSpecs(node.Specs)
		if err != nil {
			return nil
		}
		used := make(map[string]bool, len(rest))
		for i := 0; i < len(rest); i++ {
			name, ok := strings.CutPrefix(rest[i], flagPrefix)
			if !ok {
				continue
			}
			used[name] = true
			idx := slices.IndexFunc(specs, func(s ArgSpec) bool { return s.Name == name })
			if idx >= 0 && !specs[idx].Boolean {
				if i == len(rest)-1 {
					return nil
				}
				i++
			}
		}
		for _, spec := range specs {
			if used[spec.Name] {
				continue
			}
			if flag := flagPrefix + spec.Name; strings.HasPrefix(flag, word) {
				candidates = append(candidates, flag)
			}
		}
	}
	return candidates
}
