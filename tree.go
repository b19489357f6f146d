package cmdtree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mfridman/cmdtree/internal/declare"
	"github.com/mfridman/cmdtree/pkg/suggest"
)

// Kind tells groups and leaves apart.
type Kind int

const (
	// KindGroup is a namespace holding further command units.
	KindGroup Kind = iota + 1
	// KindLeaf is an executable command unit.
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// hiddenPrefix marks entries that are never listed or resolved. A group's own declarations
// live in the hidden file descriptionFile.
const (
	hiddenPrefix    = "."
	descriptionFile = ".description"
)

// Node is one command unit in the tree: either a group or a leaf.
type Node struct {
	// Name is a single word identifying the unit among its siblings. The root's name is the
	// tool name.
	Name string
	Kind Kind

	// File is the unit's location relative to the tree directory. Empty for in-memory trees.
	File string

	// Summary is a one-line description shown in group listings.
	Summary   string
	HelpTitle string
	HelpBody  string

	// Specs holds a leaf's declared specification strings, see [ParseSpec].
	Specs []string
	// Entry is a leaf's entry routine.
	Entry Entry

	// Children holds a group's visible units, sorted by name.
	Children []*Node

	parent *Node
	// err records a declaration that failed to load. It surfaces only when the unit is
	// resolved.
	err error
}

// NewGroup returns a group node.
func NewGroup(name, summary string, children ...*Node) *Node {
	return &Node{Name: name, Kind: KindGroup, Summary: summary, Children: children}
}

// NewLeaf returns a leaf node.
func NewLeaf(name, summary string, specs []string, entry Entry) *Node {
	return &Node{Name: name, Kind: KindLeaf, Summary: summary, Specs: specs, Entry: entry}
}

// Child returns the visible child with exactly the given name, or nil.
func (n *Node) Child(name string) *Node {
	if strings.HasPrefix(name, hiddenPrefix) {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path returns the names from the tree root down to n, excluding the root itself.
func (n *Node) Path() []string {
	var names []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		names = append(names, cur.Name)
	}
	slices.Reverse(names)
	return names
}

// FullName returns the tool name followed by the command path, as typed by the user.
func (n *Node) FullName() string {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return strings.Join(append([]string{root.Name}, n.Path()...), " ")
}

func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

// Tree is the command tree for one invocation.
type Tree struct {
	Root *Node
	// Dir is the absolute directory the tree was loaded from. It is exposed to entry routines
	// as the root path. Empty for in-memory trees.
	Dir string
}

// NewTree validates an in-memory tree and links its nodes.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, errors.New("root command is nil")
	}
	if root.Kind != KindGroup {
		return nil, fmt.Errorf("root command %q must be a group", root.Name)
	}
	if err := link(root, nil, nil); err != nil {
		return nil, err
	}
	return &Tree{Root: root}, nil
}

func link(n, parent *Node, path []string) error {
	if n.Name == "" {
		if len(path) == 0 {
			return errors.New("root command has no name")
		}
		return fmt.Errorf("command in path %q has no name", strings.Join(path, " "))
	}
	if strings.ContainsAny(n.Name, " \t\n") {
		return fmt.Errorf("command name %q contains spaces, must be a single word", n.Name)
	}
	if parent != nil && strings.HasPrefix(n.Name, hiddenPrefix) {
		return fmt.Errorf("command name %q must not start with %q", n.Name, hiddenPrefix)
	}
	n.parent = parent
	currentPath := append(slices.Clone(path), n.Name)
	seen := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		if seen[c.Name] {
			return fmt.Errorf("duplicate command %q in %q", c.Name, strings.Join(currentPath, " "))
		}
		seen[c.Name] = true
		if err := link(c, n, currentPath); err != nil {
			return err
		}
	}
	slices.SortFunc(n.Children, func(a, b *Node) int { return strings.Compare(a.Name, b.Name) })
	return nil
}

// LoadDir loads the command tree rooted at dir. name is the tool name.
func LoadDir(dir, name string) (*Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load command tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to load command tree: %s is not a directory", abs)
	}
	t, err := Load(os.DirFS(abs), name)
	if err != nil {
		return nil, err
	}
	t.Dir = abs
	return t, nil
}

// Load builds the command tree from fsys. Every directory is a group and every regular file a
// leaf; entries starting with "." are skipped. Symbolic links to regular files are leaves,
// symbolic links to directories are not followed.
//
// Declarations are read from every unit up front. A unit whose declarations fail to load stays
// in the tree and reports the failure when resolved.
func Load(fsys fs.FS, name string) (*Tree, error) {
	root := &Node{Name: name, Kind: KindGroup, File: "."}
	groups := map[string]*Node{".": root}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			loadGroupDescription(fsys, root)
			return nil
		}
		if strings.HasPrefix(d.Name(), hiddenPrefix) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		parent := groups[path.Dir(p)]
		if parent == nil {
			return nil
		}
		switch {
		case d.IsDir():
			g := &Node{Name: d.Name(), Kind: KindGroup, File: p}
			loadGroupDescription(fsys, g)
			groups[p] = g
			parent.Children = append(parent.Children, g)
		case d.Type().IsRegular() || isLinkToFile(fsys, p, d):
			parent.Children = append(parent.Children, loadLeaf(fsys, p, d.Name()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load command tree: %w", err)
	}
	t, err := NewTree(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load command tree: %w", err)
	}
	return t, nil
}

func isLinkToFile(fsys fs.FS, p string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fs.Stat(fsys, p)
	return err == nil && info.Mode().IsRegular()
}

func loadGroupDescription(fsys fs.FS, g *Node) {
	decl, err := declare.ReadFile(fsys, path.Join(g.File, descriptionFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.err = err
		}
		return
	}
	g.Summary, g.HelpTitle, g.HelpBody = decl.Summary, decl.HelpTitle, decl.HelpBody
}

func loadLeaf(fsys fs.FS, p, name string) *Node {
	leaf := &Node{Name: name, Kind: KindLeaf, File: p}
	decl, err := declare.ReadFile(fsys, p)
	if err != nil {
		leaf.err = err
		return leaf
	}
	leaf.Summary, leaf.HelpTitle, leaf.HelpBody = decl.Summary, decl.HelpTitle, decl.HelpBody
	leaf.Specs = decl.Specs
	leaf.Entry = &scriptEntry{decl: decl}
	return leaf
}

// Resolve walks the tree following tokens from the front and returns the deepest matching unit
// and the tokens left over.
//
// Resolution stops at the first leaf. At a group, a token naming no child stops resolution at
// that group if it looks like a flag, and fails with [ErrUnresolvedCommand] otherwise. On
// failure the deepest resolved group is returned alongside the error.
func (t *Tree) Resolve(tokens []string) (*Node, []string, error) {
	node := t.Root
	for i, tok := range tokens {
		if node.Kind == KindLeaf {
			return node, tokens[i:], nil
		}
		child := node.Child(tok)
		if child == nil {
			if strings.HasPrefix(tok, "-") {
				return node, tokens[i:], nil
			}
			return node, tokens[i:], &Error{
				Kind:        ErrUnresolvedCommand,
				Command:     node.FullName(),
				Token:       tok,
				Suggestions: suggest.FindSimilar(tok, node.childNames(), 3),
			}
		}
		node = child
	}
	return node, nil, nil
}
