package cmdtree

import (
	"fmt"
	"strings"

	"github.com/mfridman/cmdtree/pkg/textutil"
)

const helpWidth = 80

// UsageLine renders the one-line usage pattern of a leaf, e.g.
//
//	ops deploy --env <env> [--dry_run] [--help] [-- args...]
func UsageLine(n *Node, specs []ArgSpec) string {
	parts := []string{n.FullName()}
	for _, spec := range specs {
		var s string
		if spec.Boolean {
			s = flagPrefix + spec.Name
		} else {
			s = fmt.Sprintf("%s%s <%s>", flagPrefix, spec.Name, spec.Name)
		}
		if !spec.Required() {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	parts = append(parts, "[-- args...]")
	return strings.Join(parts, " ")
}

// Help renders the help text of a leaf: title, usage line, flag table, and long description.
func Help(n *Node, specs []ArgSpec) string {
	var b strings.Builder

	writeTitle(&b, n)

	b.WriteString("Usage:\n")
	b.WriteString("  " + UsageLine(n, specs) + "\n\n")

	if len(specs) > 0 {
		rows := make([]row, 0, len(specs))
		for _, spec := range specs {
			desc := spec.Description
			if spec.Required() {
				desc += " (required)"
			}
			rows = append(rows, row{name: flagPrefix + spec.Name, text: desc})
		}
		b.WriteString("Flags:\n")
		writeTable(&b, rows)
		b.WriteString("\n")
	}

	writeBody(&b, n)
	return strings.TrimRight(b.String(), "\n")
}

// Listing renders the help text of a group: its visible children with their summaries.
func Listing(n *Node) string {
	var b strings.Builder

	writeTitle(&b, n)

	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "  %s <command>\n\n", n.FullName())

	if len(n.Children) > 0 {
		rows := make([]row, 0, len(n.Children))
		for _, c := range n.Children {
			name := c.Name
			if c.Kind == KindGroup {
				name += "/"
			}
			rows = append(rows, row{name: name, text: c.Summary})
		}
		b.WriteString("Available Commands:\n")
		writeTable(&b, rows)
		b.WriteString("\n")
	}

	if writeBody(&b, n) {
		b.WriteRune('\n')
	}

	if len(n.Children) > 0 {
		fmt.Fprintf(&b, "Use \"%s <command> --help\" for more information about a command.\n", n.FullName())
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTitle(b *strings.Builder, n *Node) {
	title := n.HelpTitle
	if title == "" {
		title = n.Summary
	}
	if title == "" {
		return
	}
	for _, line := range textutil.Wrap(title, helpWidth) {
		b.WriteString(line)
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
}

// writeBody writes the long description, if any, and reports whether it did.
func writeBody(b *strings.Builder, n *Node) bool {
	if strings.TrimSpace(n.HelpBody) == "" {
		return false
	}
	for _, line := range textutil.WrapLines(n.HelpBody, helpWidth) {
		b.WriteString(line)
		b.WriteRune('\n')
	}
	return true
}

type row struct {
	name string
	text string
}

// writeTable writes aligned name/text rows, wrapping text to the help width.
func writeTable(b *strings.Builder, rows []row) {
	maxLen := 0
	for _, r := range rows {
		maxLen = max(maxLen, len(r.name))
	}
	nameWidth := maxLen + 4
	wrapWidth := helpWidth - nameWidth

	for _, r := range rows {
		lines := textutil.Wrap(r.text, wrapWidth)
		if len(lines) == 0 {
			fmt.Fprintf(b, "  %s\n", r.name)
			continue
		}
		padding := strings.Repeat(" ", maxLen-len(r.name)+4)
		fmt.Fprintf(b, "  %s%s%s\n", r.name, padding, lines[0])

		indentPadding := strings.Repeat(" ", nameWidth+2)
		for _, line := range lines[1:] {
			fmt.Fprintf(b, "%s%s\n", indentPadding, line)
		}
	}
}
