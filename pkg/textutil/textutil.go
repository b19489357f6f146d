// Package textutil formats text for terminal help output.
package textutil

import "strings"

// Wrap splits text into lines no longer than width, breaking between words. Runs of whitespace
// collapse to a single space. A word longer than width gets a line of its own.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	var (
		lines         []string
		currentLine   []string
		currentLength int
	)
	for _, word := range words {
		if currentLength+len(word)+1 > width {
			if len(currentLine) > 0 {
				lines = append(lines, strings.Join(currentLine, " "))
				currentLine = []string{word}
				currentLength = len(word)
			} else {
				lines = append(lines, word)
			}
		} else {
			currentLine = append(currentLine, word)
			if currentLength == 0 {
				currentLength = len(word)
			} else {
				currentLength += len(word) + 1
			}
		}
	}
	if len(currentLine) > 0 {
		lines = append(lines, strings.Join(currentLine, " "))
	}
	return lines
}

// WrapLines wraps each line of text on its own. Blank lines are kept, and lines starting with
// whitespace are treated as preformatted and left untouched.
func WrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			out = append(out, strings.TrimRight(line, " \t"))
			continue
		}
		out = append(out, Wrap(line, width)...)
	}
	return out
}
