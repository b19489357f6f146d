// Package cmdtree turns a directory of scripts into a nested command tree. Directories are
// groups, files are commands, and every command declares its flags with short specification
// strings instead of parsing arguments itself.
//
// One invocation flows strictly forward: [Tree.Resolve] maps the leading tokens to a command,
// [ParseSpecs] reads the command's flag declarations, [Bind] validates the remaining tokens
// against them, and [Run] calls the command's [Entry] inside a fresh [Scope]. Every failure is
// detected before the entry routine starts.
package cmdtree
