// Command cmdtree runs scripts from a directory tree as nested commands.
//
// Usage:
//
//	cmdtree [group...] [command] [--flag [value]]... [-- args...]
//	cmdtree --complete [tokens...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mfridman/cmdtree"
	"github.com/mfridman/cmdtree/internal/config"
	"github.com/mfridman/cmdtree/internal/ctxlog"
)

// completeFlag, as the first token, lists completion candidates for the remaining tokens.
const completeFlag = "--complete"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Environ(), os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code. environ is the base
// environment as NAME=VALUE pairs; configuration is read from it too.
func run(ctx context.Context, argv, environ []string, stdin io.Reader, stdout, stderr io.Writer) int {
	getenv := func(key string) string {
		for i := len(environ) - 1; i >= 0; i-- {
			if k, v, ok := strings.Cut(environ[i], "="); ok && k == key {
				return v
			}
		}
		return ""
	}
	cfg, err := config.Load(getenv, argv[0])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger := ctxlog.New(stderr, cfg.LogLevel, cfg.LogFormat)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration loaded.", "file", cfg.File, "root", cfg.Root, "name", cfg.Name)

	tree, err := cmdtree.LoadDir(cfg.Root, cfg.Name)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	tokens := argv[1:]
	if len(tokens) > 0 && tokens[0] == completeFlag {
		for _, c := range cmdtree.Complete(tree, tokens[1:]) {
			fmt.Fprintln(stdout, c)
		}
		return 0
	}

	err = cmdtree.ParseAndRun(ctx, tree, tokens, &cmdtree.RunOptions{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Env:    append(slices.Clone(environ), cfg.Env...),
	})
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var exitErr *cmdtree.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var cliErr *cmdtree.Error
	if errors.As(err, &cliErr) && cliErr.Usage != "" {
		fmt.Fprintf(stderr, "\n%s\n", cliErr.Usage)
	}
	return 1
}
