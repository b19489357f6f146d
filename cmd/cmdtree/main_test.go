package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRoot writes a small command tree and a config file pointing at it, and returns the
// config file path.
func newTestRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"scripts/.description": `summary="Test tools"`,
		"scripts/hello": `
summary="Say hello"
args=("--name:[o] who to greet")
main() { echo "hello, ${name:-world} $GREETING $#"; }
`,
		"scripts/db/fail": `
summary="Always fails"
main() { echo "failing" >&2; exit 3; }
`,
		"scripts/db/flags": `
args=("--verbose:[o,b] chatty" "--level:[o] level")
main() { echo "verbose=${verbose-unset} level=${level-unset} inherited=$INHERITED"; }
`,
		"scripts/db/root": `
main() { echo "$CMDTREE_ROOT"; }
`,
		"config.hcl": `
name = "tools"
root = "scripts"
env  = { GREETING = "hi" }
`,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.Join(dir, "config.hcl")
}

type result struct {
	code           int
	stdout, stderr string
}

func runWith(t *testing.T, env map[string]string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	environ := make([]string, 0, len(env))
	for k, v := range env {
		environ = append(environ, k+"="+v)
	}
	code := run(context.Background(), append([]string{"cmdtree"}, args...), environ, strings.NewReader(""), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("runs a command", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}
		res := runWith(t, env, "hello", "--name", "gopher", "--", "a", "b")
		assert.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "hello, gopher hi 2\n", res.stdout)
	})
	t.Run("root is visible to commands", func(t *testing.T) {
		t.Parallel()
		path := newTestRoot(t)
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": path}, "db", "root")
		assert.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "scripts")+"\n", res.stdout)
	})
	t.Run("base environment is passed in", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{
			"CMDTREE_CONFIG": newTestRoot(t),
			"INHERITED":      "yes",
			"verbose":        "1",
			"level":          "9",
		}
		res := runWith(t, env, "db", "flags")
		assert.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "verbose=unset level=unset inherited=yes\n", res.stdout)

		res = runWith(t, env, "db", "flags", "--verbose", "--level", "2")
		assert.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "verbose=true level=2 inherited=yes\n", res.stdout)
	})
	t.Run("exit status is propagated", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}, "db", "fail")
		assert.Equal(t, 3, res.code)
		assert.Equal(t, "failing\n", res.stderr)
	})
	t.Run("help", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}, "hello", "--help")
		assert.Equal(t, 0, res.code)
		assert.Contains(t, res.stdout, "Usage:\n  tools hello [--name <name>] [--help] [-- args...]")
		assert.Empty(t, res.stderr)
	})
	t.Run("group listing", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": newTestRoot(t)})
		assert.Equal(t, 0, res.code)
		assert.Contains(t, res.stdout, "Test tools")
		assert.Contains(t, res.stdout, "Available Commands:")
		assert.Contains(t, res.stdout, "db/")
		assert.Contains(t, res.stdout, "hello")
	})
	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}, "hello", "--bogus")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, `error: `)
		assert.Contains(t, res.stderr, `unknown flag "--bogus"`)
		assert.Contains(t, res.stderr, "Usage:")
		assert.Empty(t, res.stdout)
	})
	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}, "helo")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, `no such command "helo"`)
		assert.Contains(t, res.stderr, "hello")
	})
	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{"CMDTREE_CONFIG": newTestRoot(t)}
		res := runWith(t, env, "--complete", "h")
		assert.Equal(t, 0, res.code)
		assert.Equal(t, "hello\n", res.stdout)

		res = runWith(t, env, "--complete", "hello", "--")
		assert.Equal(t, 0, res.code)
		assert.Equal(t, "--name\n--help\n", res.stdout)
	})
	t.Run("environment overrides config", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{
			"CMDTREE_CONFIG": newTestRoot(t),
			"CMDTREE_NAME":   "renamed",
		}
		res := runWith(t, env, "hello", "--help")
		assert.Equal(t, 0, res.code)
		assert.Contains(t, res.stdout, "renamed hello")
	})
	t.Run("no root configured", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`name = "x"`), 0o644))
		res := runWith(t, map[string]string{"CMDTREE_CONFIG": path})
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "no command tree root configured")
	})
	t.Run("missing root directory", func(t *testing.T) {
		t.Parallel()
		res := runWith(t, map[string]string{"CMDTREE_ROOT": filepath.Join(t.TempDir(), "nope"), "CMDTREE_CONFIG": newTestRoot(t)})
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "failed to load command tree")
	})
}
