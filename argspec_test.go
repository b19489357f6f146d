package cmdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec string
		want ArgSpec
	}{
		{
			name: "required value flag",
			spec: "--one:required val",
			want: ArgSpec{Name: "one", Description: "required val"},
		},
		{
			name: "optional boolean",
			spec: "--two:[b,o] optional bool",
			want: ArgSpec{Name: "two", Optional: true, Boolean: true, Description: "optional bool"},
		},
		{
			name: "options without space",
			spec: "--name:[o,b]desc",
			want: ArgSpec{Name: "name", Optional: true, Boolean: true, Description: "desc"},
		},
		{
			name: "optional only",
			spec: "--out:[o]output file",
			want: ArgSpec{Name: "out", Optional: true, Description: "output file"},
		},
		{
			name: "boolean only",
			spec: "--force:[b]skip checks",
			want: ArgSpec{Name: "force", Boolean: true, Description: "skip checks"},
		},
		{
			name: "spaces around options",
			spec: "--x:[ o , b ]desc",
			want: ArgSpec{Name: "x", Optional: true, Boolean: true, Description: "desc"},
		},
		{
			name: "empty option block",
			spec: "--x:[]desc",
			want: ArgSpec{Name: "x", Description: "desc"},
		},
		{
			name: "embedded whitespace kept",
			spec: "--msg:a  spaced\tdescription",
			want: ArgSpec{Name: "msg", Description: "a  spaced\tdescription"},
		},
		{
			name: "only one separating space is dropped",
			spec: "--x:[o]   indented\t",
			want: ArgSpec{Name: "x", Optional: true, Description: "  indented\t"},
		},
		{
			name: "leading tab kept",
			spec: "--x:\tdesc",
			want: ArgSpec{Name: "x", Description: "\tdesc"},
		},
		{
			name: "colons in description",
			spec: "--url:endpoint, e.g. http://localhost:8080",
			want: ArgSpec{Name: "url", Description: "endpoint, e.g. http://localhost:8080"},
		},
		{
			name: "empty description",
			spec: "--quiet:[o,b]",
			want: ArgSpec{Name: "quiet", Optional: true, Boolean: true},
		},
		{
			name: "underscores and digits",
			spec: "--dry_run2:desc",
			want: ArgSpec{Name: "dry_run2", Description: "desc"},
		},
		{
			name: "leading bracket is an option block",
			spec: "--tag:[o][beta] tag name",
			want: ArgSpec{Name: "tag", Optional: true, Description: "[beta] tag name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     string
		contains string
	}{
		{name: "missing colon", spec: "--one required", contains: "missing ':'"},
		{name: "missing prefix", spec: "one:desc", contains: `malformed flag name "one"`},
		{name: "single dash", spec: "-o:desc", contains: `malformed flag name "-o"`},
		{name: "leading digit", spec: "--1st:desc", contains: `malformed flag name "--1st"`},
		{name: "dash in name", spec: "--dry-run:desc", contains: `malformed flag name "--dry-run"`},
		{name: "empty name", spec: "--:desc", contains: `malformed flag name "--"`},
		{name: "escaped colon", spec: `--a\:b`, contains: "missing ':'"},
		{name: "unknown option", spec: "--one:[o,x]desc", contains: `unknown option "x"`},
		{name: "empty option", spec: "--one:[o,]desc", contains: `unknown option ""`},
		{name: "unterminated option block", spec: "--one:[o desc", contains: "unterminated option block"},
		{name: "description starting with bracket", spec: "--one:[see docs] desc", contains: "unknown option"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSpec(tt.spec)
			require.Error(t, err)
			var cliErr *Error
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, ErrMalformedSpec, cliErr.Kind)
			assert.Equal(t, tt.spec, cliErr.Spec)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestParseSpecs(t *testing.T) {
	t.Parallel()

	t.Run("help is appended", func(t *testing.T) {
		t.Parallel()
		specs, err := ParseSpecs([]string{"--one:required val", "--two:[b,o] optional bool"})
		require.NoError(t, err)
		require.Len(t, specs, 3)
		assert.Equal(t, "one", specs[0].Name)
		assert.Equal(t, "two", specs[1].Name)
		assert.Equal(t, HelpSpec, specs[2])
		assert.True(t, specs[2].Boolean)
		assert.True(t, specs[2].Optional)
	})
	t.Run("no declared flags", func(t *testing.T) {
		t.Parallel()
		specs, err := ParseSpecs(nil)
		require.NoError(t, err)
		assert.Equal(t, []ArgSpec{HelpSpec}, specs)
	})
	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSpecs([]string{"--one:a", "--one:[o]b"})
		require.Error(t, err)
		assert.ErrorContains(t, err, `duplicate flag name "one"`)
	})
	t.Run("help cannot be redeclared", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSpecs([]string{"--help:[b]my help"})
		require.Error(t, err)
		assert.ErrorContains(t, err, `duplicate flag name "help"`)
	})
	t.Run("first error wins", func(t *testing.T) {
		t.Parallel()
		_, err := ParseSpecs([]string{"--ok:fine", "bad", "--x:[z]"})
		require.Error(t, err)
		var cliErr *Error
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "bad", cliErr.Spec)
	})
}

func TestArgSpecRequired(t *testing.T) {
	t.Parallel()

	assert.True(t, ArgSpec{Name: "a"}.Required())
	assert.False(t, ArgSpec{Name: "a", Optional: true}.Required())
	assert.False(t, ArgSpec{Name: "a", Boolean: true}.Required())
	assert.False(t, HelpSpec.Required())
}
