package cmdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	t.Parallel()

	tree := loadTestTree(t)
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{name: "root", tokens: nil, want: []string{"broken", "db", "empty", "k8s"}},
		{name: "root prefix", tokens: []string{"d"}, want: []string{"db"}},
		{name: "group", tokens: []string{"k8s", ""}, want: []string{"deploy", "logs"}},
		{name: "group prefix", tokens: []string{"k8s", "l"}, want: []string{"logs"}},
		{name: "hidden never offered", tokens: []string{"."}, want: nil},
		{name: "unknown group", tokens: []string{"nope", ""}, want: nil},
		{name: "leaf flags", tokens: []string{"k8s", "deploy", ""}, want: []string{"--service", "--dry_run", "--help"}},
		{name: "leaf flag prefix", tokens: []string{"k8s", "deploy", "--d"}, want: []string{"--dry_run"}},
		{name: "used flags skipped", tokens: []string{"k8s", "deploy", "--service", "api", "--"}, want: []string{"--dry_run", "--help"}},
		{name: "value expected", tokens: []string{"k8s", "deploy", "--service", ""}, want: nil},
		{name: "after separator", tokens: []string{"k8s", "deploy", "--service", "api", "--", ""}, want: nil},
		{name: "broken leaf", tokens: []string{"broken", ""}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Complete(tree, tt.tokens))
		})
	}
}
