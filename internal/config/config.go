// Package config loads the tool configuration from an optional HCL file and the environment.
//
// Example file:
//
//	name       = "ops"
//	root       = "./scripts"
//	log_level  = "info"
//	log_format = "text"
//	env = {
//	  KUBECONFIG = "/etc/ops/kubeconfig"
//	  RETRIES    = 3
//	}
//
// Environment variables override the file: CMDTREE_NAME, CMDTREE_ROOT, CMDTREE_LOG_LEVEL, and
// CMDTREE_LOG_FORMAT. CMDTREE_CONFIG points at the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Environment variable names.
const (
	EnvConfig    = "CMDTREE_CONFIG"
	EnvName      = "CMDTREE_NAME"
	EnvRoot      = "CMDTREE_ROOT"
	EnvLogLevel  = "CMDTREE_LOG_LEVEL"
	EnvLogFormat = "CMDTREE_LOG_FORMAT"
)

// Config is the resolved tool configuration.
type Config struct {
	// Name is the tool name shown in usage text.
	Name string
	// Root is the command tree directory.
	Root string

	LogLevel  string
	LogFormat string

	// Env holds extra NAME=VALUE pairs added to every command's environment.
	Env []string

	// File is the configuration file that was read, if any.
	File string
}

// fileConfig mirrors the HCL file.
type fileConfig struct {
	Name      string         `hcl:"name,optional"`
	Root      string         `hcl:"root,optional"`
	LogLevel  string         `hcl:"log_level,optional"`
	LogFormat string         `hcl:"log_format,optional"`
	Env       hcl.Expression `hcl:"env,optional"`
}

// Load resolves the configuration. getenv looks up environment variables, typically
// [os.Getenv]; argv0 provides the default tool name.
func Load(getenv func(string) string, argv0 string) (*Config, error) {
	cfg := &Config{
		Name:      filepath.Base(argv0),
		LogLevel:  "warn",
		LogFormat: "text",
	}

	path, explicit := getenv(EnvConfig), true
	if path == "" {
		explicit = false
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "cmdtree", "config.hcl")
		}
	}
	if path != "" {
		err := cfg.loadFile(path)
		switch {
		case err == nil:
			cfg.File = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}

	override(&cfg.Name, getenv(EnvName))
	override(&cfg.Root, getenv(EnvRoot))
	override(&cfg.LogLevel, getenv(EnvLogLevel))
	override(&cfg.LogFormat, getenv(EnvLogFormat))

	if cfg.Root == "" {
		return nil, fmt.Errorf("no command tree root configured: set %s or root in the config file", EnvRoot)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config: %w", diags)
	}
	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode config: %w", diags)
	}
	env, err := decodeEnv(fc.Env)
	if err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	override(&c.Name, fc.Name)
	override(&c.LogLevel, fc.LogLevel)
	override(&c.LogFormat, fc.LogFormat)
	if fc.Root != "" {
		c.Root = fc.Root
		if !filepath.IsAbs(c.Root) {
			c.Root = filepath.Join(filepath.Dir(path), c.Root)
		}
	}
	c.Env = env
	return nil
}

// decodeEnv turns the env object into NAME=VALUE pairs, sorted by name. Values are converted to
// strings; null values are skipped.
func decodeEnv(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("env: want an object, got %s", ty.FriendlyName())
	}
	var env []string
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		sv, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("env.%s: %w", name, err)
		}
		if sv.IsNull() {
			continue
		}
		env = append(env, name+"="+sv.AsString())
	}
	return env, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
