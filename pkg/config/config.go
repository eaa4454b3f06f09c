// Package config loads config.yaml, .env files and the environment secrets
// the tracker and backlog clients need.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project root.
const FileName = "config.yaml"

// Config is the resolved configuration for one invocation.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
	Linear LinearConfig `mapstructure:"linear" yaml:"linear"`

	// Path is the config file that was read.
	Path string `mapstructure:"-" yaml:"-"`
}

type GitHubConfig struct {
	Repo    string `mapstructure:"repo" yaml:"repo"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Token   string `mapstructure:"token" yaml:"-"`
}

type LinearConfig struct {
	Workspace   string `mapstructure:"workspace" yaml:"workspace"`
	TeamID      string `mapstructure:"team_id" yaml:"team_id"`
	APIEndpoint string `mapstructure:"api_endpoint" yaml:"api_endpoint,omitempty"`
	APIKey      string `mapstructure:"api_key" yaml:"-"`
}

// Owner returns the owner half of github.repo.
func (g GitHubConfig) Owner() string {
	owner, _, _ := strings.Cut(g.Repo, "/")
	return owner
}

// Name returns the repository half of github.repo.
func (g GitHubConfig) Name() string {
	_, name, _ := strings.Cut(g.Repo, "/")
	return name
}

// Options controls where Load looks.
type Options struct {
	// Root is the project root; defaults to the working directory.
	Root string
	// File overrides <Root>/config.yaml.
	File string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

// Load reads the config file, then overlays environment secrets.
// .env files in the project root and its parent are loaded first without
// overriding variables already set.
func Load(opts Options) (*Config, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	if err := LoadDotEnv(fs, root); err != nil {
		return nil, err
	}

	path := opts.File
	if path == "" {
		path = filepath.Join(root, FileName)
	}
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !exists {
		return nil, &errs.ConfigurationError{Problems: []string{
			fmt.Sprintf("no configuration found at %s; create it with github.repo, linear.workspace and linear.team_id (see `mixer config init`)", path),
		}}
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MIXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", "GITHUB_TOKEN", "GH_TOKEN")
	_ = v.BindEnv("linear.api_key", "LINEAR_API_KEY", "LINEAR_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		return nil, &errs.ConfigurationError{Problems: []string{fmt.Sprintf("failed to read %s: %v", path, err)}}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &errs.ConfigurationError{Problems: []string{fmt.Sprintf("failed to decode %s: %v", path, err)}}
	}
	cfg.GitHub.Token = v.GetString("github.token")
	cfg.Linear.APIKey = v.GetString("linear.api_key")
	cfg.Path = path
	return cfg, nil
}

// LoadDotEnv loads <root>/.env, falling back to <root>/../.env. Variables
// that are already set keep their values.
func LoadDotEnv(fs afero.Fs, root string) error {
	for _, dir := range []string{root, filepath.Dir(root)} {
		path := filepath.Join(dir, ".env")
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			continue
		}
		env, err := gotenv.StrictParse(bytes.NewReader(data))
		if err != nil {
			return &errs.ConfigurationError{Problems: []string{fmt.Sprintf("invalid %s: %v", path, err)}}
		}
		for k, val := range env {
			if _, set := os.LookupEnv(k); !set {
				os.Setenv(k, val)
			}
		}
		return nil
	}
	return nil
}

// RequireGitHub lists what the backlog client is missing.
func (c *Config) RequireGitHub() error {
	return problems(c.githubProblems())
}

// RequireLinear lists what the tracker client is missing.
func (c *Config) RequireLinear() error {
	return problems(c.linearProblems())
}

// Validate checks every required key and secret and reports all problems at once.
func (c *Config) Validate() error {
	return problems(append(c.githubProblems(), c.linearProblems()...))
}

func (c *Config) githubProblems() []string {
	var p []string
	switch {
	case c.GitHub.Repo == "":
		p = append(p, "missing GitHub repository (e.g. 'username/repo'): github.repo")
	case c.GitHub.Owner() == "" || c.GitHub.Name() == "" || strings.Count(c.GitHub.Repo, "/") != 1:
		p = append(p, fmt.Sprintf("github.repo %q must be in owner/repo format", c.GitHub.Repo))
	}
	if c.GitHub.Token == "" {
		p = append(p, "GitHub token not set in environment (GITHUB_TOKEN or GH_TOKEN)")
	}
	return p
}

func (c *Config) linearProblems() []string {
	var p []string
	if c.Linear.Workspace == "" {
		p = append(p, "missing Linear workspace name: linear.workspace")
	}
	if c.Linear.TeamID == "" {
		p = append(p, "missing Linear team ID: linear.team_id")
	}
	if c.Linear.APIKey == "" {
		p = append(p, "Linear API key not set in environment (LINEAR_API_KEY or LINEAR_TOKEN)")
	}
	return p
}

func problems(p []string) error {
	if len(p) == 0 {
		return nil
	}
	return &errs.ConfigurationError{Problems: p}
}

// Template renders a starter config.yaml.
func Template(repo, workspace, teamID string) ([]byte, error) {
	cfg := Config{
		GitHub: GitHubConfig{Repo: repo},
		Linear: LinearConfig{Workspace: workspace, TeamID: teamID},
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
