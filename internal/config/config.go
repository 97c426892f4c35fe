// Package config provides autocommit configuration with a defined load
// order: CLI flags > environment variables > repo config > global config >
// defaults.
//
// Paths:
//   - Repo: .autocommit.toml (relative to repo root)
//   - Global: XDG config dir, e.g. ~/.config/autocommit/config.toml
//   - A .env file at the repo root is loaded into the environment first.
//
// Environment variables (override config files when set):
//   - AUTOCOMMIT_API_TOKEN (falls back to OPENAI_API_KEY), AUTOCOMMIT_ENDPOINT,
//   - AUTOCOMMIT_MODEL, AUTOCOMMIT_LANGUAGE, AUTOCOMMIT_RESPONSE_TOKENS,
//   - AUTOCOMMIT_DIFF_FILTER, AUTOCOMMIT_EXCLUDE (comma-separated patterns),
//   - AUTOCOMMIT_AUTO_COMMIT, AUTOCOMMIT_EDIT (1/true/yes/on or 0/false/no/off),
//   - AUTOCOMMIT_TEMPERATURE, AUTOCOMMIT_TIMEOUT (Go duration string).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"autocommit/internal/errkind"
	"autocommit/internal/llm"
	"autocommit/internal/tokens"
)

// Config holds all autocommit configuration. It is built once per run and
// never mutated afterwards.
type Config struct {
	// APIToken authorizes requests to the generation service. Mandatory;
	// checked by Validate before any pipeline work.
	APIToken string `toml:"api_token"`
	// Endpoint is the generation API root (default: OpenAI).
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	// Language is the natural language for the generated message.
	Language string `toml:"language"`
	// ResponseTokens is the allowance reserved for the model's response when
	// computing the prompt budget, and the max_tokens of the final request.
	ResponseTokens int `toml:"response_tokens"`
	// DiffFilter is passed to git as --diff-filter (e.g. "ACMRT").
	DiffFilter string `toml:"diff_filter"`
	// ExcludePatterns are :(exclude) pathspecs applied to the staged diff.
	ExcludePatterns []string `toml:"exclude_patterns"`
	// AutoCommit performs the commit; when false the message is only printed.
	AutoCommit bool `toml:"auto_commit"`
	// EditAfterCommit opens the editor on the new commit (git commit --amend).
	EditAfterCommit bool          `toml:"edit_after_commit"`
	Temperature     float64       `toml:"temperature"`
	Timeout         time.Duration `toml:"timeout"`
}

// Overrides represents optional CLI flag overrides. A non-nil pointer means
// "override with this value".
type Overrides struct {
	APIToken        *string
	Endpoint        *string
	Model           *string
	Language        *string
	ResponseTokens  *int
	DiffFilter      *string
	ExcludePatterns *[]string
	AutoCommit      *bool
	EditAfterCommit *bool
	Temperature     *float64
	Timeout         *time.Duration
}

// LoadOptions configures Load. All fields are optional.
type LoadOptions struct {
	// RepoRoot is the repository root; if set, repo config is
	// RepoRoot/.autocommit.toml and RepoRoot/.env is loaded first.
	RepoRoot string
	// GlobalConfigPath is the global config file path; if empty, the XDG
	// path is used.
	GlobalConfigPath string
	// Env is the environment key=value slice; if nil, os.Environ() is used
	// (after .env loading).
	Env []string
	// Overrides are applied last (highest precedence).
	Overrides *Overrides
}

const (
	_defaultModel          = "gpt-4o-mini"
	_defaultLanguage       = "english"
	_defaultResponseTokens = tokens.DefaultResponseTokens
	_defaultTemperature    = 0.2
	_defaultTimeout        = 2 * time.Minute
)

// defaultExcludePatterns keep lockfiles and checksum files out of the prompt.
var defaultExcludePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
}

// DefaultConfig returns the default configuration (no I/O).
func DefaultConfig() Config {
	return Config{
		Endpoint:        llm.DefaultEndpoint,
		Model:           _defaultModel,
		Language:        _defaultLanguage,
		ResponseTokens:  _defaultResponseTokens,
		ExcludePatterns: append([]string(nil), defaultExcludePatterns...),
		Temperature:     _defaultTemperature,
		Timeout:         _defaultTimeout,
	}
}

// Load loads configuration with precedence: defaults < global file < repo
// file < env < overrides. Missing config files are ignored. Invalid TOML or
// invalid env values return an error.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Env == nil {
		if opts.RepoRoot != "" {
			// Optional; absence is not an error.
			_ = godotenv.Load(filepath.Join(opts.RepoRoot, ".env"))
		}
		opts.Env = os.Environ()
	}
	cfg := DefaultConfig()

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, errkind.New(errkind.Precondition, "Could not determine config directory.", err)
		}
		globalPath = filepath.Join(dir, "autocommit", "config.toml")
	}
	if err := mergeFile(&cfg, globalPath); err != nil {
		return nil, err
	}

	if opts.RepoRoot != "" {
		if err := mergeFile(&cfg, filepath.Join(opts.RepoRoot, ".autocommit.toml")); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, opts.Env); err != nil {
		return nil, err
	}

	applyOverrides(&cfg, opts.Overrides)
	return &cfg, nil
}

// Validate checks the preconditions that must hold before any pipeline work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIToken) == "" {
		return errkind.New(errkind.Precondition,
			"Missing API token. Set AUTOCOMMIT_API_TOKEN (or OPENAI_API_KEY).", nil)
	}
	if c.ResponseTokens <= 0 {
		return errkind.New(errkind.Precondition, "response_tokens must be positive.", nil)
	}
	return nil
}

// mergeFile reads path and merges into cfg. Only fields present in the file
// overwrite previous values. Missing file is skipped.
func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errkind.New(errkind.Precondition, "Invalid configuration file.", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errkind.New(errkind.Precondition, "Could not read configuration file.", err)
	}
	var file struct {
		APIToken        *string   `toml:"api_token"`
		Endpoint        *string   `toml:"endpoint"`
		Model           *string   `toml:"model"`
		Language        *string   `toml:"language"`
		ResponseTokens  *int64    `toml:"response_tokens"`
		DiffFilter      *string   `toml:"diff_filter"`
		ExcludePatterns *[]string `toml:"exclude_patterns"`
		AutoCommit      *bool     `toml:"auto_commit"`
		EditAfterCommit *bool     `toml:"edit_after_commit"`
		Temperature     *float64  `toml:"temperature"`
		Timeout         *string   `toml:"timeout"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return errkind.New(errkind.Precondition, "Invalid configuration file: "+path+".", err)
	}
	if file.APIToken != nil {
		cfg.APIToken = *file.APIToken
	}
	if file.Endpoint != nil {
		cfg.Endpoint = *file.Endpoint
	}
	if file.Model != nil {
		cfg.Model = *file.Model
	}
	if file.Language != nil {
		cfg.Language = *file.Language
	}
	if file.ResponseTokens != nil {
		cfg.ResponseTokens = int(*file.ResponseTokens)
	}
	if file.DiffFilter != nil {
		cfg.DiffFilter = *file.DiffFilter
	}
	if file.ExcludePatterns != nil {
		cfg.ExcludePatterns = append([]string(nil), (*file.ExcludePatterns)...)
	}
	if file.AutoCommit != nil {
		cfg.AutoCommit = *file.AutoCommit
	}
	if file.EditAfterCommit != nil {
		cfg.EditAfterCommit = *file.EditAfterCommit
	}
	if file.Temperature != nil {
		cfg.Temperature = *file.Temperature
	}
	if file.Timeout != nil {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid timeout in "+path+".", err)
		}
		cfg.Timeout = d
	}
	return nil
}

// applyEnv merges environment variables from env ("K=V" entries) into cfg.
func applyEnv(cfg *Config, env []string) error {
	lookup := envMap(env)

	if v, ok := lookup["AUTOCOMMIT_API_TOKEN"]; ok && v != "" {
		cfg.APIToken = v
	} else if v, ok := lookup["OPENAI_API_KEY"]; ok && v != "" && cfg.APIToken == "" {
		cfg.APIToken = v
	}
	if v, ok := lookup["AUTOCOMMIT_ENDPOINT"]; ok && v != "" {
		cfg.Endpoint = v
	}
	if v, ok := lookup["AUTOCOMMIT_MODEL"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := lookup["AUTOCOMMIT_LANGUAGE"]; ok && v != "" {
		cfg.Language = v
	}
	if v, ok := lookup["AUTOCOMMIT_RESPONSE_TOKENS"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid AUTOCOMMIT_RESPONSE_TOKENS.", err)
		}
		cfg.ResponseTokens = n
	}
	if v, ok := lookup["AUTOCOMMIT_DIFF_FILTER"]; ok && v != "" {
		cfg.DiffFilter = v
	}
	if v, ok := lookup["AUTOCOMMIT_EXCLUDE"]; ok && v != "" {
		cfg.ExcludePatterns = splitPatterns(v)
	}
	if v, ok := lookup["AUTOCOMMIT_AUTO_COMMIT"]; ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid AUTOCOMMIT_AUTO_COMMIT.", err)
		}
		cfg.AutoCommit = b
	}
	if v, ok := lookup["AUTOCOMMIT_EDIT"]; ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid AUTOCOMMIT_EDIT.", err)
		}
		cfg.EditAfterCommit = b
	}
	if v, ok := lookup["AUTOCOMMIT_TEMPERATURE"]; ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid AUTOCOMMIT_TEMPERATURE.", err)
		}
		cfg.Temperature = f
	}
	if v, ok := lookup["AUTOCOMMIT_TIMEOUT"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errkind.New(errkind.Precondition, "Invalid AUTOCOMMIT_TIMEOUT.", err)
		}
		cfg.Timeout = d
	}
	return nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o == nil {
		return
	}
	if o.APIToken != nil {
		cfg.APIToken = *o.APIToken
	}
	if o.Endpoint != nil {
		cfg.Endpoint = *o.Endpoint
	}
	if o.Model != nil {
		cfg.Model = *o.Model
	}
	if o.Language != nil {
		cfg.Language = *o.Language
	}
	if o.ResponseTokens != nil {
		cfg.ResponseTokens = *o.ResponseTokens
	}
	if o.DiffFilter != nil {
		cfg.DiffFilter = *o.DiffFilter
	}
	if o.ExcludePatterns != nil {
		cfg.ExcludePatterns = append([]string(nil), (*o.ExcludePatterns)...)
	}
	if o.AutoCommit != nil {
		cfg.AutoCommit = *o.AutoCommit
	}
	if o.EditAfterCommit != nil {
		cfg.EditAfterCommit = *o.EditAfterCommit
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
}

// envMap turns "K=V" entries into a map; later entries win.
func envMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			m[kv[:idx]] = kv[idx+1:]
		}
	}
	return m
}

// splitPatterns splits a comma-separated pattern list, trimming whitespace
// and dropping empty entries.
func splitPatterns(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseBool accepts 1/true/yes/on and 0/false/no/off (case-insensitive).
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
