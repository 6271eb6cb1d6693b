package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. KTLINT_REVIEW_LINT_LIMIT.
const EnvPrefix = "KTLINT_REVIEW"

// ProjectConfigFiles are searched, in order, in the project directory and then $HOME.
var ProjectConfigFiles = []string{
	".ktlint-review.yaml",
	".ktlint-review.yml",
	".ktlint-review.json",
	".ktlint-review.toml",
}

// Publish outputs
const (
	OutputMarkdown = "markdown"
	OutputText     = "text"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
	OutputGitHub   = "github"
)

// Config holds all configuration for ktlint-review
type Config struct {
	Lint     LintConfig     `mapstructure:"lint"`
	Platform PlatformConfig `mapstructure:"platform"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Changes  ChangesConfig  `mapstructure:"changes"`

	// File is the configuration file that was loaded, if any
	File string `mapstructure:"-"`
}

// LintConfig controls how ktlint issues are produced and dispatched
type LintConfig struct {
	Filtering          bool          `mapstructure:"filtering"`
	ReportFile         string        `mapstructure:"report_file"`
	ReportFilesPattern string        `mapstructure:"report_files_pattern"`
	ReportFormat       string        `mapstructure:"report_format"` // auto | json | checkstyle
	SkipLint           bool          `mapstructure:"skip_lint"`
	Limit              *int          `mapstructure:"limit"`
	Inline             bool          `mapstructure:"inline"`
	Timeout            time.Duration `mapstructure:"timeout"`
	KtlintPath         string        `mapstructure:"ktlint_path"`
	ExcludeRules       []string      `mapstructure:"exclude_rules"`
	ChangedLinesOnly   bool          `mapstructure:"changed_lines_only"`
	Policy             string        `mapstructure:"policy"`    // Rego module evaluated per issue
	Gitignore          bool          `mapstructure:"gitignore"` // drop issues in gitignored files
}

// PlatformConfig identifies the code-review host and the reviewed revision
type PlatformConfig struct {
	Name    string `mapstructure:"name"` // github | gitlab | bitbucket_server
	RepoURL string `mapstructure:"repo_url"`
	Commit  string `mapstructure:"commit"`
}

// PublishConfig selects where review feedback goes
type PublishConfig struct {
	Output string       `mapstructure:"output"`
	GitHub GitHubConfig `mapstructure:"github"`
}

// GitHubConfig holds pull request posting settings
type GitHubConfig struct {
	Repository  string `mapstructure:"repository"` // owner/name
	PullRequest int    `mapstructure:"pull_request"`
	Token       string `mapstructure:"token"`
	APIURL      string `mapstructure:"api_url"`
}

// ChangesConfig controls change-set discovery
type ChangesConfig struct {
	BaseRef string `mapstructure:"base_ref"`
}

var defaultConfig = Config{
	Lint: LintConfig{
		Filtering:    true,
		ReportFormat: "auto",
		Timeout:      parseDurationDefault("10m"),
	},
	Publish: PublishConfig{
		Output: OutputMarkdown,
	},
}

// keys lists every recognized key so environment variables bind even without a default.
var keys = []string{
	"lint.filtering",
	"lint.report_file",
	"lint.report_files_pattern",
	"lint.report_format",
	"lint.skip_lint",
	"lint.limit",
	"lint.inline",
	"lint.timeout",
	"lint.ktlint_path",
	"lint.exclude_rules",
	"lint.changed_lines_only",
	"lint.policy",
	"lint.gitignore",
	"platform.name",
	"platform.repo_url",
	"platform.commit",
	"publish.output",
	"publish.github.repository",
	"publish.github.pull_request",
	"publish.github.token",
	"publish.github.api_url",
	"changes.base_ref",
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// Dir is the project directory searched for a config file
	Dir string
	// File is an explicit config file; it must exist
	File string
	// Flags are applied last, but only those the user changed
	Flags *pflag.FlagSet
	// FlagKeys maps flag names to config keys
	FlagKeys map[string]string
	// Getenv reads CI environment fallbacks; defaults to os.Getenv
	Getenv func(string) string
}

// Load resolves configuration from defaults, the config file, KTLINT_REVIEW_*
// environment variables and changed flags, in increasing precedence. Platform
// details still unset afterwards are filled in from the CI environment.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-selected config file
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := ValidateConfig(data, path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if opts.Flags != nil {
		if err := applyChangedFlags(v, opts.Flags, opts.FlagKeys); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ValidationError{Source: "configuration", Problems: []string{err.Error()}}
	}
	cfg.File = path

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.ApplyCIEnvironment(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lint.filtering", defaultConfig.Lint.Filtering)
	v.SetDefault("lint.report_format", defaultConfig.Lint.ReportFormat)
	v.SetDefault("lint.skip_lint", false)
	v.SetDefault("lint.inline", false)
	v.SetDefault("lint.timeout", defaultConfig.Lint.Timeout)
	v.SetDefault("lint.exclude_rules", []string{})
	v.SetDefault("lint.changed_lines_only", false)
	v.SetDefault("lint.gitignore", false)
	v.SetDefault("publish.output", defaultConfig.Publish.Output)
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", fmt.Errorf("config file %s: %w", opts.File, err)
		}
		return opts.File, nil
	}

	dirs := []string{opts.Dir}
	if opts.Dir == "" {
		dirs[0] = "."
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range ProjectConfigFiles {
			p := filepath.Join(dir, name)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}
	return "", nil
}

// applyChangedFlags copies flags the user set into v. Untouched flags never
// mask file or environment values.
func applyChangedFlags(v *viper.Viper, fs *pflag.FlagSet, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		var (
			val interface{}
			err error
		)
		switch f.Value.Type() {
		case "bool":
			val, err = fs.GetBool(name)
		case "int":
			val, err = fs.GetInt(name)
		case "duration":
			val, err = fs.GetDuration(name)
		case "stringSlice":
			val, err = fs.GetStringSlice(name)
		case "stringArray":
			val, err = fs.GetStringArray(name)
		default:
			val = f.Value.String()
		}
		if err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
		v.Set(key, val)
	}
	return nil
}

var pullRefPattern = regexp.MustCompile(`^refs/pull/(\d+)/`)

// ApplyCIEnvironment fills unset platform and GitHub settings from the
// environment of GitHub Actions or GitLab CI.
func (c *Config) ApplyCIEnvironment(getenv func(string) string) {
	onGitHub := getenv("GITHUB_ACTIONS") == "true"
	onGitLab := getenv("GITLAB_CI") != ""

	if c.Platform.Name == "" {
		switch {
		case onGitHub:
			c.Platform.Name = "github"
		case onGitLab:
			c.Platform.Name = "gitlab"
		}
	}

	switch c.Platform.Name {
	case "github":
		if c.Platform.RepoURL == "" {
			server, repo := getenv("GITHUB_SERVER_URL"), getenv("GITHUB_REPOSITORY")
			if server == "" && repo != "" {
				server = "https://github.com"
			}
			if repo != "" {
				c.Platform.RepoURL = strings.TrimSuffix(server, "/") + "/" + repo
			}
		}
		if c.Platform.Commit == "" {
			c.Platform.Commit = getenv("GITHUB_SHA")
		}
	case "gitlab":
		if c.Platform.RepoURL == "" {
			c.Platform.RepoURL = getenv("CI_PROJECT_URL")
		}
		if c.Platform.Commit == "" {
			c.Platform.Commit = getenv("CI_COMMIT_SHA")
		}
	}

	gh := &c.Publish.GitHub
	if gh.Repository == "" {
		gh.Repository = getenv("GITHUB_REPOSITORY")
	}
	if gh.Token == "" {
		gh.Token = getenv("GITHUB_TOKEN")
	}
	if gh.APIURL == "" {
		gh.APIURL = getenv("GITHUB_API_URL")
	}
	if gh.PullRequest == 0 {
		if m := pullRefPattern.FindStringSubmatch(getenv("GITHUB_REF")); m != nil {
			gh.PullRequest, _ = strconv.Atoi(m[1])
		}
	}
	if c.Changes.BaseRef == "" && onGitHub {
		if base := getenv("GITHUB_BASE_REF"); base != "" {
			c.Changes.BaseRef = "origin/" + base
		}
	}
	if c.Changes.BaseRef == "" && onGitLab {
		if base := getenv("CI_MERGE_REQUEST_TARGET_BRANCH_NAME"); base != "" {
			c.Changes.BaseRef = "origin/" + base
		}
	}
}

// ErrInvalidOutput indicates an unknown publish.output value
var ErrInvalidOutput = errors.New("output must be one of markdown, text, json, yaml, github")

// Validate checks values that flags and environment variables can still get wrong.
func (c *Config) Validate() error {
	var problems []string
	if c.Lint.Limit != nil && *c.Lint.Limit < 0 {
		problems = append(problems, fmt.Sprintf("lint.limit: must be a non-negative integer, got %d", *c.Lint.Limit))
	}
	switch c.Publish.Output {
	case OutputMarkdown, OutputText, OutputJSON, OutputYAML, OutputGitHub:
	default:
		problems = append(problems, fmt.Sprintf("publish.output: %v, got %q", ErrInvalidOutput, c.Publish.Output))
	}
	if c.Lint.Timeout < 0 {
		problems = append(problems, "lint.timeout: must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Source: "configuration", Problems: problems}
	}
	return nil
}

// parseDurationDefault is a helper to create default duration values from string literal
func parseDurationDefault(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
