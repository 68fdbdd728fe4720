// Package config holds the process-wide configuration for a discovery
// run. A single Config is built once by the driver, validated, and then
// shared read-only across every concurrent runner.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all discovery options. It is read-only after
// construction and safe for concurrent use by reference.
type Config struct {
	// Target settings
	TargetURL string   `yaml:"target"`
	Targets   []string `yaml:"targets"`
	Method    string   `yaml:"method"`

	// Probing behaviour
	InjectionPlace     string `yaml:"injection_place"`      // query, body, headers
	LearnRequestsCount int    `yaml:"learn_requests_count"` // stability rounds (default: 9)
	MaxParams          int    `yaml:"max_params"`           // params per request; 0 = auto from 128
	Verify             bool   `yaml:"verify"`               // re-validate findings against baseline
	ReflectedOnly      bool   `yaml:"reflected_only"`       // only report reflected parameters

	// Custom parameter sweep (name -> ordered candidate values)
	DisableCustomParameters bool                `yaml:"disable_custom_parameters"`
	CustomParameters        map[string][]string `yaml:"custom_parameters"`

	// Transport settings
	Timeout         time.Duration     `yaml:"timeout"`
	RateLimit       int               `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Retries         int               `yaml:"retries"`
	Proxy           string            `yaml:"proxy"`
	ReplayProxy     string            `yaml:"replay_proxy"` // empty = replay disabled
	FollowRedirects bool              `yaml:"follow_redirects"`
	Headers         map[string]string `yaml:"headers"`

	// Cross-target execution
	Concurrency int `yaml:"concurrency"`

	// Output settings
	Verbose int  `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`
}

// DefaultConfig returns sensible defaults tuned for probing a single
// endpoint without tripping rate limits.
func DefaultConfig() *Config {
	return &Config{
		Method:             "GET",
		InjectionPlace:     "query",
		LearnRequestsCount: 9,
		Timeout:            15 * time.Second,
		Retries:            1,
		Concurrency:        1,
		CustomParameters:   DefaultCustomParameters(),
	}
}

// DefaultCustomParameters returns the built-in dictionary of common
// parameter names with their usual toggle values, probed by the
// non-random sweep.
func DefaultCustomParameters() map[string][]string {
	values := []string{"1", "0", "true", "false", "yes", "no", "null"}
	params := make(map[string][]string)
	for _, name := range []string{
		"admin", "bot", "captcha", "debug", "disable",
		"encryption", "env", "show", "sso", "test", "waf",
	} {
		vals := make([]string, len(values))
		copy(vals, values)
		params[name] = vals
	}
	return params
}

// LoadFile reads a YAML config file and overlays it on the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.TargetURL == "" && len(c.Targets) == 0 {
		return fmt.Errorf("%w: target", ErrMissingRequired)
	}
	for _, t := range c.AllTargets() {
		u, err := url.Parse(t)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: bad target URL %q", ErrInvalidConfig, t)
		}
	}
	switch c.InjectionPlace {
	case "", "query", "body", "headers":
	default:
		return fmt.Errorf("%w: unknown injection place %q", ErrInvalidConfig, c.InjectionPlace)
	}
	if c.LearnRequestsCount < 1 {
		return fmt.Errorf("%w: learn_requests_count must be >= 1", ErrInvalidConfig)
	}
	if c.MaxParams < 0 {
		return fmt.Errorf("%w: max_params must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// AllTargets returns the combined target list, with TargetURL first.
func (c *Config) AllTargets() []string {
	var targets []string
	if c.TargetURL != "" {
		targets = append(targets, c.TargetURL)
	}
	return append(targets, c.Targets...)
}
