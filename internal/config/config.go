// Package config loads the YAML flow configuration for the websignin tool
// and converts it into authflow options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/websignin/websignin/sdk/authflow"
)

// DefaultCallbackPort is used when the configuration does not pin one.
const DefaultCallbackPort = 8085

// Overrides pre-seeds the security-critical request parameters. Supplying
// code-challenge without code-verifier delegates PKCE to whoever performs
// the token exchange.
type Overrides struct {
	State               string `yaml:"state,omitempty"`
	Nonce               string `yaml:"nonce,omitempty"`
	CodeChallenge       string `yaml:"code-challenge,omitempty"`
	CodeChallengeMethod string `yaml:"code-challenge-method,omitempty"`
	CodeVerifier        string `yaml:"code-verifier,omitempty"`
}

// Config holds one interactive sign-in flow definition.
type Config struct {
	// AuthorizationURL is the identity provider's authorization endpoint.
	AuthorizationURL string `yaml:"authorization-url"`
	// PARURL, when set, switches dispatch to a pushed authorization request.
	PARURL string `yaml:"par-url,omitempty"`
	// TokenURL enables the automatic code-for-token exchange after the flow.
	TokenURL string `yaml:"token-url,omitempty"`
	ClientID string `yaml:"client-id"`
	// ClientSecret is used only for the token exchange.
	ClientSecret string `yaml:"client-secret,omitempty"`
	RedirectURL  string `yaml:"redirect-url,omitempty"`
	// ResponseType accepts any combination of code, id_token, token, none.
	ResponseType string `yaml:"response-type,omitempty"`
	Scope        string `yaml:"scope,omitempty"`
	// UsePKCE defaults to true when omitted.
	UsePKCE      *bool             `yaml:"use-pkce,omitempty"`
	ResponseMode string            `yaml:"response-mode,omitempty"`
	ExtraParams  map[string]string `yaml:"extra-params,omitempty"`
	Overrides    Overrides         `yaml:"overrides,omitempty"`

	// Surface settings.
	UserAgent    string `yaml:"user-agent,omitempty"`
	ProfileDir   string `yaml:"profile-dir,omitempty"`
	OSAccountSSO bool   `yaml:"os-account-sso,omitempty"`
	CallbackPort int    `yaml:"callback-port,omitempty"`
	CallbackPath string `yaml:"callback-path,omitempty"`

	// CompletionPattern overrides the default error-only completion regexp.
	CompletionPattern string `yaml:"completion-pattern,omitempty"`

	ProxyURL      string `yaml:"proxy-url,omitempty"`
	Debug         bool   `yaml:"debug,omitempty"`
	LoggingToFile bool   `yaml:"logging-to-file,omitempty"`
	LogDir        string `yaml:"log-dir,omitempty"`
}

// LoadConfig reads and parses the YAML configuration file at the given
// path, applying defaults for omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.ResponseType == "" {
		cfg.ResponseType = "code"
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = DefaultCallbackPort
	}
	return &cfg, nil
}

// FlowOptions converts the configuration into planner options.
func (c *Config) FlowOptions() *authflow.Options {
	opts := authflow.NewOptions(c.AuthorizationURL, c.ClientID)
	opts.RedirectURL = c.RedirectURL
	opts.ResponseType = c.ResponseType
	opts.Scope = c.Scope
	if c.UsePKCE != nil {
		opts.UsePKCE = *c.UsePKCE
	}
	opts.ResponseMode = authflow.ResponseMode(c.ResponseMode)
	opts.UserAgent = c.UserAgent
	opts.Security = authflow.SecurityOverrides{
		State:               c.Overrides.State,
		Nonce:               c.Overrides.Nonce,
		CodeChallenge:       c.Overrides.CodeChallenge,
		CodeChallengeMethod: c.Overrides.CodeChallengeMethod,
		CodeVerifier:        c.Overrides.CodeVerifier,
	}
	opts.Extra = c.ExtraParams
	return opts
}

// SurfaceConfig converts the configuration into surface settings.
func (c *Config) SurfaceConfig() authflow.SurfaceConfig {
	return authflow.SurfaceConfig{
		UserAgent:    c.UserAgent,
		ProfileDir:   c.ProfileDir,
		OSAccountSSO: c.OSAccountSSO,
	}
}
