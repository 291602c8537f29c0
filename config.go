package ordergate

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete ordergate configuration.
type Config struct {
	Version  uint16         `json:"version" yaml:"version"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Identity IdentityConfig `json:"identity" yaml:"identity"`
	// Managers seeds a static manager set for deployments without a user
	// record source (tooling, tests). Ignored when a source is supplied.
	Managers []SeedManager `json:"managers,omitempty" yaml:"managers,omitempty"`
}

type EngineConfig struct {
	RoleCacheTTL        int64 `json:"role_cache_ttl_ms" yaml:"role_cache_ttl_ms"`
	DecisionBuffer      int   `json:"decision_buffer" yaml:"decision_buffer"`
	RistrettoNumCounter int64 `json:"ristretto_num_counter" yaml:"ristretto_num_counter"`
	RistrettoMaxCost    int64 `json:"ristretto_max_cost" yaml:"ristretto_max_cost"`
	RistrettoBuffer     int64 `json:"ristretto_buffer" yaml:"ristretto_buffer"`
}

type IdentityConfig struct {
	// HMACSecret enables the HS256 verifier.
	HMACSecret string `json:"hmac_secret,omitempty" yaml:"hmac_secret,omitempty"`
	// RSAPublicKeyPEM enables the RS256 verifier.
	RSAPublicKeyPEM string `json:"rsa_public_key_pem,omitempty" yaml:"rsa_public_key_pem,omitempty"`
}

type SeedManager struct {
	UID   string `json:"uid" yaml:"uid"`
	Email string `json:"email" yaml:"email"`
}

// ConfigLoader loads configuration from the supported formats.
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML exports config to YAML.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.Identity.HMACSecret != "" && c.Identity.RSAPublicKeyPEM != "" {
		return fmt.Errorf("identity: configure exactly one of hmac_secret and rsa_public_key_pem")
	}
	for i, m := range c.Managers {
		if m.UID == "" {
			return fmt.Errorf("managers[%d]: uid is required", i)
		}
	}
	if c.Engine.RoleCacheTTL < 0 {
		return fmt.Errorf("engine: role_cache_ttl_ms must not be negative")
	}
	return nil
}

// Verifier builds the credential verifier named by the identity section.
// Returns nil when no credential verification is configured.
func (c *Config) Verifier() (*CredentialVerifier, error) {
	if c.Identity.HMACSecret != "" {
		return NewHMACVerifier([]byte(c.Identity.HMACSecret)), nil
	}
	if c.Identity.RSAPublicKeyPEM != "" {
		pub, err := ParseRSAPublicKey([]byte(c.Identity.RSAPublicKeyPEM))
		if err != nil {
			return nil, err
		}
		return NewRSAVerifier(pub), nil
	}
	return nil, nil
}

// BuildEngine assembles an engine from the configuration. When source is
// nil the Managers seed list backs role resolution instead of a record read.
func (c *Config) BuildEngine(source UserRecordSource, extra ...EngineOption) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts := make([]EngineOption, 0, len(extra)+2)
	if c.Engine.DecisionBuffer > 0 {
		opts = append(opts, WithDecisionBuffer(c.Engine.DecisionBuffer))
	}

	if source == nil && len(c.Managers) > 0 {
		uids := make([]string, 0, len(c.Managers))
		for _, m := range c.Managers {
			uids = append(uids, m.UID)
		}
		opts = append(opts, WithRoleResolver(NewStaticResolver(uids...)))
	} else if source != nil {
		var ropts []RoleResolverOption
		if c.Engine.RoleCacheTTL > 0 {
			ropts = append(ropts, WithRoleCacheTTL(time.Duration(c.Engine.RoleCacheTTL)*time.Millisecond))
		}
		if c.Engine.RistrettoNumCounter > 0 {
			ropts = append(ropts, WithRoleCacheSize(c.Engine.RistrettoNumCounter, c.Engine.RistrettoMaxCost, c.Engine.RistrettoBuffer))
		}
		resolver, err := NewRoleResolver(source, ropts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRoleResolver(resolver))
	}

	opts = append(opts, extra...)
	return NewEngine(source, opts...)
}
