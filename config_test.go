package ordergate

import (
	"context"
	"testing"

	"github.com/oarkflow/ordergate/logger"
)

const testConfigYAML = `
version: 1
engine:
  role_cache_ttl_ms: 5000
  decision_buffer: 256
identity:
  hmac_secret: test-secret
managers:
  - uid: m1
    email: m1@dealer.example
`

func TestConfigLoadYAML(t *testing.T) {
	cfg, err := NewConfigLoader().LoadYAML([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Engine.RoleCacheTTL != 5000 || cfg.Engine.DecisionBuffer != 256 {
		t.Fatalf("engine config mismatch: %+v", cfg.Engine)
	}
	if len(cfg.Managers) != 1 || cfg.Managers[0].UID != "m1" {
		t.Fatalf("managers mismatch: %+v", cfg.Managers)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Roundtrip through JSON.
	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	cfg2, err := NewConfigLoader().LoadJSON(data)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if cfg2.Identity.HMACSecret != "test-secret" {
		t.Fatalf("identity lost in roundtrip: %+v", cfg2.Identity)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty config must validate: %v", err)
	}

	cfg = &Config{Identity: IdentityConfig{HMACSecret: "s", RSAPublicKeyPEM: "p"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for two identity mechanisms")
	}

	cfg = &Config{Managers: []SeedManager{{Email: "no-uid@dealer.example"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for manager without uid")
	}

	cfg = &Config{Engine: EngineConfig{RoleCacheTTL: -1}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
}

func TestConfigVerifier(t *testing.T) {
	cfg := &Config{Identity: IdentityConfig{HMACSecret: "test-secret"}}
	v, err := cfg.Verifier()
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	if v == nil {
		t.Fatalf("expected verifier for hmac config")
	}

	cfg = &Config{}
	v, err = cfg.Verifier()
	if err != nil || v != nil {
		t.Fatalf("expected no verifier and no error, got %v %v", v, err)
	}

	cfg = &Config{Identity: IdentityConfig{RSAPublicKeyPEM: "garbage"}}
	if _, err := cfg.Verifier(); err == nil {
		t.Fatalf("expected error for invalid rsa key")
	}
}

func TestBuildEngineFromSeedManagers(t *testing.T) {
	cfg, err := NewConfigLoader().LoadYAML([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}

	eng, err := cfg.BuildEngine(nil, WithLogger(logger.NewNullLogger()))
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	defer eng.Close()

	ctx := context.Background()
	dec := eng.Evaluate(ctx, Request{Actor: &ActorContext{UID: "m1", Email: "m1@dealer.example"}, Op: OpList, Kind: KindOrder})
	if !dec.Allowed {
		t.Fatalf("seeded manager list: expected allow, got %s: %s", dec.Cause, dec.Reason)
	}
	dec = eng.Evaluate(ctx, Request{Actor: &ActorContext{UID: "u2", Email: "u2@dealer.example"}, Op: OpList, Kind: KindOrder})
	if dec.Allowed {
		t.Fatalf("unseeded actor unconstrained list: expected deny")
	}
}

func TestBuildEngineFromSource(t *testing.T) {
	cfg, err := NewConfigLoader().LoadYAML([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}

	source := managerRecords()
	eng, err := cfg.BuildEngine(source, WithLogger(logger.NewNullLogger()))
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	defer eng.Close()

	dec := eng.Evaluate(context.Background(), Request{Actor: manager, Op: OpList, Kind: KindOrder})
	if !dec.Allowed {
		t.Fatalf("record-backed manager list: expected allow, got %s: %s", dec.Cause, dec.Reason)
	}
}
