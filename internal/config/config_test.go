package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr: expected :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Oracle.StaticRate != 128.0 {
		t.Errorf("static rate: expected 128.0, got %v", cfg.Oracle.StaticRate)
	}
	if cfg.Economy.FeeRate != 0.003 {
		t.Errorf("fee rate: expected 0.003, got %v", cfg.Economy.FeeRate)
	}
	if cfg.Economy.YieldAPY != 0.05 {
		t.Errorf("yield apy: expected 0.05, got %v", cfg.Economy.YieldAPY)
	}
	if len(cfg.Seed.Accounts) != 2 || cfg.Seed.Accounts[0].Name != "Alice" || cfg.Seed.Accounts[0].Stable != 1000 {
		t.Errorf("seed accounts: unexpected %+v", cfg.Seed.Accounts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9999"
economy:
  fee_rate: 0.01
seed:
  accounts:
    - name: Carol
      stable: 42
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORACLE_STATIC_RATE", "64.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("server addr: expected :9999, got %q", cfg.Server.Addr)
	}
	if cfg.Economy.FeeRate != 0.01 {
		t.Errorf("fee rate: expected 0.01, got %v", cfg.Economy.FeeRate)
	}
	if cfg.Oracle.StaticRate != 64.5 {
		t.Errorf("static rate env override: expected 64.5, got %v", cfg.Oracle.StaticRate)
	}
	if len(cfg.Seed.Accounts) != 1 || cfg.Seed.Accounts[0].Name != "Carol" {
		t.Errorf("seed accounts: unexpected %+v", cfg.Seed.Accounts)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fee rate out of range", func(c *Config) { c.Economy.FeeRate = 1.5 }},
		{"negative apy", func(c *Config) { c.Economy.YieldAPY = -0.1 }},
		{"non-positive static rate", func(c *Config) { c.Oracle.StaticRate = -1 }},
		{"empty seed name", func(c *Config) { c.Seed.Accounts = []SeedAccount{{Name: "", Stable: 1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
