package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FluxLedger/internal/model"
)

// SeedAccount provisions one account at startup with a stable balance.
type SeedAccount struct {
	Name   string  `yaml:"name"`
	Stable float64 `yaml:"stable"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Oracle struct {
		BaseURL    string  `yaml:"base_url"`
		APIKey     string  `yaml:"api_key"`
		Pair       string  `yaml:"pair"`
		StaticRate float64 `yaml:"static_rate"`
	} `yaml:"oracle"`
	Schedule struct {
		YieldCron    string `yaml:"yield_cron"`
		OracleCron   string `yaml:"oracle_cron"`
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Economy struct {
		FeeRate  float64 `yaml:"fee_rate"`
		YieldAPY float64 `yaml:"yield_apy"`
	} `yaml:"economy"`
	Seed struct {
		Accounts []SeedAccount `yaml:"accounts"`
	} `yaml:"seed"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("ORACLE_STATIC_RATE"); v != "" {
		var rate float64
		if _, err := fmt.Sscanf(v, "%f", &rate); err == nil {
			cfg.Oracle.StaticRate = rate
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_YIELD"); v != "" {
		cfg.Schedule.YieldCron = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Oracle.Pair == "" {
		cfg.Oracle.Pair = "stable-pegged"
	}
	if cfg.Oracle.StaticRate == 0 {
		cfg.Oracle.StaticRate = model.DefaultOracleRate
	}
	if cfg.Schedule.YieldCron == "" {
		cfg.Schedule.YieldCron = "0 0 0 * * 1" // Monday 00:00, once a week
	}
	if cfg.Schedule.OracleCron == "" {
		cfg.Schedule.OracleCron = "0 0 * * * *" // hourly
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "0 0 */6 * * *"
	}
	if cfg.Economy.FeeRate == 0 {
		cfg.Economy.FeeRate = model.DefaultFeeRate
	}
	if cfg.Economy.YieldAPY == 0 {
		cfg.Economy.YieldAPY = 0.05
	}
	if len(cfg.Seed.Accounts) == 0 {
		cfg.Seed.Accounts = []SeedAccount{
			{Name: "Alice", Stable: 1000},
			{Name: "Bob", Stable: 500},
		}
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fluxledger.db"
	}

	return cfg, nil
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Economy.FeeRate < 0 || c.Economy.FeeRate >= 1 {
		return fmt.Errorf("economy.fee_rate must be in [0, 1)")
	}
	if c.Economy.YieldAPY < 0 {
		return fmt.Errorf("economy.yield_apy must be non-negative")
	}
	if c.Oracle.StaticRate <= 0 {
		return fmt.Errorf("oracle.static_rate must be positive")
	}
	for _, acct := range c.Seed.Accounts {
		if acct.Name == "" {
			return fmt.Errorf("seed account with empty name")
		}
		if acct.Stable < 0 {
			return fmt.Errorf("seed account %q has negative stable balance", acct.Name)
		}
	}
	return nil
}
