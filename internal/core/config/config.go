package config

import (
	"time"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	redisclient "github.com/Soptq/shapeshift-lib/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Redis     redisclient.Config `yaml:"redis"`
	GasOracle GasOracleConfig    `yaml:"gas_oracle"`
	Chains    []ChainConfig      `yaml:"chains"`
}

// ServerConfig holds the metrics server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// GasOracleConfig points at a gas price oracle.
type GasOracleConfig struct {
	URL     string        `yaml:"url"`
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChainConfig holds settings for one adapter.
type ChainConfig struct {
	// Name is the adapter label; for cosmos it also selects the zone.
	Name     string           `yaml:"name"`
	Family   caip.ChainFamily `yaml:"family"`
	HTTPURL  string           `yaml:"http_url"`
	WSURL    string           `yaml:"ws_url"`
	Timeout  time.Duration    `yaml:"timeout"`
	GasLimit string           `yaml:"gas_limit"` // cosmos only

	// GasOracle overrides the top-level oracle for this chain.
	GasOracle *GasOracleConfig   `yaml:"gas_oracle"`
	BIP44     *chain.BIP44Params `yaml:"bip44"`
}

// Oracle returns the oracle settings that apply to c.
func (c ChainConfig) Oracle(global GasOracleConfig) GasOracleConfig {
	if c.GasOracle == nil {
		return global
	}
	o := *c.GasOracle
	if o.Source == "" {
		o.Source = global.Source
	}
	if o.Timeout == 0 {
		o.Timeout = global.Timeout
	}
	return o
}
