package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
)

// defaultNames labels chains that do not set a name.
var defaultNames = map[caip.ChainFamily]string{
	caip.ChainFamilyEthereum: "ethereum",
	caip.ChainFamilyCosmos:   "cosmos",
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9090
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.GasOracle.Source == "" {
		cfg.GasOracle.Source = "MEDIAN"
	}
	if cfg.GasOracle.Timeout == 0 {
		cfg.GasOracle.Timeout = 10 * time.Second
	}

	for i := range cfg.Chains {
		c := &cfg.Chains[i]
		if _, ok := defaultNames[c.Family]; !ok {
			return nil, fmt.Errorf("chain %d: unsupported family %q", i, c.Family)
		}
		if c.HTTPURL == "" {
			return nil, fmt.Errorf("chain %d (%s): http_url is required", i, c.Family)
		}
		if c.Name == "" {
			c.Name = defaultNames[c.Family]
		}
		if c.Timeout == 0 {
			c.Timeout = 30 * time.Second
		}
	}

	return &cfg, nil
}
