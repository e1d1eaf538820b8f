// Package config loads the pipeline configuration: a yaml file for the
// tracked assets, wallets and store settings, and the process environment
// for credentials. Everything is resolved here once; adapters and the loader
// receive explicit values, never read the environment themselves.
package config

import (
	"fmt"
	"os"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultDriver       = "mysql"
	defaultVsCurrency   = "usd"
	defaultLookbackDays = 1
	defaultRequestDelay = 2 * time.Second
)

type Config struct {
	Database DatabaseConfig
	Prices   PricesConfig
	EVM      EVMConfig
	Starknet StarknetConfig
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type PricesConfig struct {
	VsCurrency   string
	LookbackDays int
	RequestDelay time.Duration
	Assets       []string
}

type EVMConfig struct {
	Address string
}

type StarknetConfig struct {
	Wallets []string
}

type configTmp struct {
	Database struct {
		Driver string `yaml:"driver,omitempty"`
		DSN    string `yaml:"dsn,omitempty"`
	} `yaml:"database"`
	Prices struct {
		VsCurrency          string   `yaml:"vs_currency,omitempty"`
		LookbackDays        int      `yaml:"lookback_days,omitempty"`
		RequestDelaySeconds int      `yaml:"request_delay_seconds,omitempty"`
		Assets              []string `yaml:"assets"`
	} `yaml:"prices"`
	EVM struct {
		Address string `yaml:"address,omitempty"`
	} `yaml:"evm"`
	Starknet struct {
		Wallets []string `yaml:"wallets"`
	} `yaml:"starknet"`
}

// Load reads and validates the yaml config at path.
func Load(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg := &Config{
		Database: DatabaseConfig{Driver: tmp.Database.Driver, DSN: tmp.Database.DSN},
		Prices: PricesConfig{
			VsCurrency:   tmp.Prices.VsCurrency,
			LookbackDays: tmp.Prices.LookbackDays,
			RequestDelay: time.Duration(tmp.Prices.RequestDelaySeconds) * time.Second,
			Assets:       tmp.Prices.Assets,
		},
		EVM:      EVMConfig{Address: tmp.EVM.Address},
		Starknet: StarknetConfig{Wallets: tmp.Starknet.Wallets},
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = defaultDriver
	}
	if c.Prices.VsCurrency == "" {
		c.Prices.VsCurrency = defaultVsCurrency
	}
	if c.Prices.LookbackDays == 0 {
		c.Prices.LookbackDays = defaultLookbackDays
	}
	if c.Prices.RequestDelay == 0 {
		c.Prices.RequestDelay = defaultRequestDelay
	}
}

func (c *Config) validate() error {
	if c.EVM.Address != "" && !ethcommon.IsHexAddress(c.EVM.Address) {
		return fmt.Errorf("invalid evm address: %s", c.EVM.Address)
	}
	if c.Prices.LookbackDays < 0 {
		return fmt.Errorf("invalid lookback_days: %d", c.Prices.LookbackDays)
	}
	return nil
}

// ResolveDSN returns the configured DSN, or builds a mysql DSN from the
// DB_* environment variables when the config file leaves it out.
func (c DatabaseConfig) ResolveDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}

	username := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if username == "" || host == "" || name == "" {
		return "", errors.New("database dsn not configured and DB_USERNAME/DB_HOST/DB_NAME not set")
	}
	if port == "" {
		port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, host, port, name), nil
}
