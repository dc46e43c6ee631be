package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig  `mapstructure:"server"`
	Signer     SignerConfig  `mapstructure:"signer"`
	Parachain  LedgerConfig  `mapstructure:"parachain"`
	Relaychain LedgerConfig  `mapstructure:"relaychain"`
	Agent      AgentConfig   `mapstructure:"agent"`
	Db         DbConfig      `mapstructure:"db"`
	Queue      QueueConfig   `mapstructure:"queue"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	if err := cfg.Signer.Validate(); err != nil {
		return err
	}

	if err := cfg.Parachain.Validate(); err != nil {
		return fmt.Errorf("parachain: %w", err)
	}

	if err := cfg.Relaychain.Validate(); err != nil {
		return fmt.Errorf("relaychain: %w", err)
	}

	if err := cfg.Agent.Validate(); err != nil {
		return err
	}

	if err := cfg.Db.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	if err := cfg.Queue.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed Config object from a given file directory
func New(cfgFile string) (*Config, error) {
	_, err := os.Stat(cfgFile)
	if err != nil {
		return nil, err
	}

	viper.SetConfigFile(cfgFile)

	viper.AutomaticEnv()
	/*
		Below code will replace nested fields in yml into `_` and any `-` into `__` when you try to override this config via env variable
		To give an example:
		1. `signer.seed` can be overriden by `SIGNER_SEED`
		2. `agent.low-water-mark` can be overriden by `AGENT_LOW__WATER__MARK`
		This keeps the signer seed out of the config file.
	*/
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "__"))

	err = viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
