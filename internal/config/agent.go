package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/parallel-finance/staking-agent/internal/types"
)

const (
	DefaultBondingDuration = 28
	DefaultChannelSize     = 10
	DefaultExecutionPolls  = 100
)

// AgentConfig holds the monitor and flow tunables.
type AgentConfig struct {
	// Minimum spendable pool balance before a stake is triggered.
	LowWaterMark string `mapstructure:"low-water-mark"`
	// Maximum amount staked by a single stake event.
	HighWaterMark string `mapstructure:"high-water-mark"`

	BalancePollInterval time.Duration `mapstructure:"balance-poll-interval"`
	StakeCooldown       time.Duration `mapstructure:"stake-cooldown"`
	EraPollInterval     time.Duration `mapstructure:"era-poll-interval"`
	ResubscribeDelay    time.Duration `mapstructure:"resubscribe-delay"`

	TimepointRetryInterval time.Duration `mapstructure:"timepoint-retry-interval"`
	TimepointMaxRetries    int           `mapstructure:"timepoint-max-retries"`
	ExecutionPollInterval  time.Duration `mapstructure:"execution-poll-interval"`
	ExecutionMaxPolls      int           `mapstructure:"execution-max-polls"`
	AwaitExecution         bool          `mapstructure:"await-execution"`

	BondingDuration  uint32 `mapstructure:"bonding-duration"`
	NumSlashingSpans uint32 `mapstructure:"num-slashing-spans"`
	ChannelSize      int    `mapstructure:"channel-size"`

	low  types.Balance
	high types.Balance
}

func (cfg *AgentConfig) Validate() error {
	low, err := types.ParseBalance(cfg.LowWaterMark)
	if err != nil {
		return fmt.Errorf("invalid low-water-mark: %w", err)
	}
	high, err := types.ParseBalance(cfg.HighWaterMark)
	if err != nil {
		return fmt.Errorf("invalid high-water-mark: %w", err)
	}
	if high.IsZero() {
		return errors.New("high-water-mark must be positive")
	}
	if high.Lt(low) {
		return errors.New("high-water-mark cannot be below low-water-mark")
	}
	cfg.low, cfg.high = low, high

	if cfg.BalancePollInterval <= 0 {
		return errors.New("balance-poll-interval must be positive")
	}
	if cfg.StakeCooldown <= cfg.BalancePollInterval {
		return errors.New("stake-cooldown must be longer than balance-poll-interval")
	}
	if cfg.EraPollInterval <= 0 {
		return errors.New("era-poll-interval must be positive")
	}
	if cfg.ResubscribeDelay <= 0 {
		cfg.ResubscribeDelay = 5 * time.Second
	}

	if cfg.TimepointRetryInterval <= 0 {
		return errors.New("timepoint-retry-interval must be positive")
	}
	if cfg.TimepointMaxRetries <= 0 {
		return errors.New("timepoint-max-retries must be positive")
	}
	if cfg.ExecutionPollInterval <= 0 {
		return errors.New("execution-poll-interval must be positive")
	}
	if cfg.ExecutionMaxPolls < 0 {
		return errors.New("execution-max-polls cannot be negative")
	}
	if cfg.ExecutionMaxPolls == 0 {
		cfg.ExecutionMaxPolls = DefaultExecutionPolls
	}

	if cfg.BondingDuration == 0 {
		cfg.BondingDuration = DefaultBondingDuration
	}
	if cfg.ChannelSize <= 0 {
		cfg.ChannelSize = DefaultChannelSize
	}

	return nil
}

func (cfg *AgentConfig) Low() types.Balance {
	return cfg.low
}

func (cfg *AgentConfig) High() types.Balance {
	return cfg.high
}
