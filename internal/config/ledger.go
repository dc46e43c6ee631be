package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/parallel-finance/staking-agent/internal/types"
)

type BalanceSource string

const (
	// System.Account storage, used by the relay chain native token.
	BalanceSourceSystem BalanceSource = "system"
	// System.Account on runtimes with separate misc and fee frozen balances.
	BalanceSourceSystemLegacy BalanceSource = "system-legacy"
	// orml Tokens.Accounts storage, used for parachain pool currencies.
	BalanceSourceTokens BalanceSource = "tokens"
)

const DefaultMaxWeight = 1_000_000_000_000

type LedgerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// Account whose balance the agent watches. Defaults to the threshold account.
	PoolAddress   string        `mapstructure:"pool-address"`
	BalanceSource BalanceSource `mapstructure:"balance-source"`
	// SCALE encoded currency id, hex, for the tokens balance source.
	CurrencyId   string        `mapstructure:"currency-id"`
	WrapInSudo   bool          `mapstructure:"wrap-in-sudo"`
	MaxWeight    uint64        `mapstructure:"max-weight"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WaitFinality bool          `mapstructure:"wait-finality"`

	pool       *types.Address
	currencyId []byte
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("endpoint cannot be empty")
	}

	parsedURL, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return errors.New("invalid ledger endpoint")
	}

	if parsedURL.Scheme != "ws" && parsedURL.Scheme != "wss" {
		return errors.New("endpoint must start with ws or wss")
	}

	if cfg.PoolAddress != "" {
		a, err := types.ParseAddress(cfg.PoolAddress)
		if err != nil {
			return fmt.Errorf("invalid pool address: %w", err)
		}
		cfg.pool = &a
	}

	switch cfg.BalanceSource {
	case "":
		cfg.BalanceSource = BalanceSourceSystem
	case BalanceSourceSystem, BalanceSourceSystemLegacy:
	case BalanceSourceTokens:
		if cfg.CurrencyId == "" {
			return errors.New("currency-id is required for the tokens balance source")
		}
		id, err := hex.DecodeString(strings.TrimPrefix(cfg.CurrencyId, "0x"))
		if err != nil {
			return fmt.Errorf("invalid currency-id: %w", err)
		}
		cfg.currencyId = id
	default:
		return fmt.Errorf("unsupported balance source: %s", cfg.BalanceSource)
	}

	if cfg.MaxWeight == 0 {
		cfg.MaxWeight = DefaultMaxWeight
	}

	if cfg.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return nil
}

// Pool returns the configured pool address, or nil to use the threshold account.
func (cfg *LedgerConfig) Pool() *types.Address {
	return cfg.pool
}

func (cfg *LedgerConfig) CurrencyIdBytes() []byte {
	return cfg.currencyId
}
