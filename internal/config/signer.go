package config

import (
	"errors"
	"fmt"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// SignerConfig describes the local member of the threshold group.
type SignerConfig struct {
	// Secret URI or mnemonic of the local signer, normally injected as SIGNER_SEED.
	Seed string `mapstructure:"seed"`
	// SS58 network prefix used when rendering addresses and deriving the keyring pair.
	NetworkPrefix uint16 `mapstructure:"network-prefix"`
	Threshold     uint16 `mapstructure:"threshold"`
	// Other members, sorted ascending by account id, excluding the local signer.
	OtherSignatories []string `mapstructure:"other-signatories"`
	// Optional. When set, the derived threshold account must match it.
	MultisigAddress string `mapstructure:"multisig-address"`
	IsOpener        bool   `mapstructure:"is-opener"`

	others   []types.Address
	multisig *types.Address
}

func (cfg *SignerConfig) Validate() error {
	if cfg.Seed == "" {
		return errors.New("missing signer seed")
	}

	if len(cfg.OtherSignatories) == 0 {
		return errors.New("at least one other signatory is required")
	}

	others := make([]types.Address, 0, len(cfg.OtherSignatories))
	for _, s := range cfg.OtherSignatories {
		a, err := types.ParseAddress(s)
		if err != nil {
			return fmt.Errorf("invalid other signatory: %w", err)
		}
		others = append(others, a)
	}
	cfg.others = others

	if cfg.Threshold < 2 || int(cfg.Threshold) > len(others)+1 {
		return fmt.Errorf("threshold must be between 2 and %d", len(others)+1)
	}

	if cfg.MultisigAddress != "" {
		a, err := types.ParseAddress(cfg.MultisigAddress)
		if err != nil {
			return fmt.Errorf("invalid multisig address: %w", err)
		}
		cfg.multisig = &a
	}

	return nil
}

// Others returns the parsed other signatories in configured order.
func (cfg *SignerConfig) Others() []types.Address {
	return append([]types.Address(nil), cfg.others...)
}

// ExpectedMultisig returns the configured threshold account, if any.
func (cfg *SignerConfig) ExpectedMultisig() *types.Address {
	return cfg.multisig
}
