package clients

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/types"
)

type Clients struct {
	Parachain  substrate.LedgerClient
	Relaychain substrate.LedgerClient
	// Signer is the local member's account id.
	Signer types.Address
}

// New derives the local key pair and connects to both ledgers.
func New(ctx context.Context, cfg *config.Config) (*Clients, error) {
	keyring, err := signature.KeyringPairFromSecret(cfg.Signer.Seed, cfg.Signer.NetworkPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid signer seed: %w", err)
	}
	signer, err := types.AddressFromBytes(keyring.PublicKey)
	if err != nil {
		return nil, err
	}

	parachain, err := substrate.NewSubstrateClient(ctx, types.Parachain, &cfg.Parachain, keyring)
	if err != nil {
		return nil, err
	}
	relaychain, err := substrate.NewSubstrateClient(ctx, types.Relaychain, &cfg.Relaychain, keyring)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Parachain:  parachain,
		Relaychain: relaychain,
		Signer:     signer,
	}, nil
}

// Ledger returns the client for l.
func (c *Clients) Ledger(l types.Ledger) substrate.LedgerClient {
	if l == types.Relaychain {
		return c.Relaychain
	}
	return c.Parachain
}
