package substrate

import (
	"context"
	"fmt"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/types"
)

type accountHeader struct {
	Nonce       gsrpctypes.U32
	Consumers   gsrpctypes.U32
	Providers   gsrpctypes.U32
	Sufficients gsrpctypes.U32
}

// systemAccount is System.Account with the current AccountData layout.
// Flags carries bookkeeping bits, not a balance.
type systemAccount struct {
	Header accountHeader
	Data struct {
		Free     gsrpctypes.U128
		Reserved gsrpctypes.U128
		Frozen   gsrpctypes.U128
		Flags    gsrpctypes.U128
	}
}

// legacySystemAccount is System.Account on runtimes that still split the
// frozen balance into misc and fee parts.
type legacySystemAccount struct {
	Header accountHeader
	Data struct {
		Free       gsrpctypes.U128
		Reserved   gsrpctypes.U128
		MiscFrozen gsrpctypes.U128
		FeeFrozen  gsrpctypes.U128
	}
}

type tokensAccount struct {
	Free     gsrpctypes.U128
	Reserved gsrpctypes.U128
	Frozen   gsrpctypes.U128
}

type timepoint struct {
	Height gsrpctypes.U32
	Index  gsrpctypes.U32
}

type multisigRecord struct {
	When      timepoint
	Deposit   gsrpctypes.U128
	Depositor gsrpctypes.AccountID
	Approvals []gsrpctypes.AccountID
}

// readStorage returns false when the key holds no value.
func (c *SubstrateClient) readStorage(
	ctx context.Context, target interface{}, pallet, item string, args ...[]byte,
) (bool, error) {
	key, err := gsrpctypes.CreateStorageKey(c.metadata(), pallet, item, args...)
	if err != nil {
		return false, types.WrapError(types.EncodingError, fmt.Errorf("failed to create %s.%s storage key: %w", pallet, item, err))
	}
	ok, err := withTimeout(ctx, c.cfg.Timeout, func() (bool, error) {
		return c.api.RPC.State.GetStorageLatest(key, target)
	})
	if err != nil {
		return false, types.WrapError(types.ConnectionError, fmt.Errorf("failed to read %s.%s on %s: %w", pallet, item, c.name, err))
	}
	return ok, nil
}

func (c *SubstrateClient) GetBalance(ctx context.Context, account types.Address) (*types.AccountBalance, error) {
	var (
		free, frozen gsrpctypes.U128
	)
	switch c.cfg.BalanceSource {
	case config.BalanceSourceTokens:
		var acc tokensAccount
		if _, err := c.readStorage(ctx, &acc, "Tokens", "Accounts", account.Bytes(), c.cfg.CurrencyIdBytes()); err != nil {
			return nil, err
		}
		free, frozen = acc.Free, acc.Frozen
	case config.BalanceSourceSystemLegacy:
		var acc legacySystemAccount
		if _, err := c.readStorage(ctx, &acc, "System", "Account", account.Bytes()); err != nil {
			return nil, err
		}
		free, frozen = acc.Data.Free, maxU128(acc.Data.MiscFrozen, acc.Data.FeeFrozen)
	default:
		var acc systemAccount
		if _, err := c.readStorage(ctx, &acc, "System", "Account", account.Bytes()); err != nil {
			return nil, err
		}
		free, frozen = acc.Data.Free, acc.Data.Frozen
	}

	freeBalance, err := balanceFromU128(free)
	if err != nil {
		return nil, types.WrapError(types.DecodeError, err)
	}
	frozenBalance, err := balanceFromU128(frozen)
	if err != nil {
		return nil, types.WrapError(types.DecodeError, err)
	}
	return &types.AccountBalance{Free: freeBalance, Frozen: frozenBalance}, nil
}

func maxU128(a, b gsrpctypes.U128) gsrpctypes.U128 {
	if a.Int == nil {
		return b
	}
	if b.Int == nil || a.Cmp(b.Int) >= 0 {
		return a
	}
	return b
}

func (c *SubstrateClient) GetPendingOperation(
	ctx context.Context, account types.Address, hash types.Fingerprint,
) (*types.PendingOperation, error) {
	var record multisigRecord
	ok, err := c.readStorage(ctx, &record, "Multisig", "Multisigs", account.Bytes(), hash[:])
	if err != nil || !ok {
		return nil, err
	}

	approvals := make([]types.Address, len(record.Approvals))
	for i, a := range record.Approvals {
		approvals[i] = types.Address(a)
	}
	return &types.PendingOperation{
		When:      types.Timepoint{Height: uint32(record.When.Height), Index: uint32(record.When.Index)},
		Approvals: approvals,
		Depositor: types.Address(record.Depositor),
	}, nil
}

// GetEraIndex reads Staking.CurrentEra. An unset era reads as zero.
func (c *SubstrateClient) GetEraIndex(ctx context.Context) (uint32, error) {
	var era gsrpctypes.U32
	if _, err := c.readStorage(ctx, &era, "Staking", "CurrentEra"); err != nil {
		return 0, err
	}
	return uint32(era), nil
}

func (c *SubstrateClient) IsBonded(ctx context.Context, stash types.Address) (bool, error) {
	var controller gsrpctypes.AccountID
	return c.readStorage(ctx, &controller, "Staking", "Bonded", stash.Bytes())
}

func (c *SubstrateClient) nonce(ctx context.Context) (uint32, error) {
	signer, err := types.AddressFromBytes(c.signer.PublicKey)
	if err != nil {
		return 0, types.WrapError(types.EncodingError, err)
	}
	var acc systemAccount
	if _, err := c.readStorage(ctx, &acc, "System", "Account", signer.Bytes()); err != nil {
		return 0, err
	}
	return uint32(acc.Header.Nonce), nil
}
