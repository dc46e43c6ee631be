package monitor

import (
	"github.com/parallel-finance/staking-agent/internal/types"
)

var (
	UnstakedFilter  = types.EventFilter{Pallet: "LiquidStaking", Name: "Unstaked"}
	UnbondedFilter  = types.EventFilter{Pallet: "Staking", Name: "Unbonded"}
	WithdrawnFilter = types.EventFilter{Pallet: "Staking", Name: "Withdrawn"}
	RewardedFilter  = types.EventFilter{Pallet: "Staking", Name: "Rewarded"}
	SlashedFilter   = types.EventFilter{Pallet: "Staking", Name: "Slashed"}
)

// accountAndAmount reads the (account, balance) pair every forwarded event
// carries. Fields are matched by type so renamed fields still decode.
func accountAndAmount(le types.LedgerEvent) (types.Address, types.Balance, error) {
	var (
		account    types.Address
		amount     types.Balance
		hasAccount bool
		hasAmount  bool
	)
	for _, f := range le.Fields {
		switch v := f.Value.(type) {
		case types.Address:
			if !hasAccount {
				account, hasAccount = v, true
			}
		case types.Balance:
			if !hasAmount {
				amount, hasAmount = v, true
			}
		}
	}
	if !hasAccount || !hasAmount {
		return account, amount, types.Errorf(types.DecodeError, "%s: missing account or amount field", le.Name)
	}
	return account, amount, nil
}

func DecodeUnstaked(le types.LedgerEvent) (types.Event, error) {
	owner, amount, err := accountAndAmount(le)
	if err != nil {
		return nil, err
	}
	return types.UnstakeRequestedEvent{Owner: owner, Amount: amount}, nil
}

// StashDecoders builds the relay decoders, dropping events of other accounts.
type StashDecoders struct {
	Stash types.Address
}

func (d StashDecoders) decode(le types.LedgerEvent, build func(types.Address, types.Balance) types.Event) (types.Event, error) {
	account, amount, err := accountAndAmount(le)
	if err != nil {
		return nil, err
	}
	if account != d.Stash {
		return nil, nil
	}
	return build(account, amount), nil
}

func (d StashDecoders) Unbonded(le types.LedgerEvent) (types.Event, error) {
	return d.decode(le, func(a types.Address, amt types.Balance) types.Event {
		return types.UnbondedEvent{Agent: a, Amount: amt}
	})
}

func (d StashDecoders) Withdrawn(le types.LedgerEvent) (types.Event, error) {
	return d.decode(le, func(a types.Address, amt types.Balance) types.Event {
		return types.WithdrawnEvent{Agent: a, Amount: amt}
	})
}

func (d StashDecoders) Rewarded(le types.LedgerEvent) (types.Event, error) {
	return d.decode(le, func(a types.Address, amt types.Balance) types.Event {
		return types.RewardEvent{Agent: a, Amount: amt}
	})
}

func (d StashDecoders) Slashed(le types.LedgerEvent) (types.Event, error) {
	return d.decode(le, func(a types.Address, amt types.Balance) types.Event {
		return types.SlashEvent{Agent: a, Amount: amt}
	})
}
