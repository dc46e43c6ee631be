package types

import (
	"github.com/rs/zerolog"
)

type Ledger string

const (
	Parachain  Ledger = "parachain"
	Relaychain Ledger = "relaychain"
)

func (l Ledger) String() string {
	return string(l)
}

// Action names the domain action a threshold operation performs.
type Action string

const (
	ActionStake                  Action = "stake"
	ActionBond                   Action = "bond"
	ActionBondExtra              Action = "bond-extra"
	ActionProcessPendingUnstake  Action = "unstake-process"
	ActionFinishProcessedUnstake Action = "unstake-finish"
	ActionWithdrawUnbonded       Action = "withdraw-unbonded"
	ActionRecordRewards          Action = "record-rewards"
	ActionRecordSlash            Action = "record-slash"
)

func (a Action) String() string {
	return string(a)
}

// Call is an inner domain call wrapped by a threshold operation.
type Call interface {
	zerolog.LogObjectMarshaler
	Ledger() Ledger
	Action() Action
	// Method is the "Pallet.function" name of the call.
	Method() string
}

// StakeCall moves pooled funds from the parachain towards the relay agent.
type StakeCall struct {
	Agent  Address
	Amount Balance
}

func (c StakeCall) Ledger() Ledger { return Parachain }
func (c StakeCall) Action() Action { return ActionStake }
func (c StakeCall) Method() string { return "LiquidStaking.withdraw" }
func (c StakeCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("agent", c.Agent.Hex()).Str("amount", c.Amount.String())
}

// ProcessPendingUnstakeCall tells the parachain an unstake has been unbonded on the relay.
type ProcessPendingUnstakeCall struct {
	Agent  Address
	Owner  Address
	Era    uint32
	Amount Balance
}

func (c ProcessPendingUnstakeCall) Ledger() Ledger { return Parachain }
func (c ProcessPendingUnstakeCall) Action() Action { return ActionProcessPendingUnstake }
func (c ProcessPendingUnstakeCall) Method() string {
	return "LiquidStaking.process_pending_unstake"
}
func (c ProcessPendingUnstakeCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("agent", c.Agent.Hex()).
		Str("owner", c.Owner.Hex()).
		Uint32("era", c.Era).
		Str("amount", c.Amount.String())
}

// FinishProcessedUnstakeCall returns withdrawn funds to the unstake owner.
type FinishProcessedUnstakeCall struct {
	Agent  Address
	Owner  Address
	Amount Balance
}

func (c FinishProcessedUnstakeCall) Ledger() Ledger { return Parachain }
func (c FinishProcessedUnstakeCall) Action() Action { return ActionFinishProcessedUnstake }
func (c FinishProcessedUnstakeCall) Method() string {
	return "LiquidStaking.finish_processed_unstake"
}
func (c FinishProcessedUnstakeCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("agent", c.Agent.Hex()).Str("owner", c.Owner.Hex()).Str("amount", c.Amount.String())
}

type RecordRewardsCall struct {
	Agent  Address
	Amount Balance
}

func (c RecordRewardsCall) Ledger() Ledger { return Parachain }
func (c RecordRewardsCall) Action() Action { return ActionRecordRewards }
func (c RecordRewardsCall) Method() string { return "LiquidStaking.record_rewards" }
func (c RecordRewardsCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("agent", c.Agent.Hex()).Str("amount", c.Amount.String())
}

type RecordSlashCall struct {
	Agent  Address
	Amount Balance
}

func (c RecordSlashCall) Ledger() Ledger { return Parachain }
func (c RecordSlashCall) Action() Action { return ActionRecordSlash }
func (c RecordSlashCall) Method() string { return "LiquidStaking.record_slash" }
func (c RecordSlashCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("agent", c.Agent.Hex()).Str("amount", c.Amount.String())
}

// RewardDestination mirrors the staking pallet payee enum.
type RewardDestination uint8

const (
	PayeeStaked RewardDestination = iota
	PayeeStash
	PayeeController
)

// BondCall is the first bond of the relay stash.
type BondCall struct {
	Controller Address
	Amount     Balance
	Payee      RewardDestination
}

func (c BondCall) Ledger() Ledger { return Relaychain }
func (c BondCall) Action() Action { return ActionBond }
func (c BondCall) Method() string { return "Staking.bond" }
func (c BondCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("controller", c.Controller.Hex()).
		Str("amount", c.Amount.String()).
		Uint8("payee", uint8(c.Payee))
}

type BondExtraCall struct {
	Amount Balance
}

func (c BondExtraCall) Ledger() Ledger { return Relaychain }
func (c BondExtraCall) Action() Action { return ActionBondExtra }
func (c BondExtraCall) Method() string { return "Staking.bond_extra" }
func (c BondExtraCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("amount", c.Amount.String())
}

type WithdrawUnbondedCall struct {
	NumSlashingSpans uint32
}

func (c WithdrawUnbondedCall) Ledger() Ledger { return Relaychain }
func (c WithdrawUnbondedCall) Action() Action { return ActionWithdrawUnbonded }
func (c WithdrawUnbondedCall) Method() string { return "Staking.withdraw_unbonded" }
func (c WithdrawUnbondedCall) MarshalZerologObject(e *zerolog.Event) {
	e.Uint32("numSlashingSpans", c.NumSlashingSpans)
}
