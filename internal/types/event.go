package types

import "strings"

type EventKind string

const (
	EventStakeAmount      EventKind = "stake-amount"
	EventUnstakeRequested EventKind = "unstake-requested"
	EventUnbonded         EventKind = "unbonded"
	EventEraRollover      EventKind = "era-rollover"
	EventWithdrawn        EventKind = "withdrawn"
	EventReward           EventKind = "reward"
	EventSlash            EventKind = "slash"
)

func (k EventKind) String() string {
	return string(k)
}

// Event is a domain event forwarded by a monitor to the dispatcher.
type Event interface {
	Kind() EventKind
}

type StakeAmountEvent struct {
	Amount Balance `json:"amount"`
}

func (StakeAmountEvent) Kind() EventKind { return EventStakeAmount }

type UnstakeRequestedEvent struct {
	Owner  Address `json:"owner"`
	Amount Balance `json:"amount"`
}

func (UnstakeRequestedEvent) Kind() EventKind { return EventUnstakeRequested }

type UnbondedEvent struct {
	Agent  Address `json:"agent"`
	Amount Balance `json:"amount"`
}

func (UnbondedEvent) Kind() EventKind { return EventUnbonded }

type EraRolloverEvent struct {
	Era uint32 `json:"era"`
}

func (EraRolloverEvent) Kind() EventKind { return EventEraRollover }

type WithdrawnEvent struct {
	Agent  Address `json:"agent"`
	Amount Balance `json:"amount"`
}

func (WithdrawnEvent) Kind() EventKind { return EventWithdrawn }

type RewardEvent struct {
	Agent  Address `json:"agent"`
	Amount Balance `json:"amount"`
}

func (RewardEvent) Kind() EventKind { return EventReward }

type SlashEvent struct {
	Agent  Address `json:"agent"`
	Amount Balance `json:"amount"`
}

func (SlashEvent) Kind() EventKind { return EventSlash }

// EventField is one named field of a ledger event. Ledger clients normalize
// account ids to Address and integers to Balance where they can; anything else
// is passed through untouched.
type EventField struct {
	Name  string
	Value interface{}
}

// LedgerEvent is a finalized runtime event as seen by a ledger client.
type LedgerEvent struct {
	// Name is "Pallet.Variant".
	Name        string
	BlockNumber uint64
	Fields      []EventField
}

// EventFilter selects runtime events by pallet and variant name.
type EventFilter struct {
	Pallet string
	Name   string
}

func (f EventFilter) String() string {
	return f.Pallet + "." + f.Name
}

func (f EventFilter) Matches(name string) bool {
	pallet, variant, ok := strings.Cut(name, ".")
	if !ok {
		return false
	}
	return pallet == f.Pallet && variant == f.Name
}
