package types

// PendingUnstake is created by an unstake request on the parachain and
// consumed by a relay unbonding of the same amount.
type PendingUnstake struct {
	Owner  Address `json:"owner"`
	Amount Balance `json:"amount"`
}

// PendingUnbonded waits for the relay to report the unbonded funds withdrawn.
type PendingUnbonded struct {
	Owner  Address `json:"owner"`
	Amount Balance `json:"amount"`
}

// EraLockRecord matures once the era advanced by the bonding duration.
type EraLockRecord struct {
	Controller Address `json:"controller"`
	Era        uint32  `json:"era"`
	Amount     Balance `json:"amount"`
}

// Matured reports whether the record can be withdrawn at era.
func (r EraLockRecord) Matured(era, bondingDuration uint32) bool {
	return era >= r.Era && era-r.Era >= bondingDuration
}

// DispatcherState is a point in time copy of the correlation state.
type DispatcherState struct {
	PendingUnstakes  []PendingUnstake  `json:"pendingUnstakes"`
	PendingUnbonded  []PendingUnbonded `json:"pendingUnbonded"`
	EraLocks         []EraLockRecord   `json:"eraLocks"`
	WithdrawUnbonded Balance           `json:"withdrawUnbonded"`
	LastEvent        EventKind         `json:"lastEvent,omitempty"`
	ProcessedEvents  uint64            `json:"processedEvents"`
}
