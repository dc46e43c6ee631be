package multisig

import (
	"github.com/parallel-finance/staking-agent/internal/types"
)

// Encoder is the ledger primitive that turns a domain call into the bytes the
// runtime dispatches.
type Encoder interface {
	Encode(call types.Call) ([]byte, error)
}

// Builder assembles open and close calls for one threshold account on one ledger.
type Builder struct {
	encoder   Encoder
	threshold uint16
	others    []types.Address
	members   []types.Address
	account   types.Address
	maxWeight uint64
}

func NewBuilder(
	encoder Encoder, self types.Address, others []types.Address, threshold uint16, maxWeight uint64,
) (*Builder, error) {
	members, err := SortedInsert(others, self)
	if err != nil {
		return nil, err
	}
	account, err := DeriveThresholdAccount(members, threshold)
	if err != nil {
		return nil, err
	}

	return &Builder{
		encoder:   encoder,
		threshold: threshold,
		others:    append([]types.Address(nil), others...),
		members:   members,
		account:   account,
		maxWeight: maxWeight,
	}, nil
}

// Account is the derived threshold account.
func (b *Builder) Account() types.Address {
	return b.account
}

func (b *Builder) Threshold() uint16 {
	return b.threshold
}

func (b *Builder) Members() []types.Address {
	return append([]types.Address(nil), b.members...)
}

// Fingerprint encodes call and returns its fingerprint along with the encoding.
func (b *Builder) Fingerprint(call types.Call) (types.Fingerprint, []byte, error) {
	encoded, err := b.encoder.Encode(call)
	if err != nil {
		return types.Fingerprint{}, nil, types.WrapError(types.EncodingError, err)
	}
	return Fingerprint(encoded), encoded, nil
}

// Open builds the call registering intent for call under the threshold account.
func (b *Builder) Open(call types.Call) (*types.ThresholdCall, error) {
	hash, _, err := b.Fingerprint(call)
	if err != nil {
		return nil, err
	}
	return b.assemble(types.ThresholdCallOpen, call, hash, nil, nil), nil
}

// Close builds the call carrying the full inner call and the opening timepoint.
func (b *Builder) Close(call types.Call, when types.Timepoint) (*types.ThresholdCall, error) {
	hash, encoded, err := b.Fingerprint(call)
	if err != nil {
		return nil, err
	}
	return b.assemble(types.ThresholdCallClose, call, hash, encoded, &when), nil
}

func (b *Builder) assemble(
	kind types.ThresholdCallKind, call types.Call, hash types.Fingerprint, encoded []byte, when *types.Timepoint,
) *types.ThresholdCall {
	return &types.ThresholdCall{
		Kind:             kind,
		Action:           call.Action(),
		Threshold:        b.threshold,
		OtherSignatories: append([]types.Address(nil), b.others...),
		Signatories:      b.Members(),
		Timepoint:        when,
		CallHash:         hash,
		InnerCall:        encoded,
		MaxWeight:        b.maxWeight,
	}
}
