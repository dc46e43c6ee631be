package substrate

import (
	"errors"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/staking-agent/internal/types"
)

type fakeEventRetriever struct {
	events map[gsrpctypes.Hash][]*parser.Event
	err    error
}

func (f *fakeEventRetriever) GetEvents(blockHash gsrpctypes.Hash) ([]*parser.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[blockHash], nil
}

func applyEvent(name string, index uint32, fields registry.DecodedFields) *parser.Event {
	return &parser.Event{
		Name:   name,
		Fields: fields,
		Phase:  &gsrpctypes.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: index},
	}
}

var includedBlock = gsrpctypes.NewHash([]byte{0x01, 0x02})

func TestDispatchResultSuccess(t *testing.T) {
	events := &fakeEventRetriever{events: map[gsrpctypes.Hash][]*parser.Event{
		includedBlock: {
			{Name: "ParachainSystem.ValidationFunctionStored", Phase: &gsrpctypes.Phase{IsInitialization: true}},
			applyEvent(extrinsicSuccessEvent, 0, nil),
			applyEvent("Multisig.NewMultisig", 1, nil),
			applyEvent(extrinsicSuccessEvent, 1, nil),
		},
	}}

	assert.NoError(t, dispatchResult(events, includedBlock, 1))
}

func TestDispatchResultFailedExtrinsic(t *testing.T) {
	events := &fakeEventRetriever{events: map[gsrpctypes.Hash][]*parser.Event{
		includedBlock: {
			applyEvent(extrinsicSuccessEvent, 0, nil),
			applyEvent(extrinsicFailedEvent, 2, registry.DecodedFields{
				{Name: "dispatch_error", Value: "Module(Multisig.WrongTimepoint)"},
			}),
			applyEvent(extrinsicSuccessEvent, 3, nil),
		},
	}}

	err := dispatchResult(events, includedBlock, 2)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.SubmissionError))
	assert.ErrorContains(t, err, "WrongTimepoint")
}

func TestDispatchResultMissing(t *testing.T) {
	events := &fakeEventRetriever{events: map[gsrpctypes.Hash][]*parser.Event{
		includedBlock: {applyEvent(extrinsicSuccessEvent, 0, nil)},
	}}
	err := dispatchResult(events, includedBlock, 4)
	assert.True(t, types.IsErrorCode(err, types.SubmissionError))

	err = dispatchResult(&fakeEventRetriever{err: errors.New("state pruned")}, includedBlock, 0)
	assert.True(t, types.IsErrorCode(err, types.ConnectionError))
}

func TestExtrinsicIndex(t *testing.T) {
	ext := func(method uint8, args ...byte) gsrpctypes.Extrinsic {
		return gsrpctypes.NewExtrinsic(gsrpctypes.Call{
			CallIndex: gsrpctypes.CallIndex{SectionIndex: 31, MethodIndex: method},
			Args:      args,
		})
	}
	block := []gsrpctypes.Extrinsic{ext(0, 1), ext(1, 2), ext(1, 3)}

	index, err := extrinsicIndex(block, ext(1, 3))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), index)

	_, err = extrinsicIndex(block, ext(2, 3))
	assert.ErrorContains(t, err, "not found")
}
