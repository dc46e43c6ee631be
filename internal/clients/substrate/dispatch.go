package substrate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/parallel-finance/staking-agent/internal/types"
)

const (
	extrinsicSuccessEvent = "System.ExtrinsicSuccess"
	extrinsicFailedEvent  = "System.ExtrinsicFailed"
)

// checkDispatch finds ext in the block it was included in and fails with a
// SubmissionError when the runtime rejected it.
func (c *SubstrateClient) checkDispatch(ctx context.Context, block gsrpctypes.Hash, ext gsrpctypes.Extrinsic) error {
	signed, err := withTimeout(ctx, c.cfg.Timeout, func() (*gsrpctypes.SignedBlock, error) {
		return c.api.RPC.Chain.GetBlock(block)
	})
	if err != nil {
		return types.WrapError(types.ConnectionError, fmt.Errorf("failed to load %s block %s: %w", c.name, block.Hex(), err))
	}
	index, err := extrinsicIndex(signed.Block.Extrinsics, ext)
	if err != nil {
		return types.WrapError(types.SubmissionError, fmt.Errorf("%s block %s: %w", c.name, block.Hex(), err))
	}
	return dispatchResult(c.events, block, index)
}

func extrinsicIndex(extrinsics []gsrpctypes.Extrinsic, ext gsrpctypes.Extrinsic) (uint32, error) {
	want, err := codec.Encode(ext)
	if err != nil {
		return 0, err
	}
	for i, candidate := range extrinsics {
		got, err := codec.Encode(candidate)
		if err != nil {
			continue
		}
		if bytes.Equal(got, want) {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("submitted extrinsic not found among %d extrinsics", len(extrinsics))
}

// dispatchResult reads the System.ExtrinsicSuccess or System.ExtrinsicFailed
// event emitted for the extrinsic at index.
func dispatchResult(events retriever.EventRetriever, block gsrpctypes.Hash, index uint32) error {
	raw, err := events.GetEvents(block)
	if err != nil {
		return types.WrapError(types.ConnectionError, fmt.Errorf("failed to read events of block %s: %w", block.Hex(), err))
	}
	for _, ev := range raw {
		if ev == nil || ev.Phase == nil || !ev.Phase.IsApplyExtrinsic || ev.Phase.AsApplyExtrinsic != index {
			continue
		}
		switch ev.Name {
		case extrinsicSuccessEvent:
			return nil
		case extrinsicFailedEvent:
			return types.Errorf(
				types.SubmissionError, "extrinsic %d in block %s failed: %v", index, block.Hex(), normalizeFields(ev.Fields),
			)
		}
	}
	return types.Errorf(types.SubmissionError, "no dispatch result for extrinsic %d in block %s", index, block.Hex())
}
