package substrate

import (
	"context"
	"fmt"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// SubmitAndWatch signs the threshold call with the local key, submits it and
// waits until it is included, or finalized when the ledger is configured to
// wait for finality. An included extrinsic whose dispatch failed is a
// SubmissionError.
func (c *SubstrateClient) SubmitAndWatch(ctx context.Context, tc *types.ThresholdCall) (*types.ExecutionReceipt, error) {
	call, err := c.thresholdCall(tc)
	if err != nil {
		return nil, err
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	runtime, err := c.refreshRuntime(ctx)
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to load %s runtime version: %w", c.name, err))
	}
	nonce, err := c.nonce(ctx)
	if err != nil {
		return nil, err
	}

	ext := gsrpctypes.NewExtrinsic(call)
	opts := gsrpctypes.SignatureOptions{
		BlockHash:          c.genesis,
		Era:                gsrpctypes.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        c.genesis,
		Nonce:              gsrpctypes.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        runtime.SpecVersion,
		Tip:                gsrpctypes.NewUCompactFromUInt(0),
		TransactionVersion: runtime.TransactionVersion,
	}
	if err := ext.Sign(c.signer, opts); err != nil {
		return nil, types.WrapError(types.EncodingError, fmt.Errorf("failed to sign %s call: %w", tc.Kind, err))
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return nil, types.WrapError(types.SubmissionError, fmt.Errorf("failed to submit %s call to %s: %w", tc.Kind, c.name, err))
	}
	defer sub.Unsubscribe()

	logger := log.Ctx(ctx).With().
		Str("ledger", c.name.String()).
		Str("kind", string(tc.Kind)).
		Str("callHash", tc.CallHash.Hex()).
		Uint32("nonce", nonce).
		Logger()
	logger.Debug().Msg("extrinsic submitted")

	for {
		select {
		case <-ctx.Done():
			return nil, types.WrapError(types.SubmissionError, ctx.Err())
		case err := <-sub.Err():
			return nil, types.WrapError(types.SubmissionError, fmt.Errorf("watch of %s call failed: %w", tc.Kind, err))
		case status := <-sub.Chan():
			switch {
			case status.IsInBlock:
				logger.Info().Str("block", status.AsInBlock.Hex()).Msg("extrinsic included")
				if c.cfg.WaitFinality {
					continue
				}
				if err := c.checkDispatch(ctx, status.AsInBlock, ext); err != nil {
					return nil, err
				}
				return &types.ExecutionReceipt{BlockHash: status.AsInBlock.Hex()}, nil
			case status.IsFinalized:
				logger.Info().Str("block", status.AsFinalized.Hex()).Msg("extrinsic finalized")
				if err := c.checkDispatch(ctx, status.AsFinalized, ext); err != nil {
					return nil, err
				}
				return &types.ExecutionReceipt{BlockHash: status.AsFinalized.Hex(), Finalized: true}, nil
			case status.IsDropped, status.IsInvalid, status.IsUsurped:
				return nil, types.Errorf(types.SubmissionError, "%s call rejected by %s: %+v", tc.Kind, c.name, status)
			}
		}
	}
}
