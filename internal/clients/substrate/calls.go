package substrate

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/parallel-finance/staking-agent/internal/types"
)

const (
	sudoMethod           = "Sudo.sudo"
	asMultiMethod        = "Multisig.as_multi"
	approveAsMultiMethod = "Multisig.approve_as_multi"
)

// maybeTimepoint encodes Option<Timepoint>.
type maybeTimepoint struct {
	tp *types.Timepoint
}

func (m maybeTimepoint) Encode(encoder scale.Encoder) error {
	if m.tp == nil {
		return encoder.PushByte(0)
	}
	if err := encoder.PushByte(1); err != nil {
		return err
	}
	if err := encoder.Encode(gsrpctypes.NewU32(m.tp.Height)); err != nil {
		return err
	}
	return encoder.Encode(gsrpctypes.NewU32(m.tp.Index))
}

// Encode returns the bytes dispatched for call, including the sudo wrapper
// when the ledger is configured for it. The fingerprint is computed over
// exactly these bytes.
func (c *SubstrateClient) Encode(call types.Call) ([]byte, error) {
	gc, err := c.buildCall(call)
	if err != nil {
		return nil, err
	}
	encoded, err := codec.Encode(gc)
	if err != nil {
		return nil, types.WrapError(types.EncodingError, fmt.Errorf("failed to encode %s: %w", call.Method(), err))
	}
	return encoded, nil
}

func (c *SubstrateClient) buildCall(call types.Call) (gsrpctypes.Call, error) {
	if call.Ledger() != c.name {
		return gsrpctypes.Call{}, types.Errorf(types.EncodingError, "%s cannot be submitted to the %s", call.Method(), c.name)
	}

	meta := c.metadata()
	args, err := callArgs(call)
	if err != nil {
		return gsrpctypes.Call{}, err
	}
	inner, err := gsrpctypes.NewCall(meta, call.Method(), args...)
	if err != nil {
		return gsrpctypes.Call{}, types.WrapError(types.EncodingError, fmt.Errorf("failed to build %s: %w", call.Method(), err))
	}

	if !c.cfg.WrapInSudo {
		return inner, nil
	}
	wrapped, err := gsrpctypes.NewCall(meta, sudoMethod, inner)
	if err != nil {
		return gsrpctypes.Call{}, types.WrapError(types.EncodingError, fmt.Errorf("failed to wrap %s in sudo: %w", call.Method(), err))
	}
	return wrapped, nil
}

func callArgs(call types.Call) ([]interface{}, error) {
	switch v := call.(type) {
	case types.StakeCall:
		return []interface{}{accountID(v.Agent), u128(v.Amount)}, nil
	case types.ProcessPendingUnstakeCall:
		return []interface{}{accountID(v.Agent), accountID(v.Owner), gsrpctypes.NewU32(v.Era), u128(v.Amount)}, nil
	case types.FinishProcessedUnstakeCall:
		return []interface{}{accountID(v.Agent), accountID(v.Owner), u128(v.Amount)}, nil
	case types.RecordRewardsCall:
		return []interface{}{accountID(v.Agent), u128(v.Amount)}, nil
	case types.RecordSlashCall:
		return []interface{}{accountID(v.Agent), u128(v.Amount)}, nil
	case types.BondCall:
		controller, err := gsrpctypes.NewMultiAddressFromAccountID(v.Controller.Bytes())
		if err != nil {
			return nil, types.WrapError(types.EncodingError, err)
		}
		return []interface{}{controller, compact(v.Amount), gsrpctypes.NewU8(uint8(v.Payee))}, nil
	case types.BondExtraCall:
		return []interface{}{compact(v.Amount)}, nil
	case types.WithdrawUnbondedCall:
		return []interface{}{gsrpctypes.NewU32(v.NumSlashingSpans)}, nil
	default:
		return nil, types.Errorf(types.EncodingError, "unsupported call %T", call)
	}
}

// thresholdCall builds approve_as_multi for the open shape and as_multi for
// the close shape.
func (c *SubstrateClient) thresholdCall(tc *types.ThresholdCall) (gsrpctypes.Call, error) {
	meta := c.metadata()
	others := accountIDs(tc.OtherSignatories)
	threshold := gsrpctypes.NewU16(tc.Threshold)
	weight := gsrpctypes.NewU64(tc.MaxWeight)

	var (
		call gsrpctypes.Call
		err  error
	)
	switch tc.Kind {
	case types.ThresholdCallOpen:
		call, err = gsrpctypes.NewCall(meta, approveAsMultiMethod,
			threshold, others, maybeTimepoint{tc.Timepoint}, gsrpctypes.NewHash(tc.CallHash[:]), weight)
	case types.ThresholdCallClose:
		if tc.Timepoint == nil {
			return gsrpctypes.Call{}, types.Errorf(types.EncodingError, "close call for %s has no timepoint", tc.CallHash)
		}
		call, err = gsrpctypes.NewCall(meta, asMultiMethod,
			threshold, others, maybeTimepoint{tc.Timepoint}, gsrpctypes.NewBytes(tc.InnerCall), gsrpctypes.NewBool(false), weight)
	default:
		return gsrpctypes.Call{}, types.Errorf(types.EncodingError, "unknown threshold call kind %q", tc.Kind)
	}
	if err != nil {
		return gsrpctypes.Call{}, types.WrapError(types.EncodingError, err)
	}
	return call, nil
}
