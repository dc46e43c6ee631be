package types

import (
	"encoding/json"
	"fmt"
)

// EncodeCallPayload serializes call so it can be stored and rebuilt later
// with DecodeCallPayload.
func EncodeCallPayload(call Call) (string, error) {
	b, err := json.Marshal(call)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", call.Action(), err)
	}
	return string(b), nil
}

func DecodeCallPayload(action Action, payload string) (Call, error) {
	var call Call
	switch action {
	case ActionStake:
		call = decodeInto[StakeCall](payload)
	case ActionBond:
		call = decodeInto[BondCall](payload)
	case ActionBondExtra:
		call = decodeInto[BondExtraCall](payload)
	case ActionProcessPendingUnstake:
		call = decodeInto[ProcessPendingUnstakeCall](payload)
	case ActionFinishProcessedUnstake:
		call = decodeInto[FinishProcessedUnstakeCall](payload)
	case ActionWithdrawUnbonded:
		call = decodeInto[WithdrawUnbondedCall](payload)
	case ActionRecordRewards:
		call = decodeInto[RecordRewardsCall](payload)
	case ActionRecordSlash:
		call = decodeInto[RecordSlashCall](payload)
	default:
		return nil, Errorf(DecodeError, "unknown action %q", action)
	}
	if call == nil {
		return nil, Errorf(DecodeError, "malformed %s payload", action)
	}
	return call, nil
}

func decodeInto[T Call](payload string) Call {
	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil
	}
	return v
}
