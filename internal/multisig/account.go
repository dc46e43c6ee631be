package multisig

import (
	"fmt"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"golang.org/x/crypto/blake2b"

	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

// accountPrefix is the domain separator the multisig pallet hashes in front of
// the signatories when deriving a threshold account.
const accountPrefix = "modlpy/utilisuba"

// SortedInsert validates others and returns the full member list with self
// inserted at its sorted position. others must be strictly ascending and must
// not contain self.
func SortedInsert(others []types.Address, self types.Address) ([]types.Address, error) {
	if utils.Contains(others, self) {
		return nil, types.Errorf(types.DuplicateSignatory, "signer %s is listed among the other signatories", self)
	}
	for i := 1; i < len(others); i++ {
		if !others[i-1].Less(others[i]) {
			return nil, types.Errorf(types.UnsortedSignatories,
				"other signatories out of order at position %d: %s >= %s", i, others[i-1], others[i])
		}
	}

	members := make([]types.Address, 0, len(others)+1)
	inserted := false
	for _, o := range others {
		if !inserted && self.Less(o) {
			members = append(members, self)
			inserted = true
		}
		members = append(members, o)
	}
	if !inserted {
		members = append(members, self)
	}
	return members, nil
}

// DeriveThresholdAccount computes the account controlled jointly by members.
// members must already be sorted, see SortedInsert.
func DeriveThresholdAccount(members []types.Address, threshold uint16) (types.Address, error) {
	ids := make([]gsrpctypes.AccountID, len(members))
	for i, m := range members {
		ids[i] = gsrpctypes.AccountID(m)
	}
	encodedMembers, err := codec.Encode(ids)
	if err != nil {
		return types.Address{}, types.WrapError(types.EncodingError, fmt.Errorf("failed to encode signatories: %w", err))
	}
	encodedThreshold, err := codec.Encode(gsrpctypes.NewU16(threshold))
	if err != nil {
		return types.Address{}, types.WrapError(types.EncodingError, fmt.Errorf("failed to encode threshold: %w", err))
	}

	h, _ := blake2b.New256(nil)
	h.Write([]byte(accountPrefix))
	h.Write(encodedMembers)
	h.Write(encodedThreshold)

	var account types.Address
	copy(account[:], h.Sum(nil))
	return account, nil
}

// Fingerprint hashes an encoded inner call.
func Fingerprint(encodedCall []byte) types.Fingerprint {
	return types.Fingerprint(blake2b.Sum256(encodedCall))
}
