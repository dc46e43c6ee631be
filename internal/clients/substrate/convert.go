package substrate

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/parallel-finance/staking-agent/internal/types"
)

func accountID(a types.Address) gsrpctypes.AccountID {
	return gsrpctypes.AccountID(a)
}

func accountIDs(addrs []types.Address) []gsrpctypes.AccountID {
	ids := make([]gsrpctypes.AccountID, len(addrs))
	for i, a := range addrs {
		ids[i] = accountID(a)
	}
	return ids
}

func u128(b types.Balance) gsrpctypes.U128 {
	return gsrpctypes.NewU128(*b.Big())
}

func compact(b types.Balance) gsrpctypes.UCompact {
	return gsrpctypes.NewUCompact(b.Big())
}

func balanceFromU128(v gsrpctypes.U128) (types.Balance, error) {
	if v.Int == nil {
		return types.Balance{}, nil
	}
	return types.BalanceFromBig(v.Int)
}

// normalizeValue maps decoded runtime values onto the agent's types. Account
// ids become types.Address and unsigned integers become types.Balance. Values
// it does not recognize are returned unchanged.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case gsrpctypes.AccountID:
		return types.Address(val)
	case *gsrpctypes.AccountID:
		if val != nil {
			return types.Address(*val)
		}
	case [types.AddressLength]byte:
		return types.Address(val)
	case gsrpctypes.U128:
		if b, err := balanceFromU128(val); err == nil {
			return b
		}
	case gsrpctypes.UCompact:
		i := big.Int(val)
		if b, err := types.BalanceFromBig(&i); err == nil {
			return b
		}
	case gsrpctypes.U64:
		return types.NewBalance(uint64(val))
	case gsrpctypes.U32:
		return types.NewBalance(uint64(val))
	case gsrpctypes.U16:
		return types.NewBalance(uint64(val))
	case registry.DecodedFields:
		// newtype wrappers such as AccountId32([u8; 32])
		if len(val) == 1 && val[0] != nil {
			return normalizeValue(val[0].Value)
		}
	case []gsrpctypes.U8:
		if len(val) == types.AddressLength {
			var a types.Address
			for i, b := range val {
				a[i] = byte(b)
			}
			return a
		}
	case []interface{}:
		if a, ok := addressFromElements(val); ok {
			return a
		}
	}
	return v
}

func addressFromElements(elems []interface{}) (types.Address, bool) {
	var a types.Address
	if len(elems) != types.AddressLength {
		return a, false
	}
	for i, e := range elems {
		switch b := e.(type) {
		case gsrpctypes.U8:
			a[i] = byte(b)
		case uint8:
			a[i] = b
		default:
			return a, false
		}
	}
	return a, true
}

func normalizeFields(fields registry.DecodedFields) []types.EventField {
	out := make([]types.EventField, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		out = append(out, types.EventField{Name: f.Name, Value: normalizeValue(f.Value)})
	}
	return out
}
