package types

import (
	"encoding/hex"
	"fmt"
)

const FingerprintLength = 32

// Fingerprint is the hash of an encoded inner call. Pending threshold
// operations are keyed by it.
type Fingerprint [FingerprintLength]byte

func (f Fingerprint) Hex() string {
	return "0x" + hex.EncodeToString(f[:])
}

func (f Fingerprint) String() string {
	return f.Hex()
}

func FingerprintFromHex(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, err
	}
	if len(b) != FingerprintLength {
		return f, fmt.Errorf("invalid fingerprint length %d", len(b))
	}
	copy(f[:], b)
	return f, nil
}

// Timepoint identifies the extrinsic that opened a threshold operation.
type Timepoint struct {
	Height uint32 `json:"height" bson:"height"`
	Index  uint32 `json:"index" bson:"index"`
}

func (t Timepoint) String() string {
	return fmt.Sprintf("%d-%d", t.Height, t.Index)
}

// PendingOperation is an open threshold operation awaiting closing approvals.
type PendingOperation struct {
	When      Timepoint
	Approvals []Address
	Depositor Address
}

type ThresholdCallKind string

const (
	ThresholdCallOpen  ThresholdCallKind = "open"
	ThresholdCallClose ThresholdCallKind = "close"
)

// ThresholdCall is either the open shape (call hash only, no timepoint) or the
// close shape (full encoded call plus the opening timepoint).
type ThresholdCall struct {
	Kind             ThresholdCallKind
	Action           Action
	Threshold        uint16
	OtherSignatories []Address
	Signatories      []Address
	Timepoint        *Timepoint
	CallHash         Fingerprint
	InnerCall        []byte
	MaxWeight        uint64
}

// ExecutionReceipt is returned once a submitted call is included.
type ExecutionReceipt struct {
	BlockHash string `json:"blockHash"`
	Finalized bool   `json:"finalized"`
}
