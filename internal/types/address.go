package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	AddressLength = 32

	ss58ChecksumLength = 2
	ss58Prefix         = "SS58PRE"
)

// Address is a 32 byte ledger account id. Addresses are totally ordered by
// their bytes, which is the order the multisig pallet expects for signatories.
type Address [AddressLength]byte

// ParseAddress accepts either a 0x prefixed hex account id or an SS58 string.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return addressFromHex(s[2:])
	}
	return addressFromSS58(s)
}

func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("invalid account id length %d, expected %d", len(b), AddressLength)
	}
	copy(a[:], b)
	return a, nil
}

func addressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex account id: %w", err)
	}
	return AddressFromBytes(b)
}

func addressFromSS58(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid ss58 address %q: %w", s, err)
	}
	if len(raw) < 1 {
		return Address{}, fmt.Errorf("invalid ss58 address %q: empty payload", s)
	}

	prefixLength := 1
	if raw[0]&0x40 != 0 {
		prefixLength = 2
	}
	if len(raw) != prefixLength+AddressLength+ss58ChecksumLength {
		return Address{}, fmt.Errorf("invalid ss58 address %q: unexpected length %d", s, len(raw))
	}

	body := raw[:len(raw)-ss58ChecksumLength]
	checksum := ss58Checksum(body)
	if !bytes.Equal(checksum, raw[len(raw)-ss58ChecksumLength:]) {
		return Address{}, fmt.Errorf("invalid ss58 address %q: checksum mismatch", s)
	}
	return AddressFromBytes(body[prefixLength:])
}

func ss58Checksum(body []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write([]byte(ss58Prefix))
	h.Write(body)
	return h.Sum(nil)[:ss58ChecksumLength]
}

// SS58 encodes the address for the given network prefix.
func (a Address) SS58(network uint16) string {
	var body []byte
	if network < 64 {
		body = append(body, byte(network))
	} else {
		body = append(body,
			byte((network&0x00fc)>>2)|0x40,
			byte(network>>8)|byte((network&0x0003)<<6),
		)
	}
	body = append(body, a[:]...)
	body = append(body, ss58Checksum(body)...)
	return base58.Encode(body)
}

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare returns -1, 0 or 1 following the byte order of the account ids.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
