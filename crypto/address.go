package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix is the human-readable part of a bech32 ledger address.
const AddressPrefix = "give"

// ErrInvalidAddress marks malformed or foreign bech32 strings.
var ErrInvalidAddress = errors.New("crypto: invalid address")

// Address represents a 20-byte ledger identity with a bech32 rendering.
// Donors and beneficiaries are both addressed this way; the core never
// learns anything about the keys behind an address.
type Address [20]byte

// NewAddress copies the supplied raw bytes into an Address.
func NewAddress(b []byte) (Address, error) {
	var addr Address
	if len(b) != len(addr) {
		return addr, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, len(addr), len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// String renders the address as a bech32 string with the ledger prefix.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return ""
	}
	encoded, err := bech32.Encode(AddressPrefix, conv)
	if err != nil {
		return ""
	}
	return encoded
}

// Bytes returns a copy of the raw 20-byte payload.
func (a Address) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}

// ParseAddress decodes a bech32 string produced by Address.String.
func ParseAddress(s string) (Address, error) {
	var addr Address
	prefix, data, err := bech32.Decode(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if prefix != AddressPrefix {
		return addr, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAddress, prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return NewAddress(raw)
}

// MustParseAddress is a test and tooling helper that panics on bad input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}
