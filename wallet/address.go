package wallet

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/vedhavyas/go-subkey/v2"
)

// EncodeAddress returns the SS58 address of a 32 byte public key.
func EncodeAddress(publicKey []byte, prefix uint16) (string, error) {
	if len(publicKey) != 32 {
		return "", fmt.Errorf("invalid sr25519 public key, expecting %d bytes but got %d", 32, len(publicKey))
	}
	return subkey.SS58Encode(publicKey, prefix), nil
}

// DecodeAddress parses an SS58 address, verifying its checksum, and returns
// the network prefix and account id.
func DecodeAddress(addr string) (uint16, *types.AccountID, error) {
	prefix, payload, err := subkey.SS58Decode(addr)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid address %s: %w", addr, err)
	}
	if len(payload) != 32 {
		return 0, nil, fmt.Errorf("invalid address %s: expected a 32 byte account id, got %d bytes", addr, len(payload))
	}
	accountID, err := types.NewAccountID(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid address %s: %w", addr, err)
	}
	return prefix, accountID, nil
}

// DecodeMulti parses an SS58 address into a MultiAddress usable as a call argument.
func DecodeMulti(addr string) (types.MultiAddress, error) {
	_, accountID, err := DecodeAddress(addr)
	if err != nil {
		return types.MultiAddress{}, err
	}
	return types.NewMultiAddressFromAccountID(accountID.ToBytes())
}
