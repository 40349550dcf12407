package testutil

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

// FromHex decodes a 0x prefixed (or bare) hex string, panicking on bad input.
func FromHex(s string) []byte {
	bz, err := codec.HexDecodeString(s)
	if err != nil {
		panic(err)
	}
	return bz
}
