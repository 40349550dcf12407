package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeAddress(t *testing.T) {
	require := require.New(t)
	bytes, _ := hex.DecodeString("192c3c7e5789b461fbf1c7f614ba5eed0b22efc507cda60a5e7fda8e046bcdce")
	address, err := EncodeAddress(bytes, 0)
	require.NoError(err)
	require.Equal("1a1LcBX6hGPKg5aQ6DXZpAHCCzWjckhea4sz3P1PvL3oc4F", address)

	_, err = EncodeAddress([]byte{1, 2, 3}, 0)
	require.ErrorContains(err, "invalid sr25519 public key")
}

func TestDecodeAddress(t *testing.T) {
	require := require.New(t)
	prefix, accountID, err := DecodeAddress("1a1LcBX6hGPKg5aQ6DXZpAHCCzWjckhea4sz3P1PvL3oc4F")
	require.NoError(err)
	require.EqualValues(0, prefix)
	require.Equal("192c3c7e5789b461fbf1c7f614ba5eed0b22efc507cda60a5e7fda8e046bcdce", hex.EncodeToString(accountID.ToBytes()))

	prefix, accountID, err = DecodeAddress("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(err)
	require.EqualValues(42, prefix)
	require.Equal("d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d", hex.EncodeToString(accountID.ToBytes()))
}

func TestDecodeAddressTwoBytePrefix(t *testing.T) {
	require := require.New(t)
	pub, _ := hex.DecodeString("d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	for _, expected := range []uint16{64, 2207, 2208, 16383} {
		address, err := EncodeAddress(pub, expected)
		require.NoError(err)
		prefix, accountID, err := DecodeAddress(address)
		require.NoError(err)
		require.Equal(expected, prefix)
		require.Equal(pub, accountID.ToBytes())
	}
}

func TestDecodeAddressErrors(t *testing.T) {
	require := require.New(t)
	_, _, err := DecodeAddress("5Grw")
	require.ErrorContains(err, "invalid address 5Grw")

	// last character altered
	_, _, err = DecodeAddress("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ")
	require.ErrorContains(err, "checksum")

	// valid checksum, but the first byte 127 is a reserved prefix
	_, _, err = DecodeAddress("Dkn1tuFWkisNJ5eR97PRup7Z1MMstzp4QbngVVGy9xomqKCX")
	require.ErrorContains(err, "invalid address")

	// valid checksum over a 20 byte payload
	_, _, err = DecodeAddress("tJop57N8E82KG4A6JWjahJsM9iRJLYv")
	require.ErrorContains(err, "expected a 32 byte account id, got 20 bytes")

	_, err = DecodeMulti("not-an-address")
	require.Error(err)
}
