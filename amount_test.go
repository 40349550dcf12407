package icetest_test

import (
	"encoding/json"
	"testing"

	. "github.com/cordialsys/icetest"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewAmountBlockchainFromUint64(t *testing.T) {
	require := require.New(t)
	amount := NewAmountBlockchainFromUint64(123)
	require.Equal(amount.Uint64(), uint64(123))
	require.Equal(amount.String(), "123")
}

func TestNewBlockchainAmountStr(t *testing.T) {
	require := require.New(t)
	amount := NewAmountBlockchainFromStr("10")
	require.EqualValues(amount.Uint64(), 10)

	amount = NewAmountBlockchainFromStr("10.1")
	require.EqualValues(amount.Uint64(), 0)

	amount = NewAmountBlockchainFromStr("0x10")
	require.EqualValues(amount.Uint64(), 16)
}

func TestAmountArithmetic(t *testing.T) {
	require := require.New(t)
	minted := NewAmountBlockchainFromStr("10000000000")
	minBalance := NewAmountBlockchainFromUint64(1_000_000)
	one := NewAmountBlockchainFromUint64(1)

	diff := minted.Sub(&minBalance)
	transfer := diff.Add(&one)
	require.Equal("9999000001", transfer.String())

	remaining := minted.Sub(&transfer)
	require.Equal(-1, remaining.Cmp(&minBalance))
	require.False(remaining.IsZero())

	zero := NewAmountBlockchainFromUint64(0)
	require.True(zero.IsZero())
}

func TestAmountToHuman(t *testing.T) {
	require := require.New(t)
	amount := NewAmountBlockchainFromStr("1500000000000000000")
	require.Equal("1.5", amount.ToHuman(NativeDecimals).String())

	human, err := NewAmountHumanReadableFromStr("2.25")
	require.NoError(err)
	require.Equal("2250000000000000000", human.ToBlockchain(NativeDecimals).String())
}

func TestAmountSerde(t *testing.T) {
	require := require.New(t)
	var amount AmountBlockchain
	require.NoError(json.Unmarshal([]byte(`"340282366920938463463374607431768211455"`), &amount))
	require.Equal("340282366920938463463374607431768211455", amount.String())

	bz, err := json.Marshal(amount)
	require.NoError(err)
	require.Equal(`"340282366920938463463374607431768211455"`, string(bz))

	var fromYaml struct {
		Min AmountBlockchain `yaml:"min"`
	}
	require.NoError(yaml.Unmarshal([]byte("min: 1000000\n"), &fromYaml))
	require.EqualValues(1_000_000, fromYaml.Min.Uint64())

	require.Error(json.Unmarshal([]byte(`"abc"`), &amount))
}
