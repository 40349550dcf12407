package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindExtrinsicFailure(t *testing.T) {
	require := require.New(t)
	decoders := fakeEventDecoders()

	transfer := make([]byte, 80)
	raw := encodeEvents(
		encodeEvent(applyExtrinsic(0), successID, 1, 2, 3),
		encodeEvent(applyExtrinsic(1), otherID, transfer...),
		encodeEvent(applyExtrinsic(1), failedID, 3, 34, 2, 0, 0, 0, 9, 9, 9),
		encodeEvent([]byte{1}, successID, 1, 2, 3),
	)

	data, failed, err := decoders.FindExtrinsicFailure(raw, 1)
	require.NoError(err)
	require.True(failed)
	require.Equal([]byte{3, 34, 2, 0, 0, 0}, data[:6])

	_, failed, err = decoders.FindExtrinsicFailure(raw, 0)
	require.NoError(err)
	require.False(failed)

	_, failed, err = decoders.FindExtrinsicFailure(raw, 7)
	require.NoError(err)
	require.False(failed)
}

func TestFindExtrinsicFailureUnknownEvent(t *testing.T) {
	require := require.New(t)
	raw := encodeEvents(encodeEvent(applyExtrinsic(0), [2]byte{9, 9}))
	_, _, err := fakeEventDecoders().FindExtrinsicFailure(raw, 0)
	require.ErrorContains(err, "unknown event id")

	_, _, err = fakeEventDecoders().FindExtrinsicFailure([]byte{}, 0)
	require.Error(err)

	// truncated field data
	raw = encodeEvents(applyExtrinsic(0), []byte{0, 0, 1})
	_, _, err = fakeEventDecoders().FindExtrinsicFailure(raw, 3)
	require.Error(err)
}
