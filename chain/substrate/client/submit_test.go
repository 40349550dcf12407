package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/tx"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
	"github.com/stretchr/testify/require"
)

func testSubmission(sub *fakeSubscription, check dispatchCheckFn) *Submission {
	if check == nil {
		check = func(ctx context.Context, blockHash types.Hash, extrinsicHash string) (int, error) {
			return 1, nil
		}
	}
	return &Submission{Hash: "0x01", sub: sub, check: check}
}

func TestWaitInBlock(t *testing.T) {
	require := require.New(t)
	sub := newFakeSubscription(
		types.ExtrinsicStatus{IsFuture: true},
		types.ExtrinsicStatus{IsReady: true},
		types.ExtrinsicStatus{IsInBlock: true, AsInBlock: testHash(1)},
		types.ExtrinsicStatus{IsFinalized: true, AsFinalized: testHash(1)},
	)
	submission := testSubmission(sub, nil)

	inclusion, err := submission.Wait(context.Background())
	require.NoError(err)
	require.Equal(testHash(1), inclusion.BlockHash)
	require.Equal(1, inclusion.Index)
	require.False(inclusion.Finalized)

	submission.Cancel()
	require.Equal(1, sub.unsubscribed)
}

func TestWaitFinalized(t *testing.T) {
	require := require.New(t)
	sub := newFakeSubscription(types.ExtrinsicStatus{IsFinalized: true, AsFinalized: testHash(2)})
	inclusion, err := testSubmission(sub, nil).Wait(context.Background())
	require.NoError(err)
	require.True(inclusion.Finalized)
	require.Equal(testHash(2), inclusion.BlockHash)
}

func TestWaitRejected(t *testing.T) {
	type testcase struct {
		name   string
		status types.ExtrinsicStatus
		err    string
	}
	for _, tc := range []testcase{
		{name: "invalid", status: types.ExtrinsicStatus{IsInvalid: true}, err: "invalid"},
		{name: "dropped", status: types.ExtrinsicStatus{IsDropped: true}, err: "dropped"},
		{name: "usurped", status: types.ExtrinsicStatus{IsUsurped: true, AsUsurped: testHash(3)}, err: "usurped"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)
			sub := newFakeSubscription(tc.status)
			_, err := testSubmission(sub, nil).Wait(context.Background())
			require.ErrorContains(err, tc.err)
			require.True(errors.Is(err, errors.SubmissionRejected))
			require.Equal(1, sub.unsubscribed)
		})
	}
}

func TestWaitStreamFailure(t *testing.T) {
	require := require.New(t)

	sub := newFakeSubscription()
	sub.errs <- fmt.Errorf("connection reset")
	_, err := testSubmission(sub, nil).Wait(context.Background())
	require.ErrorContains(err, "connection reset")
	require.True(errors.Is(err, errors.SubmissionRejected))

	sub = newFakeSubscription()
	close(sub.statuses)
	_, err = testSubmission(sub, nil).Wait(context.Background())
	require.ErrorContains(err, "closed")
}

func TestWaitCancelled(t *testing.T) {
	require := require.New(t)
	sub := newFakeSubscription()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testSubmission(sub, nil).Wait(ctx)
	require.ErrorIs(err, context.Canceled)
	require.Equal(1, sub.unsubscribed)
}

func TestWaitDispatchFailure(t *testing.T) {
	require := require.New(t)
	sub := newFakeSubscription(types.ExtrinsicStatus{IsInBlock: true, AsInBlock: testHash(4)})
	submission := testSubmission(sub, func(ctx context.Context, blockHash types.Hash, extrinsicHash string) (int, error) {
		return 2, errors.Dispatchf("balances.InsufficientBalance: Balance too low to send value.")
	})
	inclusion, err := submission.Wait(context.Background())
	require.True(errors.Is(err, errors.DispatchError))
	require.Equal(2, inclusion.Index)
}

func TestFindExtrinsic(t *testing.T) {
	require := require.New(t)
	hash := codec.HexEncodeToString(tx.HashSerialized([]byte{3, 4}))
	index, err := findExtrinsic([]string{"0x0102", "0x0304"}, hash)
	require.NoError(err)
	require.Equal(1, index)

	_, err = findExtrinsic([]string{"0x0102"}, hash)
	require.ErrorContains(err, "not found")

	_, err = findExtrinsic([]string{"0xzz"}, hash)
	require.True(errors.Is(err, errors.QueryError))
}

type submitted struct {
	encoded string
	sub     *fakeSubscription
}

// fakeNode answers the rpcs of a submission and includes it at index 1 of a block.
func fakeNode(t *testing.T, client *Client, rpc *fakeRPC, nextIndex uint64) *submitted {
	result := &submitted{}
	rpc.on("system_accountNextIndex", func(args ...interface{}) (interface{}, error) {
		return nextIndex, nil
	})
	client.subscribe = func(ctx context.Context, encoded string) (statusSubscription, error) {
		result.encoded = encoded
		result.sub = newFakeSubscription(
			types.ExtrinsicStatus{IsReady: true},
			types.ExtrinsicStatus{IsInBlock: true, AsInBlock: testHash(7)},
		)
		rpc.on("chain_getBlock", func(args ...interface{}) (interface{}, error) {
			require.Equal(t, testHash(7).Hex(), args[0])
			return map[string]interface{}{
				"block": map[string]interface{}{
					"extrinsics": []string{"0x0102", encoded},
				},
			}, nil
		})
		return result.sub, nil
	}
	return result
}

func TestSubmitAndConfirm(t *testing.T) {
	require := require.New(t)
	client, state, rpc := newTestClient()
	node := fakeNode(t, client, rpc, 3)
	alice, err := wallet.Derive(wallet.Alice, "//Alice", 42)
	require.NoError(err)

	state.set(encodeEvents(
		encodeEvent(applyExtrinsic(0), successID, 0, 0, 0),
		encodeEvent(applyExtrinsic(1), successID, 0, 0, 0),
	), "System", "Events")

	inclusion, err := client.Transfer(context.Background(), alice, "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty", icetest.NewAmountBlockchainFromUint64(10), Options{})
	require.NoError(err)
	require.Equal(1, inclusion.Index)
	require.Equal(testHash(7), inclusion.BlockHash)
	require.NotEmpty(node.encoded)
	require.Equal(1, node.sub.unsubscribed)
	require.Contains(rpc.calls, "system_accountNextIndex")
}

func TestSubmitWithNonceSkipsNextIndex(t *testing.T) {
	require := require.New(t)
	client, _, rpc := newTestClient()
	fakeNode(t, client, rpc, 3)
	alice, err := wallet.Derive(wallet.Alice, "//Alice", 42)
	require.NoError(err)

	submission, err := client.Submit(context.Background(), alice, types.Call{CallIndex: types.CallIndex{SectionIndex: 0, MethodIndex: 1}, Args: []byte{0}}, WithNonce(8))
	require.NoError(err)
	require.EqualValues(8, submission.Nonce)
	require.NotContains(rpc.calls, "system_accountNextIndex")
	submission.Cancel()
}

func TestSubmitDispatchError(t *testing.T) {
	require := require.New(t)
	client, state, rpc := newTestClient()
	fakeNode(t, client, rpc, 0)
	bob, err := wallet.Derive(wallet.Bob, "//Bob", 42)
	require.NoError(err)

	state.set(encodeEvents(
		encodeEvent(applyExtrinsic(0), successID, 0, 0, 0),
		encodeEvent(applyExtrinsic(1), failedID, 3, 34, 2, 0, 0, 0, 0, 0, 0),
	), "System", "Events")

	_, err = client.MintAsset(context.Background(), bob, 1000, aliceAddress, icetest.NewAmountBlockchainFromUint64(1), Options{})
	require.True(errors.Is(err, errors.DispatchError))
	require.ErrorContains(err, "assets.NoPermission: The signing account has no permission to do the operation.")
}

func TestSubmitRejectedByPool(t *testing.T) {
	require := require.New(t)
	client, _, rpc := newTestClient()
	rpc.on("system_accountNextIndex", func(args ...interface{}) (interface{}, error) {
		return 0, nil
	})
	client.subscribe = func(ctx context.Context, encoded string) (statusSubscription, error) {
		return nil, fmt.Errorf("1010: Invalid Transaction")
	}
	alice, err := wallet.Derive(wallet.Alice, "//Alice", 42)
	require.NoError(err)

	_, err = client.Transfer(context.Background(), alice, aliceAddress, icetest.NewAmountBlockchainFromUint64(1), Options{})
	require.True(errors.Is(err, errors.SubmissionRejected))
	require.ErrorContains(err, "Invalid Transaction")
}
