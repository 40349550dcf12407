package client

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	gsrpcclient "github.com/centrifuge/go-substrate-rpc-client/v4/client"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/icetest/chain/substrate/tx"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
	"github.com/sirupsen/logrus"
)

// Signer is a wallet able to sign extrinsics.
type Signer interface {
	tx.Signer
	AccountID() types.AccountID
}

// Options for a single submission.
type Options struct {
	// Overrides the nonce the node would assign next
	Nonce *uint64
	Tip   uint64
}

func WithNonce(nonce uint64) Options {
	return Options{Nonce: &nonce}
}

// Inclusion is where a submitted extrinsic landed.
type Inclusion struct {
	Hash      string
	BlockHash types.Hash
	Index     int
	Finalized bool
}

type statusSubscription interface {
	Chan() <-chan types.ExtrinsicStatus
	Err() <-chan error
	Unsubscribe()
}

type subscribeFn func(ctx context.Context, encodedExtrinsic string) (statusSubscription, error)

type dispatchCheckFn func(ctx context.Context, blockHash types.Hash, extrinsicHash string) (int, error)

type extrinsicStatusSubscription struct {
	sub interface {
		Err() <-chan error
		Unsubscribe()
	}
	channel chan types.ExtrinsicStatus
}

func (s *extrinsicStatusSubscription) Chan() <-chan types.ExtrinsicStatus {
	return s.channel
}

func (s *extrinsicStatusSubscription) Err() <-chan error {
	return s.sub.Err()
}

func (s *extrinsicStatusSubscription) Unsubscribe() {
	s.sub.Unsubscribe()
}

func newStatusSubscriber(cl gsrpcclient.Client) subscribeFn {
	return func(ctx context.Context, encodedExtrinsic string) (statusSubscription, error) {
		channel := make(chan types.ExtrinsicStatus)
		sub, err := cl.Subscribe(ctx, "author", "submitAndWatchExtrinsic", "unwatchExtrinsic", "extrinsicUpdate", channel, encodedExtrinsic)
		if err != nil {
			return nil, err
		}
		return &extrinsicStatusSubscription{sub: sub, channel: channel}, nil
	}
}

// Submission is a submitted extrinsic whose status updates have not been consumed yet.
type Submission struct {
	Hash  string
	Nonce uint64

	sub        statusSubscription
	check      dispatchCheckFn
	cancelOnce sync.Once
}

// Cancel stops watching the extrinsic. Safe to call more than once.
func (s *Submission) Cancel() {
	s.cancelOnce.Do(func() {
		s.sub.Unsubscribe()
	})
}

// Wait consumes status updates until the extrinsic is in a block or finalized,
// whichever comes first, and checks it dispatched without error. The
// subscription is released when Wait returns.
func (s *Submission) Wait(ctx context.Context) (*Inclusion, error) {
	defer s.Cancel()
	log := logrus.WithField("extrinsic", s.Hash)
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", s.Hash, ctx.Err())
		case err, ok := <-s.sub.Err():
			if !ok {
				return nil, errors.SubmissionRejectedf("status stream of %s closed", s.Hash)
			}
			return nil, errors.SubmissionRejectedf("status stream of %s failed: %w", s.Hash, AsRpcErrorMaybe(err))
		case status, ok := <-s.sub.Chan():
			if !ok {
				return nil, errors.SubmissionRejectedf("status stream of %s closed", s.Hash)
			}
			switch {
			case status.IsInBlock:
				return s.included(ctx, status.AsInBlock, false)
			case status.IsFinalized:
				return s.included(ctx, status.AsFinalized, true)
			case status.IsInvalid:
				return nil, errors.SubmissionRejectedf("%s is invalid", s.Hash)
			case status.IsDropped:
				return nil, errors.SubmissionRejectedf("%s was dropped from the pool", s.Hash)
			case status.IsUsurped:
				return nil, errors.SubmissionRejectedf("%s was usurped by %s", s.Hash, status.AsUsurped.Hex())
			default:
				log.WithField("status", statusName(status)).Debug("extrinsic status")
			}
		}
	}
}

func (s *Submission) included(ctx context.Context, blockHash types.Hash, finalized bool) (*Inclusion, error) {
	inclusion := &Inclusion{
		Hash:      s.Hash,
		BlockHash: blockHash,
		Index:     -1,
		Finalized: finalized,
	}
	log := logrus.WithFields(logrus.Fields{
		"extrinsic": s.Hash,
		"block":     blockHash.Hex(),
		"finalized": finalized,
	})
	index, err := s.check(ctx, blockHash, s.Hash)
	inclusion.Index = index
	if err != nil {
		log.WithError(err).Debug("extrinsic failed")
		return inclusion, err
	}
	log.WithField("index", index).Debug("extrinsic included")
	return inclusion, nil
}

func statusName(status types.ExtrinsicStatus) string {
	switch {
	case status.IsFuture:
		return "future"
	case status.IsReady:
		return "ready"
	case status.IsBroadcast:
		return "broadcast"
	case status.IsRetracted:
		return "retracted"
	case status.IsFinalityTimeout:
		return "finality-timeout"
	}
	return "unknown"
}

// Submit signs the call and submits it, watching its status. Without a nonce
// override the node's next index for the signer is used.
func (client *Client) Submit(ctx context.Context, signer Signer, call types.Call, opts Options) (*Submission, error) {
	accountID := signer.AccountID()
	address, err := wallet.EncodeAddress(accountID.ToBytes(), client.Network.ChainPrefix)
	if err != nil {
		return nil, err
	}
	input := client.input.WithOptions(opts.Nonce, opts.Tip)
	if opts.Nonce == nil {
		input.Nonce, err = client.NextIndex(ctx, address)
		if err != nil {
			return nil, err
		}
	}

	extrinsic, err := tx.NewTx(call, signer.MultiAddress(), input)
	if err != nil {
		return nil, err
	}
	if err = extrinsic.Sign(signer); err != nil {
		return nil, err
	}
	encoded, err := extrinsic.HexEncode()
	if err != nil {
		return nil, err
	}
	hash := extrinsic.Hash()
	log := logrus.WithFields(logrus.Fields{
		"extrinsic": hash,
		"signer":    address,
		"nonce":     input.Nonce,
		"tip":       input.Tip,
	})
	log.Trace(encoded)

	sub, err := client.subscribe(ctx, encoded)
	if err != nil {
		return nil, errors.SubmissionRejectedf("%s: %w", hash, AsRpcErrorMaybe(err))
	}
	log.Debug("submitted extrinsic")
	return &Submission{
		Hash:  hash,
		Nonce: input.Nonce,
		sub:   sub,
		check: client.checkDispatch,
	}, nil
}

// SubmitAndConfirm submits the call and waits for the first in-block or finalized status.
// It fails with a DispatchError when the extrinsic was included but failed.
func (client *Client) SubmitAndConfirm(ctx context.Context, signer Signer, call types.Call, opts Options) (*Inclusion, error) {
	submission, err := client.Submit(ctx, signer, call, opts)
	if err != nil {
		return nil, err
	}
	return submission.Wait(ctx)
}

type rawBlock struct {
	Block struct {
		Extrinsics []string `json:"extrinsics"`
	} `json:"block"`
}

// checkDispatch finds the extrinsic in the block and decodes its failure, if any.
func (client *Client) checkDispatch(ctx context.Context, blockHash types.Hash, extrinsicHash string) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	var block rawBlock
	if err := client.rpc.Call(&block, "chain_getBlock", blockHash.Hex()); err != nil {
		return -1, errors.Queryf("could not fetch block %s: %w", blockHash.Hex(), AsRpcErrorMaybe(err))
	}
	index, err := findExtrinsic(block.Block.Extrinsics, extrinsicHash)
	if err != nil {
		return -1, err
	}

	key, err := client.storageKey("System", "Events")
	if err != nil {
		return index, errors.Queryf("could not create storage key System.Events: %w", err)
	}
	raw, err := client.state.GetStorageRaw(key, blockHash)
	if err != nil {
		return index, errors.Queryf("could not fetch events of %s: %w", blockHash.Hex(), err)
	}
	if raw == nil {
		return index, nil
	}
	data, failed, err := client.events.FindExtrinsicFailure(*raw, uint32(index))
	if err != nil {
		return index, errors.Queryf("could not decode events of %s: %w", blockHash.Hex(), err)
	}
	if !failed {
		return index, nil
	}
	reason, err := client.errors.Decode(data)
	if err != nil {
		return index, errors.Queryf("could not decode dispatch error: %w", err)
	}
	return index, errors.Dispatchf("%s", reason)
}

func findExtrinsic(extrinsics []string, extrinsicHash string) (int, error) {
	want, err := codec.HexDecodeString(extrinsicHash)
	if err != nil {
		return -1, errors.Queryf("invalid extrinsic hash %s: %w", extrinsicHash, err)
	}
	for i, encoded := range extrinsics {
		bz, err := codec.HexDecodeString(encoded)
		if err != nil {
			return -1, errors.Queryf("invalid extrinsic at index %d: %w", i, err)
		}
		if bytes.Equal(tx.HashSerialized(bz), want) {
			return i, nil
		}
	}
	return -1, errors.Queryf("extrinsic %s not found in block", extrinsicHash)
}
