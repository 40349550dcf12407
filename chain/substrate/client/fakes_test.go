package client

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic/extensions"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/tx_input"
)

// fakeState serves storage from a map keyed by "<prefix>.<method>/<hex args>"
type fakeState struct {
	values map[string][]byte
}

func newFakeState() *fakeState {
	return &fakeState{values: map[string][]byte{}}
}

func fakeKey(prefix, method string, args ...[]byte) (types.StorageKey, error) {
	parts := []string{prefix + "." + method}
	for _, arg := range args {
		parts = append(parts, hex.EncodeToString(arg))
	}
	return types.StorageKey(strings.Join(parts, "/")), nil
}

func (s *fakeState) set(value interface{}, prefix, method string, args ...[]byte) {
	key, _ := fakeKey(prefix, method, args...)
	bz, ok := value.([]byte)
	if !ok {
		var err error
		bz, err = codec.Encode(value)
		if err != nil {
			panic(err)
		}
	}
	s.values[string(key)] = bz
}

func (s *fakeState) GetStorageLatest(key types.StorageKey, target interface{}) (bool, error) {
	bz, ok := s.values[string(key)]
	if !ok {
		return false, nil
	}
	return true, codec.Decode(bz, target)
}

func (s *fakeState) GetStorageRaw(key types.StorageKey, blockHash types.Hash) (*types.StorageDataRaw, error) {
	bz, ok := s.values[string(key)]
	if !ok {
		return nil, nil
	}
	raw := types.StorageDataRaw(bz)
	return &raw, nil
}

type fakeRPC struct {
	handlers map[string]func(args ...interface{}) (interface{}, error)
	calls    []string
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{handlers: map[string]func(args ...interface{}) (interface{}, error){}}
}

func (r *fakeRPC) on(method string, handler func(args ...interface{}) (interface{}, error)) {
	r.handlers[method] = handler
}

func (r *fakeRPC) Call(result interface{}, method string, args ...interface{}) error {
	r.calls = append(r.calls, method)
	handler, ok := r.handlers[method]
	if !ok {
		return fmt.Errorf("method %s not found", method)
	}
	value, err := handler(args...)
	if err != nil {
		return err
	}
	bz, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bz, result)
}

type fakeSubscription struct {
	statuses     chan types.ExtrinsicStatus
	errs         chan error
	unsubscribed int
}

func newFakeSubscription(statuses ...types.ExtrinsicStatus) *fakeSubscription {
	sub := &fakeSubscription{
		statuses: make(chan types.ExtrinsicStatus, len(statuses)+1),
		errs:     make(chan error, 1),
	}
	for _, status := range statuses {
		sub.statuses <- status
	}
	return sub
}

func (f *fakeSubscription) Chan() <-chan types.ExtrinsicStatus { return f.statuses }
func (f *fakeSubscription) Err() <-chan error                  { return f.errs }
func (f *fakeSubscription) Unsubscribe()                       { f.unsubscribed++ }

// fixedDecoder consumes a fixed number of bytes
type fixedDecoder int

func (f fixedDecoder) Decode(decoder *scale.Decoder) (any, error) {
	bz := make([]byte, int(f))
	return bz, decoder.Read(bz)
}

var (
	successID = types.EventID{0, 0}
	failedID  = types.EventID{0, 1}
	otherID   = types.EventID{5, 2}
)

func fakeEventDecoders() EventDecoders {
	return EventDecoders{
		// dispatch info
		successID: {Name: "System.ExtrinsicSuccess", Fields: []fieldDecoder{fixedDecoder(3)}},
		failedID:  {Name: ExtrinsicFailedEvent, Fields: []fieldDecoder{fixedDecoder(6), fixedDecoder(3)}},
		otherID:   {Name: "Balances.Transfer", Fields: []fieldDecoder{fixedDecoder(32), fixedDecoder(32), fixedDecoder(16)}},
	}
}

// applyExtrinsic encodes Phase::ApplyExtrinsic(index)
func applyExtrinsic(index uint32) []byte {
	return []byte{0, byte(index), byte(index >> 8), byte(index >> 16), byte(index >> 24)}
}

func encodeEvent(phase []byte, id types.EventID, data ...byte) []byte {
	out := append([]byte{}, phase...)
	out = append(out, id[0], id[1])
	out = append(out, data...)
	// no topics
	return append(out, 0)
}

func encodeEvents(events ...[]byte) []byte {
	out := []byte{byte(len(events) << 2)}
	for _, event := range events {
		out = append(out, event...)
	}
	return out
}

func assetsRegistry() *ErrorRegistry {
	registry := DefaultErrorRegistry()
	registry.Modules[34] = map[uint8]ModuleError{
		2: {Pallet: "Assets", Name: "NoPermission", Docs: []string{"The signing account has no permission to do the operation."}},
		5: {Pallet: "Assets", Name: "Unknown", Docs: []string{"The given asset ID is unknown."}},
	}
	return registry
}

func newTestClient() (*Client, *fakeState, *fakeRPC) {
	state := newFakeState()
	rpc := newFakeRPC()
	input := tx_input.NewTxInput()
	input.Meta = tx_input.Metadata{
		Calls: []*tx_input.CallMeta{
			{Name: tx_input.SystemRemark, SectionIndex: 0, MethodIndex: 1},
			{Name: tx_input.BalancesTransfer, SectionIndex: 5, MethodIndex: 0},
			{Name: tx_input.AssetsCreate, SectionIndex: 34, MethodIndex: 0},
			{Name: tx_input.AssetsMint, SectionIndex: 34, MethodIndex: 3},
			{Name: tx_input.AssetsTransfer, SectionIndex: 34, MethodIndex: 8},
		},
		SignedExtensions: []extensions.SignedExtensionName{
			"CheckSpecVersion",
			"CheckTxVersion",
			"CheckGenesis",
			"CheckMortality",
			"CheckNonce",
			"CheckWeight",
			"ChargeTransactionPayment",
		},
	}
	input.Rv = types.RuntimeVersion{SpecVersion: 1, TransactionVersion: 1}
	client := &Client{
		Network:    &icetest.NetworkConfig{Name: icetest.Local, ChainPrefix: 42},
		state:      state,
		rpc:        rpc,
		storageKey: fakeKey,
		input:      input,
		errors:     assetsRegistry(),
		events:     fakeEventDecoders(),
	}
	return client, state, rpc
}
