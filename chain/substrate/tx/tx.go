package tx

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic/extensions"
	"github.com/cordialsys/icetest/chain/substrate/tx_input"
	"golang.org/x/crypto/blake2b"
)

// Signer is an sr25519 identity able to sign extrinsic payloads.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	MultiAddress() types.MultiAddress
}

// Tx is a dynamic v4 extrinsic with an immortal era.
type Tx struct {
	extrinsic extrinsic.DynamicExtrinsic
	input     *tx_input.TxInput
	sender    types.MultiAddress
	payload   *extrinsic.Payload
	signature []byte
}

func NewTx(call types.Call, sender types.MultiAddress, input *tx_input.TxInput) (*Tx, error) {
	tx := &Tx{
		extrinsic: extrinsic.NewDynamicExtrinsic(&call),
		input:     input,
		sender:    sender,
	}
	err := tx.build()
	return tx, err
}

func (tx *Tx) build() error {
	if tx.extrinsic.Type() != types.ExtrinsicVersion4 {
		return fmt.Errorf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", tx.extrinsic.Version, tx.extrinsic.IsSigned(), tx.extrinsic.Type())
	}
	encodedMethod, err := codec.Encode(tx.extrinsic.Method)
	if err != nil {
		return fmt.Errorf("encode method: %w", err)
	}
	fieldValues := extrinsic.SignedFieldValues{}

	genesisHash := tx.input.GenesisHash
	opts := []extrinsic.SigningOption{
		extrinsic.WithEra(types.ExtrinsicEra{IsImmortalEra: true}, genesisHash),
		extrinsic.WithNonce(types.NewUCompactFromUInt(tx.input.Nonce)),
		extrinsic.WithTip(types.NewUCompactFromUInt(tx.input.Tip)),
		extrinsic.WithSpecVersion(tx.input.Rv.SpecVersion),
		extrinsic.WithTransactionVersion(tx.input.Rv.TransactionVersion),
		extrinsic.WithGenesisHash(genesisHash),
		extrinsic.WithMetadataMode(extensions.CheckMetadataModeDisabled, extensions.CheckMetadataHash{Hash: types.NewEmptyOption[types.H256]()}),
	}
	for _, opt := range opts {
		opt(fieldValues)
	}

	payload, err := tx_input.CreatePayload(&tx.input.Meta, encodedMethod)
	if err != nil {
		return fmt.Errorf("creating payload: %w", err)
	}
	if err = payload.MutateSignedFields(fieldValues); err != nil {
		return fmt.Errorf("mutate signed fields: %w", err)
	}
	tx.payload = payload
	return nil
}

func HashSerialized(serialized []byte) []byte {
	hash := blake2b.Sum256(serialized)
	return hash[:]
}

// Hash is the 0x prefixed blake2b-256 of the encoded extrinsic, as the node reports it.
func (tx *Tx) Hash() string {
	ser, err := tx.Serialize()
	if err != nil {
		return ""
	}
	return codec.HexEncodeToString(HashSerialized(ser))
}

func (tx *Tx) Nonce() uint64 {
	return tx.input.Nonce
}

// Sighash returns the payload to sign, hashed first if longer than 256 bytes.
func (tx *Tx) Sighash() ([]byte, error) {
	b, err := codec.Encode(tx.payload)
	if err != nil {
		return nil, err
	}
	if len(b) > 256 {
		h := blake2b.Sum256(b)
		b = h[:]
	}
	return b, nil
}

// SetSignature attaches an sr25519 signature of Sighash.
func (tx *Tx) SetSignature(signature []byte) error {
	if len(signature) != 64 {
		return fmt.Errorf("expected a 64 byte sr25519 signature, got %d bytes", len(signature))
	}
	tx.extrinsic.Signature = &extrinsic.Signature{
		Signer: tx.sender,
		Signature: types.MultiSignature{
			IsSr25519: true,
			AsSr25519: types.NewSignature(signature),
		},
		SignedFields: tx.payload.SignedFields,
	}
	tx.extrinsic.Version |= types.ExtrinsicBitSigned
	tx.signature = signature
	return nil
}

// Sign computes the sighash and signs it with the given signer.
func (tx *Tx) Sign(signer Signer) error {
	sighash, err := tx.Sighash()
	if err != nil {
		return err
	}
	sig, err := signer.Sign(sighash)
	if err != nil {
		return fmt.Errorf("could not sign: %w", err)
	}
	return tx.SetSignature(sig)
}

func (tx *Tx) IsSigned() bool {
	return tx.extrinsic.IsSigned()
}

func (tx *Tx) Signature() []byte {
	return tx.signature
}

func (tx *Tx) Serialize() ([]byte, error) {
	return codec.Encode(tx.extrinsic)
}

// HexEncode is the form author_submitExtrinsic expects.
func (tx *Tx) HexEncode() (string, error) {
	ser, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return codec.HexEncodeToString(ser), nil
}
