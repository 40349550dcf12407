package tx_input

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// TxInput is everything besides the call needed to build a signed extrinsic.
type TxInput struct {
	Meta        Metadata             `json:"meta,omitempty"`
	GenesisHash types.Hash           `json:"genesis_hash,omitempty"`
	Rv          types.RuntimeVersion `json:"runtime_version,omitempty"`
	Tip         uint64               `json:"tip,omitempty"`
	Nonce       uint64               `json:"account_nonce,omitempty"`
}

func NewTxInput() *TxInput {
	return &TxInput{}
}

// WithOptions returns a copy with the nonce and tip overridden where set.
func (input *TxInput) WithOptions(nonce *uint64, tip uint64) *TxInput {
	copied := *input
	if nonce != nil {
		copied.Nonce = *nonce
	}
	if tip > 0 {
		copied.Tip = tip
	}
	return &copied
}
