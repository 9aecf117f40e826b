package types

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// Header is an untrusted claim about the counterparty chain at a new height.
// Proof carries the evidence of the consensus family named by the client
// state, checked against the consensus state stored at TrustedHeight. A zero
// TrustedHeight selects the latest height of the client.
type Header struct {
	Height             clienttypes.Height         `json:"height"`
	Timestamp          time.Time                  `json:"timestamp"`
	Root               commitmenttypes.MerkleRoot `json:"root"`
	NextValidatorsHash tmbytes.HexBytes           `json:"next_validators_hash"`
	TrustedHeight      clienttypes.Height         `json:"trusted_height"`
	Proof              []byte                     `json:"proof"`
}

// ConsensusState returns the updated consensus state associated with the header
func (h Header) ConsensusState() *ConsensusState {
	return &ConsensusState{
		Timestamp:          h.Timestamp,
		Root:               h.Root,
		NextValidatorsHash: h.NextValidatorsHash,
	}
}

// ClientType defines that the Header is a wasm client message.
func (Header) ClientType() string {
	return exported.Wasm
}

// GetHeight returns the current height. It returns 0 if the header is empty.
func (h Header) GetHeight() exported.Height {
	return h.Height
}

// GetTime returns the current block timestamp.
func (h Header) GetTime() time.Time {
	return h.Timestamp
}

// ValidateBasic calls the header's stateless checks. The consensus family
// evidence is checked by the verifier routed for the client.
func (h Header) ValidateBasic() error {
	if h.Height.RevisionHeight == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "header revision height cannot be zero")
	}
	if h.Timestamp.Unix() <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "header timestamp must be a positive Unix time")
	}
	if h.Root.Empty() {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "header root cannot be empty")
	}
	if len(h.NextValidatorsHash) == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "next validators hash cannot be empty")
	}
	if err := tmtypes.ValidateHash(h.NextValidatorsHash); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "next validators hash is invalid: %v", err)
	}
	if len(h.Proof) == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "header proof cannot be empty")
	}
	// TrustedHeight is less than Header for updates and misbehaviour
	if !h.TrustedHeight.IsZero() && h.TrustedHeight.GTE(h.Height) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "trusted height %s must be less than header height %s",
			h.TrustedHeight, h.Height)
	}
	return nil
}
