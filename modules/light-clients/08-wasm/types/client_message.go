package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// ClientMessage is the message a relayer submits to update or freeze the
// client. Exactly one of the fields must be set.
type ClientMessage struct {
	Header       *Header       `json:"header,omitempty"`
	Misbehaviour *Misbehaviour `json:"misbehaviour,omitempty"`
}

// NewHeaderMessage wraps a header into a ClientMessage.
func NewHeaderMessage(header *Header) *ClientMessage {
	return &ClientMessage{Header: header}
}

// NewMisbehaviourMessage wraps misbehaviour evidence into a ClientMessage.
func NewMisbehaviourMessage(misbehaviour *Misbehaviour) *ClientMessage {
	return &ClientMessage{Misbehaviour: misbehaviour}
}

// ValidateBasic checks that exactly one variant of the message is set.
func (m ClientMessage) ValidateBasic() error {
	switch {
	case m.Header != nil && m.Misbehaviour != nil:
		return sdkerrors.Wrap(clienttypes.ErrInvalidClientMessage, "client message must contain either a header or misbehaviour, not both")
	case m.Header != nil:
		return m.Header.ValidateBasic()
	case m.Misbehaviour != nil:
		return m.Misbehaviour.ValidateBasic()
	default:
		return sdkerrors.Wrap(clienttypes.ErrInvalidClientMessage, "client message cannot be empty")
	}
}
