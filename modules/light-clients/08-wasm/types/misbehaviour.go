package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// Misbehaviour is a wrapper over two conflicting Headers
// that implements Misbehaviour interface expected by ICS-02
type Misbehaviour struct {
	Header1 *Header `json:"header_1"`
	Header2 *Header `json:"header_2"`
}

// NewMisbehaviour creates a new Misbehaviour instance.
func NewMisbehaviour(header1, header2 *Header) *Misbehaviour {
	return &Misbehaviour{
		Header1: header1,
		Header2: header2,
	}
}

// ClientType is the wasm client type
func (Misbehaviour) ClientType() string {
	return exported.Wasm
}

// GetHeight returns the height at which misbehaviour occurred. Header1 is
// never below Header2 so the lower height is the one of Header2.
func (misbehaviour Misbehaviour) GetHeight() exported.Height {
	return misbehaviour.Header2.Height
}

// ValidateBasic implements Misbehaviour interface
func (misbehaviour Misbehaviour) ValidateBasic() error {
	if misbehaviour.Header1 == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, "misbehaviour Header1 cannot be nil")
	}
	if misbehaviour.Header2 == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, "misbehaviour Header2 cannot be nil")
	}

	if err := misbehaviour.Header1.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, sdkerrors.Wrap(err, "header 1 failed validation").Error())
	}
	if err := misbehaviour.Header2.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, sdkerrors.Wrap(err, "header 2 failed validation").Error())
	}

	// Ensure that Height1 is greater than or equal to Height2
	if misbehaviour.Header1.Height.LT(misbehaviour.Header2.Height) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidMisbehaviour, "Header1 height is less than Header2 height (%s < %s)", misbehaviour.Header1.Height, misbehaviour.Header2.Height)
	}

	return nil
}
