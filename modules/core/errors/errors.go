package errors

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

const codespace = exported.ModuleName

var (
	// ErrUnknownRequest is used when the request body.
	ErrUnknownRequest = sdkerrors.Register(codespace, 6, "unknown request")

	// ErrInvalidRequest defines an ABCI typed error where the request contains
	// invalid data.
	ErrInvalidRequest = sdkerrors.Register(codespace, 18, "invalid request")

	// ErrInvalidHeight defines an error for an invalid height
	ErrInvalidHeight = sdkerrors.Register(codespace, 26, "invalid height")

	// ErrInvalidChainID defines an error when the chain-id is invalid.
	ErrInvalidChainID = sdkerrors.Register(codespace, 28, "invalid chain-id")

	// ErrInvalidType defines an error an invalid type.
	ErrInvalidType = sdkerrors.Register(codespace, 29, "invalid type")

	// ErrUnsupported is used when a feature is intentionally not offered by the client,
	// for example an upgrade on a client without an upgrade path.
	ErrUnsupported = sdkerrors.Register(codespace, 30, "feature not supported")

	// ErrPackAny defines an error when packing a protobuf message to Any fails.
	ErrPackAny = sdkerrors.Register(codespace, 13, "failed packing protobuf message to Any")

	// ErrUnpackAny defines an error when unpacking a protobuf message from Any fails.
	ErrUnpackAny = sdkerrors.Register(codespace, 14, "failed unpacking protobuf message from Any")

	// ErrLogic defines an internal logic error, e.g. an invariant or assertion
	// that is violated. It is a programmer error, not a user-facing error.
	ErrLogic = sdkerrors.Register(codespace, 15, "internal logic error")

	// ErrNotFound defines an error when requested entity doesn't exist in the state.
	ErrNotFound = sdkerrors.Register(codespace, 16, "not found")
)
