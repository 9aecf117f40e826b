package types

import sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

// IBC wasm light client sentinel errors
var (
	ErrInvalidData            = sdkerrors.Register(ModuleName, 2, "invalid data")
	ErrInvalidChecksum        = sdkerrors.Register(ModuleName, 3, "invalid checksum")
	ErrInvalidUpdatePolicy    = sdkerrors.Register(ModuleName, 4, "invalid update policy")
	ErrInvalidContractMessage = sdkerrors.Register(ModuleName, 5, "invalid contract message")
	ErrUnknownConsensusType   = sdkerrors.Register(ModuleName, 6, "unknown consensus type")
	ErrInvalidResponseData    = sdkerrors.Register(ModuleName, 7, "invalid contract response data")
)
