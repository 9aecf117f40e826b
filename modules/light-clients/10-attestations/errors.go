package attestations

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// ModuleName is the codespace of the attestor family errors.
const ModuleName = exported.Attestations

var (
	ErrInvalidAttestationData = sdkerrors.Register(ModuleName, 2, "invalid attestation data")
	ErrInvalidSignature       = sdkerrors.Register(ModuleName, 3, "invalid signature")
	ErrDuplicateSigner        = sdkerrors.Register(ModuleName, 4, "duplicate signer")
	ErrUnknownSigner          = sdkerrors.Register(ModuleName, 5, "unknown signer")
	ErrInvalidQuorum          = sdkerrors.Register(ModuleName, 6, "quorum not met")
	ErrInvalidAttestorSet     = sdkerrors.Register(ModuleName, 7, "invalid attestor set")
)
