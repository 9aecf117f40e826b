package attestations

import (
	"bytes"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

var _ types.ConsensusVerifier = Verifier{}

// Verifier checks attestor quorum proofs.
type Verifier struct{}

// NewVerifier returns the attestor consensus verifier.
func NewVerifier() Verifier {
	return Verifier{}
}

// ConsensusType returns 10-attestations.
func (Verifier) ConsensusType() string {
	return exported.Attestations
}

// CheckHeaderValidity decodes the attestation proof and checks its shape.
func (Verifier) CheckHeaderValidity(_ *types.ClientState, header *types.Header) error {
	proof, err := UnmarshalAttestationProof(header.Proof)
	if err != nil {
		return err
	}

	if err := proof.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	return nil
}

// VerifyQuorum checks the attestors of the proof are the set committed to by
// the trusted consensus state and that enough of them signed the header.
func (Verifier) VerifyQuorum(
	clientState *types.ClientState, _ clienttypes.Height,
	trustedConsensusState *types.ConsensusState, header *types.Header, _ time.Time,
) error {
	proof, err := UnmarshalAttestationProof(header.Proof)
	if err != nil {
		return err
	}

	if !bytes.Equal(AttestorSetHash(proof.Attestors), trustedConsensusState.NextValidatorsHash) {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidValidatorSet,
			"attestor set hash %X does not match trusted attestor set hash %X",
			AttestorSetHash(proof.Attestors), trustedConsensusState.NextValidatorsHash,
		)
	}

	signBytes, err := NewStateAttestation(clientState.ChainID, header).SignBytes()
	if err != nil {
		return err
	}

	requiredSigs := clientState.TrustLevel.RequiredOf(uint64(len(proof.Attestors)))
	return verifySignatures(signBytes, proof, requiredSigs)
}
