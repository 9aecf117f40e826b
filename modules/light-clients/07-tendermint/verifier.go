package tendermint

import (
	"bytes"
	"errors"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/light"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

var _ types.ConsensusVerifier = Verifier{}

// Verifier checks tendermint header proofs.
type Verifier struct{}

// NewVerifier returns the tendermint consensus verifier.
func NewVerifier() Verifier {
	return Verifier{}
}

// ConsensusType returns 07-tendermint.
func (Verifier) ConsensusType() string {
	return exported.Tendermint
}

// CheckHeaderValidity checks that the signed header is valid for the chain of
// the client, that it commits to the height, time, root and next validator
// set claimed by the header, and that the validator set hashes to the
// validators hash of the signed header.
func (Verifier) CheckHeaderValidity(clientState *types.ClientState, header *types.Header) error {
	proof, err := UnmarshalHeaderProof(header.Proof)
	if err != nil {
		return err
	}

	signedHeader, valSet, _, err := proof.toTendermint()
	if err != nil {
		return err
	}

	if err := signedHeader.ValidateBasic(clientState.ChainID); err != nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	if uint64(signedHeader.Height) != header.Height.RevisionHeight {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "signed header height %d does not match header height %s", signedHeader.Height, header.Height)
	}
	if clienttypes.ParseChainID(signedHeader.ChainID) != header.Height.RevisionNumber {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "signed header chain-id %s does not match revision %d", signedHeader.ChainID, header.Height.RevisionNumber)
	}
	if !signedHeader.Time.Equal(header.Timestamp) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "signed header time %s does not match header timestamp %s", signedHeader.Time, header.Timestamp)
	}
	if !bytes.Equal(signedHeader.AppHash, header.Root.GetHash()) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "signed header app hash %X does not match header root %X", signedHeader.AppHash, header.Root.GetHash())
	}
	if !bytes.Equal(signedHeader.NextValidatorsHash, header.NextValidatorsHash) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "signed header next validators hash %X does not match header %X", signedHeader.NextValidatorsHash, header.NextValidatorsHash)
	}
	if !bytes.Equal(signedHeader.ValidatorsHash, valSet.Hash()) {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "validator set does not match hash")
	}

	return nil
}

// VerifyQuorum checks the trusted validators against the trusted consensus
// state and runs the tendermint light client verification of the signed
// header against a header reconstructed from the trusted consensus state.
func (Verifier) VerifyQuorum(
	clientState *types.ClientState, trustedHeight clienttypes.Height,
	trustedConsensusState *types.ConsensusState, header *types.Header, now time.Time,
) error {
	proof, err := UnmarshalHeaderProof(header.Proof)
	if err != nil {
		return err
	}

	signedHeader, valSet, trustedVals, err := proof.toTendermint()
	if err != nil {
		return err
	}

	// assert that the trusted validators are the ones committed to by the trusted consensus state
	if !bytes.Equal(trustedVals.Hash(), trustedConsensusState.NextValidatorsHash) {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidValidatorSet,
			"trusted validators %X, does not hash to latest trusted validators. Expected: %X, got: %X",
			trustedVals.Hash(), trustedConsensusState.NextValidatorsHash, trustedVals.Hash(),
		)
	}

	// Construct a trusted header using the fields in consensus state
	// Only Height, Time, and NextValidatorsHash are necessary for verification
	trustedHeader := tmtypes.Header{
		ChainID:            clientState.ChainID,
		Height:             int64(trustedHeight.RevisionHeight),
		Time:               trustedConsensusState.Timestamp,
		NextValidatorsHash: trustedConsensusState.NextValidatorsHash,
	}
	signedTrustedHeader := tmtypes.SignedHeader{
		Header: &trustedHeader,
	}

	// Verify next header with the passed-in trustedVals
	// - asserts trusting period not passed
	// - assert header timestamp is not past the trusting period
	// - assert header timestamp is past latest stored consensus state timestamp
	// - assert that a TrustLevel proportion of TrustedValidators signed new Commit
	err = light.Verify(
		&signedTrustedHeader,
		trustedVals, signedHeader, valSet,
		clientState.TrustingPeriod, now, clientState.MaxClockDrift, clientState.TrustLevel.ToTendermint(),
	)
	if err != nil {
		var expired light.ErrOldHeaderExpired
		if errors.As(err, &expired) {
			return sdkerrors.Wrap(clienttypes.ErrConsensusStateExpired, err.Error())
		}
		return sdkerrors.Wrap(clienttypes.ErrFailedQuorumVerification, err.Error())
	}

	return nil
}
