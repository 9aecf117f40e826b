package attestations

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// verifySignatures verifies that the attestation proof has valid signatures from unique attestors
// meeting the quorum threshold. Signatures cover the sign bytes of the state attestation.
func verifySignatures(signBytes []byte, proof *AttestationProof, requiredSigs uint64) error {
	attestorSet := make(map[common.Address]bool, len(proof.Attestors))
	for _, addr := range proof.Attestors {
		attestorSet[addr] = true
	}

	seenSigners := make(map[common.Address]bool)
	var validSigs uint64

	for i, sig := range proof.Signatures {
		if len(sig) != SignatureLength {
			return sdkerrors.Wrapf(ErrInvalidSignature, "signature %d has invalid length: expected %d, got %d", i, SignatureLength, len(sig))
		}

		recoveredPubKey, err := crypto.SigToPub(signBytes, sig)
		if err != nil {
			return sdkerrors.Wrapf(ErrInvalidSignature, "failed to recover public key from signature %d: %v", i, err)
		}

		recoveredAddr := crypto.PubkeyToAddress(*recoveredPubKey)

		if seenSigners[recoveredAddr] {
			return sdkerrors.Wrapf(ErrDuplicateSigner, "duplicate signer: %s", recoveredAddr.Hex())
		}
		seenSigners[recoveredAddr] = true

		if !attestorSet[recoveredAddr] {
			return sdkerrors.Wrapf(ErrUnknownSigner, "signer %s is not in attestor set", recoveredAddr.Hex())
		}

		validSigs++
	}

	if validSigs < requiredSigs {
		return sdkerrors.Wrapf(ErrInvalidQuorum, "quorum not met: required %d, got %d", requiredSigs, validSigs)
	}

	return nil
}
