package attestations

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// SignatureLength is the expected length of an ECDSA signature (r||s||v)
const SignatureLength = 65

// AttestationProof is the attestor evidence carried in the Proof field of a
// wasm header. Attestors is the full attestor set trusted at the trusted
// height, Signatures holds one signature per signing attestor.
type AttestationProof struct {
	Attestors  []common.Address `json:"attestors"`
	Signatures [][]byte         `json:"signatures"`
}

// Marshal encodes the proof as JSON.
func (ap AttestationProof) Marshal() ([]byte, error) {
	return json.Marshal(ap)
}

// UnmarshalAttestationProof decodes a JSON encoded attestation proof.
func UnmarshalAttestationProof(bz []byte) (*AttestationProof, error) {
	var proof AttestationProof
	if err := json.Unmarshal(bz, &proof); err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "failed to decode attestation proof: %v", err)
	}
	return &proof, nil
}

// ValidateBasic checks the shape of the proof.
func (ap AttestationProof) ValidateBasic() error {
	if len(ap.Attestors) == 0 {
		return sdkerrors.Wrap(ErrInvalidAttestorSet, "attestors cannot be empty")
	}

	seen := make(map[common.Address]bool, len(ap.Attestors))
	for _, attestor := range ap.Attestors {
		if attestor == (common.Address{}) {
			return sdkerrors.Wrap(ErrInvalidAttestorSet, "attestor address cannot be zero")
		}
		if seen[attestor] {
			return sdkerrors.Wrapf(ErrInvalidAttestorSet, "duplicate attestor %s", attestor.Hex())
		}
		seen[attestor] = true
	}

	if len(ap.Signatures) == 0 {
		return sdkerrors.Wrap(ErrInvalidSignature, "signatures cannot be empty")
	}
	if len(ap.Signatures) > len(ap.Attestors) {
		return sdkerrors.Wrapf(ErrInvalidSignature, "got %d signatures for %d attestors", len(ap.Signatures), len(ap.Attestors))
	}
	for i, sig := range ap.Signatures {
		if len(sig) != SignatureLength {
			return sdkerrors.Wrapf(ErrInvalidSignature, "signature %d has invalid length: expected %d, got %d", i, SignatureLength, len(sig))
		}
	}

	return nil
}

// AttestorSetHash returns the keccak256 hash of the concatenated attestor
// addresses in ascending order. The order of the input does not matter.
func AttestorSetHash(attestors []common.Address) []byte {
	sorted := make([]common.Address, len(attestors))
	copy(sorted, attestors)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Bytes(), sorted[j].Bytes()) < 0
	})

	bz := make([]byte, 0, len(sorted)*common.AddressLength)
	for _, attestor := range sorted {
		bz = append(bz, attestor.Bytes()...)
	}
	return crypto.Keccak256(bz)
}
