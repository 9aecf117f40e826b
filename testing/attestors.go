package ibctesting

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	attestations "github.com/cosmos/wasm-light-client/modules/light-clients/10-attestations"
)

var _ HeaderSigner = &Attestors{}

// Attestors is a set of secp256k1 attestors.
type Attestors struct {
	t *testing.T

	Keys      []*ecdsa.PrivateKey
	Addresses []common.Address
}

// NewAttestors generates n attestor keys.
func NewAttestors(t *testing.T, n int) *Attestors {
	t.Helper()

	attestors := &Attestors{t: t}
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)

		attestors.Keys = append(attestors.Keys, key)
		attestors.Addresses = append(attestors.Addresses, crypto.PubkeyToAddress(key.PublicKey))
	}
	return attestors
}

// ConsensusType returns 10-attestations.
func (*Attestors) ConsensusType() string {
	return exported.Attestations
}

// NextValidatorsHash returns the attestor set hash.
func (a *Attestors) NextValidatorsHash() []byte {
	return attestations.AttestorSetHash(a.Addresses)
}

// CreateHeader creates a header signed by every attestor.
func (a *Attestors) CreateHeader(chainID string, height, trustedHeight clienttypes.Height, timestamp time.Time, root []byte) *types.Header {
	return a.CreateHeaderWithSigners(chainID, height, trustedHeight, timestamp, root, a.Keys)
}

// CreateHeaderWithSigners creates a header signed by the given keys only. The
// proof lists the full attestor set.
func (a *Attestors) CreateHeaderWithSigners(
	chainID string, height, trustedHeight clienttypes.Height, timestamp time.Time, root []byte, keys []*ecdsa.PrivateKey,
) *types.Header {
	header := &types.Header{
		Height:             height,
		Timestamp:          timestamp,
		Root:               commitmenttypes.NewMerkleRoot(root),
		NextValidatorsHash: a.NextValidatorsHash(),
		TrustedHeight:      trustedHeight,
	}

	proof := attestations.AttestationProof{
		Attestors:  a.Addresses,
		Signatures: a.Sign(chainID, header, keys),
	}
	proofBz, err := proof.Marshal()
	require.NoError(a.t, err)

	header.Proof = proofBz
	return header
}

// Sign returns the signatures of the given keys over the state attestation of the header.
func (a *Attestors) Sign(chainID string, header *types.Header, keys []*ecdsa.PrivateKey) [][]byte {
	signBytes, err := attestations.NewStateAttestation(chainID, header).SignBytes()
	require.NoError(a.t, err)

	signatures := make([][]byte, 0, len(keys))
	for _, key := range keys {
		sig, err := crypto.Sign(signBytes, key)
		require.NoError(a.t, err)
		signatures = append(signatures, sig)
	}
	return signatures
}
