package ibctesting

import (
	"testing"
	"time"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// HeaderSigner produces headers for one consensus family. The same signer set
// is trusted at every height, so a header signed by it can be built on any
// consensus state created from NextValidatorsHash.
type HeaderSigner interface {
	ConsensusType() string
	NextValidatorsHash() []byte
	CreateHeader(chainID string, height, trustedHeight clienttypes.Height, timestamp time.Time, root []byte) *types.Header
}

// NewHeaderSigner returns a signer for the given consensus family.
func NewHeaderSigner(t *testing.T, consensusType string) HeaderSigner {
	switch consensusType {
	case exported.Tendermint:
		return NewTendermintSigner(t, DefaultValidators)
	case exported.Attestations:
		return NewAttestors(t, DefaultAttestors)
	default:
		t.Fatalf("unknown consensus type %s", consensusType)
		return nil
	}
}

// NewConsensusState returns the consensus state a signer trusts at the given time and root.
func NewConsensusState(signer HeaderSigner, timestamp time.Time, root []byte) *types.ConsensusState {
	return types.NewConsensusState(timestamp, commitmenttypes.NewMerkleRoot(root), signer.NextValidatorsHash())
}
