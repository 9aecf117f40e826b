package ibctesting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmprotoversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
	tmversion "github.com/tendermint/tendermint/version"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	tendermint "github.com/cosmos/wasm-light-client/modules/light-clients/07-tendermint"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

var _ HeaderSigner = &TendermintSigner{}

// TendermintSigner is a tendermint validator set with its private validators.
type TendermintSigner struct {
	t *testing.T

	ValSet *tmtypes.ValidatorSet
	// Signers is ordered as ValSet.Validators
	Signers []tmtypes.PrivValidator
}

// NewTendermintSigner creates a validator set of n mock validators with equal voting power.
func NewTendermintSigner(t *testing.T, n int) *TendermintSigner {
	t.Helper()

	privVals := make([]tmtypes.PrivValidator, n)
	validators := make([]*tmtypes.Validator, n)
	for i := range privVals {
		privVal := tmtypes.NewMockPV()
		pubKey, err := privVal.GetPubKey()
		require.NoError(t, err)

		privVals[i] = privVal
		validators[i] = tmtypes.NewValidator(pubKey, 1)
	}

	valSet := tmtypes.NewValidatorSet(validators)

	// sort the signers the way the validator set sorted the validators
	signers := make([]tmtypes.PrivValidator, 0, n)
	for _, val := range valSet.Validators {
		for _, privVal := range privVals {
			pubKey, err := privVal.GetPubKey()
			require.NoError(t, err)
			if bytes.Equal(pubKey.Address(), val.Address) {
				signers = append(signers, privVal)
			}
		}
	}
	require.Len(t, signers, n)

	return &TendermintSigner{
		t:       t,
		ValSet:  valSet,
		Signers: signers,
	}
}

// ConsensusType returns 07-tendermint.
func (*TendermintSigner) ConsensusType() string {
	return exported.Tendermint
}

// NextValidatorsHash returns the hash of the validator set.
func (s *TendermintSigner) NextValidatorsHash() []byte {
	return s.ValSet.Hash()
}

// CreateHeader creates a header signed by every validator, trusting the same validator set.
func (s *TendermintSigner) CreateHeader(chainID string, height, trustedHeight clienttypes.Height, timestamp time.Time, root []byte) *types.Header {
	return s.CreateHeaderWithSigners(chainID, height, trustedHeight, timestamp, root, s.ValSet, s.Signers)
}

// CreateHeaderWithSigners creates a header committed by the given signers, which
// must be ordered as s.ValSet. trustedVals is the validator set the header claims
// is trusted at trustedHeight.
func (s *TendermintSigner) CreateHeaderWithSigners(
	chainID string, height, trustedHeight clienttypes.Height, timestamp time.Time, root []byte,
	trustedVals *tmtypes.ValidatorSet, signers []tmtypes.PrivValidator,
) *types.Header {
	blockHeight := int64(height.RevisionHeight)
	vsetHash := s.ValSet.Hash()

	tmHeader := tmtypes.Header{
		Version:            tmprotoversion.Consensus{Block: tmversion.BlockProtocol, App: 2},
		ChainID:            chainID,
		Height:             blockHeight,
		Time:               timestamp,
		LastBlockID:        MakeBlockID(make([]byte, tmhash.Size), 10_000, make([]byte, tmhash.Size)),
		LastCommitHash:     tmhash.Sum([]byte("last_commit_hash")),
		DataHash:           tmhash.Sum([]byte("data_hash")),
		ValidatorsHash:     vsetHash,
		NextValidatorsHash: vsetHash,
		ConsensusHash:      tmhash.Sum([]byte("consensus_hash")),
		AppHash:            root,
		LastResultsHash:    tmhash.Sum([]byte("last_results_hash")),
		EvidenceHash:       tmhash.Sum([]byte("evidence_hash")),
		ProposerAddress:    s.ValSet.Proposer.Address,
	}

	hhash := tmHeader.Hash()
	blockID := MakeBlockID(hhash, 3, tmhash.Sum([]byte("part_set")))
	voteSet := tmtypes.NewVoteSet(chainID, blockHeight, 1, tmproto.PrecommitType, s.ValSet)

	commit, err := tmtypes.MakeCommit(blockID, blockHeight, 1, voteSet, signers, timestamp)
	require.NoError(s.t, err)

	valSet, err := s.ValSet.ToProto()
	require.NoError(s.t, err)

	trustedValSet, err := trustedVals.ToProto()
	require.NoError(s.t, err)

	proof := tendermint.HeaderProof{
		SignedHeader: &tmproto.SignedHeader{
			Header: tmHeader.ToProto(),
			Commit: commit.ToProto(),
		},
		ValidatorSet:      valSet,
		TrustedValidators: trustedValSet,
	}
	proofBz, err := proof.Marshal()
	require.NoError(s.t, err)

	return &types.Header{
		Height:             height,
		Timestamp:          timestamp,
		Root:               commitmenttypes.NewMerkleRoot(root),
		NextValidatorsHash: vsetHash,
		TrustedHeight:      trustedHeight,
		Proof:              proofBz,
	}
}

// MakeBlockID copied unimported test functions from tmtypes to use them here
func MakeBlockID(hash []byte, partSetSize uint32, partSetHash []byte) tmtypes.BlockID {
	return tmtypes.BlockID{
		Hash: hash,
		PartSetHeader: tmtypes.PartSetHeader{
			Total: partSetSize,
			Hash:  partSetHash,
		},
	}
}
