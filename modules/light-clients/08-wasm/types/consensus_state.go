package types

import (
	"bytes"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// ConsensusState is the checkpoint of the counterparty chain trusted at a
// single height.
type ConsensusState struct {
	// timestamp that corresponds to the block height in which the ConsensusState
	// was stored.
	Timestamp time.Time `json:"timestamp"`
	// commitment root (i.e app hash)
	Root               commitmenttypes.MerkleRoot `json:"root"`
	NextValidatorsHash tmbytes.HexBytes           `json:"next_validators_hash"`
}

// NewConsensusState creates a new ConsensusState instance.
func NewConsensusState(
	timestamp time.Time, root commitmenttypes.MerkleRoot, nextValsHash tmbytes.HexBytes,
) *ConsensusState {
	return &ConsensusState{
		Timestamp:          timestamp,
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// ClientType returns the wasm client type.
func (ConsensusState) ClientType() string {
	return exported.Wasm
}

// GetRoot returns the commitment Root for the specific
func (cs ConsensusState) GetRoot() exported.Root {
	return cs.Root
}

// GetTimestamp returns block time in nanoseconds of the header that created consensus state
func (cs ConsensusState) GetTimestamp() uint64 {
	return uint64(cs.Timestamp.UnixNano())
}

// Equal returns true if both consensus states commit to the same root, time
// and next validator set.
func (cs ConsensusState) Equal(other *ConsensusState) bool {
	if other == nil {
		return false
	}
	return cs.Timestamp.Equal(other.Timestamp) &&
		bytes.Equal(cs.Root.GetHash(), other.Root.GetHash()) &&
		bytes.Equal(cs.NextValidatorsHash, other.NextValidatorsHash)
}

// ValidateBasic defines a basic validation for the consensus state.
func (cs ConsensusState) ValidateBasic() error {
	if cs.Root.Empty() {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "root cannot be empty")
	}
	if len(cs.NextValidatorsHash) == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "next validators hash cannot be empty")
	}
	if err := tmtypes.ValidateHash(cs.NextValidatorsHash); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "next validators hash is invalid: %v", err)
	}
	if cs.Timestamp.Unix() <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "timestamp must be a positive Unix time")
	}
	return nil
}
