package types

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	upgradetypes "github.com/cosmos/cosmos-sdk/x/upgrade/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	ibcerrors "github.com/cosmos/wasm-light-client/modules/core/errors"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// VerifyUpgradeAndUpdateState checks if the upgraded client has been committed by the current client
// It will zero out all client-specific fields and verify all data in client state that must
// be the same across all valid clients for the new chain.
// Note, if there is a decrease in the UnbondingPeriod, then the TrustingPeriod, despite being a client-specific field
// is scaled down by the same ratio.
// VerifyUpgrade will return an error if:
// - the client has no upgrade path
// - the client is frozen
// - the height of upgraded client is not greater than that of current client
// - the proofs of the upgraded client and consensus state do not verify against the latest consensus state
// - the new client state fails validation
func (cs ClientState) VerifyUpgradeAndUpdateState(
	ctx sdk.Context, clientStore sdk.KVStore,
	upgradedClient *ClientState, upgradedConsState *ConsensusState,
	upgradeClientProof, upgradeConsStateProof []byte,
) error {
	if len(cs.UpgradePath) == 0 {
		return sdkerrors.Wrap(ibcerrors.ErrUnsupported, "cannot upgrade client, no upgrade path set")
	}

	if cs.IsFrozen() {
		return sdkerrors.Wrapf(clienttypes.ErrClientFrozen, "cannot upgrade client frozen at height %s", cs.FrozenHeight)
	}

	if upgradedClient == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "upgraded client state cannot be nil")
	}
	if upgradedConsState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "upgraded consensus state cannot be nil")
	}

	if !upgradedClient.LatestHeight.GT(cs.LatestHeight) {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight, "upgraded client height %s must be greater than current client height %s",
			upgradedClient.LatestHeight, cs.LatestHeight)
	}

	// unmarshal proofs
	merkleProofClient, err := commitmenttypes.UnmarshalMerkleProof(upgradeClientProof)
	if err != nil {
		return sdkerrors.Wrap(err, "could not unmarshal client merkle proof")
	}
	merkleProofConsState, err := commitmenttypes.UnmarshalMerkleProof(upgradeConsStateProof)
	if err != nil {
		return sdkerrors.Wrap(err, "could not unmarshal consensus state merkle proof")
	}

	// last height of current counterparty chain must be client's latest height
	lastHeight := cs.LatestHeight

	// Must prove against latest consensus state to ensure we are verifying against latest upgrade plan
	// This verifies that upgrade is intended for the provided revision, since committed client must exist
	// at this consensus state
	consState, found := GetConsensusState(clientStore, lastHeight)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrConsensusStateNotFound, "could not retrieve consensus state for lastHeight")
	}

	// Verify client proof
	bz, err := MarshalClientState(upgradedClient.ZeroCustomFields())
	if err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "could not marshal client state: %v", err)
	}
	// construct clientState Merkle path
	upgradeClientPath := constructUpgradeMerklePath(cs.UpgradePath, lastHeight, upgradetypes.KeyUpgradedClient)
	if err := merkleProofClient.VerifyMembership(cs.ProofSpecs, consState.GetRoot(), upgradeClientPath, bz); err != nil {
		return sdkerrors.Wrapf(err, "client state proof failed. Path: %s", upgradeClientPath)
	}

	// Verify consensus state proof
	bz, err = MarshalConsensusState(upgradedConsState)
	if err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "could not marshal consensus state: %v", err)
	}
	// construct consensus state Merkle path
	upgradeConsStatePath := constructUpgradeMerklePath(cs.UpgradePath, lastHeight, upgradetypes.KeyUpgradedConsState)
	if err := merkleProofConsState.VerifyMembership(cs.ProofSpecs, consState.GetRoot(), upgradeConsStatePath, bz); err != nil {
		return sdkerrors.Wrapf(err, "consensus state proof failed. Path: %s", upgradeConsStatePath)
	}

	trustingPeriod := cs.TrustingPeriod
	if upgradedClient.UnbondingPeriod < cs.UnbondingPeriod {
		trustingPeriod = calculateNewTrustingPeriod(trustingPeriod, cs.UnbondingPeriod, upgradedClient.UnbondingPeriod)
	}

	// Construct new client state and consensus state
	// Relayer chosen client parameters are ignored.
	// All chain-chosen parameters come from committed client, all client-chosen parameters
	// come from current client.
	newClientState := NewClientState(
		upgradedClient.ChainID, upgradedClient.ConsensusType, cs.TrustLevel, trustingPeriod, upgradedClient.UnbondingPeriod,
		cs.MaxClockDrift, upgradedClient.LatestHeight, upgradedClient.ProofSpecs, upgradedClient.UpgradePath,
	)
	newClientState.UpdatePolicy = cs.UpdatePolicy
	newClientState.Checksum = cs.Checksum

	if err := newClientState.Validate(); err != nil {
		return sdkerrors.Wrap(err, "updated client state failed basic validation")
	}

	// The new consensus state is merely used as a trusted kernel against which headers on the new
	// chain can be verified. The root is just a stand-in sentinel value as it cannot be known in advance, thus no proof verification will pass.
	// The timestamp and the NextValidatorsHash of the consensus state is the blocktime and NextValidatorsHash
	// of the last block committed by the old chain. This will allow the first block of the new chain to be verified against
	// the last validators of the old chain so long as it is submitted within the TrustingPeriod of this client.
	newConsState := NewConsensusState(
		upgradedConsState.Timestamp, commitmenttypes.NewMerkleRoot(SentinelRoot), upgradedConsState.NextValidatorsHash,
	)
	if err := newConsState.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "upgraded consensus state failed basic validation")
	}

	setClientState(clientStore, newClientState)
	setConsensusState(clientStore, newConsState, newClientState.LatestHeight)
	setConsensusMetadata(ctx, clientStore, newClientState.LatestHeight)

	return nil
}

// constructUpgradeMerklePath builds the path under which the upgraded client or consensus
// state is committed: the last key of the upgrade path is suffixed with the
// upgrade height and the given key.
func constructUpgradeMerklePath(upgradePath []string, lastHeight exported.Height, key string) commitmenttypes.MerklePath {
	// copy all elements from upgradePath except final element
	path := make([]string, len(upgradePath)-1)
	copy(path, upgradePath)

	// append lastHeight and the key to last key of upgradePath
	// this will create the IAVL key that is used to store the upgrade in upgrade store
	lastKey := upgradePath[len(upgradePath)-1]
	appendedKey := fmt.Sprintf("%s/%d/%s", lastKey, lastHeight.GetRevisionHeight(), key)

	path = append(path, appendedKey)

	var keyPath [][]byte
	for _, part := range path {
		keyPath = append(keyPath, []byte(part))
	}

	return commitmenttypes.NewMerklePath(keyPath...)
}

// calculateNewTrustingPeriod converts the provided durations to decimal representation to avoid floating-point precision issues
// and calculates the new trusting period, decreasing it by the ratio between the original and new unbonding period.
func calculateNewTrustingPeriod(trustingPeriod, originalUnbonding, newUnbonding time.Duration) time.Duration {
	origUnbondingDec := sdk.NewDec(originalUnbonding.Nanoseconds())
	newUnbondingDec := sdk.NewDec(newUnbonding.Nanoseconds())
	trustingPeriodDec := sdk.NewDec(trustingPeriod.Nanoseconds())

	// compute new trusting period: trustingPeriod * newUnbonding / originalUnbonding
	newTrustingPeriodDec := trustingPeriodDec.Mul(newUnbondingDec).Quo(origUnbondingDec)
	return time.Duration(newTrustingPeriodDec.TruncateInt64())
}
