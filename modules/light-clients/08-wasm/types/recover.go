package types

import (
	"reflect"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// CheckSubstituteAndUpdateState will try to update the client with the state of the
// substitute.
//
// The following must always be true:
//   - The subject client is not Active and the substitute client is Active
//   - The subject and substitute client states match in all parameters (expect frozen height, latest height,
//     trusting period, and chain-id)
//
// A frozen subject is unfrozen by resetting the FrozenHeight to the zero Height.
func (cs ClientState) CheckSubstituteAndUpdateState(
	ctx sdk.Context, subjectClientStore, substituteClientStore sdk.KVStore,
	substituteClient *ClientState,
) error {
	if substituteClient == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "substitute client state cannot be nil")
	}

	if status := cs.Status(ctx, subjectClientStore); status == exported.Active {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidRecoveryClient, "cannot recover %s subject client", exported.Active)
	}

	if status := substituteClient.Status(ctx, substituteClientStore); status != exported.Active {
		return sdkerrors.Wrapf(clienttypes.ErrClientNotActive, "substitute client is not %s, status is %s", exported.Active, status)
	}

	if !IsMatchingClientState(cs, *substituteClient) {
		return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "subject client state does not match substitute client state")
	}

	if cs.IsFrozen() {
		// unfreeze the client
		cs.FrozenHeight = clienttypes.ZeroHeight()
	}

	// copy consensus states and processed time from substitute to subject
	// starting from initial height and ending on the latest height (inclusive)
	height := substituteClient.LatestHeight

	consensusState, found := GetConsensusState(substituteClientStore, height)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrConsensusStateNotFound, "unable to retrieve latest consensus state for substitute client")
	}

	setConsensusState(subjectClientStore, consensusState, height)

	// set metadata stored for the substitute consensus state
	processedHeight, found := GetProcessedHeight(substituteClientStore, height)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrProcessedHeightNotFound, "unable to retrieve processed height for substitute client latest height")
	}

	processedTime, found := GetProcessedTime(substituteClientStore, height)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrProcessedTimeNotFound, "unable to retrieve processed time for substitute client latest height")
	}

	setConsensusMetadataWithValues(subjectClientStore, height, processedHeight, processedTime)

	cs.LatestHeight = substituteClient.LatestHeight
	cs.ChainID = substituteClient.ChainID

	// set new trusting period based on the substitute client state
	cs.TrustingPeriod = substituteClient.TrustingPeriod

	// no validation is necessary since the substitute is verified to be Active
	setClientState(subjectClientStore, &cs)

	return nil
}

// IsMatchingClientState returns true if all the client state parameters match
// except for frozen height, latest height, trusting period, and chain-id.
func IsMatchingClientState(subject, substitute ClientState) bool {
	// zero out parameters which do not need to match
	subject.LatestHeight = clienttypes.ZeroHeight()
	subject.FrozenHeight = clienttypes.ZeroHeight()
	subject.TrustingPeriod = time.Duration(0)
	substitute.LatestHeight = clienttypes.ZeroHeight()
	substitute.FrozenHeight = clienttypes.ZeroHeight()
	substitute.TrustingPeriod = time.Duration(0)
	subject.ChainID = ""
	substitute.ChainID = ""
	// an empty update policy is the strict policy
	if subject.UpdatePolicy == "" {
		subject.UpdatePolicy = UpdatePolicyStrict
	}
	if substitute.UpdatePolicy == "" {
		substitute.UpdatePolicy = UpdatePolicyStrict
	}

	return reflect.DeepEqual(subject, substitute)
}
