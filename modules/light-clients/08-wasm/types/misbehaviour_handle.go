package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// verifyMisbehaviour determines whether or not two conflicting
// headers at the same height would have convinced the light client.
//
// NOTE: consensusState1 is the trusted consensus state that corresponds to the TrustedHeight
// of misbehaviour.Header1
// Similarly, consensusState2 is the trusted consensus state that corresponds
// to misbehaviour.Header2
// Misbehaviour sets frozen height to the lower of the two implicated heights
func (cs *ClientState) verifyMisbehaviour(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, misbehaviour *Misbehaviour,
) error {
	if err := misbehaviour.ValidateBasic(); err != nil {
		return err
	}

	// Regardless of the type of misbehaviour, ensure that both headers are valid and would have been accepted by light-client
	for i, header := range []*Header{misbehaviour.Header1, misbehaviour.Header2} {
		trustedHeight, trustedConsState, err := cs.getTrustedConsensusState(clientStore, header)
		if err != nil {
			return sdkerrors.Wrapf(err, "could not get trusted consensus state for header %d", i+1)
		}

		if err := cs.verifyHeaderLinkage(ctx, verifier, trustedHeight, trustedConsState, header); err != nil {
			return sdkerrors.Wrapf(err, "verifying header %d in misbehaviour failed", i+1)
		}
	}

	return nil
}

// CheckForMisbehaviour detects duplicate height misbehaviour and BFT time violation misbehaviour
// in a submitted Header message and verifies the correctness of a submitted Misbehaviour ClientMessage
func (cs *ClientState) CheckForMisbehaviour(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, clientMsg *ClientMessage,
) (bool, error) {
	if err := cs.VerifyClientMessage(ctx, clientStore, verifier, clientMsg); err != nil {
		return false, err
	}

	_, found := detectMisbehaviour(clientStore, clientMsg)
	return found, nil
}

// UpdateStateOnMisbehaviour updates state upon misbehaviour, freezing the ClientState.
// The frozen height is the lowest height implicated by the evidence. The
// evidence is verified again before the client state is written.
func (cs *ClientState) UpdateStateOnMisbehaviour(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, clientMsg *ClientMessage,
) (clienttypes.Height, error) {
	if err := cs.VerifyClientMessage(ctx, clientStore, verifier, clientMsg); err != nil {
		return clienttypes.Height{}, err
	}

	frozenHeight, found := detectMisbehaviour(clientStore, clientMsg)
	if !found {
		return clienttypes.Height{}, sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, "client message does not prove misbehaviour")
	}

	cs.FrozenHeight = frozenHeight
	setClientState(clientStore, cs)

	return frozenHeight, nil
}

// detectMisbehaviour returns the height to freeze the client at and true if the verified
// client message conflicts with itself or with the stored consensus states.
func detectMisbehaviour(clientStore sdk.KVStore, clientMsg *ClientMessage) (clienttypes.Height, bool) {
	switch {
	case clientMsg.Header != nil:
		header := clientMsg.Header
		consState := header.ConsensusState()

		// Check if the Client store already has a consensus state for the header's height
		// If the consensus state exists, and it matches the header then we return early
		// since header has already been submitted in a previous UpdateClient.
		if existingConsState, found := GetConsensusState(clientStore, header.Height); found {
			if existingConsState.Equal(consState) {
				return clienttypes.Height{}, false
			}

			// A consensus state already exists for this height, but it does not match the provided header.
			// The assumption is that Header has already been validated. Thus we can return true as misbehaviour is present
			return header.Height, true
		}

		// Check that consensus state timestamps are monotonic
		if prevHeight, prevOk := GetPreviousConsensusStateHeight(clientStore, header.Height); prevOk {
			// if previous consensus state is not before current consensus state return true
			prevCons, found := GetConsensusState(clientStore, prevHeight)
			if found && !prevCons.Timestamp.Before(consState.Timestamp) {
				return prevHeight, true
			}
		}

		nextCons, nextOk := GetNextConsensusState(clientStore, header.Height)
		// if next consensus state exists, check consensus state time is less than next consensus state time
		// if next consensus state is not after current consensus state return true
		if nextOk && !nextCons.Timestamp.After(consState.Timestamp) {
			return header.Height, true
		}

	case clientMsg.Misbehaviour != nil:
		misbehaviour := clientMsg.Misbehaviour
		header1, header2 := misbehaviour.Header1, misbehaviour.Header2

		// if heights are equal check that this is valid misbehaviour of a fork
		// otherwise if heights are unequal check that this is valid misbehavior of BFT time violation
		if header1.Height.EQ(header2.Height) {
			if !header1.ConsensusState().Equal(header2.ConsensusState()) {
				return header2.Height, true
			}
		} else if !header1.Timestamp.After(header2.Timestamp) {
			// Header1 is at greater height than Header2, therefore Header1 time must be less than or equal to
			// Header2 time in order to be valid misbehaviour (violation of monotonic time).
			return header2.Height, true
		}
	}

	return clienttypes.Height{}, false
}
