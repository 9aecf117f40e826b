package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// VerifyClientMessage checks if the clientMessage is of type Header or Misbehaviour and verifies the message
func (cs *ClientState) VerifyClientMessage(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, clientMsg *ClientMessage,
) error {
	if clientMsg == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClientMessage, "client message cannot be nil")
	}

	if cs.IsFrozen() {
		return sdkerrors.Wrapf(clienttypes.ErrClientFrozen, "client is frozen at height %s", cs.FrozenHeight)
	}

	switch {
	case clientMsg.Header != nil && clientMsg.Misbehaviour == nil:
		return cs.verifyHeader(ctx, clientStore, verifier, clientMsg.Header)
	case clientMsg.Misbehaviour != nil && clientMsg.Header == nil:
		return cs.verifyMisbehaviour(ctx, clientStore, verifier, clientMsg.Misbehaviour)
	default:
		return clientMsg.ValidateBasic()
	}
}

// verifyHeader returns an error if:
// - the header is not newer than its trusted consensus state
// - the header time is not after the trusted time or too far in the future
// - the header fails the consensus family checks
// - the trusted consensus state is expired
//
// A header whose consensus state is already stored unchanged at its height is
// accepted without further checks.
func (cs *ClientState) verifyHeader(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, header *Header,
) error {
	if prevConsState, found := GetConsensusState(clientStore, header.Height); found && prevConsState.Equal(header.ConsensusState()) {
		return nil
	}

	trustedHeight, trustedConsState, err := cs.getTrustedConsensusState(clientStore, header)
	if err != nil {
		return err
	}

	if !header.Timestamp.After(trustedConsState.Timestamp) {
		return sdkerrors.Wrapf(
			clienttypes.ErrNonMonotonicHeight,
			"header timestamp %s must be after trusted timestamp %s at height %s",
			header.Timestamp, trustedConsState.Timestamp, trustedHeight,
		)
	}

	now := ctx.BlockTime()
	if maxTime := now.Add(cs.MaxClockDrift); !header.Timestamp.Before(maxTime) {
		return sdkerrors.Wrapf(
			clienttypes.ErrClockDriftExceeded,
			"header timestamp %s is not before current time %s plus max clock drift %s",
			header.Timestamp, now, cs.MaxClockDrift,
		)
	}

	return cs.verifyHeaderLinkage(ctx, verifier, trustedHeight, trustedConsState, header)
}

// getTrustedConsensusState returns the consensus state the header claims to
// build on. A zero trusted height selects the latest height of the client.
func (cs *ClientState) getTrustedConsensusState(clientStore sdk.KVStore, header *Header) (clienttypes.Height, *ConsensusState, error) {
	trustedHeight := header.TrustedHeight
	if trustedHeight.IsZero() {
		trustedHeight = cs.LatestHeight
	}

	trustedConsState, found := GetConsensusState(clientStore, trustedHeight)
	if !found {
		return clienttypes.Height{}, nil, sdkerrors.Wrapf(
			clienttypes.ErrConsensusStateNotFound,
			"could not get trusted consensus state from clientStore for header at trusted height: %s", trustedHeight,
		)
	}

	if header.Height.LTE(trustedHeight) {
		return clienttypes.Height{}, nil, sdkerrors.Wrapf(
			clienttypes.ErrNonMonotonicHeight,
			"header height %s must be greater than trusted height %s", header.Height, trustedHeight,
		)
	}

	return trustedHeight, trustedConsState, nil
}

// verifyHeaderLinkage checks the header is well formed and cryptographically
// linked to the trusted consensus state, which must not be expired.
func (cs *ClientState) verifyHeaderLinkage(
	ctx sdk.Context, verifier ConsensusVerifier,
	trustedHeight clienttypes.Height, trustedConsState *ConsensusState, header *Header,
) error {
	if err := header.ValidateBasic(); err != nil {
		return err
	}

	if header.Height.RevisionNumber != cs.LatestHeight.RevisionNumber {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidHeader,
			"header revision number %d does not match client revision number %d",
			header.Height.RevisionNumber, cs.LatestHeight.RevisionNumber,
		)
	}

	if verifier.ConsensusType() != cs.ConsensusType {
		return sdkerrors.Wrapf(ErrUnknownConsensusType, "verifier for %s cannot verify %s headers", verifier.ConsensusType(), cs.ConsensusType)
	}

	if err := verifier.CheckHeaderValidity(cs, header); err != nil {
		return err
	}

	now := ctx.BlockTime()
	if err := verifier.VerifyQuorum(cs, trustedHeight, trustedConsState, header, now); err != nil {
		return sdkerrors.Wrapf(err, "failed to verify header %s against trusted height %s", header.Height, trustedHeight)
	}

	if cs.IsExpired(trustedConsState.Timestamp, now) {
		return sdkerrors.Wrapf(
			clienttypes.ErrConsensusStateExpired,
			"trusted consensus state at height %s has expired", trustedHeight,
		)
	}

	return nil
}

// UpdateState may be used to either create a consensus state for:
// - a future height greater than the latest client state height
// - a past height that was skipped during bisection, if the update policy allows it
// If we are updating to a past height, a consensus state is created for that height to be persisted in client store
// If we are updating to a future height, the consensus state is created and the client state is updated to reflect
// the new latest height
// A list containing the updated consensus height is returned.
// The header is verified again before any write, so callers may not skip VerifyClientMessage.
func (cs *ClientState) UpdateState(
	ctx sdk.Context, clientStore sdk.KVStore, verifier ConsensusVerifier, clientMsg *ClientMessage,
) ([]clienttypes.Height, error) {
	if clientMsg == nil || clientMsg.Header == nil || clientMsg.Misbehaviour != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidClientMessage, "update state requires a header")
	}
	header := clientMsg.Header

	if err := cs.VerifyClientMessage(ctx, clientStore, verifier, clientMsg); err != nil {
		return nil, err
	}

	// check for duplicate update
	if consensusState, found := GetConsensusState(clientStore, header.Height); found {
		if consensusState.Equal(header.ConsensusState()) {
			// perform no-op
			return []clienttypes.Height{header.Height}, nil
		}
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrInvalidHeader,
			"a different consensus state is already stored at height %s, submit it as misbehaviour", header.Height,
		)
	}

	if err := cs.checkUpdatePolicy(clientStore, header); err != nil {
		return nil, err
	}

	height := header.Height
	if height.GT(cs.LatestHeight) {
		cs.LatestHeight = height
	}

	setConsensusState(clientStore, header.ConsensusState(), height)
	setConsensusMetadata(ctx, clientStore, height)
	setClientState(clientStore, cs)

	return []clienttypes.Height{height}, nil
}

// checkUpdatePolicy enforces the monotonicity of accepted heights.
func (cs *ClientState) checkUpdatePolicy(clientStore sdk.KVStore, header *Header) error {
	switch cs.UpdatePolicy {
	case "", UpdatePolicyStrict:
		if header.Height.LTE(cs.LatestHeight) {
			return sdkerrors.Wrapf(
				clienttypes.ErrNonMonotonicHeight,
				"header height %s must be greater than latest height %s", header.Height, cs.LatestHeight,
			)
		}
	case UpdatePolicyOutOfOrder:
		if prevCons, found := GetPreviousConsensusState(clientStore, header.Height); found && !prevCons.Timestamp.Before(header.Timestamp) {
			return sdkerrors.Wrapf(
				clienttypes.ErrNonMonotonicHeight,
				"header timestamp %s must be after the previous consensus state timestamp %s", header.Timestamp, prevCons.Timestamp,
			)
		}
		if nextCons, found := GetNextConsensusState(clientStore, header.Height); found && !nextCons.Timestamp.After(header.Timestamp) {
			return sdkerrors.Wrapf(
				clienttypes.ErrNonMonotonicHeight,
				"header timestamp %s must be before the next consensus state timestamp %s", header.Timestamp, nextCons.Timestamp,
			)
		}
	default:
		return sdkerrors.Wrapf(ErrInvalidUpdatePolicy, "unknown update policy %s", cs.UpdatePolicy)
	}

	return nil
}
