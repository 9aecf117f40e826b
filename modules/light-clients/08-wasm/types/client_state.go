package types

import (
	"strings"
	"time"

	ics23 "github.com/confio/ics23/go"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	ibcerrors "github.com/cosmos/wasm-light-client/modules/core/errors"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// ClientState is the light client state of a counterparty chain. It is
// serialized as JSON into the data field of the wasm client state envelope.
type ClientState struct {
	ChainID string `json:"chain_id"`
	// consensus family used to verify headers, see Router
	ConsensusType string   `json:"consensus_type"`
	TrustLevel    Fraction `json:"trust_level"`
	// duration of the period since the LastestTimestamp during which the
	// submitted headers are valid for upgrade
	TrustingPeriod time.Duration `json:"trusting_period"`
	// duration of the staking unbonding period
	UnbondingPeriod time.Duration `json:"unbonding_period"`
	// defines how much new (untrusted) header's Time can drift into the future.
	MaxClockDrift time.Duration `json:"max_clock_drift"`
	// Block height when the client was frozen due to a misbehaviour
	FrozenHeight clienttypes.Height `json:"frozen_height"`
	// Latest height the client was updated to
	LatestHeight clienttypes.Height `json:"latest_height"`
	// Proof specifications used in verifying counterparty state
	ProofSpecs []*ics23.ProofSpec `json:"proof_specs"`
	// Path at which next upgraded client will be committed.
	// Each element corresponds to the key for a single CommitmentProof in the
	// chained proof. NOTE: ClientState must stored under
	// `{upgradePath}/{upgradeHeight}/clientState` ConsensusState must be stored
	// under `{upgradepath}/{upgradeHeight}/consensusState`
	UpgradePath []string `json:"upgrade_path"`
	// UpdatePolicy is either UpdatePolicyStrict (the default when empty) or
	// UpdatePolicyOutOfOrder.
	UpdatePolicy string `json:"update_policy,omitempty"`

	// Checksum of the contract code. It is persisted in the envelope, not in the data.
	Checksum []byte `json:"-"`
}

// NewClientState creates a new ClientState instance
func NewClientState(
	chainID, consensusType string, trustLevel Fraction,
	trustingPeriod, ubdPeriod, maxClockDrift time.Duration,
	latestHeight clienttypes.Height, specs []*ics23.ProofSpec,
	upgradePath []string,
) *ClientState {
	return &ClientState{
		ChainID:         chainID,
		ConsensusType:   consensusType,
		TrustLevel:      trustLevel,
		TrustingPeriod:  trustingPeriod,
		UnbondingPeriod: ubdPeriod,
		MaxClockDrift:   maxClockDrift,
		LatestHeight:    latestHeight,
		FrozenHeight:    clienttypes.ZeroHeight(),
		ProofSpecs:      specs,
		UpgradePath:     upgradePath,
		UpdatePolicy:    UpdatePolicyStrict,
	}
}

// GetChainID returns the chain-id
func (cs ClientState) GetChainID() string {
	return cs.ChainID
}

// ClientType is wasm.
func (ClientState) ClientType() string {
	return exported.Wasm
}

// GetLatestHeight returns latest block height.
func (cs ClientState) GetLatestHeight() exported.Height {
	return cs.LatestHeight
}

// IsFrozen returns true if the client has been frozen due to misbehaviour.
func (cs ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// GetTimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (ClientState) GetTimestampAtHeight(
	clientStore sdk.KVStore,
	height exported.Height,
) (uint64, error) {
	consState, found := GetConsensusState(clientStore, height)
	if !found {
		return 0, sdkerrors.Wrapf(clienttypes.ErrConsensusStateNotFound, "height (%s)", height)
	}
	return consState.GetTimestamp(), nil
}

// Status returns the status of the client.
// The client may be:
// - Active: FrozenHeight is zero and client is not expired
// - Frozen: Frozen Height is not zero
// - Expired: the latest consensus state timestamp + trusting period <= current time
//
// A frozen client will become expired, so the Frozen status
// has higher precedence.
func (cs ClientState) Status(
	ctx sdk.Context,
	clientStore sdk.KVStore,
) exported.Status {
	if cs.IsFrozen() {
		return exported.Frozen
	}

	// get latest consensus state from clientStore to check for expiry
	consState, found := GetConsensusState(clientStore, cs.LatestHeight)
	if !found {
		// if the client state does not have an associated consensus state for its latest height
		// then it must be expired
		return exported.Expired
	}

	if cs.IsExpired(consState.Timestamp, ctx.BlockTime()) {
		return exported.Expired
	}

	return exported.Active
}

// IsExpired returns whether or not the client has passed the trusting period since the last
// update (in which case no headers are considered valid).
func (cs ClientState) IsExpired(latestTimestamp, now time.Time) bool {
	expirationTime := latestTimestamp.Add(cs.TrustingPeriod)
	return !expirationTime.After(now)
}

// Validate performs a basic validation of the client state fields.
func (cs ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return sdkerrors.Wrap(clienttypes.ErrInvalidChainID, "chain id cannot be empty string")
	}
	if len(cs.ChainID) > MaxChainIDLen {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidChainID, "chainID is too long; got: %d, max: %d", len(cs.ChainID), MaxChainIDLen)
	}
	if strings.TrimSpace(cs.ConsensusType) == "" {
		return sdkerrors.Wrap(ErrUnknownConsensusType, "consensus type cannot be empty")
	}
	if err := cs.TrustLevel.Validate(); err != nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidTrustLevel, err.Error())
	}
	if cs.TrustingPeriod <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidTrustingPeriod, "trusting period must be greater than zero")
	}
	if cs.UnbondingPeriod <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidUnbondingPeriod, "unbonding period must be greater than zero")
	}
	if cs.MaxClockDrift <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidMaxClockDrift, "max clock drift must be greater than zero")
	}

	// the latest height revision number must match the chain id revision number
	if cs.LatestHeight.RevisionNumber != clienttypes.ParseChainID(cs.ChainID) {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient,
			"latest height revision number must match chain id revision number (%d != %d)", cs.LatestHeight.RevisionNumber, clienttypes.ParseChainID(cs.ChainID))
	}
	if cs.LatestHeight.RevisionHeight == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "client's latest height revision height cannot be zero")
	}
	if cs.TrustingPeriod >= cs.UnbondingPeriod {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidTrustingPeriod,
			"trusting period (%s) should be < unbonding period (%s)", cs.TrustingPeriod, cs.UnbondingPeriod,
		)
	}

	if len(cs.ProofSpecs) == 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidProofSpecs, "proof specs cannot be empty")
	}
	for i, spec := range cs.ProofSpecs {
		if spec == nil {
			return sdkerrors.Wrapf(clienttypes.ErrInvalidProofSpecs, "proof spec cannot be nil at index: %d", i)
		}
	}
	// UpgradePath may be empty, but if it isn't, each key must be non-empty
	for i, k := range cs.UpgradePath {
		if strings.TrimSpace(k) == "" {
			return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "key in upgrade path at index %d cannot be empty", i)
		}
	}

	switch cs.UpdatePolicy {
	case "", UpdatePolicyStrict, UpdatePolicyOutOfOrder:
	default:
		return sdkerrors.Wrapf(ErrInvalidUpdatePolicy, "expected %s or %s, got %s", UpdatePolicyStrict, UpdatePolicyOutOfOrder, cs.UpdatePolicy)
	}

	return nil
}

// ValidateChecksum checks the contract checksum is a sha256 digest.
func ValidateChecksum(checksum []byte) error {
	if len(checksum) != ChecksumLength {
		return sdkerrors.Wrapf(ErrInvalidChecksum, "expected length of %d bytes, got %d", ChecksumLength, len(checksum))
	}
	return nil
}

// ZeroCustomFields returns a ClientState that is a copy of the current ClientState
// with all client customizable fields zeroed out. All chain specific fields must
// remain unchanged. This client state will be used to verify chain upgrades when a
// chain breaks a light client verification parameter such as chainID.
func (cs ClientState) ZeroCustomFields() *ClientState {
	// copy over all chain-specified fields
	// and leave custom fields empty
	return &ClientState{
		ChainID:         cs.ChainID,
		ConsensusType:   cs.ConsensusType,
		UnbondingPeriod: cs.UnbondingPeriod,
		LatestHeight:    cs.LatestHeight,
		ProofSpecs:      cs.ProofSpecs,
		UpgradePath:     cs.UpgradePath,
	}
}

// Initialize checks the initial consensus state and sets the client state,
// consensus state and associated metadata in the provided client store.
func (cs ClientState) Initialize(ctx sdk.Context, clientStore sdk.KVStore, consensusState *ConsensusState) error {
	if consensusState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "initial consensus state cannot be nil")
	}
	if err := consensusState.ValidateBasic(); err != nil {
		return err
	}

	setClientState(clientStore, &cs)
	setConsensusState(clientStore, consensusState, cs.LatestHeight)
	setConsensusMetadata(ctx, clientStore, cs.LatestHeight)

	return nil
}

// VerifyMembership is a generic proof verification method which verifies a proof of the existence of a value at a given CommitmentPath at the specified height.
// The caller is expected to construct the full CommitmentPath from a CommitmentPrefix and a standardized path (as defined in ICS 24).
// If a zero proof height is passed in, it will fail to retrieve the associated consensus state.
func (cs ClientState) VerifyMembership(
	ctx sdk.Context,
	clientStore sdk.KVStore,
	height exported.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path exported.Path,
	value []byte,
) error {
	merkleProof, consensusState, err := cs.checkProofArgs(ctx, clientStore, height, delayTimePeriod, delayBlockPeriod, proof, path)
	if err != nil {
		return err
	}

	return merkleProof.VerifyMembership(cs.ProofSpecs, consensusState.GetRoot(), path, value)
}

// VerifyNonMembership is a generic proof verification method which verifies the absence of a given CommitmentPath at a specified height.
// The caller is expected to construct the full CommitmentPath from a CommitmentPrefix and a standardized path (as defined in ICS 24).
// If a zero proof height is passed in, it will fail to retrieve the associated consensus state.
func (cs ClientState) VerifyNonMembership(
	ctx sdk.Context,
	clientStore sdk.KVStore,
	height exported.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path exported.Path,
) error {
	merkleProof, consensusState, err := cs.checkProofArgs(ctx, clientStore, height, delayTimePeriod, delayBlockPeriod, proof, path)
	if err != nil {
		return err
	}

	return merkleProof.VerifyNonMembership(cs.ProofSpecs, consensusState.GetRoot(), path)
}

// checkProofArgs resolves the consensus state a proof is checked against.
// Proofs at or above the frozen height are rejected, proofs below it remain
// verifiable.
func (cs ClientState) checkProofArgs(
	ctx sdk.Context,
	clientStore sdk.KVStore,
	height exported.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path exported.Path,
) (commitmenttypes.MerkleProof, *ConsensusState, error) {
	if cs.LatestHeight.LT(height) {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrapf(
			ibcerrors.ErrInvalidHeight,
			"client state height < proof height (%s < %s), please ensure the client has been updated", cs.LatestHeight, height,
		)
	}

	if cs.IsFrozen() && cs.FrozenHeight.LTE(height) {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrapf(
			clienttypes.ErrClientFrozen,
			"proof height %s is not below frozen height %s", height, cs.FrozenHeight,
		)
	}

	merklePath, ok := path.(commitmenttypes.MerklePath)
	if !ok {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrapf(commitmenttypes.ErrInvalidPath, "expected %T, got %T", commitmenttypes.MerklePath{}, path)
	}
	if err := merklePath.ValidateAsPath(); err != nil {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrap(commitmenttypes.ErrInvalidPath, err.Error())
	}

	consensusState, found := GetConsensusState(clientStore, height)
	if !found {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrap(clienttypes.ErrConsensusStateNotFound, "please ensure the proof was constructed against a height that exists on the client")
	}

	if cs.IsExpired(consensusState.Timestamp, ctx.BlockTime()) {
		return commitmenttypes.MerkleProof{}, nil, sdkerrors.Wrapf(clienttypes.ErrConsensusStateExpired, "consensus state at height %s is past the trusting period", height)
	}

	if err := verifyDelayPeriodPassed(ctx, clientStore, height, delayTimePeriod, delayBlockPeriod); err != nil {
		return commitmenttypes.MerkleProof{}, nil, err
	}

	merkleProof, err := commitmenttypes.UnmarshalMerkleProof(proof)
	if err != nil {
		return commitmenttypes.MerkleProof{}, nil, err
	}

	return merkleProof, consensusState, nil
}

// verifyDelayPeriodPassed will ensure that at least delayTimePeriod amount of time and delayBlockPeriod number of blocks have passed
// since consensus state was submitted before allowing verification to continue.
func verifyDelayPeriodPassed(ctx sdk.Context, store sdk.KVStore, proofHeight exported.Height, delayTimePeriod, delayBlockPeriod uint64) error {
	if delayTimePeriod != 0 {
		// check that executing chain's timestamp has passed consensusState's processed time + delay time period
		processedTime, ok := GetProcessedTime(store, proofHeight)
		if !ok {
			return sdkerrors.Wrapf(clienttypes.ErrProcessedTimeNotFound, "processed time not found for height: %s", proofHeight)
		}

		currentTimestamp := uint64(ctx.BlockTime().UnixNano())
		validTime := processedTime + delayTimePeriod

		// NOTE: delay time period is inclusive, so if currentTimestamp is validTime, then we return no error
		if currentTimestamp < validTime {
			return sdkerrors.Wrapf(clienttypes.ErrDelayPeriodNotPassed, "cannot verify packet until time: %d, current time: %d",
				validTime, currentTimestamp)
		}
	}

	if delayBlockPeriod != 0 {
		// check that executing chain's height has passed consensusState's processed height + delay block period
		processedHeight, ok := GetProcessedHeight(store, proofHeight)
		if !ok {
			return sdkerrors.Wrapf(clienttypes.ErrProcessedHeightNotFound, "processed height not found for height: %s", proofHeight)
		}

		currentHeight := clienttypes.GetSelfHeight(ctx)
		validHeight := clienttypes.NewHeight(processedHeight.GetRevisionNumber(), processedHeight.GetRevisionHeight()+delayBlockPeriod)

		// NOTE: delay block period is inclusive, so if currentHeight is validHeight, then we return no error
		if currentHeight.LT(validHeight) {
			return sdkerrors.Wrapf(clienttypes.ErrDelayPeriodNotPassed, "cannot verify packet until height: %s, current height: %s",
				validHeight, currentHeight)
		}
	}

	return nil
}
