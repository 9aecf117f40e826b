package wasm

import (
	"encoding/json"

	"github.com/cosmos/cosmos-sdk/store/cachekv"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// LightClientModule is the host facing side of the wasm light client. It
// encodes every call into a contract message, hands the contract the isolated
// store of the client and commits the writes only when the call succeeds.
type LightClientModule struct {
	contract      *Contract
	storeProvider clienttypes.ClientStoreProvider
}

// NewLightClientModule creates and returns a new 08-wasm LightClientModule.
func NewLightClientModule(contract *Contract, storeProvider clienttypes.ClientStoreProvider) LightClientModule {
	return LightClientModule{
		contract:      contract,
		storeProvider: storeProvider,
	}
}

// Logger returns a module-specific logger.
func (LightClientModule) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+exported.ModuleName+"-"+exported.Wasm)
}

// Initialize is called upon client creation, it allows the client to perform validation on the initial consensus state and set the
// client state, consensus state and any client-specific metadata necessary for correct light client operation in the provided client store.
// The client and consensus states are the JSON encoded states of the light client.
func (lcm LightClientModule) Initialize(ctx sdk.Context, clientID string, checksum, clientStateBz, consensusStateBz []byte) error {
	payload := types.InstantiateMessage{
		ClientState:    clientStateBz,
		ConsensusState: consensusStateBz,
		Checksum:       checksum,
	}

	encodedData, err := json.Marshal(payload)
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal payload for wasm contract instantiation")
	}

	cacheCtx, writeFn := ctx.CacheContext()
	if err := lcm.contract.Instantiate(cacheCtx, lcm.storeProvider.ClientStore(cacheCtx, clientID), encodedData); err != nil {
		return err
	}
	writeFn()

	return nil
}

// VerifyClientMessage must verify a ClientMessage. A ClientMessage could be a Header or Misbehaviour.
// It must handle each type of ClientMessage appropriately. Calls to CheckForMisbehaviour, UpdateState, and UpdateStateOnMisbehaviour
// verify the message again before acting on it.
func (lcm LightClientModule) VerifyClientMessage(ctx sdk.Context, clientID string, clientMsg *types.ClientMessage) error {
	clientMsgBz, err := json.Marshal(clientMsg)
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal client message")
	}

	payload := types.QueryMsg{
		VerifyClientMessage: &types.VerifyClientMessageMsg{ClientMessage: clientMsgBz},
	}

	var result types.EmptyResult
	return lcm.query(ctx, clientID, payload, &result)
}

// CheckForMisbehaviour checks for evidence of a misbehaviour in Header or Misbehaviour type.
func (lcm LightClientModule) CheckForMisbehaviour(ctx sdk.Context, clientID string, clientMsg *types.ClientMessage) (bool, error) {
	clientMsgBz, err := json.Marshal(clientMsg)
	if err != nil {
		return false, sdkerrors.Wrap(err, "failed to marshal client message")
	}

	payload := types.QueryMsg{
		CheckForMisbehaviour: &types.CheckForMisbehaviourMsg{ClientMessage: clientMsgBz},
	}

	var result types.CheckForMisbehaviourResult
	if err := lcm.query(ctx, clientID, payload, &result); err != nil {
		return false, err
	}

	return result.FoundMisbehaviour, nil
}

// UpdateStateOnMisbehaviour freezes the client once the misbehaviour carried by the client message is verified.
func (lcm LightClientModule) UpdateStateOnMisbehaviour(ctx sdk.Context, clientID string, clientMsg *types.ClientMessage) error {
	clientMsgBz, err := json.Marshal(clientMsg)
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal client message")
	}

	payload := types.SudoMsg{
		UpdateStateOnMisbehaviour: &types.UpdateStateOnMisbehaviourMsg{ClientMessage: clientMsgBz},
	}

	var result types.EmptyResult
	return lcm.sudo(ctx, clientID, payload, &result)
}

// UpdateState updates and stores as necessary any associated information for an IBC client, such as the ClientState and corresponding ConsensusState.
// Upon successful update, a list of consensus heights is returned.
func (lcm LightClientModule) UpdateState(ctx sdk.Context, clientID string, clientMsg *types.ClientMessage) ([]clienttypes.Height, error) {
	clientMsgBz, err := json.Marshal(clientMsg)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "failed to marshal client message")
	}

	payload := types.SudoMsg{
		UpdateState: &types.UpdateStateMsg{ClientMessage: clientMsgBz},
	}

	var result types.UpdateStateResult
	if err := lcm.sudo(ctx, clientID, payload, &result); err != nil {
		return nil, err
	}

	return result.Heights, nil
}

// VerifyMembership is a generic proof verification method which verifies a proof of the existence of a value at a given CommitmentPath at the specified height.
// The caller is expected to construct the full CommitmentPath from a CommitmentPrefix and a standardized path (as defined in ICS 24).
func (lcm LightClientModule) VerifyMembership(
	ctx sdk.Context,
	clientID string,
	height clienttypes.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path commitmenttypes.MerklePath,
	value []byte,
) error {
	payload := types.SudoMsg{
		VerifyMembership: &types.VerifyMembershipMsg{
			Height:           height,
			DelayTimePeriod:  delayTimePeriod,
			DelayBlockPeriod: delayBlockPeriod,
			Proof:            proof,
			Path:             path,
			Value:            value,
		},
	}

	var result types.EmptyResult
	return lcm.sudo(ctx, clientID, payload, &result)
}

// VerifyNonMembership is a generic proof verification method which verifies the absence of a given CommitmentPath at a specified height.
// The caller is expected to construct the full CommitmentPath from a CommitmentPrefix and a standardized path (as defined in ICS 24).
func (lcm LightClientModule) VerifyNonMembership(
	ctx sdk.Context,
	clientID string,
	height clienttypes.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path commitmenttypes.MerklePath,
) error {
	payload := types.SudoMsg{
		VerifyNonMembership: &types.VerifyNonMembershipMsg{
			Height:           height,
			DelayTimePeriod:  delayTimePeriod,
			DelayBlockPeriod: delayBlockPeriod,
			Proof:            proof,
			Path:             path,
		},
	}

	var result types.EmptyResult
	return lcm.sudo(ctx, clientID, payload, &result)
}

// VerifyUpgradeAndUpdateState verifies the upgraded client and consensus states committed by the counterparty
// under the upgrade path and replaces the client and consensus state with them. The states are the JSON
// encoded states of the light client.
func (lcm LightClientModule) VerifyUpgradeAndUpdateState(
	ctx sdk.Context,
	clientID string,
	newClient []byte,
	newConsState []byte,
	upgradeClientProof,
	upgradeConsensusStateProof []byte,
) error {
	payload := types.SudoMsg{
		VerifyUpgradeAndUpdateState: &types.VerifyUpgradeAndUpdateStateMsg{
			UpgradeClientState:         newClient,
			UpgradeConsensusState:      newConsState,
			ProofUpgradeClient:         upgradeClientProof,
			ProofUpgradeConsensusState: upgradeConsensusStateProof,
		},
	}

	var result types.EmptyResult
	return lcm.sudo(ctx, clientID, payload, &result)
}

// RecoverClient overwrites the subject client with the latest consensus state of the substitute client.
// The contract is called with a store that reads from both clients and only writes to the subject.
func (lcm LightClientModule) RecoverClient(ctx sdk.Context, clientID, substituteClientID string) error {
	encodedData, err := json.Marshal(types.SudoMsg{MigrateClientStore: &types.MigrateClientStoreMsg{}})
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal payload for wasm execution")
	}

	cacheCtx, writeFn := ctx.CacheContext()
	subjectClientStore := lcm.storeProvider.ClientStore(cacheCtx, clientID)
	substituteClientStore := lcm.storeProvider.ClientStore(cacheCtx, substituteClientID)
	store := types.NewMigrateClientWrappedStore(subjectClientStore, substituteClientStore)

	res, err := lcm.contract.Sudo(cacheCtx, store, encodedData)
	if err != nil {
		return err
	}

	var result types.EmptyResult
	if err := json.Unmarshal(res, &result); err != nil {
		return sdkerrors.Wrap(types.ErrInvalidResponseData, err.Error())
	}
	writeFn()

	return nil
}

// Status must return the status of the client. Only Active clients are allowed to process packets.
// Unknown is returned when the client does not exist or its status cannot be determined.
func (lcm LightClientModule) Status(ctx sdk.Context, clientID string) exported.Status {
	var result types.StatusResult
	if err := lcm.query(ctx, clientID, types.QueryMsg{Status: &types.StatusMsg{}}, &result); err != nil {
		lcm.Logger(ctx).Error("failed to query client status", "client-id", clientID, "error", err)
		return exported.Unknown
	}

	return exported.Status(result.Status)
}

// LatestHeight returns the latest height for the client state for the given client identifier.
// If no client is present for the provided client identifier a zero value height is returned.
func (lcm LightClientModule) LatestHeight(ctx sdk.Context, clientID string) clienttypes.Height {
	clientState, found := types.GetClientState(lcm.storeProvider.ClientStore(ctx, clientID))
	if !found {
		return clienttypes.ZeroHeight()
	}

	return clientState.LatestHeight
}

// TimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (lcm LightClientModule) TimestampAtHeight(ctx sdk.Context, clientID string, height clienttypes.Height) (uint64, error) {
	payload := types.QueryMsg{
		TimestampAtHeight: &types.TimestampAtHeightMsg{Height: height},
	}

	var result types.TimestampAtHeightResult
	if err := lcm.query(ctx, clientID, payload, &result); err != nil {
		return 0, err
	}

	return result.Timestamp, nil
}

// ExportMetadata returns the metadata a successor client needs to resume from the exported consensus states.
func (lcm LightClientModule) ExportMetadata(ctx sdk.Context, clientID string) ([]clienttypes.GenesisMetadata, error) {
	var result types.ExportMetadataResult
	if err := lcm.query(ctx, clientID, types.QueryMsg{ExportMetadata: &types.ExportMetadataMsg{}}, &result); err != nil {
		return nil, err
	}

	return result.GenesisMetadata, nil
}

// sudo runs the payload against a cached context and writes the cache back only
// if the contract call and the decoding of its result succeed.
func (lcm LightClientModule) sudo(ctx sdk.Context, clientID string, payload types.SudoMsg, result interface{}) error {
	encodedData, err := json.Marshal(payload)
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal payload for wasm execution")
	}

	cacheCtx, writeFn := ctx.CacheContext()
	res, err := lcm.contract.Sudo(cacheCtx, lcm.storeProvider.ClientStore(cacheCtx, clientID), encodedData)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(res, result); err != nil {
		return sdkerrors.Wrap(types.ErrInvalidResponseData, err.Error())
	}
	writeFn()

	return nil
}

// query runs the payload against a cache wrapped client store which is never written back.
func (lcm LightClientModule) query(ctx sdk.Context, clientID string, payload types.QueryMsg, result interface{}) error {
	encodedData, err := json.Marshal(payload)
	if err != nil {
		return sdkerrors.Wrap(err, "failed to marshal payload for wasm query")
	}

	clientStore := cachekv.NewStore(lcm.storeProvider.ClientStore(ctx, clientID))
	res, err := lcm.contract.Query(ctx, clientStore, encodedData)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(res, result); err != nil {
		return sdkerrors.Wrapf(types.ErrInvalidResponseData, "failed to unmarshal result of wasm query: %v", err)
	}

	return nil
}
