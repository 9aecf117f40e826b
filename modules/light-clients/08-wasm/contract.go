package wasm

import (
	"bytes"
	"encoding/json"

	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// Contract is the light client program invoked through the instantiate, sudo
// and query entry points. Every call receives the isolated store of the
// client it operates on; the caller decides whether writes are kept.
type Contract struct {
	router *types.Router
}

// NewContract returns a contract verifying headers with the consensus
// families registered on the router.
func NewContract(router *types.Router) *Contract {
	if router == nil {
		panic("consensus verifier router cannot be nil")
	}
	return &Contract{router: router}
}

// Instantiate creates the client state and initial consensus state in the client store.
func (c Contract) Instantiate(ctx sdk.Context, clientStore sdk.KVStore, msg []byte) error {
	var payload types.InstantiateMessage
	if err := decodeJSON(msg, &payload); err != nil {
		return sdkerrors.Wrapf(types.ErrInvalidContractMessage, "failed to decode instantiate message: %v", err)
	}

	if clientStore.Has(host.ClientStateKey()) {
		return sdkerrors.Wrap(clienttypes.ErrClientExists, "client state already instantiated")
	}

	if err := types.ValidateChecksum(payload.Checksum); err != nil {
		return err
	}

	var clientState types.ClientState
	if err := decodeJSON(payload.ClientState, &clientState); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "failed to decode client state: %v", err)
	}
	clientState.Checksum = payload.Checksum

	if err := clientState.Validate(); err != nil {
		return err
	}

	if !c.router.HasRoute(clientState.ConsensusType) {
		return sdkerrors.Wrapf(types.ErrUnknownConsensusType, "no verifier registered for %s", clientState.ConsensusType)
	}

	var consensusState types.ConsensusState
	if err := decodeJSON(payload.ConsensusState, &consensusState); err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "failed to decode consensus state: %v", err)
	}

	return clientState.Initialize(ctx, clientStore, &consensusState)
}

// Sudo executes a state transition and returns the JSON encoded result.
func (c Contract) Sudo(ctx sdk.Context, clientStore sdk.KVStore, msg []byte) ([]byte, error) {
	var payload types.SudoMsg
	if err := decodeJSON(msg, &payload); err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidContractMessage, "failed to decode sudo message: %v", err)
	}
	if err := payload.ValidateBasic(); err != nil {
		return nil, err
	}

	// the migration store only serves prefixed keys
	if payload.MigrateClientStore != nil {
		if err := c.migrateClientStore(ctx, clientStore); err != nil {
			return nil, err
		}
		return json.Marshal(types.EmptyResult{})
	}

	clientState, found := types.GetClientState(clientStore)
	if !found {
		return nil, clienttypes.ErrClientNotFound
	}

	var result interface{} = types.EmptyResult{}
	switch {
	case payload.UpdateState != nil:
		clientMsg, verifier, err := c.clientMessageWithVerifier(clientState, payload.UpdateState.ClientMessage)
		if err != nil {
			return nil, err
		}

		heights, err := clientState.UpdateState(ctx, clientStore, verifier, clientMsg)
		if err != nil {
			return nil, err
		}
		result = types.UpdateStateResult{Heights: heights}

	case payload.UpdateStateOnMisbehaviour != nil:
		clientMsg, verifier, err := c.clientMessageWithVerifier(clientState, payload.UpdateStateOnMisbehaviour.ClientMessage)
		if err != nil {
			return nil, err
		}

		if _, err := clientState.UpdateStateOnMisbehaviour(ctx, clientStore, verifier, clientMsg); err != nil {
			return nil, err
		}

	case payload.VerifyUpgradeAndUpdateState != nil:
		upgrade := payload.VerifyUpgradeAndUpdateState

		var upgradedClient types.ClientState
		if err := decodeJSON(upgrade.UpgradeClientState, &upgradedClient); err != nil {
			return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "failed to decode upgraded client state: %v", err)
		}

		var upgradedConsState types.ConsensusState
		if err := decodeJSON(upgrade.UpgradeConsensusState, &upgradedConsState); err != nil {
			return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "failed to decode upgraded consensus state: %v", err)
		}

		if err := clientState.VerifyUpgradeAndUpdateState(
			ctx, clientStore, &upgradedClient, &upgradedConsState,
			upgrade.ProofUpgradeClient, upgrade.ProofUpgradeConsensusState,
		); err != nil {
			return nil, err
		}

	case payload.VerifyMembership != nil:
		verify := payload.VerifyMembership
		if err := clientState.VerifyMembership(
			ctx, clientStore, verify.Height, verify.DelayTimePeriod, verify.DelayBlockPeriod,
			verify.Proof, verify.Path, verify.Value,
		); err != nil {
			return nil, err
		}

	case payload.VerifyNonMembership != nil:
		verify := payload.VerifyNonMembership
		if err := clientState.VerifyNonMembership(
			ctx, clientStore, verify.Height, verify.DelayTimePeriod, verify.DelayBlockPeriod,
			verify.Proof, verify.Path,
		); err != nil {
			return nil, err
		}
	}

	return json.Marshal(result)
}

// Query answers a read only request and returns the JSON encoded result.
func (c Contract) Query(ctx sdk.Context, clientStore sdk.KVStore, msg []byte) ([]byte, error) {
	var payload types.QueryMsg
	if err := decodeJSON(msg, &payload); err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidContractMessage, "failed to decode query message: %v", err)
	}
	if err := payload.ValidateBasic(); err != nil {
		return nil, err
	}

	clientState, found := types.GetClientState(clientStore)
	if !found {
		if payload.Status != nil {
			return json.Marshal(types.StatusResult{Status: exported.Unknown.String()})
		}
		return nil, clienttypes.ErrClientNotFound
	}

	var result interface{}
	switch {
	case payload.Status != nil:
		result = types.StatusResult{Status: clientState.Status(ctx, clientStore).String()}

	case payload.ExportMetadata != nil:
		result = types.ExportMetadataResult{GenesisMetadata: clientState.ExportMetadata(clientStore)}

	case payload.TimestampAtHeight != nil:
		timestamp, err := clientState.GetTimestampAtHeight(clientStore, payload.TimestampAtHeight.Height)
		if err != nil {
			return nil, err
		}
		result = types.TimestampAtHeightResult{Timestamp: timestamp}

	case payload.VerifyClientMessage != nil:
		clientMsg, verifier, err := c.clientMessageWithVerifier(clientState, payload.VerifyClientMessage.ClientMessage)
		if err != nil {
			return nil, err
		}

		if err := clientState.VerifyClientMessage(ctx, clientStore, verifier, clientMsg); err != nil {
			return nil, err
		}
		result = types.EmptyResult{}

	case payload.CheckForMisbehaviour != nil:
		clientMsg, verifier, err := c.clientMessageWithVerifier(clientState, payload.CheckForMisbehaviour.ClientMessage)
		if err != nil {
			return nil, err
		}

		found, err := clientState.CheckForMisbehaviour(ctx, clientStore, verifier, clientMsg)
		if err != nil {
			return nil, err
		}
		result = types.CheckForMisbehaviourResult{FoundMisbehaviour: found}
	}

	return json.Marshal(result)
}

// migrateClientStore recovers the subject client from the substitute. The store
// must be the wrapped store returned by types.NewMigrateClientWrappedStore.
func (Contract) migrateClientStore(ctx sdk.Context, wrappedStore sdk.KVStore) error {
	subjectStore := prefix.NewStore(wrappedStore, types.SubjectPrefix)
	substituteStore := prefix.NewStore(wrappedStore, types.SubstitutePrefix)

	subjectClientState, found := types.GetClientState(subjectStore)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrClientNotFound, "subject client state not found")
	}

	substituteClientState, found := types.GetClientState(substituteStore)
	if !found {
		return sdkerrors.Wrap(clienttypes.ErrClientNotFound, "substitute client state not found")
	}

	if !bytes.Equal(subjectClientState.Checksum, substituteClientState.Checksum) {
		return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "subject and substitute client checksums do not match")
	}

	return subjectClientState.CheckSubstituteAndUpdateState(ctx, subjectStore, substituteStore, substituteClientState)
}

// clientMessageWithVerifier decodes a client message and resolves the verifier
// of the client's consensus family.
func (c Contract) clientMessageWithVerifier(clientState *types.ClientState, bz []byte) (*types.ClientMessage, types.ConsensusVerifier, error) {
	var clientMsg types.ClientMessage
	if err := decodeJSON(bz, &clientMsg); err != nil {
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClientMessage, "failed to decode client message: %v", err)
	}

	verifier, err := c.router.GetRoute(clientState.ConsensusType)
	if err != nil {
		return nil, nil, err
	}

	return &clientMsg, verifier, nil
}

// decodeJSON rejects unknown fields so that a message can only be read one way.
func decodeJSON(bz []byte, v interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(bz))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
