package keeper

import (
	metrics "github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	ibcerrors "github.com/cosmos/wasm-light-client/modules/core/errors"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	coremetrics "github.com/cosmos/wasm-light-client/modules/core/metrics"
	wasmtypes "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// CreateClient generates a new client identifier and isolated prefix store for the provided client state.
// The contract is responsible for setting any client-specific data in the store via instantiation.
// This includes the client state, initial consensus state and any associated metadata.
// The client and consensus states are the JSON encoded states of the light client.
func (k Keeper) CreateClient(
	ctx sdk.Context, checksum, clientState, consensusState []byte,
) (string, error) {
	cacheCtx, writeFn := ctx.CacheContext()

	clientID := k.GenerateClientIdentifier(cacheCtx)
	if err := k.module.Initialize(cacheCtx, clientID, checksum, clientState, consensusState); err != nil {
		return "", err
	}

	if status := k.GetClientStatus(cacheCtx, clientID); status != exported.Active {
		return "", sdkerrors.Wrapf(types.ErrClientNotActive, "cannot create client (%s) with status %s", clientID, status)
	}
	writeFn()

	consensusType := k.consensusType(ctx, clientID)
	k.Logger(ctx).Info("client created at height", "client-id", clientID, "consensus-type", consensusType, "height", k.GetClientLatestHeight(ctx, clientID).String())

	defer telemetry.IncrCounterWithLabels(
		coremetrics.KeyCreateClient,
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelClientType, exported.Wasm),
			telemetry.NewLabel(coremetrics.LabelConsensusType, consensusType),
		},
	)

	emitCreateClientEvent(ctx, clientID, consensusType, k.GetClientLatestHeight(ctx, clientID))

	return clientID, nil
}

// UpdateClient updates the consensus state and the state root from a provided header.
// A client message carrying misbehaviour, or a header conflicting with a stored
// consensus state, freezes the client instead.
func (k Keeper) UpdateClient(ctx sdk.Context, clientID string, clientMsg *wasmtypes.ClientMessage) error {
	if status := k.GetClientStatus(ctx, clientID); status != exported.Active {
		return statusError(clientID, "update", status)
	}

	if err := k.module.VerifyClientMessage(ctx, clientID, clientMsg); err != nil {
		k.Logger(ctx).Error("client message rejected", "client-id", clientID, "error", err)
		return err
	}

	consensusType := k.consensusType(ctx, clientID)

	foundMisbehaviour, err := k.module.CheckForMisbehaviour(ctx, clientID, clientMsg)
	if err != nil {
		return err
	}

	if foundMisbehaviour {
		if err := k.module.UpdateStateOnMisbehaviour(ctx, clientID, clientMsg); err != nil {
			return err
		}

		clientState, _ := k.GetClientState(ctx, clientID)
		k.Logger(ctx).Info("client frozen due to misbehaviour", "client-id", clientID, "frozen-height", clientState.FrozenHeight.String())

		defer telemetry.IncrCounterWithLabels(
			coremetrics.KeyClientMisbehaviour,
			1,
			[]metrics.Label{
				telemetry.NewLabel(coremetrics.LabelClientType, exported.Wasm),
				telemetry.NewLabel(coremetrics.LabelConsensusType, consensusType),
				telemetry.NewLabel(coremetrics.LabelClientID, clientID),
				telemetry.NewLabel(coremetrics.LabelMsgType, clientMsgType(clientMsg)),
			},
		)

		emitSubmitMisbehaviourEvent(ctx, clientID, consensusType, clientState.FrozenHeight)

		return nil
	}

	consensusHeights, err := k.module.UpdateState(ctx, clientID, clientMsg)
	if err != nil {
		k.Logger(ctx).Error("client update failed", "client-id", clientID, "error", err)
		return err
	}

	k.Logger(ctx).Info("client state updated", "client-id", clientID, "heights", consensusHeights)

	defer telemetry.IncrCounterWithLabels(
		coremetrics.KeyUpdateClient,
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelClientType, exported.Wasm),
			telemetry.NewLabel(coremetrics.LabelConsensusType, consensusType),
			telemetry.NewLabel(coremetrics.LabelClientID, clientID),
			telemetry.NewLabel(coremetrics.LabelUpdateType, "msg"),
		},
	)

	emitUpdateClientEvent(ctx, clientID, consensusType, consensusHeights)

	return nil
}

// UpgradeClient upgrades the client to a new client state if this new client was committed to
// by the old client at the specified upgrade height
func (k Keeper) UpgradeClient(
	ctx sdk.Context, clientID string, upgradedClient, upgradedConsState []byte,
	upgradeClientProof, upgradeConsensusStateProof []byte,
) error {
	if _, found := k.GetClientState(ctx, clientID); !found {
		return sdkerrors.Wrapf(types.ErrClientNotFound, "cannot upgrade client with ID %s", clientID)
	}

	if status := k.GetClientStatus(ctx, clientID); status != exported.Active {
		return statusError(clientID, "upgrade", status)
	}

	if err := k.module.VerifyUpgradeAndUpdateState(ctx, clientID, upgradedClient, upgradedConsState,
		upgradeClientProof, upgradeConsensusStateProof,
	); err != nil {
		return sdkerrors.Wrapf(err, "cannot upgrade client with ID %s", clientID)
	}

	latestHeight := k.GetClientLatestHeight(ctx, clientID)
	consensusType := k.consensusType(ctx, clientID)
	k.Logger(ctx).Info("client state upgraded", "client-id", clientID, "height", latestHeight.String())

	defer telemetry.IncrCounterWithLabels(
		coremetrics.KeyUpgradeClient,
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelClientType, exported.Wasm),
			telemetry.NewLabel(coremetrics.LabelConsensusType, consensusType),
			telemetry.NewLabel(coremetrics.LabelClientID, clientID),
		},
	)

	emitUpgradeClientEvent(ctx, clientID, consensusType, latestHeight)

	return nil
}

// RecoverClient will retrieve the subject and substitute client.
// A callback will occur to the subject client state with the client
// prefixed store being provided for both the subject and the substitute client.
// The light client is responsible for validating the parameters of the
// substitute (ensuring they match the subject's parameters) as well as copying
// the necessary consensus states from the substitute to the subject client
// store. The substitute must be Active and the subject must not be Active.
func (k Keeper) RecoverClient(ctx sdk.Context, subjectClientID, substituteClientID string) error {
	if status := k.GetClientStatus(ctx, subjectClientID); status == exported.Active {
		return sdkerrors.Wrapf(types.ErrInvalidRecoveryClient, "cannot recover %s subject client", exported.Active)
	}

	if status := k.GetClientStatus(ctx, substituteClientID); status != exported.Active {
		return sdkerrors.Wrapf(types.ErrClientNotActive, "substitute client is not %s, status is %s", exported.Active, status)
	}

	subjectLatestHeight := k.GetClientLatestHeight(ctx, subjectClientID)
	substituteLatestHeight := k.GetClientLatestHeight(ctx, substituteClientID)
	if subjectLatestHeight.GTE(substituteLatestHeight) {
		return sdkerrors.Wrapf(ibcerrors.ErrInvalidHeight, "subject client state latest height is greater or equal to substitute client state latest height (%s >= %s)", subjectLatestHeight, substituteLatestHeight)
	}

	if err := k.module.RecoverClient(ctx, subjectClientID, substituteClientID); err != nil {
		return err
	}

	consensusType := k.consensusType(ctx, subjectClientID)
	k.Logger(ctx).Info("client recovered", "client-id", subjectClientID, "substitute-client-id", substituteClientID)

	defer telemetry.IncrCounterWithLabels(
		coremetrics.KeyRecoverClient,
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelClientType, exported.Wasm),
			telemetry.NewLabel(coremetrics.LabelConsensusType, consensusType),
			telemetry.NewLabel(coremetrics.LabelClientID, subjectClientID),
			telemetry.NewLabel(coremetrics.LabelUpdateType, "recovery"),
		},
	)

	emitRecoverClientEvent(ctx, subjectClientID, substituteClientID, consensusType)

	return nil
}

// VerifyMembership verifies the value stored under path on the counterparty at the given height.
func (k Keeper) VerifyMembership(
	ctx sdk.Context, clientID string, height types.Height, delayTimePeriod, delayBlockPeriod uint64,
	proof []byte, path commitmenttypes.MerklePath, value []byte,
) error {
	if err := k.module.VerifyMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path, value); err != nil {
		k.Logger(ctx).Debug("membership proof rejected", "client-id", clientID, "height", height.String(), "path", path.String(), "error", err)
		return err
	}

	k.Logger(ctx).Debug("membership proof verified", "client-id", clientID, "height", height.String(), "path", path.String())
	return nil
}

// VerifyNonMembership verifies the absence of path on the counterparty at the given height.
func (k Keeper) VerifyNonMembership(
	ctx sdk.Context, clientID string, height types.Height, delayTimePeriod, delayBlockPeriod uint64,
	proof []byte, path commitmenttypes.MerklePath,
) error {
	if err := k.module.VerifyNonMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path); err != nil {
		k.Logger(ctx).Debug("non-membership proof rejected", "client-id", clientID, "height", height.String(), "path", path.String(), "error", err)
		return err
	}

	k.Logger(ctx).Debug("non-membership proof verified", "client-id", clientID, "height", height.String(), "path", path.String())
	return nil
}

// consensusType returns the consensus family of a stored client, or an empty string.
func (k Keeper) consensusType(ctx sdk.Context, clientID string) string {
	clientState, found := k.GetClientState(ctx, clientID)
	if !found {
		return ""
	}
	return clientState.ConsensusType
}

func clientMsgType(clientMsg *wasmtypes.ClientMessage) string {
	if clientMsg.Misbehaviour != nil {
		return "misbehaviour"
	}
	return "update"
}

// statusError returns the error for an action refused because the client is
// not active. A frozen client reports ErrClientFrozen.
func statusError(clientID, action string, status exported.Status) error {
	if status == exported.Frozen {
		return sdkerrors.Wrapf(types.ErrClientFrozen, "cannot %s client (%s)", action, clientID)
	}
	return sdkerrors.Wrapf(types.ErrClientNotActive, "cannot %s client (%s) with status %s", action, clientID, status)
}
