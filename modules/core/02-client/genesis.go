package client

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"

	"github.com/cosmos/wasm-light-client/modules/core/02-client/keeper"
	"github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	wasmtypes "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// IdentifiedClientState is a client state with its identifier and status.
type IdentifiedClientState struct {
	ClientID    string                 `json:"client_id" yaml:"client_id"`
	Status      string                 `json:"status" yaml:"status"`
	Checksum    tmbytes.HexBytes       `json:"checksum" yaml:"checksum"`
	ClientState *wasmtypes.ClientState `json:"client_state" yaml:"client_state"`
}

// GenesisState is the exported state of the clients of the host.
type GenesisState struct {
	Clients            []IdentifiedClientState           `json:"clients" yaml:"clients"`
	ClientsMetadata    []types.IdentifiedGenesisMetadata `json:"clients_metadata" yaml:"clients_metadata"`
	NextClientSequence uint64                            `json:"next_client_sequence" yaml:"next_client_sequence"`
}

// ExportGenesis returns the state of every client of the host.
func ExportGenesis(ctx sdk.Context, k keeper.Keeper) (GenesisState, error) {
	var clients []IdentifiedClientState
	k.IterateClientIDs(ctx, func(clientID string) bool {
		clientState, found := k.GetClientState(ctx, clientID)
		if !found {
			return false
		}

		clients = append(clients, IdentifiedClientState{
			ClientID:    clientID,
			Status:      k.GetClientStatus(ctx, clientID).String(),
			Checksum:    clientState.Checksum,
			ClientState: clientState,
		})
		return false
	})

	metadata, err := k.GetAllClientMetadata(ctx)
	if err != nil {
		return GenesisState{}, err
	}

	gs := GenesisState{
		Clients:            clients,
		ClientsMetadata:    metadata,
		NextClientSequence: k.GetNextClientSequence(ctx),
	}
	return gs, gs.Validate()
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Clients))
	for i, client := range gs.Clients {
		if err := host.ClientIdentifierValidator(client.ClientID); err != nil {
			return sdkerrors.Wrapf(err, "invalid client identifier at index %d", i)
		}
		if seen[client.ClientID] {
			return sdkerrors.Wrapf(types.ErrInvalidClient, "duplicate client %s", client.ClientID)
		}
		seen[client.ClientID] = true

		_, sequence, err := types.ParseClientIdentifier(client.ClientID)
		if err != nil {
			return err
		}
		if sequence >= gs.NextClientSequence {
			return sdkerrors.Wrapf(types.ErrInvalidClient, "client %s sequence is not below the next client sequence %d", client.ClientID, gs.NextClientSequence)
		}

		if client.ClientState == nil {
			return sdkerrors.Wrapf(types.ErrInvalidClient, "client %s has no client state", client.ClientID)
		}
		if err := client.ClientState.Validate(); err != nil {
			return sdkerrors.Wrapf(err, "invalid client state of %s", client.ClientID)
		}
	}

	for _, identified := range gs.ClientsMetadata {
		if !seen[identified.ClientID] {
			return sdkerrors.Wrapf(types.ErrClientNotFound, "metadata of unknown client %s", identified.ClientID)
		}
		for _, gm := range identified.ClientMetadata {
			if err := gm.Validate(); err != nil {
				return sdkerrors.Wrapf(types.ErrInvalidClientMetadata, "client %s: %v", identified.ClientID, err)
			}
		}
	}

	return nil
}
