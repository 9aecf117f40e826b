package keeper

import (
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	wasm "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm"
	wasmtypes "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// Keeper represents a type that grants read and write permissions to any client
// state information. Every client is a wasm light client driven through the
// light client module.
type Keeper struct {
	storeKey sdk.StoreKey
	module   wasm.LightClientModule
}

// NewKeeper creates a new client Keeper instance
func NewKeeper(storeKey sdk.StoreKey, module wasm.LightClientModule) Keeper {
	return Keeper{
		storeKey: storeKey,
		module:   module,
	}
}

// Logger returns a module-specific logger.
func (Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+exported.ModuleName+"/"+types.SubModuleName)
}

// LightClientModule returns the light client module backing every client.
func (k Keeper) LightClientModule() wasm.LightClientModule {
	return k.module
}

// GenerateClientIdentifier returns the next client identifier.
func (k Keeper) GenerateClientIdentifier(ctx sdk.Context) string {
	nextClientSeq := k.GetNextClientSequence(ctx)
	clientID := types.FormatClientIdentifier(exported.Wasm, nextClientSeq)

	nextClientSeq++
	k.SetNextClientSequence(ctx, nextClientSeq)
	return clientID
}

// GetNextClientSequence gets the next client sequence from the store.
func (k Keeper) GetNextClientSequence(ctx sdk.Context) uint64 {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(host.NextClientSequenceKey())
	if len(bz) == 0 {
		return 0
	}

	return sdk.BigEndianToUint64(bz)
}

// SetNextClientSequence sets the next client sequence to the store.
func (k Keeper) SetNextClientSequence(ctx sdk.Context, sequence uint64) {
	store := ctx.KVStore(k.storeKey)
	bz := sdk.Uint64ToBigEndian(sequence)
	store.Set(host.NextClientSequenceKey(), bz)
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate
// namespace without being able to read/write other client's data
func (k Keeper) ClientStore(ctx sdk.Context, clientID string) sdk.KVStore {
	return prefix.NewStore(ctx.KVStore(k.storeKey), host.ClientStorePrefix(clientID))
}

// GetClientState gets a particular client from the store
func (k Keeper) GetClientState(ctx sdk.Context, clientID string) (*wasmtypes.ClientState, bool) {
	return wasmtypes.GetClientState(k.ClientStore(ctx, clientID))
}

// GetClientConsensusState gets the stored consensus state from a client at a given height.
func (k Keeper) GetClientConsensusState(ctx sdk.Context, clientID string, height types.Height) (*wasmtypes.ConsensusState, bool) {
	return wasmtypes.GetConsensusState(k.ClientStore(ctx, clientID), height)
}

// GetClientStatus returns the status for a client state given a client identifier. Unknown is returned
// for identifiers that are not wasm client identifiers.
func (k Keeper) GetClientStatus(ctx sdk.Context, clientID string) exported.Status {
	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil || clientType != exported.Wasm {
		return exported.Unknown
	}

	return k.module.Status(ctx, clientID)
}

// GetClientLatestHeight returns the latest height of a client state for a given client identifier. If no
// client is stored under the identifier a zero value height is returned.
func (k Keeper) GetClientLatestHeight(ctx sdk.Context, clientID string) types.Height {
	return k.module.LatestHeight(ctx, clientID)
}

// GetClientTimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (k Keeper) GetClientTimestampAtHeight(ctx sdk.Context, clientID string, height types.Height) (uint64, error) {
	return k.module.TimestampAtHeight(ctx, clientID, height)
}

// IterateClientIDs provides an iterator over the identifiers of the created
// clients in creation order. For each client, cb will be called. If the cb
// returns true, the iterator will close and stop.
func (k Keeper) IterateClientIDs(ctx sdk.Context, cb func(clientID string) bool) {
	nextClientSeq := k.GetNextClientSequence(ctx)
	for seq := uint64(0); seq < nextClientSeq; seq++ {
		clientID := types.FormatClientIdentifier(exported.Wasm, seq)
		if !k.ClientStore(ctx, clientID).Has(host.ClientStateKey()) {
			continue
		}

		if cb(clientID) {
			break
		}
	}
}

// GetAllClientIDs returns the identifiers of every stored client.
func (k Keeper) GetAllClientIDs(ctx sdk.Context) []string {
	var clientIDs []string
	k.IterateClientIDs(ctx, func(clientID string) bool {
		clientIDs = append(clientIDs, clientID)
		return false
	})
	return clientIDs
}

// GetAllClientMetadata returns the exported metadata of every client that has any.
func (k Keeper) GetAllClientMetadata(ctx sdk.Context) ([]types.IdentifiedGenesisMetadata, error) {
	var genMetadata []types.IdentifiedGenesisMetadata
	for _, clientID := range k.GetAllClientIDs(ctx) {
		gms, err := k.module.ExportMetadata(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if len(gms) == 0 {
			continue
		}

		genMetadata = append(genMetadata, types.NewIdentifiedGenesisMetadata(clientID, gms))
	}

	return genMetadata, nil
}
