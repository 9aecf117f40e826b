package types

import (
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"

	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
)

// ClientStoreProvider returns the isolated store of a single client.
type ClientStoreProvider interface {
	ClientStore(ctx sdk.Context, clientID string) sdk.KVStore
}

var _ ClientStoreProvider = (*storeProvider)(nil)

// storeProvider implements the ClientStoreProvider interface and encapsulates the IBC core store key.
type storeProvider struct {
	storeKey sdk.StoreKey
}

// NewStoreProvider creates and returns a new ClientStoreProvider.
func NewStoreProvider(storeKey sdk.StoreKey) ClientStoreProvider {
	return storeProvider{
		storeKey: storeKey,
	}
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate namespaces.
func (s storeProvider) ClientStore(ctx sdk.Context, clientID string) sdk.KVStore {
	return prefix.NewStore(ctx.KVStore(s.storeKey), host.ClientStorePrefix(clientID))
}
