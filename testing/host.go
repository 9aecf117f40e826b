package ibctesting

import (
	"testing"
	"time"

	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
)

// Host is the chain running the light client. It owns the IBC store and the
// block header (time and height) exposed to the client through sdk.Context.
type Host struct {
	t *testing.T

	StoreKey *storetypes.KVStoreKey
	store    *rootmulti.Store
	header   tmproto.Header
}

// NewHost creates a host chain with an empty IBC store at height 1 and the given block time.
func NewHost(t *testing.T, blockTime time.Time) *Host {
	t.Helper()

	db := dbm.NewMemDB()
	store := rootmulti.NewStore(db)
	storeKey := storetypes.NewKVStoreKey(host.StoreKey)
	store.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	require.NoError(t, store.LoadLatestVersion())

	return &Host{
		t:        t,
		StoreKey: storeKey,
		store:    store,
		header: tmproto.Header{
			ChainID: HostChainID,
			Height:  1,
			Time:    blockTime,
		},
	}
}

// Ctx returns a context over the current host block.
func (h *Host) Ctx() sdk.Context {
	return sdk.NewContext(h.store, h.header, false, log.TestingLogger())
}

// StoreProvider returns the client store provider of the host.
func (h *Host) StoreProvider() clienttypes.ClientStoreProvider {
	return clienttypes.NewStoreProvider(h.StoreKey)
}

// ClientStore returns the prefixed store of a client at the current block.
func (h *Host) ClientStore(clientID string) sdk.KVStore {
	return h.StoreProvider().ClientStore(h.Ctx(), clientID)
}

// Time returns the current block time.
func (h *Host) Time() time.Time {
	return h.header.Time
}

// Height returns the current block height.
func (h *Host) Height() clienttypes.Height {
	return clienttypes.GetSelfHeight(h.Ctx())
}

// SetTime sets the block time of the current block.
func (h *Host) SetTime(t time.Time) {
	h.header.Time = t
}

// NextBlock commits the store and moves to the next block, advancing the time by d.
func (h *Host) NextBlock(d time.Duration) {
	h.store.Commit()
	h.header.Height++
	h.header.Time = h.header.Time.Add(d)
}
