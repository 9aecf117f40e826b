package cmd

import (
	"time"

	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clientkeeper "github.com/cosmos/wasm-light-client/modules/core/02-client/keeper"
	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	tendermint "github.com/cosmos/wasm-light-client/modules/light-clients/07-tendermint"
	wasm "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	attestations "github.com/cosmos/wasm-light-client/modules/light-clients/10-attestations"
)

const hostStoreName = "host"

var lastBlockTimeKey = []byte("lastBlockTime")

// App is the host chain simulated by the command line. Its IBC store is an
// IAVL store persisted in the database of the home directory. Every
// successful transaction commits one block.
type App struct {
	chainID  string
	logger   log.Logger
	db       dbm.DB
	store    *rootmulti.Store
	storeKey *storetypes.KVStoreKey
	hostKey  *storetypes.KVStoreKey

	ClientKeeper clientkeeper.Keeper
}

// NewApp opens the host database and mounts the IBC store.
func NewApp(cfg Config, logger log.Logger) (*App, error) {
	db, err := dbm.NewDB("application", dbm.BackendType(cfg.DBBackend), cfg.DataDir())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open host database")
	}

	store := rootmulti.NewStore(db)
	storeKey := storetypes.NewKVStoreKey(host.StoreKey)
	hostKey := storetypes.NewKVStoreKey(hostStoreName)
	store.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	store.MountStoreWithDB(hostKey, storetypes.StoreTypeIAVL, nil)
	if err := store.LoadLatestVersion(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to load host store")
	}

	router := types.NewRouter(tendermint.NewVerifier(), attestations.NewVerifier())
	module := wasm.NewLightClientModule(wasm.NewContract(router), clienttypes.NewStoreProvider(storeKey))

	return &App{
		chainID:      cfg.ChainID,
		logger:       logger,
		db:           db,
		store:        store,
		storeKey:     storeKey,
		hostKey:      hostKey,
		ClientKeeper: clientkeeper.NewKeeper(storeKey, module),
	}, nil
}

// LastBlockHeight returns the height of the last committed block.
func (app *App) LastBlockHeight() int64 {
	return app.store.LastCommitID().Version
}

// LastBlockTime returns the time of the last committed block, or the current
// time if no block was committed yet.
func (app *App) LastBlockTime() time.Time {
	bz := app.store.GetKVStore(app.hostKey).Get(lastBlockTimeKey)
	if bz == nil {
		return time.Now().UTC()
	}

	t, err := sdk.ParseTimeBytes(bz)
	if err != nil {
		app.logger.Error("failed to decode last block time", "error", err)
		return time.Now().UTC()
	}
	return t
}

// NewContext returns a context over the block following the last committed one.
func (app *App) NewContext(t time.Time) sdk.Context {
	header := tmproto.Header{
		ChainID: app.chainID,
		Height:  app.LastBlockHeight() + 1,
		Time:    t,
	}
	return sdk.NewContext(app.store, header, false, app.logger)
}

// QueryContext returns a context over the latest committed state at the time
// of the last committed block. Writes to it are discarded.
func (app *App) QueryContext() sdk.Context {
	ctx, _ := app.NewContext(app.LastBlockTime()).CacheContext()
	return ctx
}

// DeliverTx runs fn in a block at time t. The writes of fn are committed
// only if it succeeds, in which case the events it emitted are returned.
func (app *App) DeliverTx(t time.Time, fn func(ctx sdk.Context) error) (sdk.Events, error) {
	ctx := app.NewContext(t)
	cacheCtx, writeCache := ctx.CacheContext()
	cacheCtx = cacheCtx.WithEventManager(sdk.NewEventManager())

	if err := fn(cacheCtx); err != nil {
		return nil, err
	}

	writeCache()
	ctx.KVStore(app.hostKey).Set(lastBlockTimeKey, sdk.FormatTimeBytes(t))
	commitID := app.store.Commit()
	app.logger.Debug("committed block", "height", commitID.Version, "hash", commitID.String())

	return cacheCtx.EventManager().Events(), nil
}

// Close closes the host database.
func (app *App) Close() error {
	return app.db.Close()
}
