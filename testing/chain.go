package ibctesting

import (
	"fmt"
	"testing"
	"time"

	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	upgradetypes "github.com/cosmos/cosmos-sdk/x/upgrade/types"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

// UpgradeStoreKey is the name of the store holding upgraded client and consensus states.
const UpgradeStoreKey = upgradetypes.StoreKey

// RemoteChain simulates the state of a counterparty chain. Its state lives in
// an IAVL multistore so that the proofs it returns are the ICS23 proofs a real
// cosmos chain would produce.
type RemoteChain struct {
	t *testing.T

	ChainID   string
	store     *rootmulti.Store
	storeKeys map[string]*storetypes.KVStoreKey

	// last committed block
	Height  clienttypes.Height
	Time    time.Time
	AppHash []byte
}

// NewRemoteChain creates a counterparty chain with the IBC and upgrade stores
// mounted and commits its first block at StartTime.
func NewRemoteChain(t *testing.T, chainID string) *RemoteChain {
	t.Helper()

	db := dbm.NewMemDB()
	store := rootmulti.NewStore(db)

	storeKeys := make(map[string]*storetypes.KVStoreKey)
	for _, name := range []string{host.StoreKey, UpgradeStoreKey} {
		key := storetypes.NewKVStoreKey(name)
		store.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
		storeKeys[name] = key
	}
	require.NoError(t, store.LoadLatestVersion())

	chain := &RemoteChain{
		t:         t,
		ChainID:   chainID,
		store:     store,
		storeKeys: storeKeys,
		Time:      StartTime.Add(-BlockTime),
	}

	// non-existence proofs need at least one key in each store
	chain.Set(host.StoreKey, []byte("genesis"), []byte("genesis"))
	chain.Set(UpgradeStoreKey, []byte("genesis"), []byte("genesis"))
	chain.Commit()

	return chain
}

// Set writes a key in the given store of the chain. It is committed on the next Commit.
func (chain *RemoteChain) Set(storeName string, key, value []byte) {
	chain.store.GetKVStore(chain.storeKey(storeName)).Set(key, value)
}

// Delete removes a key from the given store of the chain.
func (chain *RemoteChain) Delete(storeName string, key []byte) {
	chain.store.GetKVStore(chain.storeKey(storeName)).Delete(key)
}

// Commit commits a new block and returns its app hash.
func (chain *RemoteChain) Commit() []byte {
	commitID := chain.store.Commit()

	chain.Height = clienttypes.NewHeight(clienttypes.ParseChainID(chain.ChainID), uint64(commitID.Version))
	chain.Time = chain.Time.Add(BlockTime)
	chain.AppHash = commitID.Hash

	return chain.AppHash
}

// ConsensusState returns the consensus state of the last committed block.
func (chain *RemoteChain) ConsensusState(nextValidatorsHash []byte) *types.ConsensusState {
	return types.NewConsensusState(chain.Time, commitmenttypes.NewMerkleRoot(chain.AppHash), nextValidatorsHash)
}

// MerklePath returns the commitment path of a key in one of the chain stores.
func (*RemoteChain) MerklePath(storeName string, key []byte) commitmenttypes.MerklePath {
	return commitmenttypes.NewMerklePath([]byte(storeName), key)
}

// QueryProof returns the encoded proof of the key against the app hash of the
// last committed block, together with that block height. The proof is a
// membership proof if the key is set, a non-membership proof otherwise.
func (chain *RemoteChain) QueryProof(storeName string, key []byte) ([]byte, clienttypes.Height) {
	res := chain.store.Query(abci.RequestQuery{
		Path:   fmt.Sprintf("/%s/key", storeName), // required path to get key/value+proof
		Height: int64(chain.Height.RevisionHeight),
		Data:   key,
		Prove:  true,
	})
	require.Zero(chain.t, res.Code, res.Log)

	merkleProof, err := commitmenttypes.ConvertProofs(res.ProofOps)
	require.NoError(chain.t, err)

	proof, err := merkleProof.Marshal()
	require.NoError(chain.t, err)

	return proof, chain.Height
}

// SetUpgradedStates writes the upgraded client and consensus states under the
// upgrade path for the given upgrade plan height, zeroing the custom fields of
// the client state. The states are committed on the next Commit.
func (chain *RemoteChain) SetUpgradedStates(planHeight int64, upgradedClient *types.ClientState, upgradedConsState *types.ConsensusState) {
	clientBz, err := types.MarshalClientState(upgradedClient.ZeroCustomFields())
	require.NoError(chain.t, err)

	consStateBz, err := types.MarshalConsensusState(upgradedConsState)
	require.NoError(chain.t, err)

	chain.Set(UpgradeStoreKey, upgradeKey(planHeight, upgradetypes.KeyUpgradedClient), clientBz)
	chain.Set(UpgradeStoreKey, upgradeKey(planHeight, upgradetypes.KeyUpgradedConsState), consStateBz)
}

// QueryUpgradeProofs returns the proofs of the upgraded client and consensus
// states stored for the given plan height.
func (chain *RemoteChain) QueryUpgradeProofs(planHeight int64) ([]byte, []byte) {
	clientProof, _ := chain.QueryProof(UpgradeStoreKey, upgradeKey(planHeight, upgradetypes.KeyUpgradedClient))
	consStateProof, _ := chain.QueryProof(UpgradeStoreKey, upgradeKey(planHeight, upgradetypes.KeyUpgradedConsState))
	return clientProof, consStateProof
}

// upgradeKey mirrors the key layout of UpgradePath[1]/{height}/{key}.
func upgradeKey(planHeight int64, key string) []byte {
	return []byte(fmt.Sprintf("%s/%d/%s", UpgradePath[1], planHeight, key))
}

func (chain *RemoteChain) storeKey(storeName string) *storetypes.KVStoreKey {
	key, ok := chain.storeKeys[storeName]
	require.True(chain.t, ok, "store %s is not mounted", storeName)
	return key
}
