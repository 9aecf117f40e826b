package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cosmos/cosmos-sdk/store/cachekv"
	"github.com/cosmos/cosmos-sdk/store/listenkv"
	storeprefix "github.com/cosmos/cosmos-sdk/store/prefix"
	"github.com/cosmos/cosmos-sdk/store/tracekv"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

var (
	_ storetypes.KVStore = &migrateClientWrappedStore{}

	// SubjectPrefix is prepended to the keys of the client being recovered
	SubjectPrefix = []byte("subject/")
	// SubstitutePrefix is prepended to the keys of the client it is recovered from
	SubstitutePrefix = []byte("substitute/")
)

// Checkpoints are stored under "consensusStates/{height}". Each one carries the
// host time and height at which it was accepted, and an index entry keyed by
// the big endian height so that checkpoints can be walked in height order.

func bigEndianHeightBytes(height exported.Height) []byte {
	bz := make([]byte, 16)
	binary.BigEndian.PutUint64(bz, height.GetRevisionNumber())
	binary.BigEndian.PutUint64(bz[8:], height.GetRevisionHeight())
	return bz
}

func heightFromBigEndianBytes(bz []byte) clienttypes.Height {
	return clienttypes.NewHeight(binary.BigEndian.Uint64(bz[:8]), binary.BigEndian.Uint64(bz[8:16]))
}

func heightIndex(clientStore sdk.KVStore) sdk.KVStore {
	return storeprefix.NewStore(clientStore, []byte(KeyIterateConsensusStatePrefix))
}

// GetClientState returns the client state of the client store, or false if the
// client was never instantiated.
func GetClientState(store sdk.KVStore) (*ClientState, bool) {
	bz := store.Get(host.ClientStateKey())
	if len(bz) == 0 {
		return nil, false
	}

	return MustUnmarshalClientState(bz), true
}

// GetConsensusState returns the checkpoint stored at exactly height.
func GetConsensusState(store sdk.KVStore, height exported.Height) (*ConsensusState, bool) {
	bz := store.Get(host.ConsensusStateKey(height))
	if len(bz) == 0 {
		return nil, false
	}

	return MustUnmarshalConsensusState(bz), true
}

func setClientState(clientStore sdk.KVStore, clientState *ClientState) {
	clientStore.Set(host.ClientStateKey(), MustMarshalClientState(clientState))
}

func setConsensusState(clientStore sdk.KVStore, consensusState *ConsensusState, height exported.Height) {
	clientStore.Set(host.ConsensusStateKey(height), MustMarshalConsensusState(consensusState))
}

// GetPreviousConsensusState returns the checkpoint with the greatest height
// strictly below height.
func GetPreviousConsensusState(clientStore sdk.KVStore, height exported.Height) (*ConsensusState, bool) {
	iterator := heightIndex(clientStore).ReverseIterator(nil, bigEndianHeightBytes(height))
	defer iterator.Close()

	if !iterator.Valid() {
		return nil, false
	}
	return getConsensusStateByKey(clientStore, iterator.Value())
}

// GetPreviousConsensusStateHeight is GetPreviousConsensusState returning the
// height of the checkpoint instead.
func GetPreviousConsensusStateHeight(clientStore sdk.KVStore, height exported.Height) (clienttypes.Height, bool) {
	iterator := heightIndex(clientStore).ReverseIterator(nil, bigEndianHeightBytes(height))
	defer iterator.Close()

	if !iterator.Valid() {
		return clienttypes.Height{}, false
	}
	return heightFromBigEndianBytes(iterator.Key()), true
}

// GetNextConsensusState returns the checkpoint with the smallest height
// strictly above height.
func GetNextConsensusState(clientStore sdk.KVStore, height exported.Height) (*ConsensusState, bool) {
	iterator := heightIndex(clientStore).Iterator(bigEndianHeightBytes(height), nil)
	defer iterator.Close()

	// the range start is inclusive, skip a checkpoint stored at height itself
	if iterator.Valid() && bytes.Equal(iterator.Value(), host.ConsensusStateKey(height)) {
		iterator.Next()
	}
	if !iterator.Valid() {
		return nil, false
	}
	return getConsensusStateByKey(clientStore, iterator.Value())
}

func getConsensusStateByKey(clientStore sdk.KVStore, key []byte) (*ConsensusState, bool) {
	bz := clientStore.Get(key)
	if len(bz) == 0 {
		return nil, false
	}

	consensusState, err := UnmarshalConsensusState(bz)
	if err != nil {
		return nil, false
	}
	return consensusState, true
}

// setConsensusMetadata records the current host block as the time and height
// at which the checkpoint at height was accepted, and indexes the checkpoint.
func setConsensusMetadata(ctx sdk.Context, clientStore sdk.KVStore, height exported.Height) {
	setConsensusMetadataWithValues(clientStore, height, clienttypes.GetSelfHeight(ctx), uint64(ctx.BlockTime().UnixNano()))
}

func setConsensusMetadataWithValues(clientStore sdk.KVStore, height, processedHeight exported.Height, processedTime uint64) {
	SetProcessedTime(clientStore, height, processedTime)
	SetProcessedHeight(clientStore, height, processedHeight)
	SetIterationKey(clientStore, height)
}

// SetProcessedTime stores the host time, in unix nanoseconds, at which the
// checkpoint at height was accepted. Proofs against the checkpoint honour
// their time delay from this instant.
func SetProcessedTime(clientStore sdk.KVStore, height exported.Height, timeNs uint64) {
	clientStore.Set(ProcessedTimeKey(height), sdk.Uint64ToBigEndian(timeNs))
}

// GetProcessedTime returns the host time at which the checkpoint at height was accepted.
func GetProcessedTime(clientStore sdk.KVStore, height exported.Height) (uint64, bool) {
	bz := clientStore.Get(ProcessedTimeKey(height))
	if len(bz) == 0 {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

// ProcessedTimeKey returns the client store key of the processed time of a checkpoint.
func ProcessedTimeKey(height exported.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedTime...)
}

// SetProcessedHeight stores the host height at which the checkpoint at
// consHeight was accepted. Proofs against the checkpoint honour their block
// delay from this height.
func SetProcessedHeight(clientStore sdk.KVStore, consHeight, processedHeight exported.Height) {
	clientStore.Set(ProcessedHeightKey(consHeight), []byte(processedHeight.String()))
}

// GetProcessedHeight returns the host height at which the checkpoint at height was accepted.
func GetProcessedHeight(clientStore sdk.KVStore, height exported.Height) (exported.Height, bool) {
	bz := clientStore.Get(ProcessedHeightKey(height))
	if len(bz) == 0 {
		return nil, false
	}

	processedHeight, err := clienttypes.ParseHeight(string(bz))
	if err != nil {
		return nil, false
	}
	return processedHeight, true
}

// ProcessedHeightKey returns the client store key of the processed height of a checkpoint.
func ProcessedHeightKey(height exported.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedHeight...)
}

// SetIterationKey adds the checkpoint at height to the height index.
func SetIterationKey(clientStore sdk.KVStore, height exported.Height) {
	clientStore.Set(IterationKey(height), host.ConsensusStateKey(height))
}

// GetIterationKey returns the checkpoint key indexed at height.
func GetIterationKey(clientStore sdk.KVStore, height exported.Height) []byte {
	return clientStore.Get(IterationKey(height))
}

// IterationKey returns the height index key of a checkpoint. Index keys sort
// in height order.
func IterationKey(height exported.Height) []byte {
	return append([]byte(KeyIterateConsensusStatePrefix), bigEndianHeightBytes(height)...)
}

// GetHeightFromIterationKey returns the checkpoint height of a height index key.
func GetHeightFromIterationKey(iterKey []byte) exported.Height {
	return heightFromBigEndianBytes(iterKey[len(KeyIterateConsensusStatePrefix):])
}

// IterateConsensusStateAscending calls cb with the height of every checkpoint,
// lowest first, until cb returns true.
func IterateConsensusStateAscending(clientStore sdk.KVStore, cb func(height exported.Height) (stop bool)) {
	iterator := sdk.KVStorePrefixIterator(clientStore, []byte(KeyIterateConsensusStatePrefix))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		if cb(GetHeightFromIterationKey(iterator.Key())) {
			return
		}
	}
}

// migrateClientWrappedStore exposes the stores of a recovery subject and its
// substitute as one store. Keys carry a "subject/" or "substitute/" prefix
// selecting the store; both can be read, only the subject can be written.
// Any other key panics.
type migrateClientWrappedStore struct {
	subjectStore    storetypes.KVStore
	substituteStore storetypes.KVStore
}

// NewMigrateClientWrappedStore returns a store that reads from both clients and
// writes to the subject only.
func NewMigrateClientWrappedStore(subjectStore, substituteStore storetypes.KVStore) storetypes.KVStore {
	if subjectStore == nil || substituteStore == nil {
		panic(errors.New("subject and substitute stores must not be nil"))
	}

	return migrateClientWrappedStore{
		subjectStore:    subjectStore,
		substituteStore: substituteStore,
	}
}

func (ws migrateClientWrappedStore) Get(key []byte) []byte {
	prefix, key := splitPrefix(key)
	return ws.getStore(prefix).Get(key)
}

func (ws migrateClientWrappedStore) Has(key []byte) bool {
	prefix, key := splitPrefix(key)
	return ws.getStore(prefix).Has(key)
}

func (ws migrateClientWrappedStore) Set(key, value []byte) {
	ws.subjectStore.Set(subjectKey(key), value)
}

func (ws migrateClientWrappedStore) Delete(key []byte) {
	ws.subjectStore.Delete(subjectKey(key))
}

func (ws migrateClientWrappedStore) Iterator(start, end []byte) storetypes.Iterator {
	prefix, start, end := splitRange(start, end)
	return ws.getStore(prefix).Iterator(start, end)
}

func (ws migrateClientWrappedStore) ReverseIterator(start, end []byte) storetypes.Iterator {
	prefix, start, end := splitRange(start, end)
	return ws.getStore(prefix).ReverseIterator(start, end)
}

func (ws migrateClientWrappedStore) GetStoreType() storetypes.StoreType {
	return ws.substituteStore.GetStoreType()
}

func (ws migrateClientWrappedStore) CacheWrap() storetypes.CacheWrap {
	return cachekv.NewStore(ws)
}

func (ws migrateClientWrappedStore) CacheWrapWithTrace(w io.Writer, tc storetypes.TraceContext) storetypes.CacheWrap {
	return cachekv.NewStore(tracekv.NewStore(ws, w, tc))
}

func (ws migrateClientWrappedStore) CacheWrapWithListeners(storeKey storetypes.StoreKey, listeners []storetypes.WriteListener) storetypes.CacheWrap {
	return cachekv.NewStore(listenkv.NewStore(ws, storeKey, listeners))
}

func (ws migrateClientWrappedStore) getStore(prefix []byte) storetypes.KVStore {
	switch {
	case bytes.Equal(prefix, SubjectPrefix):
		return ws.subjectStore
	case bytes.Equal(prefix, SubstitutePrefix):
		return ws.substituteStore
	default:
		panic(fmt.Errorf("key must be prefixed with either %q or %q", SubjectPrefix, SubstitutePrefix))
	}
}

// subjectKey strips the subject prefix of a written key.
func subjectKey(key []byte) []byte {
	prefix, key := splitPrefix(key)
	if !bytes.Equal(prefix, SubjectPrefix) {
		panic(fmt.Errorf("writes only allowed on subject store; key must be prefixed with %q", SubjectPrefix))
	}
	return key
}

// splitRange strips the common prefix of the bounds of an iteration.
func splitRange(start, end []byte) ([]byte, []byte, []byte) {
	prefixStart, start := splitPrefix(start)
	prefixEnd, end := splitPrefix(end)
	if !bytes.Equal(prefixStart, prefixEnd) {
		panic(errors.New("start and end keys must be prefixed with the same prefix"))
	}
	return prefixStart, start, end
}

// splitPrefix returns the store prefix of key and the key without it. The
// prefix is nil if key has neither.
func splitPrefix(key []byte) ([]byte, []byte) {
	switch {
	case bytes.HasPrefix(key, SubjectPrefix):
		return SubjectPrefix, key[len(SubjectPrefix):]
	case bytes.HasPrefix(key, SubstitutePrefix):
		return SubstitutePrefix, key[len(SubstitutePrefix):]
	default:
		return nil, key
	}
}
