package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

// ExportMetadata exports all the consensus metadata in the client store so
// it can be included in a successor client.
func (ClientState) ExportMetadata(store sdk.KVStore) []clienttypes.GenesisMetadata {
	gm := make([]clienttypes.GenesisMetadata, 0)
	IterateConsensusStateAscending(store, func(height exported.Height) bool {
		processedTime, found := GetProcessedTime(store, height)
		if !found {
			return false
		}
		gm = append(gm, clienttypes.NewGenesisMetadata(ProcessedTimeKey(height), sdk.Uint64ToBigEndian(processedTime)))

		processedHeight, found := GetProcessedHeight(store, height)
		if found {
			gm = append(gm, clienttypes.NewGenesisMetadata(ProcessedHeightKey(height), []byte(processedHeight.String())))
		}

		gm = append(gm, clienttypes.NewGenesisMetadata(IterationKey(height), host.ConsensusStateKey(height)))

		return false
	})
	if len(gm) == 0 {
		return nil
	}
	return gm
}
