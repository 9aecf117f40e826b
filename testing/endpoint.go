package ibctesting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	tendermint "github.com/cosmos/wasm-light-client/modules/light-clients/07-tendermint"
	wasm "github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	attestations "github.com/cosmos/wasm-light-client/modules/light-clients/10-attestations"
)

// Endpoint is a wasm light client on the host tracking the remote chain. The
// helpers relay the state of the chain to the client through the light
// client module the same way a relayer would.
type Endpoint struct {
	t *testing.T

	Host     *Host
	Chain    *RemoteChain
	Signer   HeaderSigner
	Module   wasm.LightClientModule
	ClientID string
}

// NewRouter returns a router with every consensus family registered.
func NewRouter() *types.Router {
	return types.NewRouter(tendermint.NewVerifier(), attestations.NewVerifier())
}

// NewEndpoint creates a host one block ahead of a fresh remote chain signed by
// a signer of the given consensus family. The client is not created.
func NewEndpoint(t *testing.T, consensusType string) *Endpoint {
	t.Helper()

	chain := NewRemoteChain(t, ChainID)
	host := NewHost(t, chain.Time.Add(BlockTime))

	return &Endpoint{
		t:        t,
		Host:     host,
		Chain:    chain,
		Signer:   NewHeaderSigner(t, consensusType),
		Module:   wasm.NewLightClientModule(wasm.NewContract(NewRouter()), host.StoreProvider()),
		ClientID: FirstClientID,
	}
}

// DefaultClientState returns the client state tracking the last committed block of the chain.
func (endpoint *Endpoint) DefaultClientState() *types.ClientState {
	return NewClientState(endpoint.Signer.ConsensusType(), endpoint.Chain.Height)
}

// CurrentConsensusState returns the consensus state of the last committed block of the chain.
func (endpoint *Endpoint) CurrentConsensusState() *types.ConsensusState {
	return endpoint.Chain.ConsensusState(endpoint.Signer.NextValidatorsHash())
}

// CreateClient creates the client from the last committed block of the chain.
func (endpoint *Endpoint) CreateClient() {
	require.NoError(endpoint.t, endpoint.CreateClientWithStates(endpoint.DefaultClientState(), endpoint.CurrentConsensusState()))
}

// CreateClientWithStates initializes the client with the given states.
func (endpoint *Endpoint) CreateClientWithStates(clientState *types.ClientState, consensusState *types.ConsensusState) error {
	clientStateBz, err := json.Marshal(clientState)
	require.NoError(endpoint.t, err)

	consensusStateBz, err := json.Marshal(consensusState)
	require.NoError(endpoint.t, err)

	return endpoint.Module.Initialize(endpoint.Host.Ctx(), endpoint.ClientID, clientState.Checksum, clientStateBz, consensusStateBz)
}

// CreateHeader returns a header for the last committed block of the chain
// trusting the latest height of the client.
func (endpoint *Endpoint) CreateHeader() *types.Header {
	return endpoint.Signer.CreateHeader(
		endpoint.Chain.ChainID, endpoint.Chain.Height, endpoint.LatestHeight(),
		endpoint.Chain.Time, endpoint.Chain.AppHash,
	)
}

// UpdateClient commits a block on the chain and updates the client to it.
func (endpoint *Endpoint) UpdateClient() clienttypes.Height {
	endpoint.Chain.Commit()
	endpoint.SyncHostTime()

	heights, err := endpoint.Module.UpdateState(endpoint.Host.Ctx(), endpoint.ClientID, types.NewHeaderMessage(endpoint.CreateHeader()))
	require.NoError(endpoint.t, err)
	require.Len(endpoint.t, heights, 1)

	return heights[0]
}

// SyncHostTime moves the host to the next block, keeping its time after the
// time of the last committed block of the chain.
func (endpoint *Endpoint) SyncHostTime() {
	endpoint.Host.NextBlock(BlockTime)
	if !endpoint.Host.Time().After(endpoint.Chain.Time) {
		endpoint.Host.SetTime(endpoint.Chain.Time.Add(BlockTime))
	}
}

// LatestHeight returns the latest height of the client.
func (endpoint *Endpoint) LatestHeight() clienttypes.Height {
	return endpoint.Module.LatestHeight(endpoint.Host.Ctx(), endpoint.ClientID)
}

// GetClientState returns the stored client state.
func (endpoint *Endpoint) GetClientState() *types.ClientState {
	clientState, found := types.GetClientState(endpoint.Host.ClientStore(endpoint.ClientID))
	require.True(endpoint.t, found)
	return clientState
}

// GetConsensusState returns the stored consensus state at the given height.
func (endpoint *Endpoint) GetConsensusState(height clienttypes.Height) (*types.ConsensusState, bool) {
	return types.GetConsensusState(endpoint.Host.ClientStore(endpoint.ClientID), height)
}
