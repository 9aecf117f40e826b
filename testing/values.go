/*
This file contains the variables, constants, and default values
used in the testing package and commonly defined in tests.
*/
package ibctesting

import (
	"crypto/sha256"
	"time"

	"github.com/tendermint/tendermint/light"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

const (
	// ChainID is the chain id of the counterparty chain tracked by the clients under test.
	ChainID = "testchain-1"
	// HostChainID is the chain id of the chain running the light client.
	HostChainID = "hostchain-0"

	FirstClientID  = "08-wasm-0"
	SecondClientID = "08-wasm-1"

	// Default params constants used to create a client
	TrustingPeriod  time.Duration = time.Hour * 24 * 7 * 2
	UnbondingPeriod time.Duration = time.Hour * 24 * 7 * 3
	MaxClockDrift   time.Duration = time.Second * 10

	// BlockTime is the time elapsed between two committed blocks of the counterparty chain.
	BlockTime = 5 * time.Second

	// DefaultValidators is the size of the validator set created by NewTendermintSigner.
	DefaultValidators = 4

	// DefaultAttestors is the size of the attestor set created by NewAttestors.
	DefaultAttestors = 4
)

var (
	DefaultTrustLevel = types.NewFractionFromTm(light.DefaultTrustLevel)

	// StartTime is the time of the first block of every chain created in tests.
	StartTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	// Code is the contract code whose checksum is stored in the client state.
	Code     = []byte("\x00\x61\x73\x6D0123456780123456780123456780")
	Checksum = sha256Sum(Code)

	UpgradePath = []string{"upgrade", "upgradedIBCState"}

	// ConsensusTypes lists the consensus families with fixtures in this package.
	ConsensusTypes = []string{exported.Tendermint, exported.Attestations}
)

// NewClientState returns a valid client state of the given consensus family tracking
// ChainID at the given height.
func NewClientState(consensusType string, latestHeight clienttypes.Height) *types.ClientState {
	clientState := types.NewClientState(
		ChainID, consensusType, DefaultTrustLevel, TrustingPeriod, UnbondingPeriod, MaxClockDrift,
		latestHeight, commitmenttypes.GetSDKSpecs(), UpgradePath,
	)
	clientState.Checksum = Checksum
	return clientState
}

func sha256Sum(bz []byte) []byte {
	hash := sha256.Sum256(bz)
	return hash[:]
}
