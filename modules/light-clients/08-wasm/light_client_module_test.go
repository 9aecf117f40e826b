package wasm_test

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/tendermint/tendermint/crypto/tmhash"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

func (suite *WasmTestSuite) TestInitialize() {
	var (
		checksum      []byte
		clientStateBz []byte
		consStateBz   []byte
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"client already exists",
			func() {
				suite.endpoint.CreateClient()
			},
			clienttypes.ErrClientExists,
		},
		{
			"checksum is not a sha256 digest",
			func() {
				checksum = []byte("checksum")
			},
			types.ErrInvalidChecksum,
		},
		{
			"consensus type has no verifier",
			func() {
				clientState := suite.endpoint.DefaultClientState()
				clientState.ConsensusType = "99-unknown"
				clientStateBz = suite.mustMarshal(clientState)
			},
			types.ErrUnknownConsensusType,
		},
		{
			"client state has unknown fields",
			func() {
				clientStateBz = []byte(`{"chain_id":"testchain-1","unknown":true}`)
			},
			clienttypes.ErrInvalidClient,
		},
		{
			"client state is invalid",
			func() {
				clientState := suite.endpoint.DefaultClientState()
				clientState.TrustingPeriod = 0
				clientStateBz = suite.mustMarshal(clientState)
			},
			clienttypes.ErrInvalidTrustingPeriod,
		},
		{
			"consensus state is invalid",
			func() {
				consState := suite.endpoint.CurrentConsensusState()
				consState.Root = commitmenttypes.MerkleRoot{}
				consStateBz = suite.mustMarshal(consState)
			},
			clienttypes.ErrInvalidConsensus,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.endpoint = ibctesting.NewEndpoint(suite.T(), exported.Tendermint)

			checksum = ibctesting.Checksum
			clientStateBz = suite.mustMarshal(suite.endpoint.DefaultClientState())
			consStateBz = suite.mustMarshal(suite.endpoint.CurrentConsensusState())

			tc.malleate()

			err := suite.module().Initialize(suite.ctx(), wasmClientID, checksum, clientStateBz, consStateBz)

			if tc.expErr == nil {
				suite.Require().NoError(err)

				clientState := suite.endpoint.GetClientState()
				suite.Require().Equal(checksum, clientState.Checksum)
				suite.Require().Equal(suite.endpoint.Chain.Height, clientState.LatestHeight)
				suite.Require().Equal(exported.Active, suite.module().Status(suite.ctx(), wasmClientID))

				consState, found := suite.endpoint.GetConsensusState(clientState.LatestHeight)
				suite.Require().True(found)
				suite.Require().True(suite.endpoint.CurrentConsensusState().Equal(consState))
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				if tc.expErr != clienttypes.ErrClientExists {
					suite.Require().False(suite.clientStore().Has(host.ClientStateKey()))
				}
			}
		})
	}
}

// A client instantiated from a block verifies a key committed in that block.
func (suite *WasmTestSuite) TestVerifyMembershipAtInstantiatedHeight() {
	suite.endpoint = ibctesting.NewEndpoint(suite.T(), exported.Tendermint)
	suite.endpoint.Chain.Set(host.StoreKey, []byte("k"), []byte("v"))
	suite.endpoint.Chain.Commit()
	suite.endpoint.SyncHostTime()
	suite.endpoint.CreateClient()

	proof, proofHeight := suite.endpoint.Chain.QueryProof(host.StoreKey, []byte("k"))
	suite.Require().Equal(suite.endpoint.LatestHeight(), proofHeight)

	path := suite.endpoint.Chain.MerklePath(host.StoreKey, []byte("k"))
	err := suite.module().VerifyMembership(suite.ctx(), wasmClientID, proofHeight, 0, 0, proof, path, []byte("v"))
	suite.Require().NoError(err)

	err = suite.module().VerifyMembership(suite.ctx(), wasmClientID, proofHeight, 0, 0, proof, path, []byte("other"))
	suite.Require().ErrorIs(err, commitmenttypes.ErrInvalidProof)

	absentProof, _ := suite.endpoint.Chain.QueryProof(host.StoreKey, []byte("z"))
	err = suite.module().VerifyNonMembership(suite.ctx(), wasmClientID, proofHeight, 0, 0, absentProof, suite.endpoint.Chain.MerklePath(host.StoreKey, []byte("z")))
	suite.Require().NoError(err)

	err = suite.module().VerifyNonMembership(suite.ctx(), wasmClientID, proofHeight, 0, 0, proof, path)
	suite.Require().ErrorIs(err, commitmenttypes.ErrInvalidProof)
}

// A header whose time is before the time of the trusted consensus state is
// rejected and leaves the client untouched.
func (suite *WasmTestSuite) TestUpdateStateRejectsEarlierTimestamp() {
	for _, consensusType := range ibctesting.ConsensusTypes {
		suite.Run(consensusType, func() {
			suite.setupClient(consensusType)
			initialHeight := suite.endpoint.LatestHeight()
			initialConsState, found := suite.endpoint.GetConsensusState(initialHeight)
			suite.Require().True(found)

			suite.endpoint.Chain.Commit()
			suite.endpoint.SyncHostTime()
			header := suite.endpoint.Signer.CreateHeader(
				ibctesting.ChainID, suite.endpoint.Chain.Height, initialHeight,
				initialConsState.Timestamp.Add(-time.Second), suite.endpoint.Chain.AppHash,
			)

			heights, err := suite.module().UpdateState(suite.ctx(), wasmClientID, types.NewHeaderMessage(header))
			suite.Require().ErrorIs(err, clienttypes.ErrNonMonotonicHeight)
			suite.Require().Nil(heights)

			suite.Require().Equal(initialHeight, suite.endpoint.LatestHeight())
			_, found = suite.endpoint.GetConsensusState(header.Height)
			suite.Require().False(found)
		})
	}
}

// Two valid headers for the same height with different roots freeze the client
// at that height for good.
func (suite *WasmTestSuite) TestMisbehaviourFreezesClient() {
	for _, consensusType := range ibctesting.ConsensusTypes {
		suite.Run(consensusType, func() {
			suite.setupClient(consensusType)
			trustedHeight := suite.endpoint.LatestHeight()

			height := clienttypes.NewHeight(trustedHeight.RevisionNumber, 5)
			timestamp := suite.endpoint.Chain.Time.Add(4 * ibctesting.BlockTime)
			suite.endpoint.Host.SetTime(timestamp.Add(time.Second))

			header1 := suite.endpoint.Signer.CreateHeader(ibctesting.ChainID, height, trustedHeight, timestamp, tmhash.Sum([]byte("root-a")))
			header2 := suite.endpoint.Signer.CreateHeader(ibctesting.ChainID, height, trustedHeight, timestamp, tmhash.Sum([]byte("root-b")))
			clientMsg := types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))

			suite.Require().NoError(suite.module().VerifyClientMessage(suite.ctx(), wasmClientID, clientMsg))

			found, err := suite.module().CheckForMisbehaviour(suite.ctx(), wasmClientID, clientMsg)
			suite.Require().NoError(err)
			suite.Require().True(found)

			suite.Require().NoError(suite.module().UpdateStateOnMisbehaviour(suite.ctx(), wasmClientID, clientMsg))
			suite.Require().Equal(exported.Frozen, suite.module().Status(suite.ctx(), wasmClientID))
			suite.Require().Equal(height, suite.endpoint.GetClientState().FrozenHeight)

			// the frozen client accepts nothing that would move it forward
			_, err = suite.module().UpdateState(suite.ctx(), wasmClientID, types.NewHeaderMessage(header1))
			suite.Require().ErrorIs(err, clienttypes.ErrClientFrozen)

			err = suite.module().UpdateStateOnMisbehaviour(suite.ctx(), wasmClientID, clientMsg)
			suite.Require().ErrorIs(err, clienttypes.ErrClientFrozen)

			err = suite.module().VerifyUpgradeAndUpdateState(suite.ctx(), wasmClientID, nil, nil, nil, nil)
			suite.Require().Error(err)

			suite.endpoint.Host.NextBlock(time.Hour)
			suite.Require().Equal(exported.Frozen, suite.module().Status(suite.ctx(), wasmClientID))
			suite.Require().Equal(height, suite.endpoint.GetClientState().FrozenHeight)
		})
	}
}

// After a client is frozen by misbehaviour, proofs against checkpoints below
// the frozen height still verify while proofs at the frozen height do not.
func (suite *WasmTestSuite) TestVerifyMembershipAfterMisbehaviour() {
	key, value := []byte("k"), []byte("v")

	for _, consensusType := range ibctesting.ConsensusTypes {
		suite.Run(consensusType, func() {
			suite.endpoint = ibctesting.NewEndpoint(suite.T(), consensusType)
			suite.endpoint.Chain.Set(host.StoreKey, key, value)
			suite.endpoint.Chain.Commit()
			suite.endpoint.SyncHostTime()
			suite.endpoint.CreateClient()

			path := suite.endpoint.Chain.MerklePath(host.StoreKey, key)
			trustedHeight := suite.endpoint.LatestHeight()
			trustedProof, proofHeight := suite.endpoint.Chain.QueryProof(host.StoreKey, key)
			suite.Require().Equal(trustedHeight, proofHeight)

			height := suite.endpoint.UpdateClient()
			latestProof, proofHeight := suite.endpoint.Chain.QueryProof(host.StoreKey, key)
			suite.Require().Equal(height, proofHeight)

			err := suite.module().VerifyMembership(suite.ctx(), wasmClientID, height, 0, 0, latestProof, path, value)
			suite.Require().NoError(err)

			chain := suite.endpoint.Chain
			header1 := suite.endpoint.Signer.CreateHeader(ibctesting.ChainID, height, trustedHeight, chain.Time, chain.AppHash)
			header2 := suite.endpoint.Signer.CreateHeader(ibctesting.ChainID, height, trustedHeight, chain.Time, tmhash.Sum([]byte("conflicting root")))
			clientMsg := types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))

			suite.Require().NoError(suite.module().VerifyClientMessage(suite.ctx(), wasmClientID, clientMsg))
			found, err := suite.module().CheckForMisbehaviour(suite.ctx(), wasmClientID, clientMsg)
			suite.Require().NoError(err)
			suite.Require().True(found)
			suite.Require().NoError(suite.module().UpdateStateOnMisbehaviour(suite.ctx(), wasmClientID, clientMsg))
			suite.Require().Equal(height, suite.endpoint.GetClientState().FrozenHeight)

			// below the frozen height
			err = suite.module().VerifyMembership(suite.ctx(), wasmClientID, trustedHeight, 0, 0, trustedProof, path, value)
			suite.Require().NoError(err)

			// at the frozen height
			err = suite.module().VerifyMembership(suite.ctx(), wasmClientID, height, 0, 0, latestProof, path, value)
			suite.Require().ErrorIs(err, clienttypes.ErrClientFrozen)

			absentPath := suite.endpoint.Chain.MerklePath(host.StoreKey, []byte("z"))
			absentProof, _ := suite.endpoint.Chain.QueryProof(host.StoreKey, []byte("z"))
			err = suite.module().VerifyNonMembership(suite.ctx(), wasmClientID, height, 0, 0, absentProof, absentPath)
			suite.Require().ErrorIs(err, clienttypes.ErrClientFrozen)
		})
	}
}

func (suite *WasmTestSuite) TestTimestampAtHeight() {
	height := suite.endpoint.LatestHeight()
	consState, found := suite.endpoint.GetConsensusState(height)
	suite.Require().True(found)

	timestamp, err := suite.module().TimestampAtHeight(suite.ctx(), wasmClientID, height)
	suite.Require().NoError(err)
	suite.Require().Equal(consState.GetTimestamp(), timestamp)

	// a height that was never stored
	_, err = suite.module().TimestampAtHeight(suite.ctx(), wasmClientID, clienttypes.NewHeight(height.RevisionNumber, 100))
	suite.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)

	_, err = suite.module().TimestampAtHeight(suite.ctx(), unusedWasmClientID, height)
	suite.Require().ErrorIs(err, clienttypes.ErrClientNotFound)
}

func (suite *WasmTestSuite) TestStatus() {
	testCases := []struct {
		name      string
		clientID  string
		malleate  func()
		expStatus exported.Status
	}{
		{
			"client is active",
			wasmClientID,
			func() {},
			exported.Active,
		},
		{
			"client is frozen",
			wasmClientID,
			func() {
				clientState := suite.endpoint.GetClientState()
				clientState.FrozenHeight = clientState.LatestHeight
				suite.clientStore().Set(host.ClientStateKey(), types.MustMarshalClientState(clientState))
			},
			exported.Frozen,
		},
		{
			"client is expired",
			wasmClientID,
			func() {
				suite.endpoint.Host.NextBlock(ibctesting.TrustingPeriod)
			},
			exported.Expired,
		},
		{
			"client does not exist",
			unusedWasmClientID,
			func() {},
			exported.Unknown,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()

			tc.malleate()

			suite.Require().Equal(tc.expStatus, suite.module().Status(suite.ctx(), tc.clientID))
		})
	}
}

func (suite *WasmTestSuite) TestLatestHeight() {
	suite.Require().Equal(suite.endpoint.Chain.Height, suite.module().LatestHeight(suite.ctx(), wasmClientID))

	height := suite.endpoint.UpdateClient()
	suite.Require().Equal(height, suite.module().LatestHeight(suite.ctx(), wasmClientID))

	suite.Require().True(suite.module().LatestHeight(suite.ctx(), unusedWasmClientID).IsZero())
}

func (suite *WasmTestSuite) TestUpdateStateReplayIsNoop() {
	suite.endpoint.Chain.Commit()
	suite.endpoint.SyncHostTime()
	clientMsg := types.NewHeaderMessage(suite.endpoint.CreateHeader())

	heights, err := suite.module().UpdateState(suite.ctx(), wasmClientID, clientMsg)
	suite.Require().NoError(err)
	expClientState := suite.endpoint.GetClientState()
	expProcessedTime, found := types.GetProcessedTime(suite.clientStore(), heights[0])
	suite.Require().True(found)

	suite.endpoint.Host.NextBlock(ibctesting.BlockTime)

	replayed, err := suite.module().UpdateState(suite.ctx(), wasmClientID, clientMsg)
	suite.Require().NoError(err)
	suite.Require().Equal(heights, replayed)
	suite.Require().Equal(expClientState, suite.endpoint.GetClientState())

	processedTime, found := types.GetProcessedTime(suite.clientStore(), heights[0])
	suite.Require().True(found)
	suite.Require().Equal(expProcessedTime, processedTime)
}

func (suite *WasmTestSuite) TestUpdateStateOutOfOrder() {
	testCases := []struct {
		name         string
		updatePolicy string
		expErr       error
	}{
		{"out of order policy fills the gap", types.UpdatePolicyOutOfOrder, nil},
		{"strict policy rejects the gap", types.UpdatePolicyStrict, clienttypes.ErrNonMonotonicHeight},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.endpoint = ibctesting.NewEndpoint(suite.T(), exported.Tendermint)
			clientState := suite.endpoint.DefaultClientState()
			clientState.UpdatePolicy = tc.updatePolicy
			suite.Require().NoError(suite.endpoint.CreateClientWithStates(clientState, suite.endpoint.CurrentConsensusState()))
			trustedHeight := suite.endpoint.LatestHeight()

			suite.endpoint.Chain.Commit()
			gapHeader := suite.endpoint.Signer.CreateHeader(
				ibctesting.ChainID, suite.endpoint.Chain.Height, trustedHeight, suite.endpoint.Chain.Time, suite.endpoint.Chain.AppHash,
			)

			latestHeight := suite.endpoint.UpdateClient()
			suite.Require().True(latestHeight.GT(gapHeader.Height))

			heights, err := suite.module().UpdateState(suite.ctx(), wasmClientID, types.NewHeaderMessage(gapHeader))
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal([]clienttypes.Height{gapHeader.Height}, heights)

				_, found := suite.endpoint.GetConsensusState(gapHeader.Height)
				suite.Require().True(found)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)

				_, found := suite.endpoint.GetConsensusState(gapHeader.Height)
				suite.Require().False(found)
			}
			suite.Require().Equal(latestHeight, suite.endpoint.LatestHeight())
		})
	}
}

func (suite *WasmTestSuite) TestVerifyUpgradeAndUpdateState() {
	upgradedClient := types.NewClientState(
		"testchain-2", exported.Tendermint, ibctesting.DefaultTrustLevel,
		ibctesting.TrustingPeriod, ibctesting.UnbondingPeriod, ibctesting.MaxClockDrift,
		clienttypes.NewHeight(2, 1), commitmenttypes.GetSDKSpecs(), ibctesting.UpgradePath,
	)
	upgradedConsState := ibctesting.NewConsensusState(suite.endpoint.Signer, suite.endpoint.Chain.Time, []byte("upgraded root"))

	planHeight := int64(suite.endpoint.Chain.Height.RevisionHeight + 1)
	suite.endpoint.Chain.SetUpgradedStates(planHeight, upgradedClient, upgradedConsState)
	suite.endpoint.UpdateClient()
	clientProof, consStateProof := suite.endpoint.Chain.QueryUpgradeProofs(planHeight)

	// a mismatching consensus state leaves the client untouched
	tampered := *upgradedConsState
	tampered.Timestamp = tampered.Timestamp.Add(time.Second)
	err := suite.module().VerifyUpgradeAndUpdateState(
		suite.ctx(), wasmClientID, suite.mustMarshal(upgradedClient), suite.mustMarshal(&tampered), clientProof, consStateProof,
	)
	suite.Require().ErrorIs(err, commitmenttypes.ErrInvalidProof)
	suite.Require().Equal(ibctesting.ChainID, suite.endpoint.GetClientState().ChainID)

	err = suite.module().VerifyUpgradeAndUpdateState(
		suite.ctx(), wasmClientID, suite.mustMarshal(upgradedClient), suite.mustMarshal(upgradedConsState), clientProof, consStateProof,
	)
	suite.Require().NoError(err)

	clientState := suite.endpoint.GetClientState()
	suite.Require().Equal("testchain-2", clientState.ChainID)
	suite.Require().Equal(upgradedClient.LatestHeight, clientState.LatestHeight)
	suite.Require().Equal(ibctesting.Checksum, clientState.Checksum)

	consState, found := suite.endpoint.GetConsensusState(upgradedClient.LatestHeight)
	suite.Require().True(found)
	suite.Require().Equal(types.SentinelRoot, consState.Root.GetHash())
	suite.Require().Equal(exported.Active, suite.module().Status(suite.ctx(), wasmClientID))
}

func (suite *WasmTestSuite) TestRecoverClient() {
	var substituteClientState *types.ClientState

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"substitute uses a different contract",
			func() {
				checksum := sha256.Sum256([]byte("other contract"))
				substituteClientState.Checksum = checksum[:]
			},
			clienttypes.ErrInvalidSubstitute,
		},
		{
			"substitute is not active",
			func() {
				substituteClientState.FrozenHeight = substituteClientState.LatestHeight
			},
			clienttypes.ErrClientNotActive,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.freezeClient()

			suite.endpoint.Chain.Commit()
			suite.endpoint.SyncHostTime()
			substituteClientState = suite.endpoint.DefaultClientState()

			tc.malleate()

			suite.createSubstitute(substituteClientState)

			err := suite.module().RecoverClient(suite.ctx(), wasmClientID, ibctesting.SecondClientID)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(exported.Active, suite.module().Status(suite.ctx(), wasmClientID))
				suite.Require().Equal(substituteClientState.LatestHeight, suite.module().LatestHeight(suite.ctx(), wasmClientID))
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Equal(exported.Frozen, suite.module().Status(suite.ctx(), wasmClientID))
			}
		})
	}

	suite.Run("subject does not exist", func() {
		suite.SetupTest()
		err := suite.module().RecoverClient(suite.ctx(), unusedWasmClientID, wasmClientID)
		suite.Require().ErrorIs(err, clienttypes.ErrClientNotFound)
	})

	suite.Run("substitute does not exist", func() {
		suite.SetupTest()
		suite.freezeClient()
		err := suite.module().RecoverClient(suite.ctx(), wasmClientID, unusedWasmClientID)
		suite.Require().ErrorIs(err, clienttypes.ErrClientNotFound)
	})
}

// A contract call failing after it wrote to the client store leaves the store
// as it was before the call.
func (suite *WasmTestSuite) TestFailedCallDiscardsWrites() {
	suite.freezeClient()

	suite.endpoint.Chain.Commit()
	suite.endpoint.SyncHostTime()
	substituteClientState := suite.endpoint.DefaultClientState()
	substituteStore := suite.createSubstitute(substituteClientState)

	// recovery copies the consensus state before it reads the processed height
	substituteStore.Delete(types.ProcessedHeightKey(substituteClientState.LatestHeight))

	err := suite.module().RecoverClient(suite.ctx(), wasmClientID, ibctesting.SecondClientID)
	suite.Require().ErrorIs(err, clienttypes.ErrProcessedHeightNotFound)

	_, found := suite.endpoint.GetConsensusState(substituteClientState.LatestHeight)
	suite.Require().False(found)
	suite.Require().Equal(exported.Frozen, suite.module().Status(suite.ctx(), wasmClientID))
}

func (suite *WasmTestSuite) TestExportMetadata() {
	suite.endpoint.UpdateClient()

	gm, err := suite.module().ExportMetadata(suite.ctx(), wasmClientID)
	suite.Require().NoError(err)
	suite.Require().Equal(suite.endpoint.GetClientState().ExportMetadata(suite.clientStore()), gm)
	suite.Require().Len(gm, 6)

	_, err = suite.module().ExportMetadata(suite.ctx(), unusedWasmClientID)
	suite.Require().ErrorIs(err, clienttypes.ErrClientNotFound)
}

func (suite *WasmTestSuite) mustMarshal(v interface{}) []byte {
	bz, err := json.Marshal(v)
	suite.Require().NoError(err)
	return bz
}

func (suite *WasmTestSuite) freezeClient() {
	clientState := suite.endpoint.GetClientState()
	clientState.FrozenHeight = clientState.LatestHeight
	suite.clientStore().Set(host.ClientStateKey(), types.MustMarshalClientState(clientState))
}

// createSubstitute creates the second client from the last block of the chain.
func (suite *WasmTestSuite) createSubstitute(clientState *types.ClientState) sdk.KVStore {
	err := suite.module().Initialize(
		suite.ctx(), ibctesting.SecondClientID, clientState.Checksum,
		suite.mustMarshal(clientState), suite.mustMarshal(suite.endpoint.CurrentConsensusState()),
	)
	suite.Require().NoError(err)

	return suite.endpoint.Host.ClientStore(ibctesting.SecondClientID)
}
