package types_test

import (
	"time"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	ibcerrors "github.com/cosmos/wasm-light-client/modules/core/errors"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

const upgradedChainID = "testchain-2"

// commitUpgrade commits the upgraded states on the chain, updates the client to
// the block holding them and returns their proofs.
func (suite *TypesTestSuite) commitUpgrade(upgradedClient *types.ClientState, upgradedConsState *types.ConsensusState) ([]byte, []byte) {
	planHeight := int64(suite.endpoint.Chain.Height.RevisionHeight + 1)
	suite.endpoint.Chain.SetUpgradedStates(planHeight, upgradedClient, upgradedConsState)

	height := suite.endpoint.UpdateClient()
	suite.Require().Equal(uint64(planHeight), height.RevisionHeight)

	return suite.endpoint.Chain.QueryUpgradeProofs(planHeight)
}

func (suite *TypesTestSuite) newUpgradedStates(unbondingPeriod time.Duration) (*types.ClientState, *types.ConsensusState) {
	upgradedClient := types.NewClientState(
		upgradedChainID, suite.endpoint.Signer.ConsensusType(), ibctesting.DefaultTrustLevel,
		ibctesting.TrustingPeriod, unbondingPeriod, ibctesting.MaxClockDrift,
		clienttypes.NewHeight(2, 1), commitmenttypes.GetSDKSpecs(), ibctesting.UpgradePath,
	)
	upgradedConsState := ibctesting.NewConsensusState(suite.endpoint.Signer, suite.endpoint.Chain.Time, []byte("upgraded root"))
	return upgradedClient, upgradedConsState
}

func (suite *TypesTestSuite) TestVerifyUpgradeAndUpdateState() {
	var (
		clientState                                 *types.ClientState
		upgradedClient                              *types.ClientState
		upgradedConsState                           *types.ConsensusState
		upgradedClientProof, upgradedConsStateProof []byte
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
			"success: relayer chosen fields of the upgraded client are ignored",
			func() {
				upgradedClient.TrustingPeriod = time.Hour
				upgradedClient.MaxClockDrift = time.Minute
				upgradedClient.TrustLevel = types.Fraction{Numerator: 2, Denominator: 3}
			},
			nil,
		},
		{
			"client has no upgrade path",
			func() {
				clientState.UpgradePath = nil
			},
			ibcerrors.ErrUnsupported,
		},
		{
			"client is frozen",
			func() {
				clientState.FrozenHeight = clienttypes.NewHeight(1, 1)
			},
			clienttypes.ErrClientFrozen,
		},
		{
			"upgraded client is nil",
			func() {
				upgradedClient = nil
			},
			clienttypes.ErrInvalidClient,
		},
		{
			"upgraded consensus state is nil",
			func() {
				upgradedConsState = nil
			},
			clienttypes.ErrInvalidConsensus,
		},
		{
			"upgraded client height is not greater than current height",
			func() {
				upgradedClient.LatestHeight = clientState.LatestHeight
			},
			ibcerrors.ErrInvalidHeight,
		},
		{
			"client proof cannot be decoded",
			func() {
				upgradedClientProof = []byte("proof")
			},
			commitmenttypes.ErrInvalidMerkleProof,
		},
		{
			"consensus state proof cannot be decoded",
			func() {
				upgradedConsStateProof = nil
			},
			commitmenttypes.ErrInvalidMerkleProof,
		},
		{
			"consensus state not found at latest height",
			func() {
				clientState.LatestHeight = clienttypes.NewHeight(1, 100)
			},
			clienttypes.ErrConsensusStateNotFound,
		},
		{
			"chain chosen field of the upgraded client differs from committed client",
			func() {
				upgradedClient.UnbondingPeriod = ibctesting.UnbondingPeriod + time.Hour
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"upgraded consensus state differs from committed consensus state",
			func() {
				upgradedConsState.Timestamp = upgradedConsState.Timestamp.Add(time.Second)
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"proofs are swapped",
			func() {
				upgradedClientProof, upgradedConsStateProof = upgradedConsStateProof, upgradedClientProof
			},
			commitmenttypes.ErrInvalidProof,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()

			upgradedClient, upgradedConsState = suite.newUpgradedStates(ibctesting.UnbondingPeriod)
			upgradedClientProof, upgradedConsStateProof = suite.commitUpgrade(upgradedClient, upgradedConsState)
			clientState = suite.endpoint.GetClientState()

			tc.malleate()

			err := clientState.VerifyUpgradeAndUpdateState(
				suite.ctx(), suite.clientStore(), upgradedClient, upgradedConsState,
				upgradedClientProof, upgradedConsStateProof,
			)

			if tc.expErr == nil {
				suite.Require().NoError(err)

				newClientState := suite.endpoint.GetClientState()
				suite.Require().Equal(upgradedChainID, newClientState.ChainID)
				suite.Require().Equal(clienttypes.NewHeight(2, 1), newClientState.LatestHeight)
				suite.Require().Equal(clientState.TrustLevel, newClientState.TrustLevel)
				suite.Require().Equal(clientState.TrustingPeriod, newClientState.TrustingPeriod)
				suite.Require().Equal(clientState.MaxClockDrift, newClientState.MaxClockDrift)
				suite.Require().Equal(ibctesting.Checksum, newClientState.Checksum)
				suite.Require().False(newClientState.IsFrozen())

				consState, found := suite.endpoint.GetConsensusState(newClientState.LatestHeight)
				suite.Require().True(found)
				suite.Require().Equal(types.SentinelRoot, consState.Root.GetHash())
				suite.Require().True(upgradedConsState.Timestamp.Equal(consState.Timestamp))
				suite.Require().Equal(upgradedConsState.NextValidatorsHash, consState.NextValidatorsHash)

				suite.Require().Equal(exported.Active, newClientState.Status(suite.ctx(), suite.clientStore()))
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *TypesTestSuite) TestVerifyUpgradeScalesTrustingPeriod() {
	upgradedClient, upgradedConsState := suite.newUpgradedStates(ibctesting.UnbondingPeriod / 2)
	clientProof, consStateProof := suite.commitUpgrade(upgradedClient, upgradedConsState)

	clientState := suite.endpoint.GetClientState()
	err := clientState.VerifyUpgradeAndUpdateState(suite.ctx(), suite.clientStore(), upgradedClient, upgradedConsState, clientProof, consStateProof)
	suite.Require().NoError(err)

	newClientState := suite.endpoint.GetClientState()
	suite.Require().Equal(ibctesting.UnbondingPeriod/2, newClientState.UnbondingPeriod)
	suite.Require().Equal(ibctesting.TrustingPeriod/2, newClientState.TrustingPeriod)
}
