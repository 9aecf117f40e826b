package types_test

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

// createSubstitute creates a second client from the given state, using the
// latest block of the chain as its consensus state.
func (suite *TypesTestSuite) createSubstitute(clientState *types.ClientState, consensusState *types.ConsensusState) sdk.KVStore {
	subjectClientID := suite.endpoint.ClientID
	defer func() { suite.endpoint.ClientID = subjectClientID }()

	suite.endpoint.ClientID = ibctesting.SecondClientID
	suite.Require().NoError(suite.endpoint.CreateClientWithStates(clientState, consensusState))

	return suite.endpoint.Host.ClientStore(ibctesting.SecondClientID)
}

func (suite *TypesTestSuite) freezeSubject() {
	clientState := suite.endpoint.GetClientState()
	clientState.FrozenHeight = clientState.LatestHeight
	suite.setClientState(clientState)
}

func (suite *TypesTestSuite) TestCheckSubstituteAndUpdateState() {
	var (
		substituteClientState    *types.ClientState
		substituteConsensusState *types.ConsensusState
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: frozen subject",
			func() {
				suite.freezeSubject()
			},
			nil,
		},
		{
			"success: expired subject",
			func() {
				subjectConsState, found := suite.endpoint.GetConsensusState(suite.endpoint.LatestHeight())
				suite.Require().True(found)

				now := subjectConsState.Timestamp.Add(ibctesting.TrustingPeriod)
				suite.endpoint.Host.SetTime(now)
				substituteConsensusState.Timestamp = now.Add(-time.Minute)
			},
			nil,
		},
		{
			"success: substitute with different chain id and trusting period",
			func() {
				suite.freezeSubject()
				substituteClientState.ChainID = "forkchain-1"
				substituteClientState.TrustingPeriod = ibctesting.TrustingPeriod / 2
			},
			nil,
		},
		{
			"subject is active",
			func() {},
			clienttypes.ErrInvalidRecoveryClient,
		},
		{
			"substitute is frozen",
			func() {
				suite.freezeSubject()
				substituteClientState.FrozenHeight = substituteClientState.LatestHeight
			},
			clienttypes.ErrClientNotActive,
		},
		{
			"substitute has a different unbonding period",
			func() {
				suite.freezeSubject()
				substituteClientState.UnbondingPeriod = ibctesting.UnbondingPeriod + time.Hour
			},
			clienttypes.ErrInvalidSubstitute,
		},
		{
			"substitute has a different update policy",
			func() {
				suite.freezeSubject()
				substituteClientState.UpdatePolicy = types.UpdatePolicyOutOfOrder
			},
			clienttypes.ErrInvalidSubstitute,
		},
		{
			"substitute has a different consensus type",
			func() {
				suite.freezeSubject()
				substituteClientState.ConsensusType = exported.Attestations
			},
			clienttypes.ErrInvalidSubstitute,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()

			suite.commitBlock()
			substituteClientState = suite.endpoint.DefaultClientState()
			substituteConsensusState = suite.endpoint.CurrentConsensusState()

			tc.malleate()

			substituteClientStore := suite.createSubstitute(substituteClientState, substituteConsensusState)
			subjectClientState := suite.endpoint.GetClientState()

			err := subjectClientState.CheckSubstituteAndUpdateState(suite.ctx(), suite.clientStore(), substituteClientStore, substituteClientState)

			if tc.expErr == nil {
				suite.Require().NoError(err)

				clientState := suite.endpoint.GetClientState()
				suite.Require().False(clientState.IsFrozen())
				suite.Require().Equal(substituteClientState.LatestHeight, clientState.LatestHeight)
				suite.Require().Equal(substituteClientState.ChainID, clientState.ChainID)
				suite.Require().Equal(substituteClientState.TrustingPeriod, clientState.TrustingPeriod)
				suite.Require().Equal(exported.Active, clientState.Status(suite.ctx(), suite.clientStore()))

				consState, found := suite.endpoint.GetConsensusState(clientState.LatestHeight)
				suite.Require().True(found)
				suite.Require().True(substituteConsensusState.Equal(consState))

				expProcessedTime, found := types.GetProcessedTime(substituteClientStore, clientState.LatestHeight)
				suite.Require().True(found)
				processedTime, found := types.GetProcessedTime(suite.clientStore(), clientState.LatestHeight)
				suite.Require().True(found)
				suite.Require().Equal(expProcessedTime, processedTime)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}

	suite.Run("nil substitute", func() {
		suite.SetupTest()
		suite.freezeSubject()

		subjectClientState := suite.endpoint.GetClientState()
		err := subjectClientState.CheckSubstituteAndUpdateState(suite.ctx(), suite.clientStore(), suite.clientStore(), nil)
		suite.Require().ErrorIs(err, clienttypes.ErrInvalidSubstitute)
	})
}

func (suite *TypesTestSuite) TestIsMatchingClientState() {
	subject := ibctesting.NewClientState(exported.Tendermint, clienttypes.NewHeight(1, 10))
	substitute := ibctesting.NewClientState(exported.Tendermint, clienttypes.NewHeight(1, 20))
	substitute.FrozenHeight = clienttypes.NewHeight(1, 5)
	substitute.TrustingPeriod = time.Hour
	substitute.ChainID = "testchain-7"
	suite.Require().True(types.IsMatchingClientState(*subject, *substitute))

	substitute.UpdatePolicy = ""
	suite.Require().True(types.IsMatchingClientState(*subject, *substitute), "empty update policy is strict")

	substitute.MaxClockDrift = time.Minute
	suite.Require().False(types.IsMatchingClientState(*subject, *substitute))
}
