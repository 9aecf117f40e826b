package types_test

import (
	"time"

	"github.com/tendermint/tendermint/crypto/tmhash"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

// updateTo updates the client with a header for the given block trusting the given height.
func (suite *TypesTestSuite) updateTo(b block, trustedHeight clienttypes.Height) {
	_, err := suite.endpoint.Module.UpdateState(suite.ctx(), suite.endpoint.ClientID, types.NewHeaderMessage(suite.headerAt(b, trustedHeight)))
	suite.Require().NoError(err)
}

func (suite *TypesTestSuite) TestCheckForMisbehaviour() {
	var (
		clientMsg     *types.ClientMessage
		initialHeight clienttypes.Height
		storedBlock   block
		newBlock      block
		forkRoot      = tmhash.Sum([]byte("fork"))
	)

	testCases := []struct {
		name     string
		malleate func()
		expFound bool
		expErr   error
	}{
		{
			"no misbehaviour in new header",
			func() {},
			false, nil,
		},
		{
			"no misbehaviour in header already stored",
			func() {
				clientMsg = types.NewHeaderMessage(suite.headerAt(storedBlock, initialHeight))
			},
			false, nil,
		},
		{
			"header conflicts with stored consensus state at the same height",
			func() {
				storedBlock.root = forkRoot
				clientMsg = types.NewHeaderMessage(suite.headerAt(storedBlock, initialHeight))
			},
			true, nil,
		},
		{
			"header time is not after the previous consensus state",
			func() {
				initialConsState, found := suite.endpoint.GetConsensusState(initialHeight)
				suite.Require().True(found)

				newBlock.timestamp = initialConsState.Timestamp.Add(time.Second)
				clientMsg = types.NewHeaderMessage(suite.headerAt(newBlock, initialHeight))
			},
			true, nil,
		},
		{
			"header time is not before the next consensus state",
			func() {
				// store newBlock and submit a header filling the gap below it
				suite.updateTo(newBlock, storedBlock.height)

				gapBlock := storedBlock
				gapBlock.height = storedBlock.height.Increment().(clienttypes.Height)
				suite.Require().True(gapBlock.height.LT(newBlock.height))
				gapBlock.timestamp = newBlock.timestamp
				clientMsg = types.NewHeaderMessage(suite.headerAt(gapBlock, storedBlock.height))
			},
			true, nil,
		},
		{
			"misbehaviour: conflicting headers at the same height",
			func() {
				header1 := suite.headerAt(newBlock, storedBlock.height)
				forkBlock := newBlock
				forkBlock.root = forkRoot
				header2 := suite.headerAt(forkBlock, initialHeight)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			true, nil,
		},
		{
			"misbehaviour: identical headers",
			func() {
				header := suite.headerAt(newBlock, storedBlock.height)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header, header))
			},
			false, nil,
		},
		{
			"misbehaviour: time is not monotonic",
			func() {
				laterBlock := newBlock
				laterBlock.height = newBlock.height.Increment().(clienttypes.Height)
				laterBlock.timestamp = newBlock.timestamp.Add(-time.Second)

				header1 := suite.headerAt(laterBlock, storedBlock.height)
				header2 := suite.headerAt(newBlock, storedBlock.height)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			true, nil,
		},
		{
			"misbehaviour: consistent headers at different heights",
			func() {
				laterBlock := newBlock
				laterBlock.height = newBlock.height.Increment().(clienttypes.Height)
				laterBlock.timestamp = newBlock.timestamp.Add(time.Second)

				header1 := suite.headerAt(laterBlock, storedBlock.height)
				header2 := suite.headerAt(newBlock, storedBlock.height)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			false, nil,
		},
		{
			"misbehaviour: header1 height below header2 height",
			func() {
				header1 := suite.headerAt(storedBlock, initialHeight)
				header2 := suite.headerAt(newBlock, storedBlock.height)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			false, clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"misbehaviour: nil header",
			func() {
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(suite.headerAt(newBlock, storedBlock.height), nil))
			},
			false, clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"misbehaviour: header signed by an untrusted signer set",
			func() {
				signer := ibctesting.NewHeaderSigner(suite.T(), suite.endpoint.Signer.ConsensusType())
				header1 := suite.headerAt(newBlock, storedBlock.height)
				header2 := signer.CreateHeader(ibctesting.ChainID, newBlock.height, storedBlock.height, newBlock.timestamp, forkRoot)
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			false, clienttypes.ErrInvalidValidatorSet,
		},
		{
			"misbehaviour: trusted consensus state not found",
			func() {
				header1 := suite.headerAt(newBlock, storedBlock.height)
				header2 := suite.headerAt(newBlock, clienttypes.NewHeight(0, 1))
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header1, header2))
			},
			false, clienttypes.ErrConsensusStateNotFound,
		},
	}

	for _, consensusType := range ibctesting.ConsensusTypes {
		for _, tc := range testCases {
			tc := tc
			suite.Run(consensusType+": "+tc.name, func() {
				suite.setupClient(consensusType)
				initialHeight = suite.endpoint.LatestHeight()

				storedBlock = suite.commitBlock()
				suite.updateTo(storedBlock, initialHeight)

				suite.commitBlock()
				newBlock = suite.commitBlock()
				clientMsg = types.NewHeaderMessage(suite.headerAt(newBlock, storedBlock.height))

				tc.malleate()

				clientState := suite.endpoint.GetClientState()
				found, err := clientState.CheckForMisbehaviour(suite.ctx(), suite.clientStore(), suite.verifier(clientState), clientMsg)

				if tc.expErr == nil {
					suite.Require().NoError(err)
					suite.Require().Equal(tc.expFound, found)
				} else {
					suite.Require().ErrorIs(err, tc.expErr)
					suite.Require().False(found)
				}
			})
		}
	}
}

func (suite *TypesTestSuite) TestUpdateStateOnMisbehaviour() {
	var (
		clientMsg       *types.ClientMessage
		expFrozenHeight clienttypes.Height
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: fork at the same height",
			func() {},
			nil,
		},
		{
			"success: header conflicting with a stored consensus state",
			func() {
				clientMsg = types.NewHeaderMessage(clientMsg.Misbehaviour.Header2)
				suite.updateTo(block{
					height:    clientMsg.Header.Height,
					timestamp: clientMsg.Header.Timestamp,
					root:      suite.endpoint.Chain.AppHash,
				}, clientMsg.Header.TrustedHeight)
			},
			nil,
		},
		{
			"no misbehaviour",
			func() {
				header := clientMsg.Misbehaviour.Header1
				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(header, header))
			},
			clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"client already frozen",
			func() {
				clientState := suite.endpoint.GetClientState()
				clientState.FrozenHeight = clienttypes.NewHeight(1, 1)
				suite.setClientState(clientState)
			},
			clienttypes.ErrClientFrozen,
		},
		{
			"invalid misbehaviour",
			func() {
				clientMsg.Misbehaviour.Header2.Proof = nil
			},
			clienttypes.ErrInvalidMisbehaviour,
		},
	}

	for _, consensusType := range ibctesting.ConsensusTypes {
		for _, tc := range testCases {
			tc := tc
			suite.Run(consensusType+": "+tc.name, func() {
				suite.setupClient(consensusType)
				trustedHeight := suite.endpoint.LatestHeight()

				b := suite.commitBlock()
				fork := b
				fork.root = tmhash.Sum([]byte("fork"))

				clientMsg = types.NewMisbehaviourMessage(types.NewMisbehaviour(
					suite.headerAt(b, trustedHeight), suite.headerAt(fork, trustedHeight),
				))
				expFrozenHeight = b.height

				tc.malleate()

				prevClientState := suite.endpoint.GetClientState()
				frozenHeight, err := prevClientState.UpdateStateOnMisbehaviour(suite.ctx(), suite.clientStore(), suite.verifier(prevClientState), clientMsg)

				if tc.expErr == nil {
					suite.Require().NoError(err)
					suite.Require().Equal(expFrozenHeight, frozenHeight)

					clientState := suite.endpoint.GetClientState()
					suite.Require().Equal(expFrozenHeight, clientState.FrozenHeight)
					suite.Require().Equal(exported.Frozen, clientState.Status(suite.ctx(), suite.clientStore()))
				} else {
					suite.Require().ErrorIs(err, tc.expErr)
					suite.Require().Equal(prevClientState, suite.endpoint.GetClientState())
				}
			})
		}
	}
}
