package tendermint_test

import (
	"time"

	"github.com/tendermint/tendermint/crypto/tmhash"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/wasm-light-client/modules/core/23-commitment/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	tendermint "github.com/cosmos/wasm-light-client/modules/light-clients/07-tendermint"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

func (suite *TendermintTestSuite) TestConsensusType() {
	suite.Require().Equal(exported.Tendermint, suite.verifier.ConsensusType())
}

func (suite *TendermintTestSuite) TestCheckHeaderValidity() {
	var header *types.Header

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
			"signed header is for another chain",
			func() {
				suite.clientState.ChainID = "otherchain-1"
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"header height does not match the signed header",
			func() {
				header.Height = clienttypes.NewHeight(1, 3)
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"header revision does not match the signed chain id",
			func() {
				header.Height = clienttypes.NewHeight(2, header.Height.RevisionHeight)
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"header timestamp does not match the signed header",
			func() {
				header.Timestamp = header.Timestamp.Add(time.Second)
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"header root does not match the signed app hash",
			func() {
				header.Root = commitmenttypes.NewMerkleRoot(tmhash.Sum([]byte("other root")))
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"header next validators hash does not match the signed header",
			func() {
				header.NextValidatorsHash = tmhash.Sum([]byte("other validators"))
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"validator set does not hash to the signed validators hash",
			func() {
				other := ibctesting.NewTendermintSigner(suite.T(), ibctesting.DefaultValidators)
				otherValSet, err := other.ValSet.ToProto()
				suite.Require().NoError(err)

				proof, err := tendermint.UnmarshalHeaderProof(header.Proof)
				suite.Require().NoError(err)
				proof.ValidatorSet = otherValSet
				header.Proof, err = proof.Marshal()
				suite.Require().NoError(err)
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"proof is not a header proof",
			func() {
				header.Proof = []byte("proof")
			},
			clienttypes.ErrInvalidHeader,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			header = suite.createHeader(clienttypes.NewHeight(1, 2))

			tc.malleate()

			err := suite.verifier.CheckHeaderValidity(suite.clientState, header)
			if tc.expErr == nil {
				suite.Require().NoError(err)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *TendermintTestSuite) TestVerifyQuorum() {
	var header *types.Header

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: adjacent header",
			func() {},
			nil,
		},
		{
			"success: non adjacent header",
			func() {
				header = suite.createHeader(clienttypes.NewHeight(1, 10))
			},
			nil,
		},
		{
			"success: non adjacent header signed by two thirds of the validators",
			func() {
				header = suite.signer.CreateHeaderWithSigners(
					ibctesting.ChainID, clienttypes.NewHeight(1, 10), trustedHeight, suite.headerTime, headerRoot,
					suite.signer.ValSet, suite.signer.Signers[:3],
				)
			},
			nil,
		},
		{
			"trusted validators do not match the trusted consensus state",
			func() {
				other := ibctesting.NewTendermintSigner(suite.T(), ibctesting.DefaultValidators)
				header = suite.signer.CreateHeaderWithSigners(
					ibctesting.ChainID, clienttypes.NewHeight(1, 2), trustedHeight, suite.headerTime, headerRoot,
					other.ValSet, suite.signer.Signers,
				)
			},
			clienttypes.ErrInvalidValidatorSet,
		},
		{
			"new validator set shares no voting power with the trusted validators",
			func() {
				other := ibctesting.NewTendermintSigner(suite.T(), ibctesting.DefaultValidators)
				header = other.CreateHeaderWithSigners(
					ibctesting.ChainID, clienttypes.NewHeight(1, 10), trustedHeight, suite.headerTime, headerRoot,
					suite.signer.ValSet, other.Signers,
				)
			},
			clienttypes.ErrFailedQuorumVerification,
		},
		{
			"adjacent header signed by a different validator set",
			func() {
				other := ibctesting.NewTendermintSigner(suite.T(), ibctesting.DefaultValidators)
				header = other.CreateHeaderWithSigners(
					ibctesting.ChainID, clienttypes.NewHeight(1, 2), trustedHeight, suite.headerTime, headerRoot,
					suite.signer.ValSet, other.Signers,
				)
			},
			clienttypes.ErrFailedQuorumVerification,
		},
		{
			"header is not after the trusted consensus state",
			func() {
				suite.trustedState.Timestamp = suite.headerTime
			},
			clienttypes.ErrFailedQuorumVerification,
		},
		{
			"header is too far in the future",
			func() {
				suite.now = suite.headerTime.Add(-2 * ibctesting.MaxClockDrift)
			},
			clienttypes.ErrFailedQuorumVerification,
		},
		{
			"trusted consensus state is expired",
			func() {
				suite.now = ibctesting.StartTime.Add(ibctesting.TrustingPeriod)
			},
			clienttypes.ErrConsensusStateExpired,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			header = suite.createHeader(clienttypes.NewHeight(1, 2))

			tc.malleate()

			err := suite.verifier.VerifyQuorum(suite.clientState, trustedHeight, suite.trustedState, header, suite.now)
			if tc.expErr == nil {
				suite.Require().NoError(err)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
