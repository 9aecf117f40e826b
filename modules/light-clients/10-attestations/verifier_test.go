package attestations_test

import (
	"crypto/ecdsa"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	attestations "github.com/cosmos/wasm-light-client/modules/light-clients/10-attestations"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

func (suite *AttestationsTestSuite) TestConsensusType() {
	suite.Require().Equal(exported.Attestations, suite.verifier.ConsensusType())
}

func (suite *AttestationsTestSuite) TestCheckHeaderValidity() {
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
			"proof is not an attestation proof",
			func() {
				header.Proof = []byte("proof")
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"proof has no signatures",
			func() {
				proof := suite.proof(header)
				proof.Signatures = nil
				suite.setProof(header, proof)
			},
			clienttypes.ErrInvalidHeader,
		},
		{
			"proof lists a duplicate attestor",
			func() {
				proof := suite.proof(header)
				proof.Attestors = append(proof.Attestors, proof.Attestors[0])
				suite.setProof(header, proof)
			},
			clienttypes.ErrInvalidHeader,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			header = suite.createHeader()

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

func (suite *AttestationsTestSuite) TestVerifyQuorum() {
	var header *types.Header

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: every attestor signed",
			func() {},
			nil,
		},
		{
			"success: signatures meet the trust level",
			func() {
				header = suite.attestors.CreateHeaderWithSigners(
					ibctesting.ChainID, headerHeight, trustedHeight, suite.headerTime, headerRoot, suite.attestors.Keys[:2],
				)
			},
			nil,
		},
		{
			"attestor set does not match the trusted consensus state",
			func() {
				other := ibctesting.NewAttestors(suite.T(), ibctesting.DefaultAttestors)
				header = other.CreateHeader(ibctesting.ChainID, headerHeight, trustedHeight, suite.headerTime, headerRoot)
			},
			clienttypes.ErrInvalidValidatorSet,
		},
		{
			"quorum not met",
			func() {
				suite.clientState.TrustLevel = types.Fraction{Numerator: 2, Denominator: 3}
				header = suite.attestors.CreateHeaderWithSigners(
					ibctesting.ChainID, headerHeight, trustedHeight, suite.headerTime, headerRoot, suite.attestors.Keys[:2],
				)
			},
			attestations.ErrInvalidQuorum,
		},
		{
			"quorum not met at a large equivalent trust level",
			func() {
				suite.clientState.TrustLevel = types.Fraction{Numerator: 1 << 62, Denominator: 1 << 62}
				header = suite.attestors.CreateHeaderWithSigners(
					ibctesting.ChainID, headerHeight, trustedHeight, suite.headerTime, headerRoot, suite.attestors.Keys[:1],
				)
			},
			attestations.ErrInvalidQuorum,
		},
		{
			"duplicate signer",
			func() {
				key := suite.attestors.Keys[0]
				header = suite.attestors.CreateHeaderWithSigners(
					ibctesting.ChainID, headerHeight, trustedHeight, suite.headerTime, headerRoot, []*ecdsa.PrivateKey{key, key},
				)
			},
			attestations.ErrDuplicateSigner,
		},
		{
			"signer is not an attestor",
			func() {
				other := ibctesting.NewAttestors(suite.T(), 1)
				proof := suite.proof(header)
				proof.Signatures[0] = other.Sign(ibctesting.ChainID, header, other.Keys)[0]
				suite.setProof(header, proof)
			},
			attestations.ErrUnknownSigner,
		},
		{
			"signatures do not cover the header",
			func() {
				header.Timestamp = header.Timestamp.Add(ibctesting.BlockTime)
			},
			attestations.ErrUnknownSigner,
		},
		{
			"signatures are for another chain",
			func() {
				suite.clientState.ChainID = "otherchain-1"
			},
			attestations.ErrUnknownSigner,
		},
		{
			"signature has invalid length",
			func() {
				proof := suite.proof(header)
				proof.Signatures[0] = proof.Signatures[0][1:]
				suite.setProof(header, proof)
			},
			attestations.ErrInvalidSignature,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest()
			header = suite.createHeader()

			tc.malleate()

			err := suite.verifier.VerifyQuorum(suite.clientState, trustedHeight, suite.trustedState, header, suite.headerTime)
			if tc.expErr == nil {
				suite.Require().NoError(err)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
