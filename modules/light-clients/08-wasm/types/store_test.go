package types_test

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	host "github.com/cosmos/wasm-light-client/modules/core/24-host"
	"github.com/cosmos/wasm-light-client/modules/core/exported"
	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
	ibctesting "github.com/cosmos/wasm-light-client/testing"
)

func (suite *TypesTestSuite) TestConsensusStateIteration() {
	initialHeight := suite.endpoint.LatestHeight()
	secondHeight := suite.endpoint.UpdateClient()
	thirdHeight := suite.endpoint.UpdateClient()

	var heights []exported.Height
	types.IterateConsensusStateAscending(suite.clientStore(), func(height exported.Height) bool {
		heights = append(heights, height)
		return false
	})
	suite.Require().Equal([]exported.Height{initialHeight, secondHeight, thirdHeight}, heights)

	heights = nil
	types.IterateConsensusStateAscending(suite.clientStore(), func(height exported.Height) bool {
		heights = append(heights, height)
		return true
	})
	suite.Require().Equal([]exported.Height{initialHeight}, heights)

	suite.Require().Equal(host.ConsensusStateKey(secondHeight), types.GetIterationKey(suite.clientStore(), secondHeight))
	suite.Require().Equal(secondHeight, types.GetHeightFromIterationKey(types.IterationKey(secondHeight)))

	secondConsState, found := suite.endpoint.GetConsensusState(secondHeight)
	suite.Require().True(found)
	thirdConsState, found := suite.endpoint.GetConsensusState(thirdHeight)
	suite.Require().True(found)

	prev, found := types.GetPreviousConsensusState(suite.clientStore(), thirdHeight)
	suite.Require().True(found)
	suite.Require().True(secondConsState.Equal(prev))

	prevHeight, found := types.GetPreviousConsensusStateHeight(suite.clientStore(), thirdHeight)
	suite.Require().True(found)
	suite.Require().Equal(secondHeight, prevHeight)

	_, found = types.GetPreviousConsensusState(suite.clientStore(), initialHeight)
	suite.Require().False(found)

	next, found := types.GetNextConsensusState(suite.clientStore(), secondHeight)
	suite.Require().True(found)
	suite.Require().True(thirdConsState.Equal(next))

	// a height between stored heights resolves to its neighbours
	gap := clienttypes.NewHeight(thirdHeight.RevisionNumber, thirdHeight.RevisionHeight+10)
	prev, found = types.GetPreviousConsensusState(suite.clientStore(), gap)
	suite.Require().True(found)
	suite.Require().True(thirdConsState.Equal(prev))

	_, found = types.GetNextConsensusState(suite.clientStore(), thirdHeight)
	suite.Require().False(found)
}

func (suite *TypesTestSuite) TestProcessedMetadata() {
	height := suite.endpoint.LatestHeight()

	processedTime, found := types.GetProcessedTime(suite.clientStore(), height)
	suite.Require().True(found)
	suite.Require().Equal(uint64(suite.ctx().BlockTime().UnixNano()), processedTime)

	processedHeight, found := types.GetProcessedHeight(suite.clientStore(), height)
	suite.Require().True(found)
	suite.Require().Equal(suite.endpoint.Host.Height(), processedHeight)

	missing := height.Increment()
	_, found = types.GetProcessedTime(suite.clientStore(), missing)
	suite.Require().False(found)
	_, found = types.GetProcessedHeight(suite.clientStore(), missing)
	suite.Require().False(found)
}

func (suite *TypesTestSuite) TestMigrateClientWrappedStore() {
	var (
		subjectStore    sdk.KVStore
		substituteStore sdk.KVStore
		wrappedStore    sdk.KVStore
	)

	prefixed := func(prefix, key []byte) []byte {
		return append(append([]byte{}, prefix...), key...)
	}

	setup := func() {
		suite.SetupTest()
		subjectStore = suite.clientStore()
		substituteStore = suite.endpoint.Host.ClientStore(ibctesting.SecondClientID)
		substituteStore.Set([]byte("key"), []byte("substitute-value"))
		wrappedStore = types.NewMigrateClientWrappedStore(subjectStore, substituteStore)
	}

	suite.Run("reads from both stores", func() {
		setup()

		subjectKey := prefixed(types.SubjectPrefix, host.ClientStateKey())
		suite.Require().True(wrappedStore.Has(subjectKey))
		suite.Require().Equal(subjectStore.Get(host.ClientStateKey()), wrappedStore.Get(subjectKey))

		substituteKey := prefixed(types.SubstitutePrefix, []byte("key"))
		suite.Require().True(wrappedStore.Has(substituteKey))
		suite.Require().Equal([]byte("substitute-value"), wrappedStore.Get(substituteKey))
	})

	suite.Run("writes to the subject store", func() {
		setup()

		wrappedStore.Set(prefixed(types.SubjectPrefix, []byte("new")), []byte("value"))
		suite.Require().Equal([]byte("value"), subjectStore.Get([]byte("new")))
		suite.Require().False(substituteStore.Has([]byte("new")))

		wrappedStore.Delete(prefixed(types.SubjectPrefix, []byte("new")))
		suite.Require().False(subjectStore.Has([]byte("new")))
	})

	suite.Run("iterates over a single store", func() {
		setup()

		start := prefixed(types.SubstitutePrefix, []byte("a"))
		end := prefixed(types.SubstitutePrefix, []byte("z"))
		iterator := wrappedStore.Iterator(start, end)
		defer iterator.Close()

		suite.Require().True(iterator.Valid())
		suite.Require().Equal([]byte("key"), iterator.Key())
		iterator.Next()
		suite.Require().False(iterator.Valid())
	})

	suite.Run("rejects writes to the substitute store", func() {
		setup()

		suite.Require().Panics(func() {
			wrappedStore.Set(prefixed(types.SubstitutePrefix, []byte("key")), []byte("value"))
		})
		suite.Require().Panics(func() {
			wrappedStore.Delete(prefixed(types.SubstitutePrefix, []byte("key")))
		})
	})

	suite.Run("rejects keys without a prefix", func() {
		setup()

		suite.Require().Panics(func() { wrappedStore.Get([]byte("key")) })
		suite.Require().Panics(func() { wrappedStore.Has([]byte("key")) })
		suite.Require().Panics(func() { wrappedStore.Set([]byte("key"), []byte("value")) })
	})

	suite.Run("rejects iteration across stores", func() {
		setup()

		suite.Require().Panics(func() {
			wrappedStore.Iterator(prefixed(types.SubjectPrefix, []byte("a")), prefixed(types.SubstitutePrefix, []byte("z")))
		})
		suite.Require().Panics(func() {
			wrappedStore.ReverseIterator(prefixed(types.SubjectPrefix, []byte("a")), prefixed(types.SubstitutePrefix, []byte("z")))
		})
	})

	suite.Run("rejects nil stores", func() {
		setup()

		suite.Require().Panics(func() { types.NewMigrateClientWrappedStore(nil, substituteStore) })
		suite.Require().Panics(func() { types.NewMigrateClientWrappedStore(subjectStore, nil) })
	})
}
