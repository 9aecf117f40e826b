package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// IBC client sentinel errors
var (
	ErrClientExists             = sdkerrors.Register(SubModuleName, 2, "light client already exists")
	ErrInvalidClient            = sdkerrors.Register(SubModuleName, 3, "light client is invalid")
	ErrClientNotFound           = sdkerrors.Register(SubModuleName, 4, "light client not found")
	ErrClientFrozen             = sdkerrors.Register(SubModuleName, 5, "light client is frozen due to misbehaviour")
	ErrInvalidClientMetadata    = sdkerrors.Register(SubModuleName, 6, "invalid client metadata")
	ErrConsensusStateNotFound   = sdkerrors.Register(SubModuleName, 7, "consensus state not found")
	ErrInvalidConsensus         = sdkerrors.Register(SubModuleName, 8, "invalid consensus state")
	ErrClientTypeNotFound       = sdkerrors.Register(SubModuleName, 9, "client type not found")
	ErrInvalidClientType        = sdkerrors.Register(SubModuleName, 10, "invalid client type")
	ErrInvalidHeader            = sdkerrors.Register(SubModuleName, 11, "invalid client header")
	ErrInvalidMisbehaviour      = sdkerrors.Register(SubModuleName, 12, "invalid light client misbehaviour")
	ErrInvalidClientMessage     = sdkerrors.Register(SubModuleName, 13, "invalid client message")
	ErrInvalidValidatorSet      = sdkerrors.Register(SubModuleName, 14, "invalid validator set")
	ErrConsensusStateExpired    = sdkerrors.Register(SubModuleName, 15, "consensus state has expired")
	ErrClockDriftExceeded       = sdkerrors.Register(SubModuleName, 16, "header timestamp exceeds max clock drift")
	ErrNonMonotonicHeight       = sdkerrors.Register(SubModuleName, 17, "header height or timestamp is not monotonic")
	ErrInvalidUpgradeClient     = sdkerrors.Register(SubModuleName, 18, "invalid client upgrade")
	ErrClientNotActive          = sdkerrors.Register(SubModuleName, 19, "client state is not active")
	ErrInvalidRecoveryClient    = sdkerrors.Register(SubModuleName, 20, "invalid recovery client")
	ErrInvalidSubstitute        = sdkerrors.Register(SubModuleName, 21, "invalid client state substitute")
	ErrProcessedTimeNotFound    = sdkerrors.Register(SubModuleName, 22, "processed time not found")
	ErrProcessedHeightNotFound  = sdkerrors.Register(SubModuleName, 23, "processed height not found")
	ErrDelayPeriodNotPassed     = sdkerrors.Register(SubModuleName, 24, "packet-specified delay period has not been reached")
	ErrInvalidTrustLevel        = sdkerrors.Register(SubModuleName, 25, "invalid trust level")
	ErrInvalidTrustingPeriod    = sdkerrors.Register(SubModuleName, 26, "invalid trusting period")
	ErrInvalidUnbondingPeriod   = sdkerrors.Register(SubModuleName, 27, "invalid unbonding period")
	ErrInvalidMaxClockDrift     = sdkerrors.Register(SubModuleName, 28, "invalid max clock drift")
	ErrInvalidProofSpecs        = sdkerrors.Register(SubModuleName, 29, "invalid proof specs")
	ErrInvalidChainID           = sdkerrors.Register(SubModuleName, 30, "invalid chain-id")
	ErrRouteNotFound            = sdkerrors.Register(SubModuleName, 31, "consensus verifier route not found")
	ErrFailedQuorumVerification = sdkerrors.Register(SubModuleName, 32, "failed to verify header signatures")
)
