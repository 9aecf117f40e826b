package types

import (
	"fmt"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// ConsensusVerifier checks the consensus specific evidence carried in
// Header.Proof. Implementations must be deterministic and must not keep state
// between calls.
type ConsensusVerifier interface {
	// ConsensusType returns the consensus family handled by the verifier.
	ConsensusType() string

	// CheckHeaderValidity performs the stateless checks binding the proof to
	// the header fields.
	CheckHeaderValidity(clientState *ClientState, header *Header) error

	// VerifyQuorum verifies that the header was signed by enough of the
	// validators trusted at trustedHeight.
	VerifyQuorum(
		clientState *ClientState, trustedHeight clienttypes.Height,
		trustedConsensusState *ConsensusState, header *Header, now time.Time,
	) error
}

// Router maps consensus families to their verifiers.
type Router struct {
	routes map[string]ConsensusVerifier
}

// NewRouter returns a router with the given verifiers registered.
func NewRouter(verifiers ...ConsensusVerifier) *Router {
	rtr := &Router{
		routes: make(map[string]ConsensusVerifier),
	}
	for _, v := range verifiers {
		rtr.AddRoute(v)
	}
	return rtr
}

// AddRoute registers a verifier for its consensus family. It panics if the
// family is already registered.
func (rtr *Router) AddRoute(verifier ConsensusVerifier) *Router {
	consensusType := verifier.ConsensusType()
	if rtr.HasRoute(consensusType) {
		panic(fmt.Errorf("route %s has already been registered", consensusType))
	}

	rtr.routes[consensusType] = verifier
	return rtr
}

// HasRoute returns true if a verifier is registered for the consensus family.
func (rtr *Router) HasRoute(consensusType string) bool {
	_, ok := rtr.routes[consensusType]
	return ok
}

// GetRoute returns the verifier registered for the consensus family.
func (rtr *Router) GetRoute(consensusType string) (ConsensusVerifier, error) {
	verifier, ok := rtr.routes[consensusType]
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrRouteNotFound, "no verifier registered for consensus type %s", consensusType)
	}
	return verifier, nil
}
