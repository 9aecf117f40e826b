/*
Package wasm implements the 08-wasm light client: a Contract answering the
instantiate, sudo and query entry points with JSON messages, and the
LightClientModule through which a host drives it. Header verification is
delegated to the consensus family named by the client state, see
types.ConsensusVerifier.
*/
package wasm
