/*
Package client implements the ICS 02 - Client Semantics specification
(https://github.com/cosmos/ibc/tree/master/spec/core/ics-002-client-semantics)
for a host whose clients are all wasm light clients. The keeper assigns client
identifiers, routes client messages through the light client module and emits
the client lifecycle events. ExportGenesis snapshots the clients of the host.
*/
package client
