/*
Package tendermint verifies headers of counterparty chains running Tendermint
BFT. The header proof carries the signed header, the validator set that signed
it and the validator set trusted at the trusted height; quorum is checked with
the tendermint light client verification (adjacent and skipping).
*/
package tendermint
