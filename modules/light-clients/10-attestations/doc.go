/*
Package attestations verifies headers attested by a fixed set of secp256k1
signers. The trusted consensus state commits to the attestor set through the
keccak256 hash of the sorted attestor addresses; a header is accepted once
enough attestors, as required by the client trust level, signed the ABI
encoded state attestation of the header.
*/
package attestations
