package attestations

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

var (
	stringType, _  = abi.NewType("string", "", nil)
	uint64Type, _  = abi.NewType("uint64", "", nil)
	bytesType, _   = abi.NewType("bytes", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)

	stateAttestationArgs = abi.Arguments{
		{Name: "chainId", Type: stringType},
		{Name: "revisionNumber", Type: uint64Type},
		{Name: "revisionHeight", Type: uint64Type},
		{Name: "timestamp", Type: uint64Type},
		{Name: "root", Type: bytesType},
		{Name: "nextAttestorSetHash", Type: bytes32Type},
	}
)

// StateAttestation is the statement signed by the attestors for a header.
// This type uses ABI encoding (not Protobuf) so that it can be produced and
// checked by EVM contracts.
type StateAttestation struct {
	ChainID        string
	RevisionNumber uint64
	RevisionHeight uint64
	// Timestamp in unix nanoseconds
	Timestamp           uint64
	Root                []byte
	NextAttestorSetHash [32]byte
}

// NewStateAttestation returns the attestation of the header for the given chain.
func NewStateAttestation(chainID string, header *types.Header) StateAttestation {
	return StateAttestation{
		ChainID:             chainID,
		RevisionNumber:      header.Height.RevisionNumber,
		RevisionHeight:      header.Height.RevisionHeight,
		Timestamp:           uint64(header.Timestamp.UnixNano()),
		Root:                header.Root.GetHash(),
		NextAttestorSetHash: bytesToBytes32(header.NextValidatorsHash),
	}
}

// ABIEncode returns the ABI encoding of the attestation.
func (sa StateAttestation) ABIEncode() ([]byte, error) {
	return stateAttestationArgs.Pack(
		sa.ChainID, sa.RevisionNumber, sa.RevisionHeight, sa.Timestamp, sa.Root, sa.NextAttestorSetHash,
	)
}

// SignBytes returns the keccak256 digest signed by the attestors.
func (sa StateAttestation) SignBytes() ([]byte, error) {
	bz, err := sa.ABIEncode()
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidAttestationData, "failed to ABI encode state attestation: %v", err)
	}
	return crypto.Keccak256(bz), nil
}

// ABIDecodeStateAttestation decodes an ABI encoded state attestation.
func ABIDecodeStateAttestation(data []byte) (*StateAttestation, error) {
	unpacked, err := stateAttestationArgs.Unpack(data)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidAttestationData, "failed to ABI decode state attestation: %v", err)
	}

	if len(unpacked) != len(stateAttestationArgs) {
		return nil, sdkerrors.Wrapf(ErrInvalidAttestationData, "invalid state attestation: expected %d fields", len(stateAttestationArgs))
	}

	chainID, ok := unpacked[0].(string)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid chain id type")
	}
	revisionNumber, ok := unpacked[1].(uint64)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid revision number type")
	}
	revisionHeight, ok := unpacked[2].(uint64)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid revision height type")
	}
	timestamp, ok := unpacked[3].(uint64)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid timestamp type")
	}
	root, ok := unpacked[4].([]byte)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid root type")
	}
	nextAttestorSetHash, ok := unpacked[5].([32]byte)
	if !ok {
		return nil, sdkerrors.Wrap(ErrInvalidAttestationData, "invalid next attestor set hash type")
	}

	return &StateAttestation{
		ChainID:             chainID,
		RevisionNumber:      revisionNumber,
		RevisionHeight:      revisionHeight,
		Timestamp:           timestamp,
		Root:                root,
		NextAttestorSetHash: nextAttestorSetHash,
	}, nil
}

func bytesToBytes32(b []byte) [32]byte {
	var result [32]byte
	copy(result[:], b)
	return result
}
