package types

import "github.com/cosmos/wasm-light-client/modules/core/exported"

const (
	// ModuleName for the wasm client
	ModuleName = exported.Wasm

	// ClientStateTypeURL is the type url of the persisted client state envelope
	ClientStateTypeURL = "/ibc.lightclients.wasm.v1.ClientState"

	// ConsensusStateTypeURL is the type url of the persisted consensus state envelope
	ConsensusStateTypeURL = "/ibc.lightclients.wasm.v1.ConsensusState"

	// KeyIterateConsensusStatePrefix is the prefix of the ordered index over consensus state heights
	KeyIterateConsensusStatePrefix = "iterateConsensusStates"

	// UpdatePolicyStrict only accepts headers above the latest height.
	UpdatePolicyStrict = "strict"

	// UpdatePolicyOutOfOrder also accepts headers filling gaps between stored heights.
	UpdatePolicyOutOfOrder = "out_of_order"

	// MaxChainIDLen is the maximum length of a chain identifier
	MaxChainIDLen = 50

	// ChecksumLength is the length of a contract checksum
	ChecksumLength = 32
)

var (
	// KeyProcessedTime is appended to consensus state key to store the processed time
	KeyProcessedTime = []byte("/processedTime")
	// KeyProcessedHeight is appended to consensus state key to store the processed height
	KeyProcessedHeight = []byte("/processedHeight")

	// SentinelRoot is used as a stand-in root value for the consensus state set at the upgrade height
	SentinelRoot = []byte("sentinel_root")
)
