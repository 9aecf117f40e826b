package exported

// Status represents the status of a client
type Status string

const (
	// ModuleName is the codespace shared by core errors.
	ModuleName = "ibc"

	// Wasm is the client type under which the light client is registered with the host.
	Wasm string = "08-wasm"

	// Tendermint is the consensus family of chains running Tendermint BFT.
	Tendermint string = "07-tendermint"

	// Attestations is the consensus family of chains whose headers are attested
	// by a fixed set of secp256k1 signers.
	Attestations string = "10-attestations"

	// Active is a status type of a client. An active client is allowed to be used.
	Active Status = "Active"

	// Frozen is a status type of a client. A frozen client is not allowed to be used.
	Frozen Status = "Frozen"

	// Expired is a status type of a client. An expired client is not allowed to be used.
	Expired Status = "Expired"

	// Unknown indicates there was an error in determining the status of a client.
	Unknown Status = "Unknown"
)

// Height is a wrapper interface over clienttypes.Height
// all clients must use the concrete implementation in types
type Height interface {
	IsZero() bool
	LT(Height) bool
	LTE(Height) bool
	EQ(Height) bool
	GT(Height) bool
	GTE(Height) bool
	GetRevisionNumber() uint64
	GetRevisionHeight() uint64
	Increment() Height
	Decrement() (Height, bool)
	String() string
}

// Path defines the interface for a commitment path used to look up a value
// in the counterparty state.
type Path interface {
	String() string
	Empty() bool
}

// Root is the commitment root of a counterparty state.
// A root is constructed from a set of key-value pairs,
// and the inclusion or non-inclusion of an arbitrary key-value pair
// can be proven with the proof.
type Root interface {
	GetHash() []byte
	Empty() bool
}

// GenesisMetadata is a wrapper interface over clienttypes.GenesisMetadata
// all clients must use the concrete implementation in types
type GenesisMetadata interface {
	// return store key that contains metadata without clientID-prefix
	GetKey() []byte
	// returns metadata value
	GetValue() []byte
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
