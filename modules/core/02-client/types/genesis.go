package types

import (
	"errors"

	"github.com/cosmos/wasm-light-client/modules/core/exported"
)

var _ exported.GenesisMetadata = GenesisMetadata{}

// GenesisMetadata defines the genesis type for metadata that clients may return
// to be imported in a successor client.
type GenesisMetadata struct {
	// store key of metadata without clientID-prefix
	Key []byte `json:"key"`
	// metadata value
	Value []byte `json:"value"`
}

// NewGenesisMetadata is a constructor for GenesisMetadata
func NewGenesisMetadata(key, val []byte) GenesisMetadata {
	return GenesisMetadata{
		Key:   key,
		Value: val,
	}
}

// GetKey returns the key of metadata. Implements exported.GenesisMetadata interface.
func (gm GenesisMetadata) GetKey() []byte {
	return gm.Key
}

// GetValue returns the value of metadata. Implements exported.GenesisMetadata interface.
func (gm GenesisMetadata) GetValue() []byte {
	return gm.Value
}

// Validate ensures key and value of metadata are not empty
func (gm GenesisMetadata) Validate() error {
	if len(gm.Key) == 0 {
		return errors.New("genesis metadata key cannot be empty")
	}
	if len(gm.Value) == 0 {
		return errors.New("genesis metadata value cannot be empty")
	}
	return nil
}

// IdentifiedGenesisMetadata has the client metadata with the corresponding client id.
type IdentifiedGenesisMetadata struct {
	ClientID       string            `json:"client_id" yaml:"client_id"`
	ClientMetadata []GenesisMetadata `json:"client_metadata" yaml:"client_metadata"`
}

// NewIdentifiedGenesisMetadata takes in a client ID and list of genesis metadata for that client
// and constructs a new IdentifiedGenesisMetadata.
func NewIdentifiedGenesisMetadata(clientID string, gms []GenesisMetadata) IdentifiedGenesisMetadata {
	return IdentifiedGenesisMetadata{
		ClientID:       clientID,
		ClientMetadata: gms,
	}
}
