package types

import (
	"encoding/json"
	"fmt"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gogo/protobuf/proto"

	"github.com/cosmos/wasm-light-client/internal/wire"
	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
	ibcerrors "github.com/cosmos/wasm-light-client/modules/core/errors"
)

// The persisted envelopes follow ibc.lightclients.wasm.v1:
//
//	ClientState    { bytes data = 1; bytes checksum = 2; Height latest_height = 3; }
//	ConsensusState { bytes data = 1; }
//	Height         { uint64 revision_number = 1; uint64 revision_height = 2; }
//
// wrapped in a google.protobuf.Any. The data fields hold the JSON encoding of
// ClientState and ConsensusState.

// MarshalClientState encodes the client state into its wasm envelope.
func MarshalClientState(clientState *ClientState) ([]byte, error) {
	if clientState == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidClient, "client state cannot be nil")
	}

	data, err := json.Marshal(clientState)
	if err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}

	height, err := marshalHeight(clientState.LatestHeight)
	if err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}

	buf := proto.NewBuffer(nil)
	if err := wire.AppendBytes(buf, 1, data); err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}
	if err := wire.AppendBytes(buf, 2, clientState.Checksum); err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}
	if err := wire.AppendBytes(buf, 3, height); err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}

	any := &codectypes.Any{TypeUrl: ClientStateTypeURL, Value: buf.Bytes()}
	return any.Marshal()
}

// UnmarshalClientState decodes a wasm client state envelope.
func UnmarshalClientState(bz []byte) (*ClientState, error) {
	value, err := unpackAny(bz, ClientStateTypeURL)
	if err != nil {
		return nil, err
	}

	fields, err := wire.DecodeFields(value)
	if err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrUnpackAny, err.Error())
	}

	var (
		data, checksum []byte
		latestHeight   clienttypes.Height
	)
	for _, field := range fields {
		switch field.Number {
		case 1:
			data = field.Bytes
		case 2:
			checksum = field.Bytes
		case 3:
			if latestHeight, err = unmarshalHeight(field.Bytes); err != nil {
				return nil, sdkerrors.Wrap(ibcerrors.ErrUnpackAny, err.Error())
			}
		}
	}

	clientState := &ClientState{}
	if err := json.Unmarshal(data, clientState); err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "failed to unmarshal client state data: %v", err)
	}
	if !clientState.LatestHeight.EQ(latestHeight) {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClient, "envelope latest height %s does not match client state latest height %s", latestHeight, clientState.LatestHeight)
	}
	clientState.Checksum = checksum

	return clientState, nil
}

// MustMarshalClientState attempts to encode a client state and panics on error.
func MustMarshalClientState(clientState *ClientState) []byte {
	bz, err := MarshalClientState(clientState)
	if err != nil {
		panic(fmt.Errorf("failed to encode client state: %w", err))
	}
	return bz
}

// MustUnmarshalClientState attempts to decode a client state and panics on error.
func MustUnmarshalClientState(bz []byte) *ClientState {
	clientState, err := UnmarshalClientState(bz)
	if err != nil {
		panic(fmt.Errorf("failed to decode client state: %w", err))
	}
	return clientState
}

// MarshalConsensusState encodes the consensus state into its wasm envelope.
func MarshalConsensusState(consensusState *ConsensusState) ([]byte, error) {
	if consensusState == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "consensus state cannot be nil")
	}

	data, err := json.Marshal(consensusState)
	if err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}

	buf := proto.NewBuffer(nil)
	if err := wire.AppendBytes(buf, 1, data); err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrPackAny, err.Error())
	}

	any := &codectypes.Any{TypeUrl: ConsensusStateTypeURL, Value: buf.Bytes()}
	return any.Marshal()
}

// UnmarshalConsensusState decodes a wasm consensus state envelope.
func UnmarshalConsensusState(bz []byte) (*ConsensusState, error) {
	value, err := unpackAny(bz, ConsensusStateTypeURL)
	if err != nil {
		return nil, err
	}

	fields, err := wire.DecodeFields(value)
	if err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrUnpackAny, err.Error())
	}

	var data []byte
	for _, field := range fields {
		if field.Number == 1 {
			data = field.Bytes
		}
	}

	consensusState := &ConsensusState{}
	if err := json.Unmarshal(data, consensusState); err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "failed to unmarshal consensus state data: %v", err)
	}

	return consensusState, nil
}

// MustMarshalConsensusState attempts to encode a consensus state and panics on error.
func MustMarshalConsensusState(consensusState *ConsensusState) []byte {
	bz, err := MarshalConsensusState(consensusState)
	if err != nil {
		panic(fmt.Errorf("failed to encode consensus state: %w", err))
	}
	return bz
}

// MustUnmarshalConsensusState attempts to decode a consensus state and panics on error.
func MustUnmarshalConsensusState(bz []byte) *ConsensusState {
	consensusState, err := UnmarshalConsensusState(bz)
	if err != nil {
		panic(fmt.Errorf("failed to decode consensus state: %w", err))
	}
	return consensusState
}

func unpackAny(bz []byte, typeURL string) ([]byte, error) {
	var any codectypes.Any
	if err := any.Unmarshal(bz); err != nil {
		return nil, sdkerrors.Wrap(ibcerrors.ErrUnpackAny, err.Error())
	}
	if any.TypeUrl != typeURL {
		return nil, sdkerrors.Wrapf(ibcerrors.ErrInvalidType, "expected %s, got %s", typeURL, any.TypeUrl)
	}
	return any.Value, nil
}

func marshalHeight(height clienttypes.Height) ([]byte, error) {
	buf := proto.NewBuffer(nil)
	if err := wire.AppendVarint(buf, 1, height.RevisionNumber); err != nil {
		return nil, err
	}
	if err := wire.AppendVarint(buf, 2, height.RevisionHeight); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalHeight(bz []byte) (clienttypes.Height, error) {
	fields, err := wire.DecodeFields(bz)
	if err != nil {
		return clienttypes.Height{}, err
	}

	var height clienttypes.Height
	for _, field := range fields {
		switch field.Number {
		case 1:
			height.RevisionNumber = field.Varint
		case 2:
			height.RevisionHeight = field.Varint
		}
	}
	return height, nil
}
