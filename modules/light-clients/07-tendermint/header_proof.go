package tendermint

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gogo/protobuf/proto"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/cosmos/wasm-light-client/internal/wire"
	clienttypes "github.com/cosmos/wasm-light-client/modules/core/02-client/types"
)

// HeaderProof is the tendermint evidence carried in the Proof field of a
// wasm header. It is encoded as a protobuf message with the fields
// signed_header = 1, validator_set = 2 and trusted_validators = 3.
type HeaderProof struct {
	SignedHeader      *tmproto.SignedHeader
	ValidatorSet      *tmproto.ValidatorSet
	TrustedValidators *tmproto.ValidatorSet
}

// Marshal encodes the header proof.
func (hp HeaderProof) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	if hp.SignedHeader != nil {
		if err := wire.AppendMessage(buf, 1, hp.SignedHeader); err != nil {
			return nil, err
		}
	}
	if hp.ValidatorSet != nil {
		if err := wire.AppendMessage(buf, 2, hp.ValidatorSet); err != nil {
			return nil, err
		}
	}
	if hp.TrustedValidators != nil {
		if err := wire.AppendMessage(buf, 3, hp.TrustedValidators); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalHeaderProof decodes a header proof. All three fields are required.
func UnmarshalHeaderProof(bz []byte) (*HeaderProof, error) {
	fields, err := wire.DecodeFields(bz)
	if err != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	var hp HeaderProof
	for _, field := range fields {
		if field.WireType != proto.WireBytes {
			return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "unexpected wire type %d for field %d", field.WireType, field.Number)
		}

		var msg proto.Message
		switch field.Number {
		case 1:
			hp.SignedHeader = &tmproto.SignedHeader{}
			msg = hp.SignedHeader
		case 2:
			hp.ValidatorSet = &tmproto.ValidatorSet{}
			msg = hp.ValidatorSet
		case 3:
			hp.TrustedValidators = &tmproto.ValidatorSet{}
			msg = hp.TrustedValidators
		default:
			return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "unknown header proof field %d", field.Number)
		}

		if err := proto.Unmarshal(field.Bytes, msg); err != nil {
			return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeader, "failed to decode header proof field %d: %v", field.Number, err)
		}
	}

	if hp.SignedHeader == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "tendermint signed header cannot be nil")
	}
	if hp.ValidatorSet == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "validator set is nil")
	}
	if hp.TrustedValidators == nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, "trusted validator set is nil")
	}

	return &hp, nil
}

// toTendermint converts the proof into the tendermint light client types.
func (hp HeaderProof) toTendermint() (*tmtypes.SignedHeader, *tmtypes.ValidatorSet, *tmtypes.ValidatorSet, error) {
	signedHeader, err := tmtypes.SignedHeaderFromProto(hp.SignedHeader)
	if err != nil {
		return nil, nil, nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	valSet, err := tmtypes.ValidatorSetFromProto(hp.ValidatorSet)
	if err != nil {
		return nil, nil, nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	trustedVals, err := tmtypes.ValidatorSetFromProto(hp.TrustedValidators)
	if err != nil {
		return nil, nil, nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	return signedHeader, valSet, trustedVals, nil
}
