package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	tmmath "github.com/tendermint/tendermint/libs/math"
	"github.com/tendermint/tendermint/light"
)

// DefaultTrustLevel is the default trust level of a light client: 1/3 of the
// trusted voting power.
var DefaultTrustLevel = NewFractionFromTm(light.DefaultTrustLevel)

// Fraction defines the protobuf message type for tmmath.Fraction that only
// supports positive values.
type Fraction struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// NewFractionFromTm returns a new Fraction instance from a tmmath.Fraction
func NewFractionFromTm(f tmmath.Fraction) Fraction {
	return Fraction{
		Numerator:   f.Numerator,
		Denominator: f.Denominator,
	}
}

// ToTendermint converts Fraction to tmmath.Fraction
func (f Fraction) ToTendermint() tmmath.Fraction {
	return tmmath.Fraction{
		Numerator:   f.Numerator,
		Denominator: f.Denominator,
	}
}

// Validate checks the fraction lies within [1/3, 1].
func (f Fraction) Validate() error {
	return light.ValidateTrustLevel(f.ToTendermint())
}

// RequiredOf returns the minimum number of parts out of total that meet the
// fraction, rounding up. The product is computed without overflow, so equivalent
// fractions always require the same number of parts.
func (f Fraction) RequiredOf(total uint64) uint64 {
	if f.Denominator == 0 {
		return total
	}

	denominator := sdk.NewIntFromUint64(f.Denominator)
	required := sdk.NewIntFromUint64(total).
		Mul(sdk.NewIntFromUint64(f.Numerator)).
		Add(denominator.SubRaw(1)).
		Quo(denominator)
	if !required.IsUint64() {
		return total
	}
	return required.Uint64()
}
