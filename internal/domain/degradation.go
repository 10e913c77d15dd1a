package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// TemperatureKind selects which per-fixture temperature drives the Van't Hoff rate.
type TemperatureKind string

const (
	TemperatureModule TemperatureKind = "module"
	TemperatureCell   TemperatureKind = "cell"
)

// DegradationParams are the chamber and fit parameters shared by every site
// in a Van't Hoff catalog build.
type DegradationParams struct {
	FitExponent       float64         `validate:"gte=0"`
	ChamberIrradiance float64         `validate:"gt=0"`
	TempMultiplier    float64         `validate:"gt=0"`
	ReferenceTempC    float64         `validate:"gte=-273.15"`
	Fixture           FixtureType     `validate:"gte=0,lt=6"`
	Temperature       TemperatureKind `validate:"oneof=module cell"`
}

// DefaultDegradationParams returns the parameters used for the standard
// open-rack-glass Van't Hoff catalog.
func DefaultDegradationParams() DegradationParams {
	return DegradationParams{
		FitExponent:       0.64,
		ChamberIrradiance: 2189,
		TempMultiplier:    1.41,
		ReferenceTempC:    60,
		Fixture:           OpenRackGlass,
		Temperature:       TemperatureModule,
	}
}

// TemperatureColumn is the input column the parameters read temperature from.
func (p DegradationParams) TemperatureColumn() Column {
	if p.Temperature == TemperatureCell {
		return CellTempColumn(p.Fixture)
	}
	return ModuleTempColumn(p.Fixture)
}

var paramValidator = validator.New()

// Validate rejects out-of-domain parameters with an InvalidParameterError.
func (p DegradationParams) Validate() error {
	finite := []struct {
		name string
		v    float64
	}{
		{"FitExponent", p.FitExponent},
		{"ChamberIrradiance", p.ChamberIrradiance},
		{"TempMultiplier", p.TempMultiplier},
		{"ReferenceTempC", p.ReferenceTempC},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidParameterError{Param: f.name, Reason: "must be finite"}
		}
	}

	if err := paramValidator.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &InvalidParameterError{
				Param:  fe.Field(),
				Reason: fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value()),
			}
		}
		return &InvalidParameterError{Param: "degradation", Reason: err.Error()}
	}
	return nil
}
