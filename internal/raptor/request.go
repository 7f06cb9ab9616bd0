package raptor

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New()

// Request is the external request object. FromTime/ToTime are
// seconds-of-day; the search covers the half-open window [FromTime, ToTime)
// stepping backward by DepartureStepSeconds.
type Request struct {
	FromTime int `validate:"gte=0"`
	ToTime   int `validate:"required,gtfield=FromTime"`

	MaxRides               int     `validate:"gte=0"`
	MaxTripDurationMinutes int     `validate:"gt=0"`
	MaxWalkMinutes         int     `validate:"gte=0"`
	WalkSpeedMetersPerSecond float64 `validate:"gt=0"`

	TransitModes map[string]bool

	Date time.Time `validate:"required"`

	MonteCarloDrawsPerMinute int `validate:"gte=1"`
	RetainPaths              bool

	// Seed drives FrequencyOffsets: repeating a search with the same seed
	// reproduces identical output.
	Seed int64
}

// Validate fails fast on a malformed request, before any search
// work runs. Struct-tag checks cover the field-local constraints;
// TransitModes is checked by hand since validator's declarative tags can't
// express "member of a runtime-supplied set" against an arbitrary Network.
func (r *Request) Validate(network Network, knownModes map[string]bool) error {
	if err := requestValidator.Struct(r); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok || len(ve) == 0 {
			return &ConfigError{Field: "request", Reason: err.Error()}
		}
		fe := ve[0]
		return &ConfigError{Field: fe.Field(), Reason: fmt.Sprintf("failed %q validation", fe.Tag())}
	}

	for mode := range r.TransitModes {
		if knownModes != nil && !knownModes[mode] {
			return &ConfigError{Field: "TransitModes", Reason: fmt.Sprintf("unknown mode %q", mode)}
		}
	}

	if network != nil && r.MaxRides > 0 && network.StopCount() == 0 {
		return &ConfigError{Field: "Network", Reason: "network has no stops"}
	}

	return nil
}

// timeWindowLengthMinutes returns the number of departure minutes the
// search will sweep.
func (r *Request) timeWindowLengthMinutes() int {
	return (r.ToTime - r.FromTime + DepartureStepSeconds - 1) / DepartureStepSeconds
}
