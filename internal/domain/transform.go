package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned by ImpactRequest.Validate for values the
// engine would only treat as degenerate.
var ErrInvalidInput = errors.New("invalid impact input")

// impactRequestBody mirrors ImpactRequest with pointer fields so a missing
// key is distinguishable from the enum or number zero value.
type impactRequestBody struct {
	Name         string       `json:"name"`
	MassKg       *float64     `json:"mass_kg"`
	SpeedKmS     *float64     `json:"speed_km_s"`
	AngleDegrees *float64     `json:"angle_degrees"`
	Weather      *Weather     `json:"weather"`
	Composition  *Composition `json:"composition"`
	Region       *Region      `json:"region"`
	Geo          *Geo         `json:"geo"`
}

func (b impactRequestBody) request() (ImpactRequest, error) {
	missing := func(field string) error {
		return fmt.Errorf("%s is required: %w", field, ErrInvalidInput)
	}
	switch {
	case b.MassKg == nil:
		return ImpactRequest{}, missing("mass_kg")
	case b.SpeedKmS == nil:
		return ImpactRequest{}, missing("speed_km_s")
	case b.AngleDegrees == nil:
		return ImpactRequest{}, missing("angle_degrees")
	case b.Weather == nil:
		return ImpactRequest{}, missing("weather")
	case b.Composition == nil:
		return ImpactRequest{}, missing("composition")
	case b.Region == nil:
		return ImpactRequest{}, missing("region")
	}
	return ImpactRequest{
		Name:         b.Name,
		MassKg:       *b.MassKg,
		SpeedKmS:     *b.SpeedKmS,
		AngleDegrees: *b.AngleDegrees,
		Weather:      *b.Weather,
		Composition:  *b.Composition,
		Region:       *b.Region,
		Geo:          b.Geo,
	}, nil
}

// DecodeImpactRequest reads one request from dec. Every physical field and
// every enum must be present; geo and name are optional.
func DecodeImpactRequest(dec *json.Decoder) (ImpactRequest, error) {
	var body impactRequestBody
	if err := dec.Decode(&body); err != nil {
		return ImpactRequest{}, fmt.Errorf("decode impact request: %w", err)
	}
	return body.request()
}

// ParseImpactRequest deserializes a RawEvent's value into an ImpactRequest.
func ParseImpactRequest(raw RawEvent) (ImpactRequest, error) {
	var body impactRequestBody
	if err := json.Unmarshal(raw.Value, &body); err != nil {
		return ImpactRequest{}, fmt.Errorf("parse impact request: %w", err)
	}
	return body.request()
}

// Validate rejects negative or non-finite mass and speed, energies that
// overflow float64, angles outside [0, 90], coordinates outside the WGS-84
// range, and coordinates outside the named region's bounding box.
func (r ImpactRequest) Validate() error {
	switch {
	case !finiteNonNegative(r.MassKg):
		return fmt.Errorf("mass_kg %v: %w", r.MassKg, ErrInvalidInput)
	case !finiteNonNegative(r.SpeedKmS):
		return fmt.Errorf("speed_km_s %v: %w", r.SpeedKmS, ErrInvalidInput)
	case !(r.AngleDegrees >= 0 && r.AngleDegrees <= 90):
		return fmt.Errorf("angle_degrees %v: %w", r.AngleDegrees, ErrInvalidInput)
	}
	if e := KineticEnergy(r.MassKg, r.SpeedKmS); math.IsInf(e, 1) {
		return fmt.Errorf("kinetic energy of %g kg at %g km/s overflows: %w", r.MassKg, r.SpeedKmS, ErrInvalidInput)
	}
	if r.Geo != nil && !(r.Geo.Lat >= -90 && r.Geo.Lat <= 90 && r.Geo.Lon >= -180 && r.Geo.Lon <= 180) {
		return fmt.Errorf("geo %.3f,%.3f: %w", r.Geo.Lat, r.Geo.Lon, ErrInvalidInput)
	}
	if r.Geo != nil && !r.Region.Bounds().Contains(r.Geo.Lat, r.Geo.Lon) {
		return fmt.Errorf("region %s does not contain %.3f,%.3f: %w", r.Region, r.Geo.Lat, r.Geo.Lon, ErrInvalidInput)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// BuildImpactReport runs the physics calculator and the casualty estimator
// over req and stamps the result with a deterministic ID.
func BuildImpactReport(req ImpactRequest) ImpactReport {
	in := req.Input()
	casualties := EstimateCasualties(in)
	return ImpactReport{
		ID:             generateID(req),
		Request:        req,
		Metrics:        ComputeImpactMetrics(in),
		Casualties:     casualties,
		CasualtyReport: FormatCasualtyReport(casualties),
		ProcessedAt:    clock.Now(),
	}
}

// Simulate rolls one meteor from s and builds its report.
func Simulate(s *Sampler) Simulation {
	m := s.Roll()
	return Simulation{Meteor: m, Report: BuildImpactReport(RequestFromMeteor(m))}
}

// generateID produces a deterministic ID from the request's physical fields.
// Resubmitting the same request yields the same ID, so downstream consumers
// can deduplicate replays.
func generateID(req ImpactRequest) string {
	input := fmt.Sprintf("%s|%g|%g|%g|%s|%s|%s",
		req.Name, req.MassKg, req.SpeedKmS, req.AngleDegrees,
		req.Weather, req.Composition, req.Region)
	if req.Geo != nil {
		input += fmt.Sprintf("|%.4f|%.4f", req.Geo.Lat, req.Geo.Lon)
	}
	hash := sha256.Sum256([]byte(input))
	return "impact-" + hex.EncodeToString(hash[:8])
}
