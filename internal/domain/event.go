package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ImpactRequest is a user-supplied or sampled meteor submitted for
// simulation. SpeedKmS is in km/s. Geo is optional and only used for
// reverse-geocoding enrichment.
type ImpactRequest struct {
	Name         string      `json:"name,omitempty"`
	MassKg       float64     `json:"mass_kg"`
	SpeedKmS     float64     `json:"speed_km_s"`
	AngleDegrees float64     `json:"angle_degrees"`
	Weather      Weather     `json:"weather"`
	Composition  Composition `json:"composition"`
	Region       Region      `json:"region"`
	Geo          *Geo        `json:"geo,omitempty"`
}

// Input returns the calculator view of the request.
func (r ImpactRequest) Input() ImpactInput {
	return ImpactInput{
		MassKg:       r.MassKg,
		SpeedKmS:     r.SpeedKmS,
		AngleDegrees: r.AngleDegrees,
		Weather:      r.Weather,
		Composition:  r.Composition,
		Region:       r.Region,
	}
}

// RequestFromMeteor wraps a sampled meteor as an ImpactRequest.
func RequestFromMeteor(m MeteorDescription) ImpactRequest {
	in := m.Input()
	return ImpactRequest{
		Name:         m.Name,
		MassKg:       in.MassKg,
		SpeedKmS:     in.SpeedKmS,
		AngleDegrees: in.AngleDegrees,
		Weather:      in.Weather,
		Composition:  in.Composition,
		Region:       in.Region,
		Geo:          &Geo{Lat: m.Latitude, Lon: m.Longitude},
	}
}

// ImpactReport is the simulation result for one ImpactRequest.
type ImpactReport struct {
	ID             string        `json:"id"`
	Request        ImpactRequest `json:"request"`
	Metrics        ImpactMetrics `json:"metrics"`
	Casualties     int64         `json:"casualties"`
	CasualtyReport string        `json:"casualty_report"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed", "ocean"

	ProcessedAt time.Time `json:"processed_at"`
}

// Outcome labels the report "airburst" or "crater".
func (r ImpactReport) Outcome() string {
	if r.Metrics.Airburst {
		return "airburst"
	}
	return "crater"
}

// Simulation bundles a sampled meteor with its impact report.
type Simulation struct {
	Meteor MeteorDescription `json:"meteor"`
	Report ImpactReport      `json:"report"`
}
