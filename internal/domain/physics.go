package domain

import "math"

const (
	// CraterRadiusScale is the cube-root energy scaling constant for the
	// base crater radius, in m·J^(-1/3).
	CraterRadiusScale = 0.00158740105

	// BlastRadiusScale is k in r(t) = k · E^(1/5) · t^(2/5).
	BlastRadiusScale = 0.1

	// CraterDepthRatio is depth over base crater radius.
	CraterDepthRatio = 0.2

	// MinAngleCoefficient floors sin θ so grazing entries do not collapse
	// the scaling law to zero.
	MinAngleCoefficient = 0.3

	// AirburstMaxAngle and AirburstMaxMassKg define the airburst predicate:
	// shallower or lighter bodies detonate aloft and leave no crater.
	AirburstMaxAngle  = 20.0
	AirburstMaxMassKg = 1.5e7

	// JoulesPerMegaton is the TNT-equivalent conversion.
	JoulesPerMegaton = 4.184e15

	// MaxCraterDiameterMeters bounds CraterDiameter.
	MaxCraterDiameterMeters = 500_000

	// ZoomBase is the map zoom level at a 1 km radius.
	ZoomBase = 12.0
	MinZoom  = 5.0
	MaxZoom  = 18.0
)

// BlastCheckpoints are the elapsed times, in seconds, at which blast radius
// growth is sampled. They are strictly increasing.
var BlastCheckpoints = [...]float64{1800, 3600, 7200}

// ImpactInput is the physical description the calculators consume.
// SpeedKmS is in km/s.
type ImpactInput struct {
	MassKg       float64     `json:"mass_kg"`
	SpeedKmS     float64     `json:"speed_km_s"`
	AngleDegrees float64     `json:"angle_degrees"`
	Weather      Weather     `json:"weather"`
	Composition  Composition `json:"composition"`
	Region       Region      `json:"region"`
}

// BlastSample is the blast radius reached after Elapsed seconds.
type BlastSample struct {
	RadiusMeters   float64 `json:"radius_m"`
	ElapsedSeconds float64 `json:"elapsed_s"`
}

// ImpactMetrics are the quantities derived from an ImpactInput.
type ImpactMetrics struct {
	KineticEnergyJ     float64       `json:"kinetic_energy_j"`
	EnergyMegatons     float64       `json:"energy_megatons"`
	AngleCoefficient   float64       `json:"angle_coefficient"`
	WeatherCoefficient float64       `json:"weather_coefficient"`
	Airburst           bool          `json:"airburst"`
	BaseCraterRadius   float64       `json:"base_crater_radius_m"`
	CraterDepth        float64       `json:"crater_depth_m"`
	CraterDiameter     float64       `json:"crater_diameter_m"`
	RadiusOverTime     []BlastSample `json:"radius_over_time"`
	SuggestedZoom      float64       `json:"suggested_zoom"`
}

// KineticEnergy returns 0.5·m·v² in joules for a speed given in km/s.
// Negative or NaN mass and speed are treated as zero.
func KineticEnergy(massKg, speedKmS float64) float64 {
	m := nonNegative(massKg)
	v := nonNegative(speedKmS) * 1000
	return 0.5 * m * v * v
}

// AngleCoefficient returns max(0.3, sin θ) for an angle from horizontal.
func AngleCoefficient(angleDegrees float64) float64 {
	s := math.Sin(angleDegrees * math.Pi / 180)
	if math.IsNaN(s) {
		return MinAngleCoefficient
	}
	return math.Max(MinAngleCoefficient, s)
}

// IsAirburst reports whether the entry detonates in the atmosphere.
func IsAirburst(angleDegrees, massKg float64) bool {
	return angleDegrees < AirburstMaxAngle || nonNegative(massKg) < AirburstMaxMassKg
}

// CraterDiameter returns the rim-to-rim diameter in whole meters, clamped
// to [0, MaxCraterDiameterMeters]. Airbursts yield 0.
func CraterDiameter(massKg, speedKmS, angleDegrees float64, c Composition) float64 {
	if IsAirburst(angleDegrees, massKg) {
		return 0
	}
	mt := KineticEnergy(massKg, speedKmS) / JoulesPerMegaton
	km := 0.01 * math.Pow(math.Max(mt, 0.001), 1/3.4) * c.MaterialFactor()
	return clamp(math.Round(km*1000), 0, MaxCraterDiameterMeters)
}

// BlastRadiusOverTime samples blast radius growth at each of BlastCheckpoints.
// Each call returns a new slice in increasing time order.
func BlastRadiusOverTime(energyJ, angleCoefficient, weatherCoefficient float64) []BlastSample {
	base := BlastRadiusScale * math.Pow(nonNegative(energyJ), 1.0/5) *
		nonNegative(angleCoefficient) * nonNegative(weatherCoefficient)

	out := make([]BlastSample, 0, len(BlastCheckpoints))
	for _, t := range BlastCheckpoints {
		out = append(out, BlastSample{
			RadiusMeters:   base * math.Pow(t, 2.0/5),
			ElapsedSeconds: t,
		})
	}
	return out
}

// ZoomForRadius maps a radius in meters to a map zoom level in [MinZoom, MaxZoom].
// Non-positive radii map to MaxZoom.
func ZoomForRadius(radiusMeters float64) float64 {
	if !(radiusMeters > 0) {
		return MaxZoom
	}
	return clamp(ZoomBase-math.Log2(radiusMeters/1000), MinZoom, MaxZoom)
}

// ComputeImpactMetrics derives energy, crater, and blast metrics from in.
func ComputeImpactMetrics(in ImpactInput) ImpactMetrics {
	energy := KineticEnergy(in.MassKg, in.SpeedKmS)
	angleCoef := AngleCoefficient(in.AngleDegrees)
	weatherCoef := in.Weather.Coefficient()

	m := ImpactMetrics{
		KineticEnergyJ:     energy,
		EnergyMegatons:     energy / JoulesPerMegaton,
		AngleCoefficient:   angleCoef,
		WeatherCoefficient: weatherCoef,
		Airburst:           IsAirburst(in.AngleDegrees, in.MassKg),
		RadiusOverTime:     BlastRadiusOverTime(energy, angleCoef, weatherCoef),
	}

	if !m.Airburst {
		m.BaseCraterRadius = CraterRadiusScale * math.Cbrt(energy) * angleCoef * weatherCoef
		m.CraterDepth = CraterDepthRatio * m.BaseCraterRadius
		m.CraterDiameter = CraterDiameter(in.MassKg, in.SpeedKmS, in.AngleDegrees, in.Composition)
	}

	m.SuggestedZoom = ZoomForRadius(m.RadiusOverTime[len(m.RadiusOverTime)-1].RadiusMeters)
	return m
}

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
