package domain

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	oceanProbability     = 0.71
	largeBodyProbability = 0.02
	historicalEraWeight  = 0.7

	speedMeanKmS  = 20.0
	speedSigmaKmS = 4.5
	MinSpeedKmS   = 12.0
	MaxSpeedKmS   = 30.0

	MinEntryAngle = 12
	MaxEntryAngle = 68

	// EarliestHistoricYear opens the historic era. Years from here to the
	// present are drawn with weight historicalEraWeight; the rest fall in
	// deep time.
	EarliestHistoricYear = -3000

	minDiameterMeters   = 0.2
	maxDiameterMeters   = 200.0
	minLargeBodyMeters  = 300.0
	maxLargeBodyMeters  = 20000.0
	deepTimeEarliestYr  = -2_500_000_000
	deepTimeLatestYr    = -1_000_000
	idAlphabet          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength            = 5
	craterDescription   = "Probable ground impact with visible crater"
	airburstDescription = "Likely high-altitude airburst (no crater)"
)

// RandSource yields uniform draws in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// MeteorDescription is one sampled entry body. SpeedKmS is in km/s.
type MeteorDescription struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Composition          Composition   `json:"composition"`
	GeometryClass        GeometryClass `json:"geometry_class"`
	DiameterMeters       float64       `json:"diameter_m"`
	MassKg               float64       `json:"mass_kg"`
	SpeedKmS             float64       `json:"speed_km_s"`
	AngleDegrees         int           `json:"angle_degrees"`
	Latitude             float64       `json:"latitude"`
	Longitude            float64       `json:"longitude"`
	Location             Region        `json:"location"`
	Weather              Weather       `json:"weather"`
	YearOfImpact         int64         `json:"year_of_impact"`
	CraterDiameterMeters float64       `json:"crater_diameter_m"`
	Description          string        `json:"description"`
}

// Input returns the calculator view of the meteor.
func (m MeteorDescription) Input() ImpactInput {
	return ImpactInput{
		MassKg:       m.MassKg,
		SpeedKmS:     m.SpeedKmS,
		AngleDegrees: float64(m.AngleDegrees),
		Weather:      m.Weather,
		Composition:  m.Composition,
		Region:       m.Location,
	}
}

// Sampler draws random meteors from a single RandSource. Roll holds a lock
// for its whole draw sequence, so one Sampler may be shared across
// goroutines and a fixed seed still reproduces each caller's sequence when
// calls are serialized.
type Sampler struct {
	mu    sync.Mutex
	src   RandSource
	clock clockwork.Clock
}

// NewSampler creates a Sampler. A nil clock uses the package clock (see SetClock).
func NewSampler(src RandSource, c clockwork.Clock) *Sampler {
	return &Sampler{src: src, clock: c}
}

// NewSeededSampler creates a Sampler over math/rand seeded with seed.
func NewSeededSampler(seed int64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)), nil)
}

var (
	defaultSamplerOnce sync.Once
	defaultSampler     *Sampler
)

// GenerateRandomMeteor rolls a meteor from a process-wide, time-seeded Sampler.
func GenerateRandomMeteor() MeteorDescription {
	defaultSamplerOnce.Do(func() {
		defaultSampler = NewSeededSampler(time.Now().UnixNano())
	})
	return defaultSampler.Roll()
}

// Roll draws one meteor.
func (s *Sampler) Roll() MeteorDescription {
	s.mu.Lock()
	defer s.mu.Unlock()

	comp := s.sampleComposition()
	lat, lon, region := s.sampleSite()
	speed := roundTo(s.sampleSpeed(), 2)
	angle := s.intBetween(MinEntryAngle, MaxEntryAngle)
	diameter := s.sampleDiameter()
	mass := MassFromDiameter(diameter, comp)
	year := s.sampleYear()
	weather := s.sampleWeather(region)
	id := s.sampleID()

	crater := CraterDiameter(mass, speed, float64(angle), comp)
	description := airburstDescription
	if crater > 0 {
		description = craterDescription
	}

	return MeteorDescription{
		ID:                   id,
		Name:                 "Random Meteor " + id,
		Composition:          comp,
		GeometryClass:        comp.Geometry(),
		DiameterMeters:       diameter,
		MassKg:               mass,
		SpeedKmS:             speed,
		AngleDegrees:         angle,
		Latitude:             roundTo(lat, 3),
		Longitude:            roundTo(lon, 3),
		Location:             region,
		Weather:              weather,
		YearOfImpact:         year,
		CraterDiameterMeters: crater,
		Description:          description,
	}
}

// MassFromDiameter returns the sphere mass in whole kilograms for the
// composition's density.
func MassFromDiameter(diameterMeters float64, c Composition) float64 {
	r := nonNegative(diameterMeters) / 2
	return math.Round(4.0 / 3.0 * math.Pi * r * r * r * c.Density())
}

func (s *Sampler) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return clock.Now()
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + s.src.Float64()*(hi-lo)
}

// intBetween draws a uniform integer in [lo, hi].
func (s *Sampler) intBetween(lo, hi int) int {
	n := int(s.src.Float64() * float64(hi-lo+1))
	if n > hi-lo {
		n = hi - lo
	}
	return lo + n
}

func (s *Sampler) int64Between(lo, hi int64) int64 {
	n := int64(s.src.Float64() * float64(hi-lo+1))
	if n > hi-lo {
		n = hi - lo
	}
	return lo + n
}

func (s *Sampler) sampleComposition() Composition {
	p := s.src.Float64()
	switch {
	case p < 0.85:
		return Stone
	case p < 0.97:
		return Iron
	default:
		return Mixed
	}
}

func (s *Sampler) sampleSite() (lat, lon float64, region Region) {
	if s.src.Float64() < oceanProbability {
		region = OpenOcean
	} else {
		region = landRegions[s.intBetween(0, len(landRegions)-1)]
	}
	b := region.Bounds()
	return s.uniform(b.MinLat, b.MaxLat), s.uniform(b.MinLon, b.MaxLon), region
}

func (s *Sampler) sampleWeather(region Region) Weather {
	odds := region.params().weather
	p := s.src.Float64()
	switch {
	case p < odds.pFirst:
		return odds.first
	case p < odds.pFirst+odds.pSecond:
		return odds.second
	default:
		return odds.rest
	}
}

// sampleSpeed draws a Box–Muller normal speed clamped to [MinSpeedKmS, MaxSpeedKmS].
func (s *Sampler) sampleSpeed() float64 {
	u := 1 - s.src.Float64() // (0, 1]: keeps the log finite
	v := 1 - s.src.Float64()
	z := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return clamp(speedMeanKmS+speedSigmaKmS*z, MinSpeedKmS, MaxSpeedKmS)
}

func (s *Sampler) sampleDiameter() float64 {
	d := math.Exp(s.uniform(math.Log(minDiameterMeters), math.Log(maxDiameterMeters)))
	if s.src.Float64() < largeBodyProbability {
		d += s.uniform(minLargeBodyMeters, maxLargeBodyMeters)
	}
	return roundTo(d, 2)
}

func (s *Sampler) sampleYear() int64 {
	if s.src.Float64() < historicalEraWeight {
		return s.int64Between(EarliestHistoricYear, int64(s.now().Year()))
	}
	return s.int64Between(deepTimeEarliestYr, deepTimeLatestYr)
}

func (s *Sampler) sampleID() string {
	var b strings.Builder
	b.Grow(idLength)
	for range idLength {
		b.WriteByte(idAlphabet[s.intBetween(0, len(idAlphabet)-1)])
	}
	return b.String()
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
