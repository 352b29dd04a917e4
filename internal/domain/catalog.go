package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned when a composition, weather, or region
// label does not name a known variant.
var ErrUnknownVariant = errors.New("unknown variant")

// Composition is the bulk material of a meteor. It drives density.
type Composition int

const (
	Stone Composition = iota
	Iron
	Mixed
)

// GeometryClass is the display-facing meteorite class, mapped 1:1 from Composition.
type GeometryClass int

const (
	Stony GeometryClass = iota
	IronClass
	StonyIron
)

type compositionParams struct {
	code           string
	density        float64 // kg/m³
	materialFactor float64 // crater diameter multiplier
	geometry       GeometryClass
}

var compositions = [...]compositionParams{
	Stone: {code: "STONE", density: 3500, materialFactor: 1.00, geometry: Stony},
	Iron:  {code: "IRON", density: 7800, materialFactor: 1.25, geometry: IronClass},
	Mixed: {code: "MIXED", density: 4900, materialFactor: 1.10, geometry: StonyIron},
}

var geometryCodes = [...]string{
	Stony:     "STONY",
	IronClass: "IRON",
	StonyIron: "STONY_IRON",
}

func (c Composition) valid() bool { return c >= 0 && int(c) < len(compositions) }

func (c Composition) params() compositionParams {
	if !c.valid() {
		return compositions[Stone]
	}
	return compositions[c]
}

// Density returns the bulk density in kg/m³.
func (c Composition) Density() float64 { return c.params().density }

// MaterialFactor returns the crater-diameter multiplier for the material.
func (c Composition) MaterialFactor() float64 { return c.params().materialFactor }

// Geometry returns the GeometryClass paired with the composition.
func (c Composition) Geometry() GeometryClass { return c.params().geometry }

func (c Composition) String() string { return c.params().code }

func (c Composition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Composition) UnmarshalText(text []byte) error {
	v, err := ParseComposition(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseComposition accepts STONE, IRON, or MIXED, case-insensitively.
func ParseComposition(s string) (Composition, error) {
	for i, p := range compositions {
		if strings.EqualFold(strings.TrimSpace(s), p.code) {
			return Composition(i), nil
		}
	}
	return Stone, fmt.Errorf("composition %q: %w", s, ErrUnknownVariant)
}

func (g GeometryClass) String() string {
	if g < 0 || int(g) >= len(geometryCodes) {
		return geometryCodes[Stony]
	}
	return geometryCodes[g]
}

func (g GeometryClass) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GeometryClass) UnmarshalText(text []byte) error {
	for i, code := range geometryCodes {
		if strings.EqualFold(strings.TrimSpace(string(text)), code) {
			*g = GeometryClass(i)
			return nil
		}
	}
	return fmt.Errorf("geometry class %q: %w", text, ErrUnknownVariant)
}

// Weather is the surface weather at the impact site.
type Weather int

const (
	Clear Weather = iota
	Rain
	Snow
	Storm // reserved: never produced by the sampler
)

type weatherParams struct {
	code        string
	coefficient float64
}

var weathers = [...]weatherParams{
	Clear: {code: "CLEAR", coefficient: 1.00},
	Rain:  {code: "RAIN", coefficient: 0.97},
	Snow:  {code: "SNOW", coefficient: 0.99},
	Storm: {code: "STORM", coefficient: 0.95},
}

func (w Weather) params() weatherParams {
	if w < 0 || int(w) >= len(weathers) {
		return weathers[Clear]
	}
	return weathers[w]
}

// Coefficient returns the atmospheric damping factor applied to surface effects.
func (w Weather) Coefficient() float64 { return w.params().coefficient }

func (w Weather) String() string { return w.params().code }

func (w Weather) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Weather) UnmarshalText(text []byte) error {
	v, err := ParseWeather(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// ParseWeather accepts CLEAR, RAIN, SNOW, or STORM, case-insensitively.
func ParseWeather(s string) (Weather, error) {
	for i, p := range weathers {
		if strings.EqualFold(strings.TrimSpace(s), p.code) {
			return Weather(i), nil
		}
	}
	return Clear, fmt.Errorf("weather %q: %w", s, ErrUnknownVariant)
}

// Region is the coarse location label of an impact site.
type Region int

const (
	OpenOcean Region = iota
	NorthAmerica
	SouthAmerica
	Europe
	Africa
	Asia
	Australia
	Antarctica
)

// Bounds is a latitude/longitude bounding box in degrees.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

type regionParams struct {
	label              string
	bounds             Bounds
	casualtyMultiplier float64
	weather            weatherOdds
}

// weatherOdds is a three-way categorical draw:
// p < pFirst → first, p < pFirst+pSecond → second, else rest.
type weatherOdds struct {
	first, second Weather
	pFirst        float64
	pSecond       float64
	rest          Weather
}

var (
	landOdds       = weatherOdds{first: Clear, pFirst: 0.6, second: Rain, pSecond: 0.3, rest: Snow}
	oceanOdds      = weatherOdds{first: Clear, pFirst: 0.7, second: Rain, pSecond: 0.2, rest: Snow}
	antarcticaOdds = weatherOdds{first: Snow, pFirst: 0.6, second: Clear, pSecond: 0.2, rest: Rain}
)

var regions = [...]regionParams{
	OpenOcean:    {label: "Open Ocean", bounds: Bounds{-90, 90, -180, 180}, casualtyMultiplier: 0.01, weather: oceanOdds},
	NorthAmerica: {label: "North America", bounds: Bounds{7, 83, -168, -52}, casualtyMultiplier: 1.0, weather: landOdds},
	SouthAmerica: {label: "South America", bounds: Bounds{-56, 13, -82, -34}, casualtyMultiplier: 1.0, weather: landOdds},
	Europe:       {label: "Europe", bounds: Bounds{35, 71, -10, 40}, casualtyMultiplier: 1.3, weather: landOdds},
	Africa:       {label: "Africa", bounds: Bounds{-35, 37, -18, 52}, casualtyMultiplier: 1.3, weather: landOdds},
	Asia:         {label: "Asia", bounds: Bounds{6, 77, 26, 180}, casualtyMultiplier: 1.3, weather: landOdds},
	Australia:    {label: "Australia", bounds: Bounds{-44, -10, 112, 154}, casualtyMultiplier: 1.0, weather: landOdds},
	Antarctica:   {label: "Antarctica", bounds: Bounds{-90, -60, -180, 180}, casualtyMultiplier: 0.01, weather: antarcticaOdds},
}

// landRegions are the named regions the sampler picks from uniformly.
var landRegions = [...]Region{NorthAmerica, SouthAmerica, Europe, Africa, Asia, Australia, Antarctica}

// Regions returns every region variant, Open Ocean first.
func Regions() []Region {
	out := make([]Region, len(regions))
	for i := range regions {
		out[i] = Region(i)
	}
	return out
}

func (r Region) params() regionParams {
	if r < 0 || int(r) >= len(regions) {
		return regions[OpenOcean]
	}
	return regions[r]
}

// Bounds returns the region's declared bounding box.
func (r Region) Bounds() Bounds { return r.params().bounds }

// CasualtyMultiplier returns the population-density factor for the region.
func (r Region) CasualtyMultiplier() float64 { return r.params().casualtyMultiplier }

func (r Region) String() string { return r.params().label }

func (r Region) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Region) UnmarshalText(text []byte) error {
	v, err := ParseRegion(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRegion matches a region label such as "Open Ocean" or "Asia",
// case-insensitively. Underscores are accepted in place of spaces.
func ParseRegion(s string) (Region, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	for i, p := range regions {
		if strings.EqualFold(norm, p.label) {
			return Region(i), nil
		}
	}
	return OpenOcean, fmt.Errorf("region %q: %w", s, ErrUnknownVariant)
}
