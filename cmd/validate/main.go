// Command validate re-checks a simulations fixture written by cmd/roll
// against the current engine. It verifies that every sampled meteor is in
// range and that every stored report reproduces exactly, so a formula change
// that silently shifts results fails loudly.
//
// Usage:
//
//	go run ./cmd/validate -simulations data/mock/simulations.json \
//	  -requests data/mock/historic_impacts.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	simsPath := flag.String("simulations", "", "path to a simulations fixture from cmd/roll")
	requestsPath := flag.String("requests", "", "optional path to an impact request fixture")
	flag.Parse()

	if *simsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*simsPath, *requestsPath))
}

func run(simsPath, requestsPath string) int {
	fmt.Println("=== Impact Fixture Validation ===")

	sims, err := loadJSON[domain.Simulation](simsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load simulations: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSamplerRanges(sims),
		validateMeteorPhysics(sims),
		validateReports(sims),
	}

	if requestsPath != "" {
		requests, err := loadJSON[domain.ImpactRequest](requestsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load requests: %v\n", err)
			return 1
		}
		phases = append(phases, validateRequests(requests))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}
	fmt.Printf("\nSimulations: %d\n", len(sims))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func validateSamplerRanges(sims []domain.Simulation) *phase {
	p := &phase{name: "Sampler ranges"}
	for i := range sims {
		m := &sims[i].Meteor
		if m.SpeedKmS < domain.MinSpeedKmS || m.SpeedKmS > domain.MaxSpeedKmS {
			p.errorf("%s: speed %.2f km/s out of range", m.ID, m.SpeedKmS)
		}
		if m.AngleDegrees < domain.MinEntryAngle || m.AngleDegrees > domain.MaxEntryAngle {
			p.errorf("%s: angle %d out of range", m.ID, m.AngleDegrees)
		}
		if !m.Location.Bounds().Contains(m.Latitude, m.Longitude) {
			p.errorf("%s: site %.3f,%.3f outside %s", m.ID, m.Latitude, m.Longitude, m.Location)
		}
		if m.Weather == domain.Storm {
			p.errorf("%s: storm weather is never sampled", m.ID)
		}
		if !(m.DiameterMeters > 0) {
			p.errorf("%s: non-positive diameter %v", m.ID, m.DiameterMeters)
		}
	}
	return p
}

func validateMeteorPhysics(sims []domain.Simulation) *phase {
	p := &phase{name: "Meteor physics"}
	for i := range sims {
		m := &sims[i].Meteor
		if want := domain.MassFromDiameter(m.DiameterMeters, m.Composition); m.MassKg != want {
			p.errorf("%s: mass %v, want %v", m.ID, m.MassKg, want)
		}
		if m.GeometryClass != m.Composition.Geometry() {
			p.errorf("%s: geometry %s does not match %s", m.ID, m.GeometryClass, m.Composition)
		}
		want := domain.CraterDiameter(m.MassKg, m.SpeedKmS, float64(m.AngleDegrees), m.Composition)
		if m.CraterDiameterMeters != want {
			p.errorf("%s: crater %v m, want %v m", m.ID, m.CraterDiameterMeters, want)
		}
	}
	return p
}

func validateReports(sims []domain.Simulation) *phase {
	p := &phase{name: "Report reproduction"}
	for i := range sims {
		m, r := &sims[i].Meteor, &sims[i].Report
		in := m.Input()

		if want := domain.EstimateCasualties(in); r.Casualties != want {
			p.errorf("%s: casualties %d, want %d", m.ID, r.Casualties, want)
		}
		if want := domain.FormatCasualtyReport(r.Casualties); r.CasualtyReport != want {
			p.errorf("%s: casualty report %q, want %q", m.ID, r.CasualtyReport, want)
		}
		checkMetrics(p, m.ID, r.Metrics, domain.ComputeImpactMetrics(in))
	}
	return p
}

func validateRequests(requests []domain.ImpactRequest) *phase {
	p := &phase{name: "Request fixture"}
	seen := map[string]string{}
	for _, req := range requests {
		if err := req.Validate(); err != nil {
			p.errorf("%s: %v", req.Name, err)
			continue
		}
		if req.Geo != nil && !req.Region.Bounds().Contains(req.Geo.Lat, req.Geo.Lon) {
			p.errorf("%s: site %.2f,%.2f outside %s", req.Name, req.Geo.Lat, req.Geo.Lon, req.Region)
		}
		id := domain.BuildImpactReport(req).ID
		if prev, ok := seen[id]; ok {
			p.errorf("%s: duplicate report ID %s (also %s)", req.Name, id, prev)
		}
		seen[id] = req.Name
	}
	return p
}

// checkMetrics compares stored metrics to a fresh computation. JSON
// round-trips float64 exactly, so any drift is a formula change.
func checkMetrics(p *phase, id string, got, want domain.ImpactMetrics) {
	fields := []struct {
		name      string
		got, want float64
	}{
		{"kinetic energy", got.KineticEnergyJ, want.KineticEnergyJ},
		{"base crater radius", got.BaseCraterRadius, want.BaseCraterRadius},
		{"crater depth", got.CraterDepth, want.CraterDepth},
		{"crater diameter", got.CraterDiameter, want.CraterDiameter},
		{"suggested zoom", got.SuggestedZoom, want.SuggestedZoom},
	}
	for _, f := range fields {
		if !sameFloat(f.got, f.want) {
			p.errorf("%s: %s %v, want %v", id, f.name, f.got, f.want)
		}
	}
	if got.Airburst != want.Airburst {
		p.errorf("%s: airburst %v, want %v", id, got.Airburst, want.Airburst)
	}
	if len(got.RadiusOverTime) != len(want.RadiusOverTime) {
		p.errorf("%s: %d blast samples, want %d", id, len(got.RadiusOverTime), len(want.RadiusOverTime))
		return
	}
	for j := range want.RadiusOverTime {
		if !sameFloat(got.RadiusOverTime[j].RadiusMeters, want.RadiusOverTime[j].RadiusMeters) {
			p.errorf("%s: blast radius at %.0fs %v, want %v", id,
				want.RadiusOverTime[j].ElapsedSeconds, got.RadiusOverTime[j].RadiusMeters, want.RadiusOverTime[j].RadiusMeters)
		}
	}
}

func sameFloat(a, b float64) bool {
	return a == b || math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
