// Command roll draws a reproducible batch of random meteors, simulates each
// impact, and writes the simulations as a JSON fixture. The clock is frozen
// at the start of -year so ProcessedAt and the historic era bound do not
// drift between runs.
//
// Usage:
//
//	go run ./cmd/roll -seed 42 -count 200 -out data/mock/simulations.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seed := flag.Int64("seed", 42, "sampler seed")
	count := flag.Int("count", 100, "number of meteors to roll")
	out := flag.String("out", "", "output path for the simulations fixture (stdout stats only when empty)")
	year := flag.Int("year", 2026, "frozen current year")
	flag.Parse()

	if *count < 1 {
		flag.Usage()
		return fmt.Errorf("-count must be positive, got %d", *count)
	}

	clk := clockwork.NewFakeClockAt(time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC))
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	sampler := domain.NewSeededSampler(*seed)
	sims := make([]domain.Simulation, 0, *count)
	for range *count {
		sims = append(sims, domain.Simulate(sampler))
	}

	if *out != "" {
		if err := writeJSON(*out, sims); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote %d simulations: %s", len(sims), *out)
	}

	printStats(sims)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

type stats struct {
	compositions map[string]int
	regions      map[string]int
	airbursts    int
	historic     int
	maxEnergyMt  float64
	maxCrater    float64
	casualties   int64
}

func collectStats(sims []domain.Simulation) stats {
	s := stats{compositions: map[string]int{}, regions: map[string]int{}}
	for i := range sims {
		m, r := &sims[i].Meteor, &sims[i].Report
		s.compositions[m.Composition.String()]++
		s.regions[m.Location.String()]++
		if r.Metrics.Airburst {
			s.airbursts++
		}
		if m.YearOfImpact >= domain.EarliestHistoricYear {
			s.historic++
		}
		s.maxEnergyMt = max(s.maxEnergyMt, r.Metrics.EnergyMegatons)
		s.maxCrater = max(s.maxCrater, m.CraterDiameterMeters)
		s.casualties += r.Casualties
	}
	return s
}

func printStats(sims []domain.Simulation) {
	s := collectStats(sims)

	fmt.Println("\n=== Roll stats ===")
	fmt.Printf("Total: %d\n", len(sims))
	fmt.Printf("By composition: STONE=%d, IRON=%d, MIXED=%d\n",
		s.compositions["STONE"], s.compositions["IRON"], s.compositions["MIXED"])
	fmt.Printf("Airbursts: %d (%.1f%%)\n", s.airbursts, pct(s.airbursts, len(sims)))
	fmt.Printf("Historic era: %d (%.1f%%)\n", s.historic, pct(s.historic, len(sims)))
	fmt.Printf("Largest energy: %.3g Mt\n", s.maxEnergyMt)
	fmt.Printf("Largest crater: %.0f m\n", s.maxCrater)
	fmt.Printf("Total casualties: %d\n", s.casualties)

	fmt.Println("\nBy region:")
	for _, r := range byCount(s.regions) {
		fmt.Printf("  %-14s %d\n", r, s.regions[r])
	}
}

// byCount orders keys by descending count, then by name.
func byCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func pct(n, total int) float64 {
	return 100 * float64(n) / float64(total)
}
