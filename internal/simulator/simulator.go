// Package simulator is the request-facing front of the impact engine. It is
// shared by the HTTP API and the websocket roll feed.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/meteor-impact-service/data"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// ErrRollCount is returned when a caller asks for fewer than one meteor or
// more than the configured maximum.
var ErrRollCount = errors.New("roll count out of range")

var historicPresets = sync.OnceValues(func() ([]domain.ImpactRequest, error) {
	return domain.ParsePresets(data.HistoricImpacts)
})

// Service rolls meteors and computes impact reports, recording metrics and
// naming impact sites when a geocoder is configured.
type Service struct {
	sampler      *domain.Sampler
	geocoder     domain.Geocoder
	metrics      *observability.Metrics
	logger       *slog.Logger
	maxRollCount int
}

// New creates a Service. Pass a nil geocoder to disable site enrichment.
func New(sampler *domain.Sampler, geocoder domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger, maxRollCount int) *Service {
	return &Service{
		sampler:      sampler,
		geocoder:     geocoder,
		metrics:      metrics,
		logger:       logger,
		maxRollCount: maxRollCount,
	}
}

// MaxRollCount is the largest batch Roll accepts.
func (s *Service) MaxRollCount() int { return s.maxRollCount }

// Roll draws n meteors and simulates each impact.
func (s *Service) Roll(ctx context.Context, n int) ([]domain.Simulation, error) {
	if n < 1 || n > s.maxRollCount {
		return nil, fmt.Errorf("count %d not in [1, %d]: %w", n, s.maxRollCount, ErrRollCount)
	}

	sims := make([]domain.Simulation, 0, n)
	for range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim := domain.Simulate(s.sampler)
		s.metrics.ObserveRoll(sim.Meteor.Composition.String())
		sim.Report = s.finish(ctx, sim.Report)
		sims = append(sims, sim)
	}
	return sims, nil
}

// Impact validates a user-supplied request and computes its report.
func (s *Service) Impact(ctx context.Context, req domain.ImpactRequest) (domain.ImpactReport, error) {
	if err := req.Validate(); err != nil {
		return domain.ImpactReport{}, err
	}
	return s.finish(ctx, domain.BuildImpactReport(req)), nil
}

// Presets returns a report for every entry of the embedded historic catalog,
// in catalog order. Presets are not counted as computed impacts.
func (s *Service) Presets(ctx context.Context) ([]domain.ImpactReport, error) {
	reqs, err := historicPresets()
	if err != nil {
		return nil, err
	}

	reports := make([]domain.ImpactReport, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report := domain.BuildImpactReport(req)
		reports = append(reports, domain.EnrichWithGeocoding(ctx, report, s.geocoder, s.logger))
	}
	return reports, nil
}

func (s *Service) finish(ctx context.Context, report domain.ImpactReport) domain.ImpactReport {
	s.metrics.ObserveImpact(report.Outcome(), report.Metrics.EnergyMegatons)
	s.logger.Debug("impact computed",
		"report_id", report.ID,
		"outcome", report.Outcome(),
		"energy_mt", report.Metrics.EnergyMegatons,
		"casualties", report.Casualties,
	)
	return domain.EnrichWithGeocoding(ctx, report, s.geocoder, s.logger)
}
