package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// ImpactTransformer implements Transformer: it parses and validates a
// request, runs the impact engine, and optionally names the impact site.
type ImpactTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates an ImpactTransformer. Pass a nil geocoder to
// disable site enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *ImpactTransformer {
	return &ImpactTransformer{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *ImpactTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.ImpactReport, error) {
	req, err := domain.ParseImpactRequest(raw)
	if err != nil {
		return domain.ImpactReport{}, err
	}
	if err := req.Validate(); err != nil {
		return domain.ImpactReport{}, err
	}

	report := domain.BuildImpactReport(req)
	t.metrics.ObserveImpact(report.Outcome(), report.Metrics.EnergyMegatons)

	return domain.EnrichWithGeocoding(ctx, report, t.geocoder, t.logger), nil
}
