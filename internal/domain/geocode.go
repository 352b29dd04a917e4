package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attempts to name the impact site of a report.
// If geocoder is nil or geocoding fails, the report is returned with
// GeoSource set accordingly (graceful degradation). Open-ocean sites are
// never looked up.
func EnrichWithGeocoding(ctx context.Context, report ImpactReport, geocoder Geocoder, logger *slog.Logger) ImpactReport {
	if geocoder == nil {
		return report
	}

	geo := report.Request.Geo
	if geo == nil {
		report.GeoSource = "original"
		return report
	}
	if report.Request.Region == OpenOcean {
		report.GeoSource = "ocean"
		return report
	}

	result, err := geocoder.ReverseGeocode(ctx, geo.Lat, geo.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"report_id", report.ID,
			"lat", geo.Lat,
			"lon", geo.Lon,
			"error", err,
		)
		report.GeoSource = "failed"
		return report
	}
	if result.FormattedAddress == "" {
		report.GeoSource = "original"
		return report
	}

	report.FormattedAddress = result.FormattedAddress
	report.PlaceName = result.PlaceName
	report.GeoConfidence = result.Confidence
	report.GeoSource = "reverse"
	return report
}
