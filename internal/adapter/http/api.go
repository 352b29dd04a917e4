package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/simulator"
)

const maxRequestBytes = 64 << 10

type api struct {
	sim    *simulator.Service
	logger *slog.Logger
}

// handleRoll serves GET /api/meteors?count=N.
func (a *api) handleRoll(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("count %q is not an integer", v))
			return
		}
		count = n
	}

	sims, err := a.sim.Roll(r.Context(), count)
	if err != nil {
		if errors.Is(err, simulator.ErrRollCount) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a.logger.Warn("roll aborted", "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, sims)
}

// handleRandom serves GET /api/meteors/random.
func (a *api) handleRandom(w http.ResponseWriter, r *http.Request) {
	sims, err := a.sim.Roll(r.Context(), 1)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, sims[0])
}

// handlePresets serves GET /api/meteors/presets.
func (a *api) handlePresets(w http.ResponseWriter, r *http.Request) {
	reports, err := a.sim.Presets(r.Context())
	if err != nil {
		a.logger.Error("presets unavailable", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// handleImpact serves POST /api/impact.
func (a *api) handleImpact(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	req, err := domain.DecodeImpactRequest(dec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := a.sim.Impact(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleZoom serves GET /api/zoom?radius=R.
func handleZoom(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("radius")
	radius, err := strconv.ParseFloat(v, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("radius %q is not a number", v))
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"zoom": domain.ZoomForRadius(radius)})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers are already sent
}
