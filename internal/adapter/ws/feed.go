// Package ws serves the interactive roll feed over a websocket. A client
// sends {"type":"roll"} or {"type":"impact","request":{...}} frames and
// receives one response frame per request, in order.
package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/simulator"
	"github.com/gorilla/websocket"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

// Frame types.
const (
	TypeRoll       = "roll"
	TypeImpact     = "impact"
	TypeSimulation = "simulation"
	TypeReport     = "report"
	TypeError      = "error"
)

// Inbound is a client request frame. Request is decoded only for impact
// frames, with the same required fields as POST /api/impact.
type Inbound struct {
	Type    string          `json:"type"`
	Count   int             `json:"count,omitempty"`
	Request json.RawMessage `json:"request,omitempty"`
}

// Outbound is a server response frame. Exactly one payload field is set.
type Outbound struct {
	Type        string               `json:"type"`
	Simulations []domain.Simulation  `json:"simulations,omitempty"`
	Report      *domain.ImpactReport `json:"report,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Handler upgrades requests to websocket connections and answers frames
// from a simulator.Service.
type Handler struct {
	sim      *simulator.Service
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a feed handler. Browsers may connect from the serving
// host or from one of allowedOrigins (scheme://host[:port]); other origins
// get 403. Requests without an Origin header come from non-browser clients
// and are accepted.
func NewHandler(sim *simulator.Service, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		sim: sim,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer conn.Close()

	h.logger.Debug("roll feed connected", "remote_addr", r.RemoteAddr)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("roll feed read failed", "error", err)
			}
			return
		}

		out := h.answer(r, data)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			h.logger.Warn("roll feed write failed", "error", err)
			return
		}
	}
}

func (h *Handler) answer(r *http.Request, data []byte) Outbound {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return errorFrame(err)
	}

	switch in.Type {
	case TypeRoll:
		count := in.Count
		if count == 0 {
			count = 1
		}
		sims, err := h.sim.Roll(r.Context(), count)
		if err != nil {
			return errorFrame(err)
		}
		return Outbound{Type: TypeSimulation, Simulations: sims}

	case TypeImpact:
		if len(in.Request) == 0 {
			return errorFrame(errors.New("impact frame has no request"))
		}
		req, err := domain.DecodeImpactRequest(json.NewDecoder(bytes.NewReader(in.Request)))
		if err != nil {
			return errorFrame(err)
		}
		report, err := h.sim.Impact(r.Context(), req)
		if err != nil {
			return errorFrame(err)
		}
		return Outbound{Type: TypeReport, Report: &report}

	default:
		return errorFrame(fmt.Errorf("unknown frame type %q", in.Type))
	}
}

func errorFrame(err error) Outbound {
	return Outbound{Type: TypeError, Error: err.Error()}
}

// keepAlive pings the peer until done is closed or a ping fails.
// WriteControl is safe to call alongside the handler's writes.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
