package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"flight_board/internal/board"
	"flight_board/internal/cache"
	"flight_board/internal/metrics"
	"flight_board/internal/models"

	"go.uber.org/zap"
)

// BoardService is what the flight handlers need from the service layer.
type BoardService interface {
	Arrivals(ctx context.Context, date string) (*models.BoardResponse, error)
	Departures(ctx context.Context, date string) (*models.BoardResponse, error)
	AllFlights(ctx context.Context, date string) (*models.AllFlightsResponse, error)
}

type FlightHandler struct {
	service BoardService
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	errs    errorResponder
}

func NewFlightHandler(service BoardService, c cache.Cache, ttl time.Duration, logger *zap.Logger, exposeErrors bool) *FlightHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightHandler{
		service: service,
		cache:   c,
		ttl:     ttl,
		logger:  logger,
		errs:    errorResponder{logger: logger, exposeErrors: exposeErrors},
	}
}

func dateParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("date"))
}

// GET /api/arrivals?date=YYYY-MM-DD
// 200: { "flights": [...], "total": n } or the past-date marker
// 400: invalid date
// 500: { "error": "..." }
func (h *FlightHandler) GetArrivals(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Arrivals(r.Context(), dateParam(r))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/departures?date=YYYY-MM-DD
func (h *FlightHandler) GetDepartures(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Departures(r.Context(), dateParam(r))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/all_flights?date=YYYY-MM-DD
// 200: { "flights": [...] }
// 400: { "error": "Invalid date format. Expected YYYY-MM-DD." }
// 500: { "error": "..." }
func (h *FlightHandler) GetAllFlights(w http.ResponseWriter, r *http.Request) {
	date := dateParam(r)

	// Only explicit, well-formed dates are cached; "today" moves.
	var cacheKey string
	if h.cache != nil && date != "" {
		if _, err := board.ParseCivilDate(date); err != nil {
			h.errs.write(w, r, err)
			return
		}
		cacheKey = cache.AllFlightsKey(date)
		if b, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
			metrics.IncCacheHit(cache.KindAllFlights)
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, b)
			return
		}
	}

	resp, err := h.service.AllFlights(r.Context(), date)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(r.Context(), cacheKey, b, h.ttl); err != nil {
			h.logger.Warn("cache store failed", zap.String("key", cacheKey), zap.Error(err))
		}
		metrics.IncCacheMiss(cache.KindAllFlights)
		w.Header().Set("X-Cache", "MISS")
	}

	writeRawJSON(w, http.StatusOK, append(b, '\n'))
}
