package handler

import (
	"net/http"
	"time"

	"sake-recommendation/internal/domain"
)

type healthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
	Version     string  `json:"version"`
	Service     string  `json:"service"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   domain.FormatTimestamp(now),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.environment,
		Version:     h.version,
		Service:     serviceName,
	})
}
