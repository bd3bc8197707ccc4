package api

import (
	"context"
	"net/http"
	"time"

	"github.com/wazo-platform/call-logd/internal/store"
)

// StatusResponse reports process liveness plus the health of the
// database call-logd stores call logs in. The bus and the directory
// service are not checked.
type StatusResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type StatusHandler struct {
	db        *store.DB
	version   string
	startTime time.Time
}

func NewStatusHandler(db *store.DB, version string, startTime time.Time) *StatusHandler {
	return &StatusHandler{db: db, version: version, startTime: startTime}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := "ok"

	if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = "fail: " + err.Error()
		status = "fail"
	} else {
		checks["database"] = "ok"
	}

	resp := StatusResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, resp)
}
