package handler

import (
	"net/http"
	"time"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// HealthHandler serves the static index and health endpoints.
type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler { return &HealthHandler{now: time.Now} }

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthEnvelope{
		Status:    "Server is running",
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}

func (h *HealthHandler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, IndexEnvelope{
		Message: "B-Buddy API Server",
		Endpoints: Endpoints{
			SendOTP:   "POST /api/send-otp",
			VerifyOTP: "POST /api/verify-otp",
			Health:    "GET /api/health",
		},
	})
}
