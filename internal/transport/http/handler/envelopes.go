package handler

import (
	"encoding/json"
	"net/http"
)

// ResultEnvelope is the response wrapper for the OTP endpoints.
type ResultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// HealthEnvelope is returned by the health check.
type HealthEnvelope struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// IndexEnvelope describes the API at the root path.
type IndexEnvelope struct {
	Message   string    `json:"message"`
	Endpoints Endpoints `json:"endpoints"`
}

type Endpoints struct {
	SendOTP   string `json:"sendOtp"`
	VerifyOTP string `json:"verifyOtp"`
	Health    string `json:"health"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
