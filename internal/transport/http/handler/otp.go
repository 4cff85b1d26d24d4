package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bbuddy-otp/internal/application/otp"
	"github.com/bbuddy-otp/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

// OTPHandler handles the send/verify OTP endpoints.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	fields := requestFields(r)
	email, _ := textField(fields["email"])
	if err := h.svc.Issue(r.Context(), otp.IssueRequest{Email: email}); err != nil {
		h.fail(w, r, err, "Failed to send OTP")
		return
	}
	writeJSON(w, http.StatusOK, ResultEnvelope{Success: true, Message: "OTP sent successfully"})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	fields := requestFields(r)
	email, _ := textField(fields["email"])
	code, isString := textField(fields["otp"])
	req := otp.VerifyRequest{
		Email:        email,
		OTP:          code,
		OTPNotString: code != "" && !isString,
	}
	if err := h.svc.Verify(r.Context(), req); err != nil {
		h.fail(w, r, err, "Failed to verify OTP")
		return
	}
	writeJSON(w, http.StatusOK, ResultEnvelope{Success: true, Message: "OTP verified successfully"})
}

// requestFields reads a JSON object body into raw fields. A missing,
// malformed or non-object body yields no fields, so the service reports them
// as missing.
func requestFields(r *http.Request) map[string]json.RawMessage {
	fields := map[string]json.RawMessage{}
	if r.Body == nil {
		return fields
	}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

// textField reads one field with JavaScript truthiness: absent, null, false,
// 0 and "" all come back empty. Strings come back unquoted with isString set;
// any other value comes back as its compact JSON text.
func textField(raw json.RawMessage) (text string, isString bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		if !t {
			return "", false
		}
	case float64:
		if t == 0 {
			return "", false
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw), false
	}
	return buf.String(), false
}

// fail maps client-caused OTP errors to 400 and everything else to 500 with
// the underlying error text.
func (h *OTPHandler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var oe *domain.OTPError
	if errors.As(err, &oe) && !errors.Is(oe.Kind, domain.ErrDelivery) {
		writeJSON(w, http.StatusBadRequest, ResultEnvelope{Message: oe.Message})
		return
	}

	slog.Error(fallback, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	env := ResultEnvelope{Message: fallback, Error: err.Error()}
	if oe != nil {
		env.Message = oe.Message
		env.Error = oe.Cause()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}
