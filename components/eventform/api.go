package eventform

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/eventform/internal/delivery"
	"github.com/yanizio/eventform/internal/event"
	"github.com/yanizio/eventform/internal/logger"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/submission"
)

// TokenHeader carries the CSRF token on API mutations.
const TokenHeader = "X-CSRF-Token"

// stateResponse is the body of every API response.
type stateResponse struct {
	submission.Snapshot
	CSRFToken string `json:"csrfToken,omitempty"`
	Error     string `json:"error,omitempty"`
}

type fieldUpdate struct {
	Value string `json:"value"`
}

func (c *Component) apiState(w http.ResponseWriter, r *http.Request) {
	ctl := session.FromContext(r.Context())
	tok, err := c.csrf.Token(session.IDFromContext(r.Context()))
	if err != nil {
		logger.FromContext(r.Context()).Errorw("csrf token", "err", err)
		writeJSON(w, http.StatusInternalServerError, stateResponse{Snapshot: ctl.Snapshot(), Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Snapshot: ctl.Snapshot(), CSRFToken: tok})
}

func (c *Component) apiUpdateField(w http.ResponseWriter, r *http.Request) {
	ctl := session.FromContext(r.Context())

	var body fieldUpdate
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, stateResponse{Snapshot: ctl.Snapshot(), Error: "body must be {\"value\": string}"})
		return
	}

	err := ctl.UpdateField(event.Field(chi.URLParam(r, "field")), body.Value)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stateResponse{Snapshot: ctl.Snapshot()})
	case errors.Is(err, submission.ErrUnknownField):
		writeJSON(w, http.StatusNotFound, stateResponse{Snapshot: ctl.Snapshot(), Error: err.Error()})
	case errors.Is(err, submission.ErrBusy):
		writeJSON(w, http.StatusConflict, stateResponse{Snapshot: ctl.Snapshot(), Error: err.Error()})
	default:
		logger.FromContext(r.Context()).Errorw("update field", "err", err)
		writeJSON(w, http.StatusInternalServerError, stateResponse{Snapshot: ctl.Snapshot(), Error: "internal error"})
	}
}

// apiSubmit maps the submit result to a status: 200 created, 422 field
// errors, 502 delivery failure, 409 already in flight.
func (c *Component) apiSubmit(w http.ResponseWriter, r *http.Request) {
	ctl := session.FromContext(r.Context())
	err := c.submit(r.Context(), ctl)

	var (
		ve *event.ValidationError
		de *delivery.Error
	)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stateResponse{Snapshot: ctl.Snapshot()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, stateResponse{Snapshot: ctl.Snapshot(), Error: "validation failed"})
	case errors.As(err, &de):
		// The cause stays in the log; the client only learns delivery failed.
		logger.FromContext(r.Context()).Warnw("submit failed", "err", err)
		writeJSON(w, http.StatusBadGateway, stateResponse{Snapshot: ctl.Snapshot(), Error: "delivery failed"})
	case errors.Is(err, submission.ErrInFlight):
		writeJSON(w, http.StatusConflict, stateResponse{Snapshot: ctl.Snapshot(), Error: err.Error()})
	default:
		logger.FromContext(r.Context()).Errorw("submit", "err", err)
		writeJSON(w, http.StatusInternalServerError, stateResponse{Snapshot: ctl.Snapshot(), Error: "internal error"})
	}
}

func (c *Component) apiDismiss(w http.ResponseWriter, r *http.Request) {
	ctl := session.FromContext(r.Context())
	ctl.DismissNotification()
	writeJSON(w, http.StatusOK, stateResponse{Snapshot: ctl.Snapshot()})
}

// requireToken rejects API mutations without a valid X-CSRF-Token.
func (c *Component) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.csrf.Verify(session.IDFromContext(r.Context()), r.Header.Get(TokenHeader)) {
			writeJSON(w, http.StatusForbidden, stateResponse{
				Snapshot: session.FromContext(r.Context()).Snapshot(),
				Error:    "missing or invalid " + TokenHeader,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
