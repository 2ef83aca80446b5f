package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/logging"
	"github.com/augur-forecast/augur/internal/metrics"
	"github.com/augur-forecast/augur/internal/series"
	"github.com/augur-forecast/augur/internal/session"
	"github.com/go-chi/render"
)

// Problem types
const (
	TypeMissingFile     = "/errors/missing-file"
	TypeInvalidHorizon  = "/errors/invalid-horizon"
	TypeInvalidFormat   = "/errors/invalid-format"
	TypeInvalidInput    = "/errors/invalid-input"
	TypeFitFailed       = "/errors/fit-failed"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeRateLimit       = "/errors/rate-limit"
	TypeBusy            = "/errors/busy"
	TypeTimeout         = "/errors/timeout"
	TypeInternal        = "/errors/internal"
)

var ErrUnknownFormat = errors.New("unknown format, expected json, csv or xlsx")

// Problem is an RFC 7807 problem details response
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Render sets the response status for chi/render
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// NewProblem builds a problem for the request
func NewProblem(r *http.Request, status int, typ, title, detail string) *Problem {
	return &Problem{
		Type:      typ,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: logging.RequestID(r.Context()),
	}
}

// ProblemFor maps a pipeline error to its problem details
func ProblemFor(r *http.Request, err error) *Problem {
	var (
		maxErr *http.MaxBytesError
		inErr  *series.InputError
		fitErr *engine.FitError
	)
	switch {
	case errors.As(err, &maxErr):
		return NewProblem(r, http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large", err.Error())
	case errors.Is(err, series.ErrMissingFile):
		return NewProblem(r, http.StatusBadRequest, TypeMissingFile, "Missing File", session.MissingFileNotice)
	case errors.Is(err, engine.ErrInvalidHorizon):
		return NewProblem(r, http.StatusBadRequest, TypeInvalidHorizon, "Invalid Horizon", err.Error())
	case errors.Is(err, ErrUnknownFormat):
		return NewProblem(r, http.StatusBadRequest, TypeInvalidFormat, "Invalid Format", err.Error())
	case errors.As(err, &inErr):
		return NewProblem(r, http.StatusUnprocessableEntity, TypeInvalidInput, "Invalid Input", err.Error())
	case errors.As(err, &fitErr):
		return NewProblem(r, http.StatusUnprocessableEntity, TypeFitFailed, "Forecast Failed", err.Error())
	case errors.Is(err, session.ErrBusy):
		return NewProblem(r, http.StatusConflict, TypeBusy, "Busy", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewProblem(r, http.StatusServiceUnavailable, TypeTimeout, "Request Cancelled", err.Error())
	default:
		return NewProblem(r, http.StatusInternalServerError, TypeInternal, "Internal Server Error", "an unexpected error occurred")
	}
}

// outcome maps a pipeline error to its metrics label
func outcome(err error) string {
	var (
		maxErr *http.MaxBytesError
		inErr  *series.InputError
		fitErr *engine.FitError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &maxErr):
		return metrics.OutcomeInputError
	case errors.Is(err, series.ErrMissingFile):
		return metrics.OutcomeMissingFile
	case errors.Is(err, engine.ErrInvalidHorizon):
		return metrics.OutcomeInvalidHorizon
	case errors.Is(err, session.ErrBusy):
		return metrics.OutcomeBusy
	case errors.As(err, &inErr):
		return metrics.OutcomeInputError
	case errors.As(err, &fitErr):
		return metrics.OutcomeFitError
	default:
		return metrics.OutcomeError
	}
}
