package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/present"
	"github.com/augur-forecast/augur/internal/session"
	"github.com/go-chi/render"
)

const (
	formFile    = "file"
	formHorizon = "period"

	multipartMemory = 32 << 20
)

// ForecastResponse is the json body of a successful forecast
type ForecastResponse struct {
	Horizon     int                `json:"horizon"`
	HistoryRows int                `json:"history_rows"`
	Equation    string             `json:"equation,omitempty"`
	Rows        []present.TableRow `json:"rows"`
}

type pageData struct {
	MaxHorizon   int
	Horizon      int
	Notice       string
	NoticeMillis int64
	Error        string
	Result       bool
	ChartDoc     string
	Equation     string
	DownloadURI  template.URL
	DownloadName string
	Table        []present.TableRow
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, s.newSession().View())
}

// handleForecastPage runs a fresh session with the submitted file and horizon and renders the
// page in its resulting state
func (s *Server) handleForecastPage(w http.ResponseWriter, r *http.Request) {
	v, err := s.runForecast(r)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		_ = render.Render(w, r, ProblemFor(r, err))
		return
	}
	if err != nil && v.State != session.StateWarning && v.State != session.StateFailed {
		// form errors never reached the session
		v.State = session.StateFailed
		v.Err = err
	}
	s.renderPage(w, r, v)
}

// handleForecastAPI runs the same pipeline and responds with json rows or a file attachment
func (s *Server) handleForecastAPI(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "xlsx" {
		_ = render.Render(w, r, ProblemFor(r, fmt.Errorf("%w, got %q", ErrUnknownFormat, format)))
		return
	}

	v, err := s.runForecast(r)
	if err != nil {
		_ = render.Render(w, r, ProblemFor(r, err))
		return
	}
	p := v.Presentation

	switch format {
	case "csv":
		attachment(w, present.CSVFileName, present.CSVContentType)
		_, _ = w.Write(p.CSV)
	case "xlsx":
		var buf bytes.Buffer
		if err := present.WriteXLSX(&buf, p.Result); err != nil {
			_ = render.Render(w, r, ProblemFor(r, err))
			return
		}
		attachment(w, present.XLSXFileName, present.XLSXContentType)
		_, _ = w.Write(buf.Bytes())
	default:
		render.JSON(w, r, ForecastResponse{
			Horizon:     p.Result.Horizon(),
			HistoryRows: len(p.Result.History()),
			Equation:    p.Result.Equation(),
			Rows:        p.Table,
		})
	}
}

// runForecast reads the multipart form into a new session and starts it
func (s *Server) runForecast(r *http.Request) (session.View, error) {
	start := time.Now()
	sess := s.newSession()

	v, err := s.submit(r, sess)
	rows := 0
	if v.HasResult() {
		rows = len(v.Presentation.Result.History())
	}
	s.metrics.ObserveForecast(outcome(err), time.Since(start), rows)
	return v, err
}

func (s *Server) submit(r *http.Request, sess *session.Session) (session.View, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return sess.View(), err
	}

	if raw := strings.TrimSpace(r.FormValue(formHorizon)); raw != "" {
		horizon, err := strconv.Atoi(raw)
		if err != nil {
			return sess.View(), fmt.Errorf("%w, %q is not a whole number", engine.ErrInvalidHorizon, raw)
		}
		sess.SetHorizon(horizon)
	}

	file, header, err := r.FormFile(formFile)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return sess.View(), err
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return sess.View(), err
		}
		sess.SelectFile(session.Upload{Name: header.Filename, Data: data})
	}
	return sess.Start(r.Context())
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, v session.View) {
	data := pageData{
		MaxHorizon: s.cfg.Forecast.MaxHorizon,
		Horizon:    v.Horizon,
		Notice:     v.Notice,
	}
	if v.Notice != "" {
		data.NoticeMillis = time.Until(v.NoticeExpires).Milliseconds()
		if data.NoticeMillis < 0 {
			data.NoticeMillis = 0
		}
	}
	if v.State == session.StateFailed && v.Err != nil {
		data.Error = v.Err.Error()
	}
	if v.HasResult() {
		p := v.Presentation
		data.Result = true
		data.ChartDoc = string(p.Chart)
		data.Equation = p.Result.Equation()
		data.DownloadURI = template.URL("data:" + present.CSVContentType + ";charset=utf-8;base64," +
			base64.StdEncoding.EncodeToString(p.CSV))
		data.DownloadName = present.CSVFileName
		data.Table = p.Table
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.ErrorContext(r.Context(), "unable to render page", "error", err.Error())
		_ = render.Render(w, r, ProblemFor(r, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func attachment(w http.ResponseWriter, name, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}
