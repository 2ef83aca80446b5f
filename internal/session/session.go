// Package session drives one user's upload, horizon and start actions through the load, fit
// and present pipeline. Every action returns an immutable View of the resulting state.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/present"
	"github.com/augur-forecast/augur/internal/series"
)

const (
	DefaultHorizon    = engine.DefaultHorizon
	DefaultWarningTTL = 3 * time.Second

	MissingFileNotice = "Please upload a file"
)

var ErrBusy = errors.New("a forecast is already running in this session")

// Upload is a selected file
type Upload struct {
	Name string
	Data []byte
}

// Presentation holds every rendering of a forecast result
type Presentation struct {
	Result *engine.ForecastResult
	Table  []present.TableRow
	Chart  []byte
	CSV    []byte
}

// View is a snapshot of a session. Err is set in the failed state and Notice in the warning
// state.
type View struct {
	State         State
	FileName      string
	Horizon       int
	Notice        string
	NoticeExpires time.Time
	Err           error
	Presentation  *Presentation
}

// HasResult reports whether the view carries a presented forecast
func (v View) HasResult() bool {
	return v.State == StatePresented && v.Presentation != nil
}

type horizonValidator interface {
	ValidateHorizon(horizon int) error
}

// Session holds the state of a single user interaction. It is safe to call from multiple
// goroutines but only one Start runs at a time.
type Session struct {
	engine     engine.Engine
	now        func() time.Time
	logger     *slog.Logger
	warningTTL time.Duration

	mu            sync.Mutex
	state         State
	upload        *Upload
	horizon       int
	notice        string
	noticeExpires time.Time
	err           error
	presentation  *Presentation
	generation    int
	running       bool
}

// Option configures a session
type Option func(*Session)

// WithClock replaces time.Now for the warning expiry
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHorizon sets the initial horizon
func WithHorizon(horizon int) Option {
	return func(s *Session) {
		s.horizon = horizon
	}
}

// WithWarningTTL sets how long the missing file warning is shown
func WithWarningTTL(ttl time.Duration) Option {
	return func(s *Session) {
		s.warningTTL = ttl
	}
}

// New returns an idle session forecasting with e
func New(e engine.Engine, opts ...Option) *Session {
	s := &Session{
		engine:     e,
		now:        time.Now,
		logger:     slog.Default(),
		warningTTL: DefaultWarningTTL,
		horizon:    DefaultHorizon,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// SelectFile records the upload and moves to ready, clearing any previous result or error
func (s *Session) SelectFile(u Upload) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, len(u.Data))
	copy(data, u.Data)
	s.upload = &Upload{Name: u.Name, Data: data}
	s.state = StateReady
	s.clear()
	s.generation++
	return s.view()
}

// SetHorizon records the number of days to forecast. It is validated when the forecast starts.
func (s *Session) SetHorizon(horizon int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	s.horizon = horizon
	return s.view()
}

// Start runs the forecast for the selected file. Without a file the session shows a warning
// that expires on its own. Input and fit errors move the session to failed and are also
// returned.
func (s *Session) Start(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.running {
		v := s.view()
		s.mu.Unlock()
		return v, ErrBusy
	}
	s.clear()

	if s.upload == nil || len(s.upload.Data) == 0 {
		s.state = StateWarning
		s.notice = MissingFileNotice
		s.noticeExpires = s.now().Add(s.warningTTL)
		v := s.view()
		s.mu.Unlock()
		return v, &series.InputError{Err: series.ErrMissingFile}
	}

	s.state = StateForecasting
	s.running = true
	s.generation++
	gen := s.generation
	upload := *s.upload
	horizon := s.horizon
	s.mu.Unlock()

	start := time.Now()
	p, err := s.run(ctx, upload, horizon)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if gen != s.generation {
		// a new file was selected while forecasting
		return s.view(), nil
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.logger.InfoContext(ctx, "forecast failed", "file", upload.Name, "horizon", horizon, "error", err.Error())
		return s.view(), err
	}
	s.state = StatePresented
	s.presentation = p
	s.logger.InfoContext(ctx, "forecast presented",
		"file", upload.Name,
		"horizon", horizon,
		"rows", p.Result.Len(),
		"duration", time.Since(start).String(),
	)
	return s.view(), nil
}

// View returns the current snapshot. An expired warning returns the session to idle.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	return s.view()
}

func (s *Session) run(ctx context.Context, upload Upload, horizon int) (*Presentation, error) {
	if v, ok := s.engine.(horizonValidator); ok {
		if err := v.ValidateHorizon(horizon); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := series.Load(upload.Data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.engine.FitAndForecast(h, horizon)
	if err != nil {
		return nil, err
	}
	return Present(res)
}

// Present renders the chart, table and csv of a result
func Present(res *engine.ForecastResult) (*Presentation, error) {
	var chart bytes.Buffer
	if err := present.RenderChart(&chart, res); err != nil {
		return nil, fmt.Errorf("unable to render chart, %w", err)
	}
	var csvBuf bytes.Buffer
	if err := present.WriteCSV(&csvBuf, res); err != nil {
		return nil, fmt.Errorf("unable to write csv, %w", err)
	}
	return &Presentation{
		Result: res,
		Table:  present.Table(res),
		Chart:  chart.Bytes(),
		CSV:    csvBuf.Bytes(),
	}, nil
}

func (s *Session) clear() {
	s.notice = ""
	s.noticeExpires = time.Time{}
	s.err = nil
	s.presentation = nil
}

func (s *Session) expire() {
	if s.state == StateWarning && !s.now().Before(s.noticeExpires) {
		s.state = StateIdle
		s.clear()
	}
}

func (s *Session) view() View {
	v := View{
		State:         s.state,
		Horizon:       s.horizon,
		Notice:        s.notice,
		NoticeExpires: s.noticeExpires,
		Err:           s.err,
		Presentation:  s.presentation,
	}
	if s.upload != nil {
		v.FileName = s.upload.Name
	}
	return v
}
