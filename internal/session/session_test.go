package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/augur-forecast/augur/internal/config"
	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// blockingEngine waits for release before delegating to the additive engine
type blockingEngine struct {
	started chan struct{}
	release chan struct{}
	next    engine.Engine
}

func (b *blockingEngine) FitAndForecast(h series.Historical, horizon int) (*engine.ForecastResult, error) {
	close(b.started)
	<-b.release
	return b.next.FitAndForecast(h, horizon)
}

func newEngine() *engine.Additive {
	return engine.NewAdditive(config.Default().Forecast, nil)
}

func linearCSV(n int) []byte {
	var sb strings.Builder
	sb.WriteString("ds,y\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%d\n", start.AddDate(0, 0, i).Format(time.DateOnly), i+1)
	}
	return []byte(sb.String())
}

func TestNewSession(t *testing.T) {
	s := New(newEngine())
	v := s.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, DefaultHorizon, v.Horizon)
	assert.False(t, v.HasResult())
}

func TestStartPresentsForecast(t *testing.T) {
	s := New(newEngine())
	v := s.SelectFile(Upload{Name: "example.csv", Data: linearCSV(10)})
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, "example.csv", v.FileName)

	v = s.SetHorizon(5)
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, 5, v.Horizon)

	v, err := s.Start(context.Background())
	require.Nil(t, err)
	require.True(t, v.HasResult())
	assert.Equal(t, StatePresented, v.State)

	p := v.Presentation
	assert.Equal(t, 15, p.Result.Len())
	require.Len(t, p.Table, 15)
	assert.Equal(t, "2024-01-15", p.Table[0].DS)
	assert.Equal(t, "2024-01-01", p.Table[14].DS)
	assert.True(t, strings.HasPrefix(string(p.CSV), ",ds,yhat,yhat_lower,yhat_upper\n0,2024-01-01,"))
	assert.NotEmpty(t, p.Chart)

	// presented results stay until the next action
	assert.Equal(t, StatePresented, s.View().State)

	v = s.SelectFile(Upload{Name: "other.csv", Data: linearCSV(3)})
	assert.Equal(t, StateReady, v.State)
	assert.Nil(t, v.Presentation)
}

func TestStartWithoutFile(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(newEngine(), WithClock(clock.Now))

	v, err := s.Start(context.Background())
	assert.ErrorIs(t, err, series.ErrMissingFile)
	assert.Equal(t, StateWarning, v.State)
	assert.Equal(t, MissingFileNotice, v.Notice)
	assert.Equal(t, clock.Now().Add(DefaultWarningTTL), v.NoticeExpires)
	assert.False(t, v.HasResult())

	clock.Advance(2 * time.Second)
	assert.Equal(t, StateWarning, s.View().State)

	clock.Advance(time.Second)
	v = s.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Notice)
	assert.Nil(t, v.Presentation)
}

func TestStartWithEmptyFile(t *testing.T) {
	s := New(newEngine())
	s.SelectFile(Upload{Name: "empty.csv"})

	v, err := s.Start(context.Background())
	assert.ErrorIs(t, err, series.ErrMissingFile)
	assert.Equal(t, StateWarning, v.State)
}

func TestStartFailures(t *testing.T) {
	testData := map[string]struct {
		data    []byte
		horizon int
		err     error
	}{
		"missing y column": {
			data:    []byte("ds,value\n2024-01-01,1\n2024-01-02,2\n"),
			horizon: 5,
			err:     series.ErrMissingColumn,
		},
		"zero horizon": {
			data:    linearCSV(10),
			horizon: 0,
			err:     engine.ErrInvalidHorizon,
		},
		"negative horizon": {
			data:    linearCSV(10),
			horizon: -1,
			err:     engine.ErrInvalidHorizon,
		},
		"all values missing": {
			data:    []byte("ds,y\n2024-01-01,NA\n2024-01-02,\n"),
			horizon: 5,
			err:     engine.ErrInsufficientHistory,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s := New(newEngine())
			s.SelectFile(Upload{Name: "input.csv", Data: td.data})
			s.SetHorizon(td.horizon)

			v, err := s.Start(context.Background())
			assert.ErrorIs(t, err, td.err)
			assert.Equal(t, StateFailed, v.State)
			assert.ErrorIs(t, v.Err, td.err)
			assert.Nil(t, v.Presentation)
			assert.False(t, v.HasResult())

			// failures stay visible
			assert.Equal(t, StateFailed, s.View().State)
		})
	}
}

func TestStartCancelled(t *testing.T) {
	s := New(newEngine())
	s.SelectFile(Upload{Name: "input.csv", Data: linearCSV(10)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, v.State)
}

func TestStartBusy(t *testing.T) {
	blocking := &blockingEngine{
		started: make(chan struct{}),
		release: make(chan struct{}),
		next:    newEngine(),
	}
	s := New(blocking)
	s.SelectFile(Upload{Name: "input.csv", Data: linearCSV(10)})
	s.SetHorizon(3)

	done := make(chan error)
	go func() {
		_, err := s.Start(context.Background())
		done <- err
	}()

	<-blocking.started
	assert.Equal(t, StateForecasting, s.View().State)

	v, err := s.Start(context.Background())
	assert.True(t, errors.Is(err, ErrBusy))
	assert.Equal(t, StateForecasting, v.State)
	assert.Equal(t, "input.csv", v.FileName)
	assert.Equal(t, 3, v.Horizon)

	close(blocking.release)
	require.Nil(t, <-done)
	assert.Equal(t, StatePresented, s.View().State)
}

func TestSelectFileWhileForecasting(t *testing.T) {
	blocking := &blockingEngine{
		started: make(chan struct{}),
		release: make(chan struct{}),
		next:    newEngine(),
	}
	s := New(blocking)
	s.SelectFile(Upload{Name: "first.csv", Data: linearCSV(10)})

	done := make(chan View)
	go func() {
		v, _ := s.Start(context.Background())
		done <- v
	}()

	<-blocking.started
	s.SelectFile(Upload{Name: "second.csv", Data: linearCSV(5)})
	assert.Equal(t, StateReady, s.View().State)

	busy, err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, "second.csv", busy.FileName)
	close(blocking.release)

	v := <-done
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, "second.csv", v.FileName)
	assert.Nil(t, v.Presentation)

	// the first fit has finished, so the new file can start
	blocking.started = make(chan struct{})
	v, err = s.Start(context.Background())
	require.Nil(t, err)
	assert.Equal(t, StatePresented, v.State)
}

func TestSelectFileCopiesData(t *testing.T) {
	data := linearCSV(10)
	s := New(newEngine(), WithHorizon(2))
	s.SelectFile(Upload{Name: "input.csv", Data: data})
	copy(data, "garbage")

	v, err := s.Start(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 12, v.Presentation.Result.Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "presented", StatePresented.String())
	assert.Equal(t, "unknown", State(42).String())
}
