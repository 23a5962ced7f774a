package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	now time.Time

	mu        sync.Mutex
	intervals []time.Duration
}

func (f *fakeClock) Now() time.Time { return f.now }

// NewTicker returns a ticker that never fires; tests drive ticks by hand.
func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	f.intervals = append(f.intervals, d)
	f.mu.Unlock()
	return &fakeTicker{c: make(chan time.Time)}
}

type fakeTicker struct {
	c chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

type fakeProjects struct {
	projects []models.Project
	err      error
}

func (f *fakeProjects) ListProjects(context.Context) ([]models.Project, error) {
	return f.projects, f.err
}

type fakeEntries struct {
	mu       sync.Mutex
	requests []models.CreateTimeEntryRequest
	err      error
	release  chan struct{}
	entered  chan struct{}
}

func (f *fakeEntries) CreateTimedEntry(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.TimeEntry{
		ID:          int64(len(f.requests)),
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Date:        req.Date,
		Duration:    req.Duration,
	}, nil
}

func (f *fakeEntries) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memSlot struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func (m *memSlot) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.err
}

func (m *memSlot) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

type harness struct {
	c        *Controller
	clock    *fakeClock
	projects *fakeProjects
	entries  *fakeEntries
	feed     *notify.Feed
	slot     *memSlot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: &fakeClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		projects: &fakeProjects{projects: []models.Project{
			{ID: 7, Name: "Acme Site"},
			{ID: 9, Name: "Internal"},
		}},
		entries: &fakeEntries{},
		feed:    notify.NewFeed(50),
		slot:    &memSlot{},
	}
	h.c = h.newController(t)
	require.NoError(t, h.c.Load(context.Background()))
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) newController(t *testing.T) *Controller {
	return NewController(h.projects, h.entries, h.feed, h.slot, h.clock, zaptest.NewLogger(t))
}

// tick delivers n ticks to the controller's current tick loop.
func tick(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		loop := c.loop
		c.mu.Unlock()
		if loop == nil {
			return
		}
		c.advance(loop)
	}
}

func (h *harness) lastMessage() notify.Notification {
	items := h.feed.Recent(1)
	if len(items) == 0 {
		return notify.Notification{}
	}
	return items[0]
}

func TestController_StartsIdle(t *testing.T) {
	h := newHarness(t)

	s := h.c.State()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.False(t, s.IsRunning())
	assert.False(t, s.IsPaused())
	assert.Zero(t, s.ElapsedSeconds)
	assert.Len(t, h.c.Projects(), 2)
}

func TestController_IdleOperationsAreNoOps(t *testing.T) {
	h := newHarness(t)

	h.c.Pause()
	h.c.Resume()
	entry, err := h.c.Stop(context.Background())

	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, PhaseIdle, h.c.State().Phase)
	assert.Zero(t, h.c.State().ElapsedSeconds)
	assert.Zero(t, h.entries.count())
}

func TestController_StartRunAndTick(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.c.Start(7, "landing page"))
	tick(h.c, 5)

	s := h.c.State()
	assert.Equal(t, PhaseRunning, s.Phase)
	assert.True(t, s.IsRunning())
	assert.Equal(t, int64(5), s.ElapsedSeconds)
	assert.Equal(t, int64(7), s.ProjectID)
	assert.Equal(t, "landing page", s.Description)
	assert.True(t, s.Visible)
	assert.Equal(t, h.clock.now, s.StartedAt)
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, "Timer started for Acme Site", h.feed.Recent(0)[0].Message)
}

func TestController_StartUnknownProject(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 3)
	before := h.c.State()

	err := h.c.Start(42, "")

	require.ErrorIs(t, err, ErrUnknownProject)
	assert.Equal(t, before, h.c.State())
	msg := h.lastMessage()
	assert.Equal(t, notify.LevelError, msg.Level)
	assert.Equal(t, "Please select a valid project before starting the timer", msg.Message)
}

func TestController_StartDiscardsPreviousSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, "first"))
	tick(h.c, 30)
	first := h.c.State()

	require.NoError(t, h.c.Start(9, "second"))

	s := h.c.State()
	assert.Equal(t, int64(9), s.ProjectID)
	assert.Zero(t, s.ElapsedSeconds)
	assert.NotEqual(t, first.SessionID, s.SessionID)
	assert.Zero(t, h.entries.count())
}

func TestController_PauseFreezesElapsed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 4)

	h.c.Pause()
	tick(h.c, 10)

	s := h.c.State()
	assert.Equal(t, PhasePaused, s.Phase)
	assert.True(t, s.IsRunning())
	assert.True(t, s.IsPaused())
	assert.Equal(t, int64(4), s.ElapsedSeconds)
	assert.Equal(t, "Timer paused", h.lastMessage().Message)

	h.c.Pause()
	assert.Equal(t, "Timer paused", h.lastMessage().Message)

	h.c.Resume()
	tick(h.c, 2)
	assert.Equal(t, PhaseRunning, h.c.State().Phase)
	assert.Equal(t, int64(6), h.c.State().ElapsedSeconds)
	assert.Equal(t, "Timer resumed", h.lastMessage().Message)
}

func TestController_StaleTicksAreDropped(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))

	h.c.mu.Lock()
	stale := h.c.loop
	h.c.mu.Unlock()

	h.c.Pause()
	h.c.Resume()
	h.c.advance(stale)

	assert.Zero(t, h.c.State().ElapsedSeconds)
}

func TestController_StopCreatesEntry(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 90)

	entry, err := h.c.Stop(context.Background())

	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, h.entries.requests, 1)
	req := h.entries.requests[0]
	assert.Equal(t, int64(7), req.ProjectID)
	assert.Equal(t, 0.03, req.Duration)
	assert.Equal(t, "Work on Acme Site", req.Description)
	assert.Equal(t, "2026-03-14", req.Date)

	s := h.c.State()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Zero(t, s.ElapsedSeconds)

	msg := h.lastMessage()
	assert.Equal(t, notify.LevelSuccess, msg.Level)
	assert.Contains(t, msg.Message, "1m")
	assert.Contains(t, msg.Message, "Acme Site")
}

func TestController_StopKeepsDescriptionAndRounds(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(9, "planning"))
	tick(h.c, 5400)
	h.c.Pause()

	_, err := h.c.Stop(context.Background())

	require.NoError(t, err)
	require.Len(t, h.entries.requests, 1)
	assert.Equal(t, 1.5, h.entries.requests[0].Duration)
	assert.Equal(t, "planning", h.entries.requests[0].Description)
	assert.Equal(t, "Logged 1:30 to Internal", h.lastMessage().Message)
}

func TestController_StopShortSessionRoundsToZero(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 7)

	_, err := h.c.Stop(context.Background())

	require.NoError(t, err)
	require.Len(t, h.entries.requests, 1)
	assert.Equal(t, 0.0, h.entries.requests[0].Duration)
}

func TestController_StopWithoutElapsedDoesNotSave(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))

	entry, err := h.c.Stop(context.Background())

	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Zero(t, h.entries.count())
	assert.Equal(t, PhaseIdle, h.c.State().Phase)
}

func TestController_StopFailurePreservesState(t *testing.T) {
	h := newHarness(t)
	h.entries.err = errors.New("store unavailable")
	require.NoError(t, h.c.Start(7, "api work"))
	tick(h.c, 120)
	before := h.c.State()

	entry, err := h.c.Stop(context.Background())

	require.Error(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, before, h.c.State())
	msg := h.lastMessage()
	assert.Equal(t, notify.LevelError, msg.Level)
	assert.Contains(t, msg.Message, "still available")

	// The timer keeps counting and a retry succeeds.
	tick(h.c, 1)
	assert.Equal(t, int64(121), h.c.State().ElapsedSeconds)

	h.entries.err = nil
	_, err = h.c.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, h.c.State().Phase)
}

func TestController_ConcurrentStopIsRejected(t *testing.T) {
	h := newHarness(t)
	h.entries.entered = make(chan struct{})
	h.entries.release = make(chan struct{})
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 60)

	done := make(chan error, 1)
	go func() {
		_, err := h.c.Stop(context.Background())
		done <- err
	}()
	<-h.entries.entered

	_, err := h.c.Stop(context.Background())
	assert.ErrorIs(t, err, ErrStopInProgress)

	// Ticks are frozen while the entry is being saved.
	tick(h.c, 5)
	assert.Equal(t, int64(60), h.c.State().ElapsedSeconds)

	close(h.entries.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.entries.count())
	assert.Equal(t, PhaseIdle, h.c.State().Phase)
}

func TestController_StartDuringStopIsKept(t *testing.T) {
	h := newHarness(t)
	h.entries.entered = make(chan struct{})
	h.entries.release = make(chan struct{})
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 60)

	done := make(chan error, 1)
	go func() {
		_, err := h.c.Stop(context.Background())
		done <- err
	}()
	<-h.entries.entered

	require.NoError(t, h.c.Start(9, "next"))
	close(h.entries.release)
	require.NoError(t, <-done)

	s := h.c.State()
	assert.Equal(t, PhaseRunning, s.Phase)
	assert.Equal(t, int64(9), s.ProjectID)
}

func TestController_Reset(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 10)

	h.c.Reset()

	assert.Equal(t, PhaseIdle, h.c.State().Phase)
	assert.Zero(t, h.c.State().ElapsedSeconds)
	assert.Zero(t, h.entries.count())
}

func TestController_PersistAndRestore(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, "restore me"))
	tick(h.c, 42)
	h.c.Close()
	saved := h.c.State()

	restored := h.newController(t)
	require.NoError(t, restored.Load(context.Background()))
	t.Cleanup(restored.Close)

	assert.Equal(t, saved.Phase, restored.State().Phase)
	assert.Equal(t, saved.ElapsedSeconds, restored.State().ElapsedSeconds)
	assert.Equal(t, saved.ProjectID, restored.State().ProjectID)
	assert.Equal(t, saved.Description, restored.State().Description)
	assert.True(t, saved.StartedAt.Equal(restored.State().StartedAt))

	// A restored running timer keeps ticking.
	tick(restored, 3)
	assert.Equal(t, int64(45), restored.State().ElapsedSeconds)
}

func TestController_RestorePaused(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 8)
	h.c.Pause()
	h.c.Close()

	restored := h.newController(t)
	require.NoError(t, restored.Load(context.Background()))
	t.Cleanup(restored.Close)

	tick(restored, 3)
	assert.Equal(t, PhasePaused, restored.State().Phase)
	assert.Equal(t, int64(8), restored.State().ElapsedSeconds)
}

func TestController_CorruptSnapshotLoadsIdle(t *testing.T) {
	h := newHarness(t)
	h.slot.data = []byte("{not json")

	c := h.newController(t)
	require.NoError(t, c.Load(context.Background()))
	t.Cleanup(c.Close)

	assert.Equal(t, PhaseIdle, c.State().Phase)
}

func TestController_LoadSurvivesFailures(t *testing.T) {
	h := newHarness(t)
	h.projects.err = errors.New("offline")
	h.slot.err = errors.New("disk gone")

	c := h.newController(t)
	require.NoError(t, c.Load(context.Background()))
	t.Cleanup(c.Close)

	assert.Equal(t, PhaseIdle, c.State().Phase)
	assert.Empty(t, c.Projects())
	assert.ErrorIs(t, c.Start(7, ""), ErrUnknownProject)
}

func TestController_RefreshProjects(t *testing.T) {
	h := newHarness(t)
	h.projects.projects = append(h.projects.projects, models.Project{ID: 11, Name: "New Client"})

	require.NoError(t, h.c.RefreshProjects(context.Background()))

	assert.Len(t, h.c.Projects(), 3)
	assert.Equal(t, "New Client", h.c.ProjectName(11))
	assert.Equal(t, "project #99", h.c.ProjectName(99))
}

func TestController_SubscribeSeesChanges(t *testing.T) {
	h := newHarness(t)
	var phases []Phase
	h.c.Subscribe(func(s State) { phases = append(phases, s.Phase) })

	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 1)
	h.c.Pause()
	h.c.Reset()

	assert.Equal(t, []Phase{PhaseRunning, PhaseRunning, PhasePaused, PhaseIdle}, phases)
}

func TestController_RealTicker(t *testing.T) {
	slot := &memSlot{}
	projects := &fakeProjects{projects: []models.Project{{ID: 1, Name: "Acme Site"}}}
	c := NewController(projects, &fakeEntries{}, notify.NewFeed(10), slot, SystemClock, zaptest.NewLogger(t))
	c.interval = 10 * time.Millisecond
	require.NoError(t, c.Load(context.Background()))
	t.Cleanup(c.Close)

	require.NoError(t, c.Start(1, ""))

	assert.Eventually(t, func() bool {
		return c.State().ElapsedSeconds >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_TicksEverySecond(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.c.Start(7, ""))
	h.c.Pause()
	h.c.Resume()

	h.clock.mu.Lock()
	defer h.clock.mu.Unlock()
	require.Len(t, h.clock.intervals, 2)
	for _, d := range h.clock.intervals {
		assert.Equal(t, time.Second, d)
	}
}

func TestController_OvertakenTickIsNotDelivered(t *testing.T) {
	h := newHarness(t)
	var last State
	h.c.Subscribe(func(s State) { last = s })
	require.NoError(t, h.c.Start(7, ""))

	h.c.mu.Lock()
	loop := h.c.loop
	h.c.mu.Unlock()

	// The tick is counted but its delivery is held back until after Pause.
	state, version, ok := h.c.count(loop)
	require.True(t, ok)
	h.c.Pause()
	h.c.emit(state, version)

	assert.Equal(t, PhasePaused, h.c.State().Phase)
	assert.Equal(t, PhasePaused, last.Phase)
	assert.Equal(t, int64(1), last.ElapsedSeconds)
}

func TestController_ObserversEndOnFinalState(t *testing.T) {
	h := newHarness(t)
	var mu sync.Mutex
	var last State
	h.c.Subscribe(func(s State) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	require.NoError(t, h.c.Start(7, ""))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			tick(h.c, 1)
		}
	}()
	for i := 0; i < 50; i++ {
		h.c.Pause()
		h.c.Resume()
	}
	h.c.Pause()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, h.c.State(), last)
	assert.Equal(t, PhasePaused, last.Phase)
}

func TestController_PausedRetryKeepsDuration(t *testing.T) {
	h := newHarness(t)
	h.entries.err = errors.New("store unavailable")
	require.NoError(t, h.c.Start(7, ""))
	tick(h.c, 5400)
	h.c.Pause()

	_, err := h.c.Stop(context.Background())
	require.Error(t, err)
	tick(h.c, 60)

	h.entries.err = nil
	_, err = h.c.Stop(context.Background())
	require.NoError(t, err)

	require.Len(t, h.entries.requests, 2)
	assert.Equal(t, h.entries.requests[0].Duration, h.entries.requests[1].Duration)
	assert.Equal(t, 1.5, h.entries.requests[1].Duration)
}
