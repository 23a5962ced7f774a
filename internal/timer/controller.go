package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownProject = errors.New("unknown project")
	ErrStopInProgress = errors.New("timer stop already in progress")
)

// ProjectLister supplies the projects a timer can be attributed to.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// EntryCreator persists the time entry produced by a stopped timer.
type EntryCreator interface {
	CreateTimedEntry(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error)
}

// Slot is the durable blob the controller snapshots its state into. Load
// returns nil data when nothing has been saved yet.
type Slot interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// tickInterval is the length of one counted second.
const tickInterval = time.Second

// Controller owns the single process-wide timer.
type Controller struct {
	projects ProjectLister
	entries  EntryCreator
	notifier notify.Notifier
	slot     Slot
	clock    Clock
	interval time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	version     uint64
	projectList []models.Project
	loop        *tickLoop
	stopping    bool
	observers   []func(State)

	// emitMu orders observer delivery; emitted is the newest version delivered.
	emitMu  sync.Mutex
	emitted uint64
}

type tickLoop struct {
	ticker Ticker
	stop   chan struct{}
}

// NewController creates an idle controller. Call Load before use to restore
// the persisted state and the project list.
func NewController(
	projects ProjectLister,
	entries EntryCreator,
	notifier notify.Notifier,
	slot Slot,
	clock Clock,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		projects: projects,
		entries:  entries,
		notifier: notifier,
		slot:     slot,
		clock:    clock,
		interval: tickInterval,
		logger:   logger,
		state:    idleState(),
	}
}

// Load reads the project list and restores the persisted snapshot. Failures
// are logged and leave the controller idle; Load never returns an error for
// bad snapshot data.
func (c *Controller) Load(ctx context.Context) error {
	projects, err := c.projects.ListProjects(ctx)
	if err != nil {
		c.logger.Warn("Failed to load projects, timer starts with an empty project list", zap.Error(err))
		projects = nil
	}

	state := idleState()
	data, err := c.slot.Load()
	if err != nil {
		c.logger.Warn("Failed to read timer snapshot, starting idle", zap.Error(err))
	} else if state, err = decodeSnapshot(data); err != nil {
		c.logger.Warn("Discarding unreadable timer snapshot", zap.Error(err))
		state = idleState()
	}

	c.mu.Lock()
	c.projectList = projects
	c.disarm()
	c.state = state
	if state.Phase == PhaseRunning {
		c.arm()
	}
	version := c.bump()
	c.mu.Unlock()

	c.logger.Info("Timer loaded",
		zap.String("phase", string(state.Phase)),
		zap.Int64("elapsed_seconds", state.ElapsedSeconds),
		zap.Int("projects", len(projects)),
	)
	c.emit(state, version)
	return nil
}

// RefreshProjects re-reads the project list. The running timer is untouched.
func (c *Controller) RefreshProjects(ctx context.Context) error {
	projects, err := c.projects.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh projects: %w", err)
	}
	c.mu.Lock()
	c.projectList = projects
	c.mu.Unlock()
	return nil
}

// Close stops the tick source. The persisted snapshot is left as is so a
// running timer resumes on the next Load.
func (c *Controller) Close() {
	c.mu.Lock()
	c.disarm()
	c.mu.Unlock()
	c.logger.Info("Timer controller stopped")
}

// Start begins timing projectID, discarding any previous timer.
func (c *Controller) Start(projectID int64, description string) error {
	c.mu.Lock()
	project, ok := c.findProject(projectID)
	if !ok {
		c.mu.Unlock()
		c.notifier.Error("Please select a valid project before starting the timer")
		return fmt.Errorf("cannot start timer for project %d: %w", projectID, ErrUnknownProject)
	}

	c.disarm()
	c.state = State{
		Phase:       PhaseRunning,
		ProjectID:   projectID,
		Description: description,
		StartedAt:   c.clock.Now().Round(0),
		Visible:     true,
		SessionID:   uuid.NewString(),
	}
	c.arm()
	c.persist()
	state, version := c.state, c.bump()
	c.mu.Unlock()

	c.logger.Info("Timer started",
		zap.Int64("project_id", projectID),
		zap.String("session_id", state.SessionID),
	)
	c.notifier.Info(fmt.Sprintf("Timer started for %s", project.Name))
	c.emit(state, version)
	return nil
}

// Pause freezes a running timer. It is a no-op in any other phase.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state.Phase != PhaseRunning {
		c.mu.Unlock()
		return
	}
	c.disarm()
	c.state.Phase = PhasePaused
	c.persist()
	state, version := c.state, c.bump()
	c.mu.Unlock()

	c.notifier.Info("Timer paused")
	c.emit(state, version)
}

// Resume continues a paused timer. It is a no-op in any other phase.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.state.Phase != PhasePaused {
		c.mu.Unlock()
		return
	}
	c.state.Phase = PhaseRunning
	c.arm()
	c.persist()
	state, version := c.state, c.bump()
	c.mu.Unlock()

	c.notifier.Info("Timer resumed")
	c.emit(state, version)
}

// Stop turns the current session into a time entry. An idle timer or one
// with no elapsed seconds is simply reset. When the entry cannot be saved
// the timer keeps all of its state so Stop can be retried.
func (c *Controller) Stop(ctx context.Context) (*models.TimeEntry, error) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return nil, ErrStopInProgress
	}
	if c.state.Phase == PhaseIdle || c.state.ElapsedSeconds == 0 {
		c.reset()
		state, version := c.state, c.bump()
		c.mu.Unlock()
		c.emit(state, version)
		return nil, nil
	}

	session := c.state
	projectName := c.projectName(session.ProjectID)
	description := session.Description
	if description == "" {
		description = "Work on " + projectName
	}
	req := &models.CreateTimeEntryRequest{
		ProjectID:   session.ProjectID,
		Description: description,
		Date:        c.clock.Now().UTC().Format(models.DateLayout),
		Duration:    HoursFromSeconds(session.ElapsedSeconds),
	}
	c.stopping = true
	c.disarm()
	c.mu.Unlock()

	entry, err := c.entries.CreateTimedEntry(ctx, req)

	c.mu.Lock()
	c.stopping = false
	if err != nil {
		if c.state.SessionID == session.SessionID && c.state.Phase == PhaseRunning {
			c.arm()
		}
		c.mu.Unlock()

		c.logger.Error("Failed to save timed entry",
			zap.Error(err),
			zap.Int64("project_id", session.ProjectID),
			zap.Int64("elapsed_seconds", session.ElapsedSeconds),
		)
		c.notifier.Error("Failed to save time entry, your timer is still available")
		return nil, fmt.Errorf("failed to save time entry: %w", err)
	}

	sameSession := c.state.SessionID == session.SessionID
	var version uint64
	if sameSession {
		c.reset()
		version = c.bump()
	}
	state := c.state
	c.mu.Unlock()

	c.logger.Info("Timer stopped",
		zap.Int64("project_id", session.ProjectID),
		zap.Int64("elapsed_seconds", session.ElapsedSeconds),
		zap.Float64("duration_hours", req.Duration),
	)
	c.notifier.Success(fmt.Sprintf("Logged %s to %s", HumanDuration(session.ElapsedSeconds), projectName))
	if sameSession {
		c.emit(state, version)
	}
	return entry, nil
}

// Reset abandons the current timer without creating an entry.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.reset()
	state, version := c.state, c.bump()
	c.mu.Unlock()
	c.emit(state, version)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Projects returns the project list loaded at startup.
func (c *Controller) Projects() []models.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Project, len(c.projectList))
	copy(out, c.projectList)
	return out
}

// ProjectName resolves a project id against the loaded list.
func (c *Controller) ProjectName(id int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectName(id)
}

// Subscribe registers fn to be called with the new state after every change.
// Observers see states in the order they were produced; a state overtaken by
// a newer one before delivery is skipped. fn runs outside the controller lock
// and may read the controller but must not change the timer.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// reset, bump, arm, disarm, persist, findProject and projectName expect c.mu to be held.

func (c *Controller) reset() {
	c.disarm()
	c.state = idleState()
	c.persist()
}

// bump stamps the current state with the next version.
func (c *Controller) bump() uint64 {
	c.version++
	return c.version
}

func (c *Controller) arm() {
	if c.loop != nil {
		return
	}
	loop := &tickLoop{
		ticker: c.clock.NewTicker(c.interval),
		stop:   make(chan struct{}),
	}
	c.loop = loop
	go c.runTicks(loop)
}

func (c *Controller) disarm() {
	if c.loop == nil {
		return
	}
	close(c.loop.stop)
	c.loop.ticker.Stop()
	c.loop = nil
}

func (c *Controller) runTicks(loop *tickLoop) {
	for {
		select {
		case <-loop.ticker.C():
			c.advance(loop)
		case <-loop.stop:
			return
		}
	}
}

// advance counts one tick for loop.
func (c *Controller) advance(loop *tickLoop) {
	if state, version, ok := c.count(loop); ok {
		c.emit(state, version)
	}
}

// count adds one second. Ticks from a loop that has since been disarmed are
// dropped.
func (c *Controller) count(loop *tickLoop) (State, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loop != loop || c.state.Phase != PhaseRunning {
		return State{}, 0, false
	}
	c.state.ElapsedSeconds++
	c.persist()
	return c.state, c.bump(), true
}

func (c *Controller) persist() {
	data, err := encodeSnapshot(c.state)
	if err == nil {
		err = c.slot.Save(data)
	}
	if err != nil {
		c.logger.Warn("Failed to persist timer snapshot", zap.Error(err))
	}
}

func (c *Controller) findProject(id int64) (models.Project, bool) {
	for _, p := range c.projectList {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

func (c *Controller) projectName(id int64) string {
	if p, ok := c.findProject(id); ok {
		return p.Name
	}
	return fmt.Sprintf("project #%d", id)
}

// emit delivers state to the observers unless a newer state already went out.
func (c *Controller) emit(state State, version uint64) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if version <= c.emitted {
		return
	}
	c.emitted = version

	c.mu.Lock()
	observers := make([]func(State), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}
