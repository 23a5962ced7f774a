package tray

import (
	"context"
	"errors"
	"time"

	"Mansoor88-6/project-timer/internal/notify"
	"Mansoor88-6/project-timer/internal/timer"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

const defaultTooltip = "Project timer"

// stopTimeout bounds a Stop issued from the menu.
const stopTimeout = 30 * time.Second

// Tray mirrors the timer in the system tray and exposes pause, resume and
// stop from its menu.
type Tray struct {
	timer  *timer.Controller
	feed   *notify.Feed
	logger *zap.Logger

	pause  *systray.MenuItem
	resume *systray.MenuItem
	stop   *systray.MenuItem
	quit   *systray.MenuItem
}

func New(controller *timer.Controller, feed *notify.Feed, logger *zap.Logger) *Tray {
	return &Tray{
		timer:  controller,
		feed:   feed,
		logger: logger,
	}
}

// Run blocks until Quit is called or Quit is picked from the menu. It must
// be called from the main goroutine. onExit runs once the tray is gone.
func (t *Tray) Run(onExit func()) {
	systray.Run(t.onReady, onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTooltip(defaultTooltip)

	t.pause = systray.AddMenuItem("Pause", "Pause the running timer")
	t.resume = systray.AddMenuItem("Resume", "Resume the paused timer")
	t.stop = systray.AddMenuItem("Stop", "Stop the timer and log the time")
	systray.AddSeparator()
	t.quit = systray.AddMenuItem("Quit", "Quit the project timer")

	t.timer.Subscribe(t.render)
	t.feed.OnNotify(func(n notify.Notification) {
		systray.SetTooltip(Tooltip(n))
	})
	t.render(t.timer.State())

	go t.handleClicks()

	t.logger.Info("Tray ready")
}

func (t *Tray) handleClicks() {
	for {
		select {
		case <-t.pause.ClickedCh:
			t.timer.Pause()
		case <-t.resume.ClickedCh:
			t.timer.Resume()
		case <-t.stop.ClickedCh:
			go t.stopTimer()
		case <-t.quit.ClickedCh:
			t.logger.Info("Quit requested from tray")
			systray.Quit()
			return
		}
	}
}

func (t *Tray) stopTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if _, err := t.timer.Stop(ctx); err != nil && !errors.Is(err, timer.ErrStopInProgress) {
		t.logger.Warn("Stop from tray failed", zap.Error(err))
	}
}

func (t *Tray) render(s timer.State) {
	view := ViewOf(s)
	systray.SetTitle(view.Title)
	setEnabled(t.pause, view.CanPause)
	setEnabled(t.resume, view.CanResume)
	setEnabled(t.stop, view.CanStop)
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

// View is what the tray shows for a given timer state.
type View struct {
	Title     string
	CanPause  bool
	CanResume bool
	CanStop   bool
}

func ViewOf(s timer.State) View {
	v := View{
		CanPause:  s.Phase == timer.PhaseRunning,
		CanResume: s.Phase == timer.PhasePaused,
		CanStop:   s.IsRunning(),
	}
	if s.Visible && s.IsRunning() {
		v.Title = timer.FormatDuration(s.ElapsedSeconds)
		if s.IsPaused() {
			v.Title += " (paused)"
		}
	}
	return v
}

func Tooltip(n notify.Notification) string {
	if n.Message == "" {
		return defaultTooltip
	}
	return defaultTooltip + ": " + n.Message
}
