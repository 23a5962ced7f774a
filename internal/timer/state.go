package timer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Phase is the lifecycle position of the timer.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// State is the full observable timer state. It is also the persisted
// snapshot payload.
type State struct {
	Phase          Phase     `json:"phase"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	ProjectID      int64     `json:"projectId,omitempty"`
	Description    string    `json:"description"`
	StartedAt      time.Time `json:"startedAt"`
	Visible        bool      `json:"visible"`
	SessionID      string    `json:"sessionId,omitempty"`
}

// IsRunning reports whether a timer session exists, paused or not.
func (s State) IsRunning() bool { return s.Phase == PhaseRunning || s.Phase == PhasePaused }

func (s State) IsPaused() bool { return s.Phase == PhasePaused }

func idleState() State {
	return State{Phase: PhaseIdle}
}

func (s State) validate() error {
	switch s.Phase {
	case PhaseIdle:
		if s.ElapsedSeconds != 0 {
			return fmt.Errorf("idle timer with %d elapsed seconds", s.ElapsedSeconds)
		}
	case PhaseRunning, PhasePaused:
		if s.ProjectID == 0 {
			return fmt.Errorf("%s timer without project", s.Phase)
		}
		if s.ElapsedSeconds < 0 {
			return fmt.Errorf("negative elapsed seconds %d", s.ElapsedSeconds)
		}
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	return nil
}

const snapshotVersion = 1

type snapshotEnvelope struct {
	Version int    `json:"version"`
	State   *State `json:"state,omitempty"`
}

// legacySnapshot is the unversioned flat blob written before the envelope
// existed.
type legacySnapshot struct {
	IsRunning   bool       `json:"isRunning"`
	IsPaused    bool       `json:"isPaused"`
	ElapsedTime int64      `json:"elapsedTime"`
	ProjectID   int64      `json:"projectId"`
	Description string     `json:"description"`
	IsVisible   bool       `json:"isVisible"`
	StartTime   *time.Time `json:"startTime"`
}

func encodeSnapshot(s State) ([]byte, error) {
	data, err := json.Marshal(snapshotEnvelope{Version: snapshotVersion, State: &s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode timer snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses a persisted blob. An empty blob is the idle state;
// anything unreadable or inconsistent is an error and the caller falls back
// to idle.
func decodeSnapshot(data []byte) (State, error) {
	if len(data) == 0 {
		return idleState(), nil
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return idleState(), fmt.Errorf("failed to decode timer snapshot: %w", err)
	}

	var s State
	switch env.Version {
	case 0:
		var legacy legacySnapshot
		if err := json.Unmarshal(data, &legacy); err != nil {
			return idleState(), fmt.Errorf("failed to decode legacy timer snapshot: %w", err)
		}
		s = fromLegacy(legacy)
	case snapshotVersion:
		if env.State == nil {
			return idleState(), fmt.Errorf("timer snapshot has no state")
		}
		s = *env.State
	default:
		return idleState(), fmt.Errorf("unsupported timer snapshot version %d", env.Version)
	}

	if err := s.validate(); err != nil {
		return idleState(), fmt.Errorf("invalid timer snapshot: %w", err)
	}
	return s, nil
}

func fromLegacy(l legacySnapshot) State {
	if !l.IsRunning {
		return idleState()
	}
	s := State{
		Phase:          PhaseRunning,
		ElapsedSeconds: l.ElapsedTime,
		ProjectID:      l.ProjectID,
		Description:    l.Description,
		Visible:        l.IsVisible,
	}
	if l.IsPaused {
		s.Phase = PhasePaused
	}
	if l.StartTime != nil {
		s.StartedAt = *l.StartTime
	}
	return s
}
