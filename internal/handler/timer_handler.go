package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/notify"
	"Mansoor88-6/project-timer/internal/timer"

	"go.uber.org/zap"
)

// TimerResponse is the wire view of the timer state.
type TimerResponse struct {
	Phase          timer.Phase `json:"phase"`
	IsRunning      bool        `json:"isRunning"`
	IsPaused       bool        `json:"isPaused"`
	ElapsedSeconds int64       `json:"elapsedSeconds"`
	Elapsed        string      `json:"elapsed"`
	ProjectID      int64       `json:"projectId,omitempty"`
	ProjectName    string      `json:"projectName,omitempty"`
	Description    string      `json:"description"`
	StartedAt      *time.Time  `json:"startedAt,omitempty"`
	Visible        bool        `json:"visible"`
}

type StartTimerRequest struct {
	ProjectID   int64  `json:"projectId"`
	Description string `json:"description"`
}

type StopTimerResponse struct {
	Entry *models.TimeEntry `json:"entry"`
	Timer TimerResponse     `json:"timer"`
}

type TimerHandler struct {
	timer  *timer.Controller
	feed   *notify.Feed
	logger *zap.Logger
}

func NewTimerHandler(controller *timer.Controller, feed *notify.Feed, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{
		timer:  controller,
		feed:   feed,
		logger: logger,
	}
}

func (h *TimerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.timer.State()))
}

func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StartTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.timer.Start(req.ProjectID, req.Description); err != nil {
		writeError(w, h.logger, err, "Failed to start timer")
		return
	}

	writeJSON(w, http.StatusOK, h.view(h.timer.State()))
}

func (h *TimerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.timer.Pause()
	writeJSON(w, http.StatusOK, h.view(h.timer.State()))
}

func (h *TimerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.timer.Resume()
	writeJSON(w, http.StatusOK, h.view(h.timer.State()))
}

// Stop logs the session. The entry is null when nothing was timed.
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, err := h.timer.Stop(r.Context())
	if err != nil {
		if errors.Is(err, timer.ErrStopInProgress) {
			http.Error(w, "Timer stop already in progress", http.StatusConflict)
			return
		}
		h.logger.Error("Failed to stop timer", zap.Error(err))
		http.Error(w, "Failed to save time entry", http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if entry != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, StopTimerResponse{Entry: entry, Timer: h.view(h.timer.State())})
}

func (h *TimerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.timer.Reset()
	writeJSON(w, http.StatusOK, h.view(h.timer.State()))
}

// Projects returns the projects the timer can be started for.
func (h *TimerHandler) Projects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.timer.Projects())
}

func (h *TimerHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	writeJSON(w, http.StatusOK, h.feed.Recent(limit))
}

func (h *TimerHandler) view(s timer.State) TimerResponse {
	resp := TimerResponse{
		Phase:          s.Phase,
		IsRunning:      s.IsRunning(),
		IsPaused:       s.IsPaused(),
		ElapsedSeconds: s.ElapsedSeconds,
		Elapsed:        timer.FormatDuration(s.ElapsedSeconds),
		ProjectID:      s.ProjectID,
		Description:    s.Description,
		Visible:        s.Visible,
	}
	if s.ProjectID != 0 {
		resp.ProjectName = h.timer.ProjectName(s.ProjectID)
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		resp.StartedAt = &started
	}
	return resp
}
