package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/service"

	"go.uber.org/zap"
)

type TimeEntryHandler struct {
	service *service.TimeEntryService
	logger  *zap.Logger
}

func NewTimeEntryHandler(service *service.TimeEntryService, logger *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TimeEntryHandler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.service.CreateTimeEntry(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create time entry")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *TimeEntryHandler) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := requireID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetTimeEntry(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "Failed to get time entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// ListTimeEntries lists entries, optionally filtered by project_id.
func (h *TimeEntryHandler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID, _, err := queryInt64(r, "project_id")
	if err != nil {
		http.Error(w, "Invalid project_id parameter", http.StatusBadRequest)
		return
	}

	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			offset = o
		}
	}

	entries, err := h.service.ListTimeEntries(r.Context(), projectID, limit, offset)
	if err != nil {
		writeError(w, h.logger, err, "Failed to get time entries")
		return
	}
	if entries == nil {
		entries = []*models.TimeEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *TimeEntryHandler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := requireID(w, r)
	if !ok {
		return
	}

	var req models.UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.service.UpdateTimeEntry(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update time entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *TimeEntryHandler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTimeEntry(r.Context(), id); err != nil {
		writeError(w, h.logger, err, "Failed to delete time entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
