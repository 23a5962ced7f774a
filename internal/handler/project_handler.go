package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/service"

	"go.uber.org/zap"
)

type ProjectHandler struct {
	service *service.TimeEntryService
	refresh func(ctx context.Context) error
	logger  *zap.Logger
}

// NewProjectHandler creates the project endpoints. refresh, when set, runs
// after a project is created so the timer can pick it up.
func NewProjectHandler(service *service.TimeEntryService, refresh func(ctx context.Context) error, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		refresh: refresh,
		logger:  logger,
	}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.service.CreateProject(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create project")
		return
	}

	if h.refresh != nil {
		if err := h.refresh(r.Context()); err != nil {
			h.logger.Warn("Failed to refresh timer projects", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, project)
}
