package handler

import (
	"fmt"
	"net/http"
	"time"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/report"
	"Mansoor88-6/project-timer/internal/service"

	"go.uber.org/zap"
)

type ReportHandler struct {
	service *service.TimeEntryService
	now     func() time.Time
	logger  *zap.Logger
}

func NewReportHandler(service *service.TimeEntryService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		now:     time.Now,
		logger:  logger,
	}
}

// Summary returns the grouped report as JSON.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, _, _, ok := h.build(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// PDF returns the grouped report as a PDF download.
func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, from, to, ok := h.build(w, r)
	if !ok {
		return
	}

	data, err := report.RenderPDF(summary, from, to)
	if err != nil {
		writeError(w, h.logger, err, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="time-report-%s-%s.pdf"`, from, to))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// build reads from, to and group_by. The range defaults to the current
// month up to today.
func (h *ReportHandler) build(w http.ResponseWriter, r *http.Request) (*report.Summary, string, string, bool) {
	q := r.URL.Query()
	today := h.now().UTC()
	from := q.Get("from")
	if from == "" {
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
	}
	to := q.Get("to")
	if to == "" {
		to = today.Format(models.DateLayout)
	}

	groupBy, err := report.ParseGroupBy(q.Get("group_by"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", "", false
	}

	entries, err := h.service.ListTimeEntriesBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, h.logger, err, "Failed to load time entries")
		return nil, "", "", false
	}
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to load projects")
		return nil, "", "", false
	}

	summary, err := report.Summarize(entries, projects, groupBy)
	if err != nil {
		writeError(w, h.logger, err, "Failed to build report")
		return nil, "", "", false
	}
	return summary, from, to, true
}
