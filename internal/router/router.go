package router

import (
	"net/http"
	"time"

	"Mansoor88-6/project-timer/internal/handler"

	"go.uber.org/zap"
)

// Handlers groups the endpoint handlers. Projects, TimeEntries and Reports
// are only set when the record store is local.
type Handlers struct {
	Timer       *handler.TimerHandler
	Projects    *handler.ProjectHandler
	TimeEntries *handler.TimeEntryHandler
	Reports     *handler.ReportHandler
}

func New(h Handlers, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Timer endpoints
	mux.HandleFunc("/api/v1/timer", h.Timer.GetState)
	mux.HandleFunc("/api/v1/timer/start", h.Timer.Start)
	mux.HandleFunc("/api/v1/timer/pause", h.Timer.Pause)
	mux.HandleFunc("/api/v1/timer/resume", h.Timer.Resume)
	mux.HandleFunc("/api/v1/timer/stop", h.Timer.Stop)
	mux.HandleFunc("/api/v1/timer/reset", h.Timer.Reset)
	mux.HandleFunc("/api/v1/timer/projects", h.Timer.Projects)
	mux.HandleFunc("/api/v1/notifications", h.Timer.Notifications)

	if h.Projects != nil {
		mux.HandleFunc("/api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				h.Projects.CreateProject(w, r)
			case http.MethodGet:
				h.Projects.ListProjects(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		})
	}

	if h.TimeEntries != nil {
		mux.HandleFunc("/api/v1/time-entries", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				h.TimeEntries.CreateTimeEntry(w, r)
			case http.MethodGet:
				// Check if it's a single entry or list
				if r.URL.Query().Get("id") != "" {
					h.TimeEntries.GetTimeEntry(w, r)
				} else {
					h.TimeEntries.ListTimeEntries(w, r)
				}
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		})
		mux.HandleFunc("/api/v1/time-entries/update", h.TimeEntries.UpdateTimeEntry)
		mux.HandleFunc("/api/v1/time-entries/delete", h.TimeEntries.DeleteTimeEntry)
	}

	if h.Reports != nil {
		mux.HandleFunc("/api/v1/reports/summary", h.Reports.Summary)
		mux.HandleFunc("/api/v1/reports/pdf", h.Reports.PDF)
	}

	return withLogging(withCORS(mux), logger)
}

// withCORS lets a browser front end served from another origin drive the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
