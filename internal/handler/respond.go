package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"Mansoor88-6/project-timer/internal/client"
	"Mansoor88-6/project-timer/internal/repository"
	"Mansoor88-6/project-timer/internal/service"
	"Mansoor88-6/project-timer/internal/timer"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported with fallback.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var validation *service.ValidationError
	var badRequest *client.BadRequestError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &badRequest):
		http.Error(w, badRequest.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, timer.ErrUnknownProject):
		http.Error(w, "Unknown project", http.StatusBadRequest)
	case errors.Is(err, timer.ErrStopInProgress):
		http.Error(w, "Timer stop already in progress", http.StatusConflict)
	default:
		logger.Error(fallback, zap.Error(err))
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func queryInt64(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	return v, true, err
}

func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok, err := queryInt64(r, "id")
	if !ok {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return 0, false
	}
	if err != nil {
		http.Error(w, "Invalid id parameter", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
