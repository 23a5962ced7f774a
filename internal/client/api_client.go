package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Mansoor88-6/project-timer/internal/models"

	"go.uber.org/zap"
)

// APIClient talks to a remote record store exposing the projects and
// time-entries API.
type APIClient struct {
	baseURL    string
	apiKey     string
	instanceID string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetInstanceID tags outgoing requests with the local installation id.
func (c *APIClient) SetInstanceID(id string) {
	c.instanceID = id
}

// ListProjects fetches every project the timer can be attributed to.
func (c *APIClient) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateTimedEntry stores the entry produced by a stopped timer.
func (c *APIClient) CreateTimedEntry(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := c.do(ctx, http.MethodPost, "/api/v1/time-entries", req, &entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	c.logger.Info("Time entry sent",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("project_id", entry.ProjectID),
		zap.Float64("duration", entry.Duration),
	)
	return &entry, nil
}

// HealthCheck checks if the backend is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.instanceID != "" {
		req.Header.Set("X-Instance-ID", c.instanceID)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("Request succeeded",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	errMsg := fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)),
		)
		return &AuthError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusTooManyRequests:
		c.logger.Warn("Rate limited",
			zap.Int("status_code", resp.StatusCode),
		)
		return &RateLimitError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		c.logger.Error("Invalid request",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)),
		)
		return &BadRequestError{Message: errMsg, StatusCode: resp.StatusCode}
	default:
		c.logger.Error("Backend error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)),
		)
		return &BackendError{Message: errMsg, StatusCode: resp.StatusCode}
	}
}

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BadRequestError struct {
	Message    string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}
