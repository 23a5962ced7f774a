package models

import "time"

// DateLayout is the calendar-day format used for TimeEntry.Date.
const DateLayout = "2006-01-02"

// TimeEntry is a logged block of work. Duration is expressed in hours.
type TimeEntry struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"projectId"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Duration    float64   `json:"duration"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTimeEntryRequest struct {
	ProjectID   int64   `json:"projectId"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Duration    float64 `json:"duration"`
}

type UpdateTimeEntryRequest struct {
	ProjectID   *int64   `json:"projectId,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
}
