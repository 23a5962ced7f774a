package models

import "time"

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Client    string    `json:"client,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateProjectRequest struct {
	Name   string `json:"name"`
	Client string `json:"client,omitempty"`
}
