package domain

import "time"

// Banner is a promotional image slot rendered by the client.
type Banner struct {
	ID           uint64
	Title        string
	ImageURL     string
	LinkURL      *string
	DisplayOrder int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FAQ is a published question/answer entry grouped by category.
type FAQ struct {
	ID           uint64
	Question     string
	Answer       string
	Category     string
	DisplayOrder int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
