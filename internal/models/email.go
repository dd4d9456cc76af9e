// Package models defines the core data types for the topic engine.
package models

import (
	"strings"
	"time"
)

// Email is one stored email belonging to a user. Subject and Summary are
// combined into the text used for clustering; the raw body never reaches
// the engine.
type Email struct {
	ID       int64      `json:"email_id"`
	User     string     `json:"user_email"`
	Subject  string     `json:"subject"`
	Summary  string     `json:"summary"`
	SentAt   *time.Time `json:"date_sent,omitempty"`
}

// Text returns the clustering document for the email: subject and summary
// joined by a single space, trimmed.
func (e Email) Text() string {
	return strings.TrimSpace(e.Subject + " " + e.Summary)
}

// InsertEmailRequest is the payload for creating a new email row.
type InsertEmailRequest struct {
	User    string     `json:"user_email"`
	Subject string     `json:"subject"`
	Summary string     `json:"summary"`
	SentAt  *time.Time `json:"date_sent,omitempty"`
}

// Validate checks required fields.
func (r InsertEmailRequest) Validate() error {
	if r.User == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Subject+r.Summary) == "" {
		return ErrEmptyEmailText
	}
	return nil
}
