package models

import "errors"

// Sentinel errors for validation.
var (
	ErrMissingUser      = errors.New("user_email is required")
	ErrMissingEmailID   = errors.New("email_id is required")
	ErrMissingTopicName = errors.New("topic_name is required")
	ErrEmptyEmailText   = errors.New("subject and summary are both empty")
)

// Sentinel errors for entity lookups (map to HTTP 404).
var (
	ErrNoEmails      = errors.New("no emails found for this user")
	ErrNoTopics      = errors.New("no topics exist for this user")
	ErrEmailNotFound = errors.New("email not found")
)

// ErrUnknownTimeframe indicates a timeframe label outside the configured
// windows (maps to HTTP 400).
var ErrUnknownTimeframe = errors.New("unknown timeframe")
