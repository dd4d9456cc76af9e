package client

import "time"

// Email is a stored email row.
type Email struct {
	EmailID int64      `json:"email_id"`
	User    string     `json:"user_email"`
	Subject string     `json:"subject"`
	Summary string     `json:"summary"`
	SentAt  *time.Time `json:"date_sent,omitempty"`
}

// Topic is a named topic group belonging to a user.
type Topic struct {
	User    string `json:"user_email"`
	GroupID int    `json:"group_id"`
	Name    string `json:"name"`
}

// EmailTopic is a single email's topic assignment.
type EmailTopic struct {
	EmailID   int64  `json:"email_id"`
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
}

// TopicEmail is a (topic, email) membership row from a timeframe read.
type TopicEmail struct {
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
	EmailID   int64  `json:"email_id"`
}

// RetopicResponse is the result of a full clustering run.
type RetopicResponse struct {
	Topics       []Topic      `json:"topics"`
	EmailTopics  []EmailTopic `json:"email_topics"`
	ModelOutcome string       `json:"model_outcome"`
}

// WindowResult is one window's portion of an incremental run.
type WindowResult struct {
	Window       string       `json:"window"`
	Topics       []Topic      `json:"topics"`
	EmailTopics  []EmailTopic `json:"email_topics"`
	ModelOutcome string       `json:"model_outcome,omitempty"`
}

// IncrementalResponse is the result of a windowed clustering run.
type IncrementalResponse struct {
	Modeled   *WindowResult `json:"modeled,omitempty"`
	Unmodeled *WindowResult `json:"unmodeled"`
}

// TimeframeResponse wraps the topic/email rows of a timeframe read.
type TimeframeResponse struct {
	Topics []TopicEmail `json:"topics"`
}

// RecentEmailsResponse wraps the most recent emails of a user.
type RecentEmailsResponse struct {
	Emails []Email `json:"emails"`
}

// UpdateTopicsRequest merges new documents into a user's topic model.
type UpdateTopicsRequest struct {
	User         string   `json:"user_email"`
	NewDocuments []string `json:"new_documents"`
}

// AssignEmailRequest inserts a new email and assigns it to the closest topic.
type AssignEmailRequest struct {
	User    string     `json:"user_email"`
	Subject string     `json:"subject"`
	Summary string     `json:"summary"`
	SentAt  *time.Time `json:"date_sent,omitempty"`
}

// ReassignRequest moves an email into a (possibly new) named topic.
type ReassignRequest struct {
	User      string `json:"user_email"`
	EmailID   int64  `json:"email_id"`
	TopicName string `json:"topic_name"`
}

// AssignResponse is the outcome of a single-email assignment.
type AssignResponse struct {
	EmailID   int64  `json:"email_id"`
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Clustering    string  `json:"clustering"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadinessResponse is the readiness payload.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
