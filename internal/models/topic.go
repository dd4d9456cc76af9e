package models

// Reserved group IDs. These are produced by the engine itself and must never
// be reassigned by clustering output.
const (
	// OutlierGroupID marks emails the clustering capability could not place
	// in any topic.
	OutlierGroupID = -1

	// UnmodeledGroupID marks emails in a window that is deliberately never
	// fitted (the shortest recency window).
	UnmodeledGroupID = -99
)

// Display names for the reserved group IDs.
const (
	OutlierTopicName   = "Outlier"
	UnmodeledTopicName = "Not Modeled (window only)"
)

// Topic is one topic ("group") owned by a user. GroupID is unique within a
// user, not globally.
type Topic struct {
	User    string `json:"user_email"`
	GroupID int    `json:"group_id"`
	Name    string `json:"name"`
}

// Assignment links one email to one topic for persistence and responses.
type Assignment struct {
	EmailID   int64  `json:"email_id"`
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
}

// TopicEmail is one stored membership row as returned by timeframe reads.
type TopicEmail struct {
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
	EmailID   int64  `json:"email_id"`
}

// ReassignRequest moves one email into a named topic, creating the topic if
// no exact name match exists.
type ReassignRequest struct {
	User      string `json:"user_email"`
	EmailID   int64  `json:"email_id"`
	TopicName string `json:"topic_name"`
}

// Validate checks required fields.
func (r ReassignRequest) Validate() error {
	if r.User == "" {
		return ErrMissingUser
	}
	if r.EmailID <= 0 {
		return ErrMissingEmailID
	}
	if r.TopicName == "" {
		return ErrMissingTopicName
	}
	return nil
}

// UpdateTopicsRequest refits the default-scope model over the user's stored
// emails plus the provided new documents.
type UpdateTopicsRequest struct {
	User         string   `json:"user_email"`
	NewDocuments []string `json:"new_documents"`
}

// Validate checks required fields.
func (r UpdateTopicsRequest) Validate() error {
	if r.User == "" {
		return ErrMissingUser
	}
	return nil
}
