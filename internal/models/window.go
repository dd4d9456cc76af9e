package models

import "time"

// Scope names outside the named recency windows.
const (
	// ScopeDefault is the scope of the full (non-windowed) retopic model.
	ScopeDefault = "default"

	// ScopeAllTime is the scope used when reassignment refits over every
	// stored email.
	ScopeAllTime = "all_time"
)

// ClusterParams are the opaque hyperparameters handed through to the
// clustering capability for one fit. The engine never interprets them.
type ClusterParams struct {
	Neighbors      int      `json:"n_neighbors"`
	MinDist        float64  `json:"min_dist"`
	MinClusterSize int      `json:"min_cluster_size"`
	StopWords      []string `json:"stop_words,omitempty"`
	NrTopics       string   `json:"nr_topics,omitempty"`
}

// Window is one recency-based slice of a user's emails, modeled
// independently under its own scope. Days is the lookback from "now".
// Modeled=false windows are never fitted; their emails get the reserved
// unmodeled group ID.
type Window struct {
	Label   string
	Days    int
	Modeled bool
	Params  ClusterParams
}

// Cutoff returns the inclusive lower bound for SentAt within the window.
func (w Window) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -w.Days)
}

// windowStopWords is shared by every window profile, mirroring the
// vectorizer stopword list the models were tuned with.
var windowStopWords = []string{"the", "and", "to", "for", "of", "a", "in", "on", "email"}

// DefaultWindows is the configured window set, shortest first. Only the
// first entry is unmodeled; the hyperparameter profiles loosen density
// requirements as the window widens.
var DefaultWindows = []Window{
	{Label: "1_month", Days: 30, Modeled: false},
	{Label: "3_months", Days: 90, Modeled: true, Params: ClusterParams{
		Neighbors: 15, MinDist: 0.2, MinClusterSize: 5, StopWords: windowStopWords, NrTopics: "auto",
	}},
	{Label: "6_months", Days: 180, Modeled: true, Params: ClusterParams{
		Neighbors: 20, MinDist: 0.15, MinClusterSize: 4, StopWords: windowStopWords, NrTopics: "auto",
	}},
	{Label: "1_year", Days: 365, Modeled: true, Params: ClusterParams{
		Neighbors: 25, MinDist: 0.1, MinClusterSize: 6, StopWords: windowStopWords, NrTopics: "auto",
	}},
	{Label: "3_years", Days: 1095, Modeled: true, Params: ClusterParams{
		Neighbors: 30, MinDist: 0.05, MinClusterSize: 8, StopWords: windowStopWords, NrTopics: "auto",
	}},
}

// DefaultParams is the hyperparameter profile of the full retopic model.
var DefaultParams = ClusterParams{
	Neighbors:      10,
	MinDist:        0.1,
	MinClusterSize: 7,
	StopWords:      []string{"the", "and", "to", "for", "of", "a", "in", "on", "email", "summary", "error", "generating"},
	NrTopics:       "auto",
}

// FindWindow returns the window with the given label from the set.
func FindWindow(windows []Window, label string) (Window, bool) {
	for _, w := range windows {
		if w.Label == label {
			return w, true
		}
	}
	return Window{}, false
}
