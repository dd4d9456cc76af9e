package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/cluster"
	"github.com/clustermail/topicd/internal/metrics"
	"github.com/clustermail/topicd/internal/models"
)

// EmailSource is the email data-access interface TopicService depends on.
type EmailSource interface {
	FetchEmails(ctx context.Context, user string) ([]models.Email, error)
	RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error)
}

// TopicPersistence is the topic/membership data-access interface TopicService
// depends on.
type TopicPersistence interface {
	PersistAssignments(ctx context.Context, user string, assignments []models.Assignment) error
	TopicsByTimeframe(ctx context.Context, user string, cutoff *time.Time) ([]models.TopicEmail, error)
}

// ModelProvider produces document labelings, fitting or reusing per-scope
// model artifacts as needed.
type ModelProvider interface {
	LoadOrCreate(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error)
	Refit(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error)
}

// Refiner renames topics from their members' text.
type Refiner interface {
	Refine(ctx context.Context, user string) (map[int]string, error)
}

// RetopicResult is the response of a full (non-windowed) clustering run.
type RetopicResult struct {
	Topics  []models.Topic      `json:"topics"`
	Emails  []models.Assignment `json:"email_topics"`
	Outcome ModelOutcome        `json:"model_outcome"`
}

// WindowResult is one window's labeled emails in an incremental run.
type WindowResult struct {
	Window  string              `json:"window"`
	Topics  []models.Topic      `json:"topics"`
	Emails  []models.Assignment `json:"email_topics"`
	Outcome ModelOutcome        `json:"model_outcome,omitempty"`
}

// IncrementalResult is the response of a windowed run: the shortest modeled
// window in full plus the deliberately unmodeled slice. Longer windows are
// persisted as side effects and carry equal authority in storage.
type IncrementalResult struct {
	Modeled   *WindowResult `json:"modeled,omitempty"`
	Unmodeled *WindowResult `json:"unmodeled"`
}

// TopicService orchestrates clustering runs over a user's emails.
type TopicService struct {
	emails  EmailSource
	topics  TopicPersistence
	modeler ModelProvider
	refiner Refiner
	windows []models.Window
	now     func() time.Time
	recentN int
	log     *logrus.Logger
}

// NewTopicService creates a TopicService over the configured window set.
func NewTopicService(
	emails EmailSource, topics TopicPersistence, modeler ModelProvider, refiner Refiner,
	windows []models.Window, recentLimit int, log *logrus.Logger,
) *TopicService {
	return &TopicService{
		emails:  emails,
		topics:  topics,
		modeler: modeler,
		refiner: refiner,
		windows: windows,
		now:     time.Now,
		recentN: recentLimit,
		log:     log,
	}
}

// Retopic clusters every email of the user under the default scope, persists
// topics and memberships, and refines topic names. Returns ErrNoEmails when
// the user has nothing to cluster.
func (s *TopicService) Retopic(ctx context.Context, user string) (*RetopicResult, error) {
	emails, err := s.emails.FetchEmails(ctx, user)
	if err != nil {
		return nil, err
	}

	if len(emails) == 0 {
		return nil, models.ErrNoEmails
	}

	labeling, err := s.modeler.LoadOrCreate(ctx, user, models.ScopeDefault, documents(emails), models.DefaultParams)
	if err != nil {
		return nil, err
	}

	metrics.ModelRunsTotal.WithLabelValues(models.ScopeDefault, string(labeling.Outcome)).Inc()

	assignments := mapAssignments(emails, labeling)
	if err := s.topics.PersistAssignments(ctx, user, assignments); err != nil {
		return nil, err
	}

	renamed, err := s.refiner.Refine(ctx, user)
	if err != nil {
		return nil, err
	}

	applyRenames(assignments, renamed)

	return &RetopicResult{
		Topics:  uniqueTopics(user, assignments),
		Emails:  assignments,
		Outcome: labeling.Outcome,
	}, nil
}

// RunIncremental partitions the user's emails into the configured recency
// windows and models each window independently under its own scope.
//
// The shortest window is never fitted: its emails are labeled with the
// reserved unmodeled group. Empty windows are skipped without creating an
// artifact. A clustering failure for one window skips that window; only
// persistence failures abort the run. Every processed window is persisted,
// but only the shortest modeled window is returned in full.
func (s *TopicService) RunIncremental(ctx context.Context, user string) (*IncrementalResult, error) {
	emails, err := s.emails.FetchEmails(ctx, user)
	if err != nil {
		return nil, err
	}

	if len(emails) == 0 {
		return nil, models.ErrNoEmails
	}

	now := s.now()
	result := &IncrementalResult{}

	for _, w := range s.windows {
		windowed := filterSince(emails, w.Cutoff(now))
		if len(windowed) == 0 {
			s.log.WithFields(logrus.Fields{"user": user, "window": w.Label}).Debug("window empty, skipping")

			continue
		}

		if !w.Modeled {
			unmodeled := unmodeledAssignments(windowed)
			if err := s.topics.PersistAssignments(ctx, user, unmodeled); err != nil {
				return nil, err
			}

			result.Unmodeled = &WindowResult{
				Window: w.Label,
				Topics: []models.Topic{{User: user, GroupID: models.UnmodeledGroupID, Name: models.UnmodeledTopicName}},
				Emails: unmodeled,
			}

			continue
		}

		labeling, err := s.modeler.LoadOrCreate(ctx, user, w.Label, documents(windowed), w.Params)
		if err != nil {
			if cluster.IsCapabilityError(err) {
				metrics.WindowSkipsTotal.WithLabelValues(w.Label).Inc()
				s.log.WithError(err).WithFields(logrus.Fields{
					"user":   user,
					"window": w.Label,
				}).Warn("clustering failed for window, skipping")

				continue
			}

			return nil, err
		}

		metrics.ModelRunsTotal.WithLabelValues(w.Label, string(labeling.Outcome)).Inc()

		assignments := mapAssignments(windowed, labeling)
		if err := s.topics.PersistAssignments(ctx, user, assignments); err != nil {
			return nil, err
		}

		// The shortest modeled window is the response payload; longer windows
		// are persisted side effects.
		if result.Modeled == nil {
			result.Modeled = &WindowResult{
				Window:  w.Label,
				Topics:  uniqueTopics(user, assignments),
				Emails:  assignments,
				Outcome: labeling.Outcome,
			}
		}
	}

	renamed, err := s.refiner.Refine(ctx, user)
	if err != nil {
		return nil, err
	}

	if result.Modeled != nil {
		applyRenames(result.Modeled.Emails, renamed)
		result.Modeled.Topics = uniqueTopics(user, result.Modeled.Emails)
	}

	return result, nil
}

// UpdateTopics refits the default-scope model over the user's stored emails
// plus the provided new documents, persisting labels for the stored emails.
// New documents influence the fit but have no rows to label.
func (s *TopicService) UpdateTopics(ctx context.Context, user string, newDocuments []string) (*RetopicResult, error) {
	emails, err := s.emails.FetchEmails(ctx, user)
	if err != nil {
		return nil, err
	}

	if len(emails) == 0 && len(newDocuments) == 0 {
		return nil, models.ErrNoEmails
	}

	docs := append(documents(emails), newDocuments...)

	labeling, err := s.modeler.Refit(ctx, user, models.ScopeDefault, docs, models.DefaultParams)
	if err != nil {
		return nil, err
	}

	metrics.ModelRunsTotal.WithLabelValues(models.ScopeDefault, string(labeling.Outcome)).Inc()

	stored := &Labeling{Labels: labeling.Labels[:len(emails)], Names: labeling.Names, Outcome: labeling.Outcome}

	assignments := mapAssignments(emails, stored)
	if err := s.topics.PersistAssignments(ctx, user, assignments); err != nil {
		return nil, err
	}

	return &RetopicResult{
		Topics:  uniqueTopics(user, assignments),
		Emails:  assignments,
		Outcome: labeling.Outcome,
	}, nil
}

// TopicsByTimeframe returns the stored memberships within the named
// timeframe, read-only. The all-time scope is unfiltered; unknown labels are
// rejected before any work.
func (s *TopicService) TopicsByTimeframe(ctx context.Context, user, timeframe string) ([]models.TopicEmail, error) {
	if timeframe == models.ScopeAllTime {
		return s.topics.TopicsByTimeframe(ctx, user, nil)
	}

	w, ok := models.FindWindow(s.windows, timeframe)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTimeframe, timeframe)
	}

	cutoff := w.Cutoff(s.now())

	return s.topics.TopicsByTimeframe(ctx, user, &cutoff)
}

// RecentEmails returns the user's most recent emails. A non-positive limit
// falls back to the configured default.
func (s *TopicService) RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error) {
	if limit <= 0 {
		limit = s.recentN
	}

	return s.emails.RecentEmails(ctx, user, limit)
}

// documents extracts the clustering text of each email, preserving order.
func documents(emails []models.Email) []string {
	docs := make([]string, len(emails))
	for i, e := range emails {
		docs[i] = e.Text()
	}

	return docs
}

// filterSince keeps emails with a sent timestamp at or after the cutoff.
// Emails without a timestamp belong to no window.
func filterSince(emails []models.Email, cutoff time.Time) []models.Email {
	var out []models.Email
	for _, e := range emails {
		if e.SentAt != nil && !e.SentAt.Before(cutoff) {
			out = append(out, e)
		}
	}

	return out
}

// mapAssignments resolves raw cluster labels to named topic assignments.
// The reserved outlier label always maps to the fixed outlier name; labels
// without a capability-provided name get a synthetic fallback.
func mapAssignments(emails []models.Email, labeling *Labeling) []models.Assignment {
	assignments := make([]models.Assignment, len(emails))

	for i, e := range emails {
		label := labeling.Labels[i]
		assignments[i] = models.Assignment{
			EmailID:   e.ID,
			GroupID:   label,
			TopicName: topicNameFor(label, labeling.Names),
		}
	}

	return assignments
}

func topicNameFor(label int, names map[int]string) string {
	if label == models.OutlierGroupID {
		return models.OutlierTopicName
	}

	if name, ok := names[label]; ok && name != "" {
		return name
	}

	return fmt.Sprintf("Topic %d", label)
}

func unmodeledAssignments(emails []models.Email) []models.Assignment {
	assignments := make([]models.Assignment, len(emails))
	for i, e := range emails {
		assignments[i] = models.Assignment{
			EmailID:   e.ID,
			GroupID:   models.UnmodeledGroupID,
			TopicName: models.UnmodeledTopicName,
		}
	}

	return assignments
}

// uniqueTopics collapses assignments into one topic row per group ID,
// preserving first-seen order.
func uniqueTopics(user string, assignments []models.Assignment) []models.Topic {
	seen := make(map[int]struct{}, len(assignments))
	topics := make([]models.Topic, 0, len(assignments))

	for _, a := range assignments {
		if _, ok := seen[a.GroupID]; ok {
			continue
		}
		seen[a.GroupID] = struct{}{}
		topics = append(topics, models.Topic{User: user, GroupID: a.GroupID, Name: a.TopicName})
	}

	return topics
}

// applyRenames rewrites assignment display names with refined topic names.
// Reserved groups are never renamed by the refiner, so they pass through.
func applyRenames(assignments []models.Assignment, renamed map[int]string) {
	if len(renamed) == 0 {
		return
	}

	for i := range assignments {
		if name, ok := renamed[assignments[i].GroupID]; ok {
			assignments[i].TopicName = name
		}
	}
}
