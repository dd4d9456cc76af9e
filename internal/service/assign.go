package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/cluster"
	"github.com/clustermail/topicd/internal/metrics"
	"github.com/clustermail/topicd/internal/models"
)

// AssignEmailSource is the email data-access interface AssignService depends on.
type AssignEmailSource interface {
	FetchEmails(ctx context.Context, user string) ([]models.Email, error)
	InsertEmail(ctx context.Context, req models.InsertEmailRequest) (int64, error)
}

// AssignTopicStore is the topic data-access interface AssignService depends on.
type AssignTopicStore interface {
	FetchTopics(ctx context.Context, user string) ([]models.Topic, error)
	UpsertTopic(ctx context.Context, user string, groupID int, name string) error
	UpsertMembership(ctx context.Context, user string, groupID int, emailID int64) error
	MaxGroupID(ctx context.Context, user string) (int, error)
}

// AssignResult is the outcome of attaching a single email to a topic.
type AssignResult struct {
	EmailID   int64  `json:"email_id"`
	GroupID   int    `json:"group_id"`
	TopicName string `json:"topic_name"`
}

// AssignService attaches individual emails to topics outside of a full refit.
type AssignService struct {
	emails  AssignEmailSource
	topics  AssignTopicStore
	modeler ModelProvider
	log     *logrus.Logger
}

// NewAssignService creates an AssignService.
func NewAssignService(emails AssignEmailSource, topics AssignTopicStore, modeler ModelProvider, log *logrus.Logger) *AssignService {
	return &AssignService{emails: emails, topics: topics, modeler: modeler, log: log}
}

// Reassign moves one email into the topic named in the request.
//
// When a topic with exactly that name already exists, only the membership row
// changes; no model work happens and the topic keeps its group ID. Otherwise
// the all-time model is refitted over every stored email so a manually named
// topic is reconciled against what the model itself would produce: if the
// refit discovers the requested name, its cluster label becomes the group ID,
// else the next free ID is allocated.
func (s *AssignService) Reassign(ctx context.Context, req models.ReassignRequest) (*AssignResult, error) {
	topics, err := s.topics.FetchTopics(ctx, req.User)
	if err != nil {
		return nil, err
	}

	for _, t := range topics {
		if t.Name == req.TopicName {
			if err := s.topics.UpsertMembership(ctx, req.User, t.GroupID, req.EmailID); err != nil {
				return nil, err
			}

			metrics.ReassignmentsTotal.WithLabelValues("existing").Inc()

			return &AssignResult{EmailID: req.EmailID, GroupID: t.GroupID, TopicName: t.Name}, nil
		}
	}

	groupID, err := s.resolveNewGroupID(ctx, req.User, req.TopicName)
	if err != nil {
		return nil, err
	}

	if err := s.topics.UpsertTopic(ctx, req.User, groupID, req.TopicName); err != nil {
		return nil, err
	}

	if err := s.topics.UpsertMembership(ctx, req.User, groupID, req.EmailID); err != nil {
		return nil, err
	}

	metrics.ReassignmentsTotal.WithLabelValues("new").Inc()

	return &AssignResult{EmailID: req.EmailID, GroupID: groupID, TopicName: req.TopicName}, nil
}

// resolveNewGroupID refits the all-time model and adopts the matching
// cluster's label when the model produces the requested name; otherwise it
// allocates max(group_id, 0)+1. The read and the later insert are not atomic;
// concurrent allocators race and the last write wins.
func (s *AssignService) resolveNewGroupID(ctx context.Context, user, topicName string) (int, error) {
	emails, err := s.emails.FetchEmails(ctx, user)
	if err != nil {
		return 0, err
	}

	if len(emails) > 0 {
		labeling, err := s.modeler.Refit(ctx, user, models.ScopeAllTime, documents(emails), models.DefaultParams)
		switch {
		case err == nil:
			for label, name := range labeling.Names {
				if name == topicName {
					return label, nil
				}
			}
		case cluster.IsCapabilityError(err):
			// Fall back to plain allocation; the manual assignment should not
			// fail because the sidecar is down.
			s.log.WithError(err).WithField("user", user).Warn("all-time refit failed, allocating group id directly")
		default:
			return 0, err
		}
	}

	maxID, err := s.topics.MaxGroupID(ctx, user)
	if err != nil {
		return 0, err
	}

	return maxID + 1, nil
}

// AssignNewEmail inserts the email and attaches it to the lexically closest
// existing topic by TF-IDF cosine similarity over topic names. The user must
// already have a topic taxonomy; this path never refits a model, making it
// the cheap ingestion route between clustering runs. Ties resolve to the
// first topic in retrieval order.
func (s *AssignService) AssignNewEmail(ctx context.Context, req models.InsertEmailRequest) (*AssignResult, error) {
	emailID, err := s.emails.InsertEmail(ctx, req)
	if err != nil {
		return nil, err
	}

	topics, err := s.topics.FetchTopics(ctx, req.User)
	if err != nil {
		return nil, err
	}

	if len(topics) == 0 {
		return nil, models.ErrNoTopics
	}

	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}

	email := models.Email{Subject: req.Subject, Summary: req.Summary}

	winner := topics[bestMatch(names, email.Text())]

	if err := s.topics.UpsertMembership(ctx, req.User, winner.GroupID, emailID); err != nil {
		return nil, err
	}

	metrics.SimilarityAssignsTotal.Inc()

	return &AssignResult{EmailID: emailID, GroupID: winner.GroupID, TopicName: winner.Name}, nil
}
