package api

import (
	"context"

	"github.com/clustermail/topicd/internal/models"
	"github.com/clustermail/topicd/internal/service"
)

// TopicRunner is the orchestration interface the topic handlers depend on.
type TopicRunner interface {
	Retopic(ctx context.Context, user string) (*service.RetopicResult, error)
	RunIncremental(ctx context.Context, user string) (*service.IncrementalResult, error)
	UpdateTopics(ctx context.Context, user string, newDocuments []string) (*service.RetopicResult, error)
	TopicsByTimeframe(ctx context.Context, user, timeframe string) ([]models.TopicEmail, error)
	RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error)
}

// Assigner is the point-assignment interface the email handlers depend on.
type Assigner interface {
	Reassign(ctx context.Context, req models.ReassignRequest) (*service.AssignResult, error)
	AssignNewEmail(ctx context.Context, req models.InsertEmailRequest) (*service.AssignResult, error)
}
