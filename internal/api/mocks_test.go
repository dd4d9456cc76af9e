package api_test

import (
	"context"

	"github.com/clustermail/topicd/internal/models"
	"github.com/clustermail/topicd/internal/service"
)

// mockTopicRunner implements api.TopicRunner for testing.
type mockTopicRunner struct {
	retopicFn     func(ctx context.Context, user string) (*service.RetopicResult, error)
	incrementalFn func(ctx context.Context, user string) (*service.IncrementalResult, error)
	updateFn      func(ctx context.Context, user string, newDocuments []string) (*service.RetopicResult, error)
	timeframeFn   func(ctx context.Context, user, timeframe string) ([]models.TopicEmail, error)
	recentFn      func(ctx context.Context, user string, limit int) ([]models.Email, error)
}

func (m *mockTopicRunner) Retopic(ctx context.Context, user string) (*service.RetopicResult, error) {
	return m.retopicFn(ctx, user)
}

func (m *mockTopicRunner) RunIncremental(ctx context.Context, user string) (*service.IncrementalResult, error) {
	return m.incrementalFn(ctx, user)
}

func (m *mockTopicRunner) UpdateTopics(ctx context.Context, user string, newDocuments []string) (*service.RetopicResult, error) {
	return m.updateFn(ctx, user, newDocuments)
}

func (m *mockTopicRunner) TopicsByTimeframe(ctx context.Context, user, timeframe string) ([]models.TopicEmail, error) {
	return m.timeframeFn(ctx, user, timeframe)
}

func (m *mockTopicRunner) RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error) {
	return m.recentFn(ctx, user, limit)
}

// mockAssigner implements api.Assigner for testing.
type mockAssigner struct {
	reassignFn func(ctx context.Context, req models.ReassignRequest) (*service.AssignResult, error)
	assignFn   func(ctx context.Context, req models.InsertEmailRequest) (*service.AssignResult, error)
}

func (m *mockAssigner) Reassign(ctx context.Context, req models.ReassignRequest) (*service.AssignResult, error) {
	return m.reassignFn(ctx, req)
}

func (m *mockAssigner) AssignNewEmail(ctx context.Context, req models.InsertEmailRequest) (*service.AssignResult, error) {
	return m.assignFn(ctx, req)
}
