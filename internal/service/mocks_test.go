package service

import (
	"context"
	"sync"
	"time"

	"github.com/clustermail/topicd/internal/cluster"
	"github.com/clustermail/topicd/internal/models"
)

// mockEmailSource records calls and returns configured responses.
type mockEmailSource struct {
	mu    sync.Mutex
	calls []string

	fetchEmails  func(ctx context.Context, user string) ([]models.Email, error)
	recentEmails func(ctx context.Context, user string, limit int) ([]models.Email, error)
	insertEmail  func(ctx context.Context, req models.InsertEmailRequest) (int64, error)
}

func (m *mockEmailSource) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockEmailSource) FetchEmails(ctx context.Context, user string) ([]models.Email, error) {
	m.record("FetchEmails")
	return m.fetchEmails(ctx, user)
}

func (m *mockEmailSource) RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error) {
	m.record("RecentEmails")
	return m.recentEmails(ctx, user, limit)
}

func (m *mockEmailSource) InsertEmail(ctx context.Context, req models.InsertEmailRequest) (int64, error) {
	m.record("InsertEmail")
	return m.insertEmail(ctx, req)
}

// mockTopicStore records calls and returns configured responses. It covers
// the persistence, refiner and assignment store interfaces at once.
type mockTopicStore struct {
	mu    sync.Mutex
	calls []string

	persistAssignments func(ctx context.Context, user string, assignments []models.Assignment) error
	topicsByTimeframe  func(ctx context.Context, user string, cutoff *time.Time) ([]models.TopicEmail, error)
	fetchTopics        func(ctx context.Context, user string) ([]models.Topic, error)
	membershipTexts    func(ctx context.Context, user string, groupID int) ([]string, error)
	upsertTopic        func(ctx context.Context, user string, groupID int, name string) error
	upsertMembership   func(ctx context.Context, user string, groupID int, emailID int64) error
	maxGroupID         func(ctx context.Context, user string) (int, error)
}

func (m *mockTopicStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockTopicStore) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockTopicStore) PersistAssignments(ctx context.Context, user string, assignments []models.Assignment) error {
	m.record("PersistAssignments")
	return m.persistAssignments(ctx, user, assignments)
}

func (m *mockTopicStore) TopicsByTimeframe(ctx context.Context, user string, cutoff *time.Time) ([]models.TopicEmail, error) {
	m.record("TopicsByTimeframe")
	return m.topicsByTimeframe(ctx, user, cutoff)
}

func (m *mockTopicStore) FetchTopics(ctx context.Context, user string) ([]models.Topic, error) {
	m.record("FetchTopics")
	return m.fetchTopics(ctx, user)
}

func (m *mockTopicStore) MembershipTexts(ctx context.Context, user string, groupID int) ([]string, error) {
	m.record("MembershipTexts")
	return m.membershipTexts(ctx, user, groupID)
}

func (m *mockTopicStore) UpsertTopic(ctx context.Context, user string, groupID int, name string) error {
	m.record("UpsertTopic")
	return m.upsertTopic(ctx, user, groupID, name)
}

func (m *mockTopicStore) UpsertMembership(ctx context.Context, user string, groupID int, emailID int64) error {
	m.record("UpsertMembership")
	return m.upsertMembership(ctx, user, groupID, emailID)
}

func (m *mockTopicStore) MaxGroupID(ctx context.Context, user string) (int, error) {
	m.record("MaxGroupID")
	return m.maxGroupID(ctx, user)
}

// mockModeler records calls and returns configured labelings.
type mockModeler struct {
	mu    sync.Mutex
	calls []string

	loadOrCreate func(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error)
	refit        func(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error)
}

func (m *mockModeler) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockModeler) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockModeler) LoadOrCreate(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error) {
	m.record("LoadOrCreate")
	return m.loadOrCreate(ctx, user, scope, documents, params)
}

func (m *mockModeler) Refit(ctx context.Context, user, scope string, documents []string, params models.ClusterParams) (*Labeling, error) {
	m.record("Refit")
	return m.refit(ctx, user, scope, documents, params)
}

// mockRefiner returns a configured rename map.
type mockRefiner struct {
	refine func(ctx context.Context, user string) (map[int]string, error)
}

func (m *mockRefiner) Refine(ctx context.Context, user string) (map[int]string, error) {
	return m.refine(ctx, user)
}

// mockArtifacts is an in-memory ArtifactPersistence.
type mockArtifacts struct {
	mu    sync.Mutex
	calls []string

	loadArtifact func(ctx context.Context, user, scope string) ([]byte, map[int]string, bool, error)
	saveArtifact func(ctx context.Context, user, scope string, model []byte, names map[int]string) error
}

func (m *mockArtifacts) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockArtifacts) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockArtifacts) LoadArtifact(ctx context.Context, user, scope string) ([]byte, map[int]string, bool, error) {
	m.record("LoadArtifact")
	return m.loadArtifact(ctx, user, scope)
}

func (m *mockArtifacts) SaveArtifact(ctx context.Context, user, scope string, model []byte, names map[int]string) error {
	m.record("SaveArtifact")
	return m.saveArtifact(ctx, user, scope, model, names)
}

// mockClusterer records fit/transform calls.
type mockClusterer struct {
	mu    sync.Mutex
	calls []string

	fit       func(ctx context.Context, documents []string, params models.ClusterParams) (*cluster.FitResult, error)
	transform func(ctx context.Context, model []byte, documents []string) ([]int, error)
}

func (m *mockClusterer) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockClusterer) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockClusterer) Fit(ctx context.Context, documents []string, params models.ClusterParams) (*cluster.FitResult, error) {
	m.record("Fit")
	return m.fit(ctx, documents, params)
}

func (m *mockClusterer) Transform(ctx context.Context, model []byte, documents []string) ([]int, error) {
	m.record("Transform")
	return m.transform(ctx, model, documents)
}
