package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clustermail/topicd/internal/models"
	"github.com/clustermail/topicd/internal/store"
)

func TestUpsertTopic_InsertThenRename(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	ctx := context.Background()

	if err := ts.UpsertTopic(ctx, user, 0, "0_invoice_payment"); err != nil {
		t.Fatalf("UpsertTopic: %v", err)
	}

	if err := ts.UpsertTopic(ctx, user, 0, "invoice, payment, due"); err != nil {
		t.Fatalf("UpsertTopic rename: %v", err)
	}

	topics, err := ts.FetchTopics(ctx, user)
	if err != nil {
		t.Fatalf("FetchTopics: %v", err)
	}

	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}
	if topics[0].Name != "invoice, payment, due" {
		t.Errorf("Name = %q, want the renamed value", topics[0].Name)
	}
}

func TestFetchTopics_OrderedByGroupID(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	ctx := context.Background()

	for _, g := range []struct {
		id   int
		name string
	}{{5, "five"}, {-1, "Outlier"}, {0, "zero"}} {
		if err := ts.UpsertTopic(ctx, user, g.id, g.name); err != nil {
			t.Fatalf("UpsertTopic(%d): %v", g.id, err)
		}
	}

	topics, err := ts.FetchTopics(ctx, user)
	if err != nil {
		t.Fatalf("FetchTopics: %v", err)
	}

	if len(topics) != 3 {
		t.Fatalf("got %d topics, want 3", len(topics))
	}
	if topics[0].GroupID != -1 || topics[1].GroupID != 0 || topics[2].GroupID != 5 {
		t.Errorf("order = [%d %d %d], want [-1 0 5]",
			topics[0].GroupID, topics[1].GroupID, topics[2].GroupID)
	}
}

func TestUpsertMembership_MovesEmail(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	es := store.NewEmailStore(base)
	ctx := context.Background()

	emailID := insertTestEmail(t, es, user, "moving email", nil)

	for _, g := range []int{0, 1} {
		if err := ts.UpsertTopic(ctx, user, g, "topic"); err != nil {
			t.Fatalf("UpsertTopic(%d): %v", g, err)
		}
	}

	if err := ts.UpsertMembership(ctx, user, 0, emailID); err != nil {
		t.Fatalf("UpsertMembership: %v", err)
	}

	// Moving to another topic supersedes the previous membership.
	if err := ts.UpsertMembership(ctx, user, 1, emailID); err != nil {
		t.Fatalf("UpsertMembership move: %v", err)
	}

	rows, err := ts.TopicsByTimeframe(ctx, user, nil)
	if err != nil {
		t.Fatalf("TopicsByTimeframe: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d membership rows, want 1", len(rows))
	}
	if rows[0].GroupID != 1 {
		t.Errorf("GroupID = %d, want 1 after the move", rows[0].GroupID)
	}
}

func TestUpsertMembership_UnknownEmail(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	ctx := context.Background()

	if err := ts.UpsertTopic(ctx, user, 0, "topic"); err != nil {
		t.Fatalf("UpsertTopic: %v", err)
	}

	err := ts.UpsertMembership(ctx, user, 0, 999999999)
	if !errors.Is(err, models.ErrEmailNotFound) {
		t.Fatalf("got %v, want ErrEmailNotFound", err)
	}
}

func TestMaxGroupID(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	ctx := context.Background()

	maxID, err := ts.MaxGroupID(ctx, user)
	if err != nil {
		t.Fatalf("MaxGroupID: %v", err)
	}
	if maxID != 0 {
		t.Errorf("empty user MaxGroupID = %d, want 0", maxID)
	}

	// Reserved negative IDs must never win the max.
	if err := ts.UpsertTopic(ctx, user, models.OutlierGroupID, models.OutlierTopicName); err != nil {
		t.Fatalf("UpsertTopic: %v", err)
	}

	maxID, err = ts.MaxGroupID(ctx, user)
	if err != nil {
		t.Fatalf("MaxGroupID: %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxGroupID with only outlier = %d, want 0", maxID)
	}

	if err := ts.UpsertTopic(ctx, user, 7, "seven"); err != nil {
		t.Fatalf("UpsertTopic: %v", err)
	}

	maxID, err = ts.MaxGroupID(ctx, user)
	if err != nil {
		t.Fatalf("MaxGroupID: %v", err)
	}
	if maxID != 7 {
		t.Errorf("MaxGroupID = %d, want 7", maxID)
	}
}

func TestPersistAssignments_Batch(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	es := store.NewEmailStore(base)
	ctx := context.Background()

	id1 := insertTestEmail(t, es, user, "first", nil)
	id2 := insertTestEmail(t, es, user, "second", nil)

	assignments := []models.Assignment{
		{EmailID: id1, GroupID: 0, TopicName: "0_invoice"},
		{EmailID: id2, GroupID: 0, TopicName: "0_invoice"},
	}

	if err := ts.PersistAssignments(ctx, user, assignments); err != nil {
		t.Fatalf("PersistAssignments: %v", err)
	}

	topics, err := ts.FetchTopics(ctx, user)
	if err != nil {
		t.Fatalf("FetchTopics: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}

	rows, err := ts.TopicsByTimeframe(ctx, user, nil)
	if err != nil {
		t.Fatalf("TopicsByTimeframe: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d memberships, want 2", len(rows))
	}
}

func TestPersistAssignments_RollsBackOnUnknownEmail(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	es := store.NewEmailStore(base)
	ctx := context.Background()

	id1 := insertTestEmail(t, es, user, "first", nil)

	assignments := []models.Assignment{
		{EmailID: id1, GroupID: 0, TopicName: "0_invoice"},
		{EmailID: 999999999, GroupID: 0, TopicName: "0_invoice"},
	}

	err := ts.PersistAssignments(ctx, user, assignments)
	if !errors.Is(err, models.ErrEmailNotFound) {
		t.Fatalf("got %v, want ErrEmailNotFound", err)
	}

	// The whole batch rolls back, including the valid membership.
	rows, err := ts.TopicsByTimeframe(ctx, user, nil)
	if err != nil {
		t.Fatalf("TopicsByTimeframe: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d memberships after rollback, want 0", len(rows))
	}
}

func TestTopicsByTimeframe_Cutoff(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	es := store.NewEmailStore(base)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	oldID := insertTestEmail(t, es, user, "old", &old)
	recentID := insertTestEmail(t, es, user, "recent", &recent)

	assignments := []models.Assignment{
		{EmailID: oldID, GroupID: 0, TopicName: "topic"},
		{EmailID: recentID, GroupID: 0, TopicName: "topic"},
	}
	if err := ts.PersistAssignments(ctx, user, assignments); err != nil {
		t.Fatalf("PersistAssignments: %v", err)
	}

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows, err := ts.TopicsByTimeframe(ctx, user, &cutoff)
	if err != nil {
		t.Fatalf("TopicsByTimeframe: %v", err)
	}

	if len(rows) != 1 || rows[0].EmailID != recentID {
		t.Errorf("rows = %+v, want only the recent email", rows)
	}

	all, err := ts.TopicsByTimeframe(ctx, user, nil)
	if err != nil {
		t.Fatalf("TopicsByTimeframe all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d rows without cutoff, want 2", len(all))
	}
}

func TestMembershipTexts(t *testing.T) {
	base, user := setupTestBase(t)
	ts := store.NewTopicStore(base)
	es := store.NewEmailStore(base)
	ctx := context.Background()

	id, err := es.InsertEmail(ctx, models.InsertEmailRequest{
		User:    user,
		Subject: "Invoice due",
		Summary: "payment reminder",
	})
	if err != nil {
		t.Fatalf("InsertEmail: %v", err)
	}

	if err := ts.UpsertTopic(ctx, user, 0, "topic"); err != nil {
		t.Fatalf("UpsertTopic: %v", err)
	}
	if err := ts.UpsertMembership(ctx, user, 0, id); err != nil {
		t.Fatalf("UpsertMembership: %v", err)
	}

	texts, err := ts.MembershipTexts(ctx, user, 0)
	if err != nil {
		t.Fatalf("MembershipTexts: %v", err)
	}

	if len(texts) != 1 || texts[0] != "Invoice due payment reminder" {
		t.Errorf("texts = %q, want the joined subject and summary", texts)
	}
}
