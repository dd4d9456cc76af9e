package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clustermail/topicd/internal/models"
)

// TopicStore handles topic ("group") and membership rows.
type TopicStore struct {
	Base
}

// NewTopicStore creates a new TopicStore.
func NewTopicStore(base Base) *TopicStore {
	return &TopicStore{Base: base}
}

const (
	upsertTopicSQL = `INSERT INTO groups (user_email_address, group_id, name, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_email_address, group_id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`

	upsertMembershipSQL = `INSERT INTO group_emails (user_email_address, group_id, email_id, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_email_address, email_id) DO UPDATE SET group_id = EXCLUDED.group_id, updated_at = now()`
)

// FetchTopics returns all (group_id, name) pairs for the user, ordered by
// group_id ascending. The order is the retrieval order similarity ties
// resolve to, so it must stay stable.
func (s *TopicStore) FetchTopics(ctx context.Context, user string) ([]models.Topic, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT user_email_address, group_id, name
		 FROM groups
		 WHERE user_email_address = $1
		 ORDER BY group_id`,
		user)
	if err != nil {
		return nil, fmt.Errorf("fetching topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic

	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.User, &t.GroupID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}

	return topics, nil
}

// MembershipTexts returns the clustering text (subject + summary) of every
// email currently in membership with the topic.
func (s *TopicStore) MembershipTexts(ctx context.Context, user string, groupID int) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT trim(e.subj || ' ' || e.summary)
		 FROM group_emails ge
		 JOIN emails e ON e.email_id = ge.email_id
		 WHERE ge.user_email_address = $1 AND ge.group_id = $2
		 ORDER BY e.email_id`,
		user, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetching membership texts: %w", err)
	}
	defer rows.Close()

	var texts []string

	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning membership text: %w", err)
		}
		texts = append(texts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership texts: %w", err)
	}

	return texts, nil
}

// UpsertTopic inserts a topic or overwrites its name on conflict.
func (s *TopicStore) UpsertTopic(ctx context.Context, user string, groupID int, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.Pool.Exec(ctx, upsertTopicSQL, user, groupID, name); err != nil {
		return fmt.Errorf("upserting topic %d: %w", groupID, err)
	}

	return nil
}

// UpsertMembership points the email at the topic, superseding any previous
// membership for the same (user, email) pair.
func (s *TopicStore) UpsertMembership(ctx context.Context, user string, groupID int, emailID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.Pool.Exec(ctx, upsertMembershipSQL, user, groupID, emailID); err != nil {
		if isForeignKeyViolation(err) {
			return models.ErrEmailNotFound
		}

		return fmt.Errorf("upserting membership for email %d: %w", emailID, err)
	}

	return nil
}

// MaxGroupID returns the highest group_id currently used by the user, or 0
// when the user has no topics (reserved negative IDs never win the max).
func (s *TopicStore) MaxGroupID(ctx context.Context, user string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var maxID int

	err := s.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(group_id), 0) FROM groups WHERE user_email_address = $1`,
		user).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("reading max group id: %w", err)
	}

	if maxID < 0 {
		maxID = 0
	}

	return maxID, nil
}

// PersistAssignments writes every topic and membership of one labeling run in
// a single transaction. Partial failure rolls back the whole batch.
func (s *TopicStore) PersistAssignments(ctx context.Context, user string, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("persisting assignments: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Unique topics first, then memberships, both within the same tx.
	seen := make(map[int]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.GroupID]; ok {
			continue
		}
		seen[a.GroupID] = struct{}{}

		if _, err := tx.Exec(ctx, upsertTopicSQL, user, a.GroupID, a.TopicName); err != nil {
			return fmt.Errorf("upserting topic %d in batch: %w", a.GroupID, err)
		}
	}

	for _, a := range assignments {
		if _, err := tx.Exec(ctx, upsertMembershipSQL, user, a.GroupID, a.EmailID); err != nil {
			if isForeignKeyViolation(err) {
				return models.ErrEmailNotFound
			}

			return fmt.Errorf("upserting membership for email %d in batch: %w", a.EmailID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing assignments: %w", err)
	}

	return nil
}

// TopicsByTimeframe returns stored membership rows joined with topic names,
// most recent email first. A nil cutoff returns every membership (all_time).
func (s *TopicStore) TopicsByTimeframe(ctx context.Context, user string, cutoff *time.Time) ([]models.TopicEmail, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ge.group_id, g.name, ge.email_id
		 FROM group_emails ge
		 JOIN groups g ON g.user_email_address = ge.user_email_address AND g.group_id = ge.group_id
		 JOIN emails e ON e.email_id = ge.email_id
		 WHERE ge.user_email_address = $1`
	args := []any{user}

	if cutoff != nil {
		query += ` AND e.date_sent >= $2`
		args = append(args, *cutoff)
	}

	query += ` ORDER BY e.date_sent DESC NULLS LAST, e.email_id DESC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching topics by timeframe: %w", err)
	}
	defer rows.Close()

	var result []models.TopicEmail

	for rows.Next() {
		var te models.TopicEmail
		if err := rows.Scan(&te.GroupID, &te.TopicName, &te.EmailID); err != nil {
			return nil, fmt.Errorf("scanning timeframe row: %w", err)
		}
		result = append(result, te)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeframe rows: %w", err)
	}

	return result, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
