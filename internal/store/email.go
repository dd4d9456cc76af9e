package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clustermail/topicd/internal/models"
)

// EmailStore handles email row access.
type EmailStore struct {
	Base
}

// NewEmailStore creates a new EmailStore.
func NewEmailStore(base Base) *EmailStore {
	return &EmailStore{Base: base}
}

const emailColumns = "email_id, user_email_address, subj, summary, date_sent"

// FetchEmails returns every email for the user, most recent first. Emails
// without a sent timestamp sort last.
func (s *EmailStore) FetchEmails(ctx context.Context, user string) ([]models.Email, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+emailColumns+`
		 FROM emails
		 WHERE user_email_address = $1
		 ORDER BY date_sent DESC NULLS LAST, email_id DESC`,
		user)
	if err != nil {
		return nil, fmt.Errorf("fetching emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

// RecentEmails returns the user's most recent emails, capped at limit.
func (s *EmailStore) RecentEmails(ctx context.Context, user string, limit int) ([]models.Email, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+emailColumns+`
		 FROM emails
		 WHERE user_email_address = $1
		 ORDER BY date_sent DESC NULLS LAST, email_id DESC
		 LIMIT $2`,
		user, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

// InsertEmail creates a new email row and returns its store-assigned ID.
func (s *EmailStore) InsertEmail(ctx context.Context, req models.InsertEmailRequest) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id int64

	err := s.Pool.QueryRow(ctx,
		`INSERT INTO emails (user_email_address, subj, summary, date_sent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING email_id`,
		req.User, req.Subject, req.Summary, req.SentAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting email: %w", err)
	}

	return id, nil
}

// GetEmail returns one email by ID, scoped to the user.
func (s *EmailStore) GetEmail(ctx context.Context, user string, emailID int64) (*models.Email, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+emailColumns+`
		 FROM emails
		 WHERE user_email_address = $1 AND email_id = $2`,
		user, emailID)

	var e models.Email
	if err := row.Scan(&e.ID, &e.User, &e.Subject, &e.Summary, &e.SentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEmailNotFound
		}

		return nil, fmt.Errorf("getting email: %w", err)
	}

	return &e, nil
}

func scanEmails(rows pgx.Rows) ([]models.Email, error) {
	var emails []models.Email

	for rows.Next() {
		var e models.Email
		if err := rows.Scan(&e.ID, &e.User, &e.Subject, &e.Summary, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}
		emails = append(emails, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating emails: %w", err)
	}

	return emails, nil
}
