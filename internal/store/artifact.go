package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// ArtifactStore persists fitted clustering model bytes per (user, scope).
//
// Artifacts are a performance cache: losing one only costs a refit. The
// groups and group_emails tables remain the source of truth.
type ArtifactStore struct {
	Base
}

// NewArtifactStore creates a new ArtifactStore.
func NewArtifactStore(base Base) *ArtifactStore {
	return &ArtifactStore{Base: base}
}

// LoadArtifact returns the stored model bytes and default-name lookup for
// (user, scope). found is false when no artifact has ever been fitted.
func (s *ArtifactStore) LoadArtifact(ctx context.Context, user, scope string) (model []byte, names map[int]string, found bool, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var namesJSON []byte

	err = s.Pool.QueryRow(ctx,
		`SELECT model, names FROM model_artifacts
		 WHERE user_email_address = $1 AND scope = $2`,
		user, scope).Scan(&model, &namesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, false, nil
		}

		return nil, nil, false, fmt.Errorf("loading artifact %s/%s: %w", user, scope, err)
	}

	names, err = decodeNames(namesJSON)
	if err != nil {
		return nil, nil, false, fmt.Errorf("decoding artifact names %s/%s: %w", user, scope, err)
	}

	return model, names, true, nil
}

// SaveArtifact stores model bytes and the default-name lookup, replacing any
// previous artifact for (user, scope). Concurrent writers race here; the
// last write wins, which callers must tolerate.
func (s *ArtifactStore) SaveArtifact(ctx context.Context, user, scope string, model []byte, names map[int]string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	namesJSON, err := encodeNames(names)
	if err != nil {
		return fmt.Errorf("encoding artifact names %s/%s: %w", user, scope, err)
	}

	_, err = s.Pool.Exec(ctx,
		`INSERT INTO model_artifacts (user_email_address, scope, model, names, fitted_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_email_address, scope)
		 DO UPDATE SET model = EXCLUDED.model, names = EXCLUDED.names, fitted_at = now()`,
		user, scope, model, namesJSON)
	if err != nil {
		return fmt.Errorf("saving artifact %s/%s: %w", user, scope, err)
	}

	return nil
}

// DeleteArtifact removes the artifact for (user, scope), if any.
func (s *ArtifactStore) DeleteArtifact(ctx context.Context, user, scope string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.Pool.Exec(ctx,
		`DELETE FROM model_artifacts WHERE user_email_address = $1 AND scope = $2`,
		user, scope); err != nil {
		return fmt.Errorf("deleting artifact %s/%s: %w", user, scope, err)
	}

	return nil
}

// JSON object keys must be strings; labels are encoded in base 10.
func encodeNames(names map[int]string) ([]byte, error) {
	m := make(map[string]string, len(names))
	for label, name := range names {
		m[strconv.Itoa(label)] = name
	}

	return json.Marshal(m)
}

func decodeNames(data []byte) (map[int]string, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(m))
	for k, v := range m {
		label, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("non-numeric label key %q", k)
		}
		names[label] = v
	}

	return names, nil
}
