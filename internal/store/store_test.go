package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/db"
	"github.com/clustermail/topicd/internal/db/migrations"
	"github.com/clustermail/topicd/internal/dbpool"
	"github.com/clustermail/topicd/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base with a unique test user, cleaned up after the test.
func setupTestBase(t *testing.T) (_ store.Base, _ string) {
	t.Helper()

	env := getTestEnv(t)
	user := fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: memberships, groups, artifacts, emails.
		env.pool.Exec(cleanCtx, "DELETE FROM group_emails WHERE user_email_address = $1", user)    //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM groups WHERE user_email_address = $1", user)          //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM model_artifacts WHERE user_email_address = $1", user) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM emails WHERE user_email_address = $1", user)          //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log}, user
}
