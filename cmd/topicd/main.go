// Command topicd runs the email topic-modeling HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/clustermail/topicd/internal/api"
	"github.com/clustermail/topicd/internal/cluster"
	"github.com/clustermail/topicd/internal/config"
	"github.com/clustermail/topicd/internal/db"
	"github.com/clustermail/topicd/internal/db/migrations"
	"github.com/clustermail/topicd/internal/dbpool"
	"github.com/clustermail/topicd/internal/keyphrase"
	"github.com/clustermail/topicd/internal/models"
	"github.com/clustermail/topicd/internal/service"
	"github.com/clustermail/topicd/internal/store"
)

// version is set via -ldflags at build time.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("topicd exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	emailStore := store.NewEmailStore(base)
	topicStore := store.NewTopicStore(base)
	artifactStore := store.NewArtifactStore(base)

	clusterer := cluster.NewClient(cfg.ClusterURL)
	artifacts := service.NewArtifactService(artifactStore, clusterer, log)
	refiner := service.NewNamingRefiner(topicStore, keyphrase.NewFrequencyExtractor(), cfg.KeyphraseCount, log)
	topics := service.NewTopicService(emailStore, topicStore, artifacts, refiner,
		models.DefaultWindows, cfg.RecentLimit, log)
	assigner := service.NewAssignService(emailStore, topicStore, artifacts, log)

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Topics:      topics,
		Assigner:    assigner,
		CORSOrigins: cfg.CORSOrigins,
		Version:     version,
		ClusterURL:  cfg.ClusterURL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"version": version,
		}).Info("topicd listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("shutdown complete")

	return nil
}
