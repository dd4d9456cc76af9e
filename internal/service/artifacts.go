// Package service provides the topic-model lifecycle and assignment logic
// between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/cluster"
	"github.com/clustermail/topicd/internal/models"
)

// ModelOutcome describes how a labeling run obtained its model.
type ModelOutcome string

// Outcomes of LoadOrCreate. A stored artifact is Absent until first fit,
// Fitted while transform succeeds, and Stale the moment a transform fails;
// Stale artifacts are never reused, they are replaced by a refit.
const (
	// ModelReused means an existing artifact transformed the documents.
	ModelReused ModelOutcome = "reused"

	// ModelRefit means the stored artifact was stale (transform failed) and
	// a fresh model was fitted to replace it.
	ModelRefit ModelOutcome = "refit"

	// ModelFresh means no artifact existed and a first fit was performed.
	ModelFresh ModelOutcome = "fresh"
)

// Labeling is the result of running the clustering capability over one
// document set: one raw label per document plus the capability's default
// display name per labeled cluster.
type Labeling struct {
	Labels  []int
	Names   map[int]string
	Outcome ModelOutcome
}

// ArtifactPersistence is the data-access interface ArtifactService depends on.
type ArtifactPersistence interface {
	LoadArtifact(ctx context.Context, user, scope string) (model []byte, names map[int]string, found bool, err error)
	SaveArtifact(ctx context.Context, user, scope string, model []byte, names map[int]string) error
}

// ArtifactService owns the fitted-model lifecycle per (user, scope).
type ArtifactService struct {
	artifacts ArtifactPersistence
	clusterer cluster.Clusterer
	log       *logrus.Logger
}

// NewArtifactService creates an ArtifactService.
func NewArtifactService(artifacts ArtifactPersistence, clusterer cluster.Clusterer, log *logrus.Logger) *ArtifactService {
	return &ArtifactService{artifacts: artifacts, clusterer: clusterer, log: log}
}

// LoadOrCreate labels the documents with the (user, scope) model, fitting one
// when necessary.
//
// A stored artifact is tried first via transform. Transform failure is an
// expected, recoverable condition (incompatible dimensionality after a
// sidecar upgrade, corrupt bytes): it is logged, the artifact is discarded
// and a refit replaces it. The new artifact is always persisted before
// returning, so a crash after fit still leaves a usable artifact behind.
// Only fit failures and persistence I/O errors propagate.
func (s *ArtifactService) LoadOrCreate(
	ctx context.Context, user, scope string, documents []string, params models.ClusterParams,
) (*Labeling, error) {
	model, names, found, err := s.artifacts.LoadArtifact(ctx, user, scope)
	if err != nil {
		return nil, err
	}

	outcome := ModelFresh

	if found {
		labels, terr := s.clusterer.Transform(ctx, model, documents)
		if terr == nil {
			return &Labeling{Labels: labels, Names: names, Outcome: ModelReused}, nil
		}

		s.log.WithError(terr).WithFields(logrus.Fields{
			"user":  user,
			"scope": scope,
		}).Warn("stale model artifact, refitting")

		outcome = ModelRefit
	}

	fitted, err := s.clusterer.Fit(ctx, documents, params)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.SaveArtifact(ctx, user, scope, fitted.Model, fitted.Names); err != nil {
		return nil, err
	}

	return &Labeling{Labels: fitted.Labels, Names: fitted.Names, Outcome: outcome}, nil
}

// Refit unconditionally fits a fresh model over the documents and persists
// it, replacing any stored artifact for (user, scope).
func (s *ArtifactService) Refit(
	ctx context.Context, user, scope string, documents []string, params models.ClusterParams,
) (*Labeling, error) {
	fitted, err := s.clusterer.Fit(ctx, documents, params)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.SaveArtifact(ctx, user, scope, fitted.Model, fitted.Names); err != nil {
		return nil, err
	}

	return &Labeling{Labels: fitted.Labels, Names: fitted.Names, Outcome: ModelRefit}, nil
}
