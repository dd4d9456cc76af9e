// Package cluster is the HTTP client for the external clustering sidecar.
//
// The sidecar owns the embedding, dimensionality-reduction and density
// clustering pipeline. This package treats it as an opaque capability: fit
// trains a model on a document set, transform applies a previously fitted
// model. Model bytes are never interpreted here.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/clustermail/topicd/internal/models"
)

const requestTimeout = 120 * time.Second

// maxResponseSize bounds decoded sidecar responses (model bytes included).
const maxResponseSize = 64 << 20 // 64 MB

// CapabilityError wraps any failure of the clustering sidecar. Callers treat
// it as recoverable: a failed transform marks the artifact stale and triggers
// a refit instead of aborting the operation.
type CapabilityError struct {
	Op  string // "fit" or "transform"
	Err error
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("clustering %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CapabilityError) Unwrap() error { return e.Err }

// IsCapabilityError reports whether err is a clustering capability failure.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}

// FitResult is the output of a fresh fit: one label per input document, the
// serialized model, and the sidecar's default name per labeled cluster.
type FitResult struct {
	Labels []int
	Model  []byte
	Names  map[int]string
}

// Clusterer is the capability interface consumed by the services.
type Clusterer interface {
	Fit(ctx context.Context, documents []string, params models.ClusterParams) (*FitResult, error)
	Transform(ctx context.Context, model []byte, documents []string) ([]int, error)
}

// Client calls the clustering sidecar over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given sidecar base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type fitRequest struct {
	Documents []string             `json:"documents"`
	Params    models.ClusterParams `json:"params"`
}

type fitResponse struct {
	Labels []int             `json:"labels"`
	Model  []byte            `json:"model"` // base64 via encoding/json
	Names  map[string]string `json:"names"`
}

type transformRequest struct {
	Model     []byte   `json:"model"`
	Documents []string `json:"documents"`
}

type transformResponse struct {
	Labels []int `json:"labels"`
}

// Fit trains a fresh model on the documents and returns labels, serialized
// model bytes and the sidecar's default cluster names.
func (c *Client) Fit(ctx context.Context, documents []string, params models.ClusterParams) (*FitResult, error) {
	var resp fitResponse
	if err := c.post(ctx, "/fit", fitRequest{Documents: documents, Params: params}, &resp); err != nil {
		return nil, &CapabilityError{Op: "fit", Err: err}
	}

	if len(resp.Labels) != len(documents) {
		return nil, &CapabilityError{Op: "fit", Err: fmt.Errorf("got %d labels for %d documents", len(resp.Labels), len(documents))}
	}

	names := make(map[int]string, len(resp.Names))
	for k, v := range resp.Names {
		label, err := strconv.Atoi(k)
		if err != nil {
			return nil, &CapabilityError{Op: "fit", Err: fmt.Errorf("non-numeric cluster label %q", k)}
		}
		names[label] = v
	}

	return &FitResult{Labels: resp.Labels, Model: resp.Model, Names: names}, nil
}

// Transform applies a previously fitted model to the documents. Any transport,
// status or shape error comes back as a CapabilityError; the caller decides
// whether to refit.
func (c *Client) Transform(ctx context.Context, model []byte, documents []string) ([]int, error) {
	var resp transformResponse
	if err := c.post(ctx, "/transform", transformRequest{Model: model, Documents: documents}, &resp); err != nil {
		return nil, &CapabilityError{Op: "transform", Err: err}
	}

	if len(resp.Labels) != len(documents) {
		return nil, &CapabilityError{Op: "transform", Err: fmt.Errorf("got %d labels for %d documents", len(resp.Labels), len(documents))}
	}

	return resp.Labels, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, result any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return fmt.Errorf("sidecar returned status %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(limited).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
