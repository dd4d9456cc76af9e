package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/clustermail/topicd/internal/api"
	"github.com/clustermail/topicd/internal/models"
	"github.com/clustermail/topicd/internal/service"
)

func TestTopicRetopic_OK(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		retopicFn: func(_ context.Context, user string) (*service.RetopicResult, error) {
			if user != testUser {
				t.Errorf("got user %q", user)
			}
			return &service.RetopicResult{
				Topics:  []models.Topic{{User: user, GroupID: 0, Name: "billing issues"}},
				Emails:  []models.Assignment{{EmailID: 1, GroupID: 0, TopicName: "billing issues"}},
				Outcome: service.ModelFresh,
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics", h.Retopic)

	w := doRequest(r, http.MethodGet, "/topics?user_email="+url.QueryEscape(testUser), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp service.RetopicResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp.Outcome != service.ModelFresh {
		t.Errorf("expected outcome %q, got %q", service.ModelFresh, resp.Outcome)
	}
	if len(resp.Topics) != 1 || resp.Topics[0].Name != "billing issues" {
		t.Errorf("unexpected topics: %+v", resp.Topics)
	}
}

func TestTopicRetopic_MissingUser(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewTopicHandler(&mockTopicRunner{}, testLogger())
	r.GET("/topics", h.Retopic)

	w := doRequest(r, http.MethodGet, "/topics", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["code"] != "invalid_request" {
		t.Errorf("expected code invalid_request, got %q", resp["code"])
	}
}

func TestTopicRetopic_NoEmails(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		retopicFn: func(_ context.Context, _ string) (*service.RetopicResult, error) {
			return nil, models.ErrNoEmails
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics", h.Retopic)

	w := doRequest(r, http.MethodGet, "/topics?user_email="+url.QueryEscape(testUser), "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicRetopic_InternalError(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		retopicFn: func(_ context.Context, _ string) (*service.RetopicResult, error) {
			return nil, errors.New("db connection lost")
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics", h.Retopic)

	w := doRequest(r, http.MethodGet, "/topics?user_email="+url.QueryEscape(testUser), "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicIncremental_OK(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		incrementalFn: func(_ context.Context, _ string) (*service.IncrementalResult, error) {
			return &service.IncrementalResult{
				Modeled: &service.WindowResult{
					Window:  "3_months",
					Topics:  []models.Topic{{GroupID: 0, Name: "travel plans"}},
					Emails:  []models.Assignment{{EmailID: 2, GroupID: 0, TopicName: "travel plans"}},
					Outcome: service.ModelRefit,
				},
				Unmodeled: &service.WindowResult{
					Window: "1_month",
					Emails: []models.Assignment{{EmailID: 1, GroupID: models.UnmodeledGroupID, TopicName: models.UnmodeledTopicName}},
				},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics/incremental", h.Incremental)

	w := doRequest(r, http.MethodGet, "/topics/incremental?user_email="+url.QueryEscape(testUser), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp service.IncrementalResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp.Modeled == nil || resp.Modeled.Window != "3_months" {
		t.Fatalf("unexpected modeled window: %+v", resp.Modeled)
	}
	if resp.Unmodeled == nil || resp.Unmodeled.Emails[0].GroupID != models.UnmodeledGroupID {
		t.Errorf("unexpected unmodeled slice: %+v", resp.Unmodeled)
	}
}

func TestTopicTimeframe_OK(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		timeframeFn: func(_ context.Context, _, timeframe string) ([]models.TopicEmail, error) {
			if timeframe != "6_months" {
				t.Errorf("got timeframe %q", timeframe)
			}
			return []models.TopicEmail{
				{GroupID: 0, TopicName: "billing issues", EmailID: 1},
				{GroupID: 0, TopicName: "billing issues", EmailID: 4},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics/timeframe", h.Timeframe)

	w := doRequest(r, http.MethodGet, "/topics/timeframe?user_email="+url.QueryEscape(testUser)+"&timeframe=6_months", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Topics []models.TopicEmail `json:"topics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(resp.Topics) != 2 {
		t.Errorf("expected 2 rows, got %d", len(resp.Topics))
	}
}

func TestTopicTimeframe_MissingTimeframe(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewTopicHandler(&mockTopicRunner{}, testLogger())
	r.GET("/topics/timeframe", h.Timeframe)

	w := doRequest(r, http.MethodGet, "/topics/timeframe?user_email="+url.QueryEscape(testUser), "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicTimeframe_Unknown(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		timeframeFn: func(_ context.Context, _, _ string) ([]models.TopicEmail, error) {
			return nil, models.ErrUnknownTimeframe
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.GET("/topics/timeframe", h.Timeframe)

	w := doRequest(r, http.MethodGet, "/topics/timeframe?user_email="+url.QueryEscape(testUser)+"&timeframe=2_weeks", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["code"] != "validation_error" {
		t.Errorf("expected code validation_error, got %q", resp["code"])
	}
}

func TestTopicUpdate_OK(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		updateFn: func(_ context.Context, user string, newDocuments []string) (*service.RetopicResult, error) {
			if user != testUser {
				t.Errorf("got user %q", user)
			}
			if len(newDocuments) != 2 {
				t.Errorf("got %d new documents", len(newDocuments))
			}
			return &service.RetopicResult{Outcome: service.ModelRefit}, nil
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.POST("/topics/update", h.Update)

	body := `{"user_email":"alice@example.com","new_documents":["lease renewal","parking permit"]}`
	w := doRequest(r, http.MethodPost, "/topics/update", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicUpdate_MissingUser(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewTopicHandler(&mockTopicRunner{}, testLogger())
	r.POST("/topics/update", h.Update)

	w := doRequest(r, http.MethodPost, "/topics/update", `{"new_documents":["a"]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicUpdate_InvalidBody(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewTopicHandler(&mockTopicRunner{}, testLogger())
	r.POST("/topics/update", h.Update)

	w := doRequest(r, http.MethodPost, "/topics/update", `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTopicUpdate_NothingToModel(t *testing.T) {
	t.Parallel()

	runner := &mockTopicRunner{
		updateFn: func(_ context.Context, _ string, _ []string) (*service.RetopicResult, error) {
			return nil, models.ErrNoEmails
		},
	}

	r := newTestRouter()
	h := api.NewTopicHandler(runner, testLogger())
	r.POST("/topics/update", h.Update)

	w := doRequest(r, http.MethodPost, "/topics/update", `{"user_email":"alice@example.com"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
