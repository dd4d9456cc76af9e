package client

import (
	"context"
	"net/url"
)

// TopicService provides topic-modeling operations.
type TopicService struct {
	c *Client
}

// Retopic reruns full clustering over all of a user's emails.
func (s *TopicService) Retopic(ctx context.Context, user string) (*RetopicResponse, error) {
	params := url.Values{"user_email": {user}}

	var resp RetopicResponse
	if err := s.c.get(ctx, "/api/topics", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Incremental runs windowed clustering, returning the shortest modeled window
// and the unmodeled slice.
func (s *TopicService) Incremental(ctx context.Context, user string) (*IncrementalResponse, error) {
	params := url.Values{"user_email": {user}}

	var resp IncrementalResponse
	if err := s.c.get(ctx, "/api/topics/incremental", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Timeframe reads stored topic/email rows within a named window, or all of
// them when timeframe is "all_time".
func (s *TopicService) Timeframe(ctx context.Context, user, timeframe string) (*TimeframeResponse, error) {
	params := url.Values{
		"user_email": {user},
		"timeframe":  {timeframe},
	}

	var resp TimeframeResponse
	if err := s.c.get(ctx, "/api/topics/timeframe", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update refits the user's model over stored emails plus newDocuments.
func (s *TopicService) Update(ctx context.Context, user string, newDocuments []string) (*RetopicResponse, error) {
	req := UpdateTopicsRequest{User: user, NewDocuments: newDocuments}

	var resp RetopicResponse
	if err := s.c.post(ctx, "/api/topics/update", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reassign moves an email into the named topic, creating the topic if needed.
func (s *TopicService) Reassign(ctx context.Context, req ReassignRequest) (*AssignResponse, error) {
	var resp AssignResponse
	if err := s.c.post(ctx, "/api/topics/reassign", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
