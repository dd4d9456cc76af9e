package client

import (
	"context"
	"net/url"
	"strconv"
)

// EmailService provides single-email operations.
type EmailService struct {
	c *Client
}

// Recent returns a user's most recent emails, newest first. A limit of 0
// uses the server default.
func (s *EmailService) Recent(ctx context.Context, user string, limit int) ([]Email, error) {
	params := url.Values{"user_email": {user}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp RecentEmailsResponse
	if err := s.c.get(ctx, "/api/emails/recent", params, &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// Assign inserts a new email and attaches it to the most similar existing topic.
func (s *EmailService) Assign(ctx context.Context, req AssignEmailRequest) (*AssignResponse, error) {
	var resp AssignResponse
	if err := s.c.post(ctx, "/api/emails/assign", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
