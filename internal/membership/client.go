// Package membership talks to the external conversation-membership service.
// The E2EE core only ever asks two questions of it: "is this user in this
// conversation" and "who is in this conversation".
package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost:8085"
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	u := fmt.Sprintf("%s/v1/conversations/%s/participants/%s", c.baseURL, conversationID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Participant bool `json:"participant"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, err
		}
		return body.Participant, nil
	case http.StatusNotFound:
		// Unknown conversation or unknown user: treated as non-membership.
		return false, nil
	default:
		return false, fmt.Errorf("membership check failed: %s", resp.Status)
	}
}

func (c *Client) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	u := fmt.Sprintf("%s/v1/conversations/%s/participants", c.baseURL, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("membership list failed: %s", resp.Status)
	}

	var body struct {
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(body.Participants))
	for _, p := range body.Participants {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid participant id from membership service: %q", p)
		}
		out = append(out, id)
	}
	return out, nil
}
