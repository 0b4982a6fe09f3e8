// Package directory is the client for the user-directory service. The
// gateway consumes exactly one write RPC from it: the idempotent oauth
// upsert keyed by (provider, providerId).
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deungsanlog/gateway/internal/identity"
	"github.com/deungsanlog/gateway/internal/observability/logger"
)

// UpsertError covers an unreachable directory or a rejected payload.
type UpsertError struct {
	Status int
	Reason string
	Err    error
}

func (e *UpsertError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("user directory upsert failed: http %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("user directory upsert failed: %s", e.Reason)
}

func (e *UpsertError) Unwrap() error { return e.Err }

// UpsertRequest is the wire payload of POST /api/users/oauth.
type UpsertRequest struct {
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	ProfileImgURL string `json:"profileImgUrl,omitempty"`
	Provider      string `json:"provider"`
	ProviderID    string `json:"providerId"`
}

// User is the directory's record, including the numeric id the token
// service embeds into the session JWT.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	ProfileImgURL string `json:"profileImgUrl"`
	Provider      string `json:"provider"`
	ProviderID    string `json:"providerId"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Client talks to the user-directory over HTTP with a bounded per-call
// timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Upsert creates or updates the directory record for a federated identity
// and returns it. The directory guarantees idempotency on
// (provider, providerId); the returned id is stable across calls.
func (c *Client) Upsert(ctx context.Context, id identity.Identity) (*User, error) {
	log := logger.From(ctx).With(logger.Layer("client"), logger.Op("directory.Upsert"))

	payload, err := json.Marshal(UpsertRequest{
		Email:         id.Email,
		Nickname:      id.DisplayName,
		ProfileImgURL: id.AvatarURL,
		Provider:      string(id.Provider),
		ProviderID:    id.ExternalID,
	})
	if err != nil {
		return nil, &UpsertError{Reason: "encode payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/users/oauth", bytes.NewReader(payload))
	if err != nil {
		return nil, &UpsertError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("user directory unreachable", logger.Err(err))
		return nil, &UpsertError{Reason: "directory unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UpsertError{Status: resp.StatusCode, Reason: "read body", Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return nil, &UpsertError{Status: resp.StatusCode, Reason: "directory rejected payload"}
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, &UpsertError{Status: resp.StatusCode, Reason: "malformed response", Err: err}
	}
	if u.ID == 0 {
		return nil, &UpsertError{Status: resp.StatusCode, Reason: "response missing user id"}
	}

	log.Debug("directory upsert ok", logger.UserID(u.ID), logger.Provider(string(id.Provider)))
	return &u, nil
}
