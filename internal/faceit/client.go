// Package faceit provides a minimal client for the FACEIT Data API v4.
package faceit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the root endpoint for the FACEIT Data API v4.
const DefaultBaseURL = "https://open.faceit.com/data/v4"

var (
	// ErrRequestFailed wraps every network or non-200 failure from the API.
	ErrRequestFailed = errors.New("faceit: request failed")
	// ErrPlayerNotFound is returned when a nickname does not resolve to a player.
	ErrPlayerNotFound = errors.New("faceit: player not found")
)

// HTTPError reports a non-200 response.
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.Path, e.StatusCode)
}

// Unwrap makes errors.Is(err, ErrRequestFailed) hold.
func (e *HTTPError) Unwrap() error { return ErrRequestFailed }

// Client is a minimal FACEIT Data API v4 client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient returns a FACEIT API client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Player holds the fields we need from the /players endpoint.
type Player struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Games    struct {
		CS2 struct {
			SkillLevel int    `json:"skill_level"`
			FaceitELO  int    `json:"faceit_elo"`
			Region     string `json:"region"`
		} `json:"cs2"`
	} `json:"games"`
}

// MatchHistoryItem is one entry from /players/{id}/history.
type MatchHistoryItem struct {
	MatchID    string `json:"match_id"`
	Status     string `json:"status"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// MatchDetail holds the fields we need from /matches/{id}.
type MatchDetail struct {
	MatchID    string   `json:"match_id"`
	DemoURLs   []string `json:"demo_url"`
	StartedAt  int64    `json:"started_at"`
	FinishedAt int64    `json:"finished_at"`
	FaceitURL  string   `json:"faceit_url"`
}

// get performs an authenticated GET request against the FACEIT API and
// JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrRequestFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{Path: path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrRequestFailed, path, err)
	}
	return nil
}

// GetPlayerByNickname looks up a player by their FACEIT nickname.
func (c *Client) GetPlayerByNickname(ctx context.Context, nickname string) (*Player, error) {
	var p Player
	err := c.get(ctx, "/players?nickname="+url.QueryEscape(nickname), &p)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, nickname)
	}
	if err != nil {
		return nil, err
	}
	if p.PlayerID == "" {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, nickname)
	}
	return &p, nil
}

// GetMatchHistory returns up to limit recent matches for a player,
// most recent first.
func (c *Client) GetMatchHistory(ctx context.Context, playerID string, limit int) ([]MatchHistoryItem, error) {
	var resp struct {
		Items []MatchHistoryItem `json:"items"`
	}
	path := fmt.Sprintf("/players/%s/history?game=cs2&offset=0&limit=%d", url.PathEscape(playerID), limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetMatch returns match metadata: timestamps and demo URLs.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchDetail, error) {
	var m MatchDetail
	if err := c.get(ctx, "/matches/"+url.PathEscape(matchID), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchStats returns the per-round statistics of a finished match.
func (c *Client) GetMatchStats(ctx context.Context, matchID string) (*MatchStats, error) {
	var s MatchStats
	if err := c.get(ctx, "/matches/"+url.PathEscape(matchID)+"/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
