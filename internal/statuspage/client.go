// Package statuspage reads the public FACEIT status page, which is hosted on
// Atlassian Statuspage and exposes the v2 JSON API.
package statuspage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// DefaultBaseURL is the FACEIT status page.
const DefaultBaseURL = "https://www.faceitstatus.com"

// Client fetches the status page summary over fasthttp.
type Client struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

// NewClient returns a Client for baseURL. Empty or zero arguments take the
// FACEIT page and a 10s timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: timeout,
	}
}

// Summary is the /api/v2/summary.json document.
type Summary struct {
	Page struct {
		Name      string    `json:"name"`
		URL       string    `json:"url"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"page"`
	Status     Status      `json:"status"`
	Components []Component `json:"components"`
	Incidents  []Incident  `json:"incidents"`
}

// Status is the overall page indicator.
type Status struct {
	// none, minor, major or critical
	Indicator   string `json:"indicator"`
	Description string `json:"description"`
}

// Component is one monitored service.
type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Group  bool   `json:"group"`
}

// Operational reports whether the component has no reported issue.
func (c Component) Operational() bool {
	return c.Status == "" || c.Status == "operational"
}

// Incident is an unresolved incident.
type Incident struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Impact    string    `json:"impact"`
	Shortlink string    `json:"shortlink"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the overall status, components and open incidents.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	return doRequest[Summary](ctx, c, c.baseURL+"/api/v2/summary.json")
}

func doRequest[T any](ctx context.Context, c *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("status page: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("status page: HTTP %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("status page: decode: %w", err)
	}
	return &result, nil
}
