package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultEndpoint is GitHub's GraphQL endpoint.
	DefaultEndpoint = "https://api.github.com/graphql"

	userAgent = "discussion-comments"
)

// HTTPTransport POSTs the query straight to the GraphQL endpoint.
// Without a token the request is anonymous, which works for public repositories.
type HTTPTransport struct {
	httpClient *http.Client
	endpoint   string
	slog       *slog.Logger
}

// NewHTTPTransport returns a transport for endpoint. A non-empty token is sent
// as a bearer credential. timeout bounds the whole request including the body.
func NewHTTPTransport(endpoint, token string, timeout time.Duration, lg *slog.Logger) *HTTPTransport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if lg == nil {
		lg = slog.Default()
	}
	hc := &http.Client{Timeout: timeout}
	if token != "" {
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   http.DefaultTransport,
		}
	}
	return &HTTPTransport{
		httpClient: hc,
		endpoint:   endpoint,
		slog:       lg,
	}
}

func (*HTTPTransport) Name() string { return "http" }

// Fetch sends one request and decodes the response once the body is fully read.
func (t *HTTPTransport) Fetch(ctx context.Context, owner, repo string) (*queryData, error) {
	payload, err := json.Marshal(newRequest(owner, repo))
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = int64(len(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		err := &HTTPStatusError{StatusCode: resp.StatusCode}
		t.slog.Warn("GitHub API returned non-200 status", "status", resp.StatusCode)
		if IsCredentialError(err) {
			t.slog.Warn("Hint: set GITHUB_TOKEN for authenticated requests")
		}
		return nil, err
	}

	data, err := decodeEnvelope(body)
	if err != nil {
		t.slog.Error("GitHub GraphQL request failed", "err", err)
		return nil, err
	}
	return data, nil
}
