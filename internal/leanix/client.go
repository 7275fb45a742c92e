// Package leanix fetches architecture data from the LeanIX GraphQL API and
// maps it to a source snapshot.
package leanix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBody bounds how much of a response is read into memory.
const maxBody = 32 << 20

// StatusError is returned for non-200 HTTP responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("leanix: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool { return e.StatusCode >= 500 }

// GraphQLError carries the messages of a GraphQL "errors" array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "leanix: graphql: " + strings.Join(e.Messages, "; ")
}

// Client talks to one LeanIX workspace. It is not safe for concurrent use.
type Client struct {
	cfg         Config
	http        *http.Client
	log         *zap.Logger
	accessToken string
}

// NewClient returns a client for cfg. A nil httpClient gets a client with
// cfg.Timeout; a nil logger discards output.
func NewClient(cfg Config, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Client{cfg: cfg, http: httpClient, log: log}
}

// Authenticate exchanges the API token for a short-lived access token.
func (c *Client) Authenticate(ctx context.Context) error {
	tokenURL := c.cfg.tokenURL()
	form := url.Values{"grant_type": {"client_credentials"}}.Encode()

	body, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth("apitoken", c.cfg.APIToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("leanix: get access token: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("leanix: decode token response: %w", err)
	}
	tok, err := jsonpath.Get("$.access_token", doc)
	if err != nil {
		return fmt.Errorf("leanix: token response has no access_token: %w", err)
	}
	s, ok := tok.(string)
	if !ok || s == "" {
		return errors.New("leanix: token response has an empty access_token")
	}
	c.accessToken = s
	c.log.Debug("leanix.authenticated", zap.String("token_url", tokenURL))
	return nil
}

// Execute runs a GraphQL query and returns the decoded response document.
// A non-empty "errors" array is returned as *GraphQLError.
func (c *Client) Execute(ctx context.Context, query string, vars map[string]any) (any, error) {
	if c.accessToken == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}
	payload, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return nil, fmt.Errorf("leanix: encode query: %w", err)
	}

	body, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("leanix: decode graphql response: %w", err)
	}
	if msgs, err := jsonpath.Get("$.errors[*].message", doc); err == nil {
		if list, ok := msgs.([]any); ok && len(list) > 0 {
			ge := &GraphQLError{}
			for _, m := range list {
				ge.Messages = append(ge.Messages, fmt.Sprint(m))
			}
			return nil, ge
		}
	}
	return doc, nil
}

// Platform fetches a TechPlatform with its applications and user groups.
func (c *Client) Platform(ctx context.Context, id uuid.UUID) (*FactSheet, error) {
	doc, err := c.Execute(ctx, platformQuery, map[string]any{"id": id.String()})
	if err != nil {
		return nil, fmt.Errorf("fetch platform %s: %w", id, err)
	}
	var fs FactSheet
	if err := decodeAt(doc, "$.data.factSheet", &fs); err != nil {
		return nil, fmt.Errorf("fetch platform %s: %w", id, err)
	}
	if fs.ID == "" {
		return nil, fmt.Errorf("fetch platform %s: not found", id)
	}
	return &fs, nil
}

// Interfaces fetches every interface with its providers and consumers.
func (c *Client) Interfaces(ctx context.Context) ([]FactSheet, error) {
	doc, err := c.Execute(ctx, interfacesQuery, map[string]any{"limit": interfaceLimit})
	if err != nil {
		return nil, fmt.Errorf("fetch interfaces: %w", err)
	}
	var out []FactSheet
	if err := decodeAt(doc, "$.data.allFactSheets.edges[*].node", &out); err != nil {
		return nil, fmt.Errorf("fetch interfaces: %w", err)
	}
	return out, nil
}

// Ping checks connectivity and returns the workspace's application count.
func (c *Client) Ping(ctx context.Context) (int, error) {
	doc, err := c.Execute(ctx, pingQuery, nil)
	if err != nil {
		return 0, err
	}
	v, err := jsonpath.Get("$.data.allFactSheets.totalCount", doc)
	if err != nil {
		return 0, fmt.Errorf("leanix: ping: %w", err)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("leanix: ping: totalCount is %T", v)
	}
	return int(n), nil
}

// decodeAt extracts the value at path and decodes it into out.
func decodeAt(doc any, path string, out any) error {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return fmt.Errorf("leanix: response has no %s: %w", path, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("leanix: re-encode %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("leanix: decode %s: %w", path, err)
	}
	return nil
}

// do sends the request produced by build, retrying transport errors and
// 5xx responses up to cfg.Attempts times. Only a 200 body is returned.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		body, err := c.send(req)
		if err == nil {
			return body, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return nil, err
		}
		if attempt >= c.cfg.Attempts || ctx.Err() != nil {
			return nil, err
		}
		c.log.Warn("leanix.retry",
			zap.String("url", req.URL.Redacted()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.RetryWait):
		}
	}
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}
