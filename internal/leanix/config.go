package leanix

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config keys shared with settings and the init prompts.
const (
	KeyGraphQLURL = "graphql_url"
	KeyAPIToken   = "api_token"
	KeyPlatformID = "platform_id"
)

// Config holds what the client needs to reach one LeanIX workspace.
type Config struct {
	GraphQLURL string
	APIToken   string
	PlatformID uuid.UUID

	// Attempts is the number of tries per request for transport errors and
	// 5xx responses.
	Attempts  int
	RetryWait time.Duration
	Timeout   time.Duration
}

// DefaultConfig returns retry and timeout defaults with no endpoint set.
func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		RetryWait: 500 * time.Millisecond,
		Timeout:   30 * time.Second,
	}
}

// ConfigFromMap builds a Config from source config keys.
func ConfigFromMap(m map[string]string) (Config, error) {
	cfg := DefaultConfig()
	cfg.GraphQLURL = strings.TrimSpace(m[KeyGraphQLURL])
	cfg.APIToken = strings.TrimSpace(m[KeyAPIToken])

	if cfg.APIToken == "" {
		return cfg, fmt.Errorf("leanix: API token not provided (set LEANIX_API_TOKEN)")
	}
	if cfg.GraphQLURL == "" {
		return cfg, fmt.Errorf("leanix: GraphQL URL not provided (set LEANIX_GRAPHQL_URL)")
	}
	id, err := uuid.Parse(strings.TrimSpace(m[KeyPlatformID]))
	if err != nil {
		return cfg, fmt.Errorf("leanix: platform id %q: %w", m[KeyPlatformID], err)
	}
	cfg.PlatformID = id
	return cfg, nil
}

// tokenURL derives the OAuth token endpoint from the GraphQL endpoint:
// everything before "/services/" plus the MTM token path.
func (c Config) tokenURL() string {
	base, _, _ := strings.Cut(c.GraphQLURL, "/services/")
	return strings.TrimRight(base, "/") + "/services/mtm/v1/oauth2/token"
}

// newHTTPClient returns a client with bounded dial, TLS and header timeouts.
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
		},
	}
}
