package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SSOConnector is the external SSO/zero-trust provider contract. Connect
// is called during Initialize only when zero trust is enabled.
type SSOConnector interface {
	Connect(ctx context.Context) error
	Provider() string
}

// httpSSOConnector verifies reachability of the provider endpoint. The
// actual token exchange happens per-login against the same endpoint.
type httpSSOConnector struct {
	provider string
	endpoint string
	client   *http.Client
}

// NewHTTPSSOConnector creates a connector probing the given endpoint.
func NewHTTPSSOConnector(provider, endpoint string) SSOConnector {
	return &httpSSOConnector{
		provider: provider,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *httpSSOConnector) Provider() string {
	return c.provider
}

func (c *httpSSOConnector) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating probe request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sso provider %s unreachable: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("sso provider %s unhealthy: status %d", c.provider, resp.StatusCode)
	}
	return nil
}
