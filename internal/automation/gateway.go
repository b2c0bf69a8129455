package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ExternalService names a service reachable through the gateway.
type ExternalService string

const (
	ServiceOpenAI     ExternalService = "openai"
	ServiceElevenLabs ExternalService = "elevenlabs"
	ServiceNPHIES     ExternalService = "nphies"
	ServiceStripe     ExternalService = "stripe"
	ServiceTwilio     ExternalService = "twilio"
	ServiceGoogle     ExternalService = "google"
)

var serviceBaseURLs = map[ExternalService]string{
	ServiceOpenAI:     "https://api.openai.com/v1",
	ServiceElevenLabs: "https://api.elevenlabs.io/v1",
	ServiceNPHIES:     "https://nphies.sa/api",
	ServiceStripe:     "https://api.stripe.com/v1",
	ServiceTwilio:     "https://api.twilio.com/2010-04-01",
	ServiceGoogle:     "https://www.googleapis.com",
}

// Gateway is the outbound API gateway contract.
type Gateway interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Call(ctx context.Context, service ExternalService, endpoint string, params map[string]string) (map[string]any, error)
}

// httpGateway rate-limits outbound calls per service.
type httpGateway struct {
	client *http.Client
	logger *zap.Logger
	limit  rate.Limit

	mu       sync.Mutex
	limiters map[ExternalService]*rate.Limiter
	open     bool
}

// NewHTTPGateway creates a gateway allowing callsPerSecond outbound
// requests per service.
func NewHTTPGateway(callsPerSecond float64, logger *zap.Logger) Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callsPerSecond <= 0 {
		callsPerSecond = 10
	}
	return &httpGateway{
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		limit:    rate.Limit(callsPerSecond),
		limiters: make(map[ExternalService]*rate.Limiter),
	}
}

func (g *httpGateway) Initialize(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	return nil
}

func (g *httpGateway) Shutdown(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.limiters = make(map[ExternalService]*rate.Limiter)
	return nil
}

// Call performs a GET against the service endpoint with params encoded
// as query values, honoring the per-service rate budget.
func (g *httpGateway) Call(ctx context.Context, service ExternalService, endpoint string, params map[string]string) (map[string]any, error) {
	base, ok := serviceBaseURLs[service]
	if !ok {
		return nil, fmt.Errorf("unknown external service %q", service)
	}

	limiter, err := g.limiter(service)
	if err != nil {
		return nil, err
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	target := base + "/" + strings.TrimPrefix(endpoint, "/")
	if len(values) > 0 {
		target += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	g.logger.Debug("gateway call",
		zap.String("service", string(service)),
		zap.String("endpoint", endpoint),
	)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", service, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s %s: status %d: %s", service, endpoint, resp.StatusCode, string(body))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

func (g *httpGateway) limiter(service ExternalService) (*rate.Limiter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return nil, ErrGatewayUnavailable
	}
	limiter, ok := g.limiters[service]
	if !ok {
		limiter = rate.NewLimiter(g.limit, int(g.limit)+1)
		g.limiters[service] = limiter
	}
	return limiter, nil
}
