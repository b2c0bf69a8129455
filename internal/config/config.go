// Package config provides configuration loading for dosd.
package config

import (
	"fmt"
	"time"
)

// Environment tags recognized by the platform.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// CoreAgents is the fixed catalog of the five core agents. The catalog
// is closed, so it is a package constant rather than a config knob.
var CoreAgents = []string{"MasterLinc", "DocsLinc", "ClaimLinc", "VoiceLinc", "MapLinc"}

// Config is the root configuration for the dosd daemon.
type Config struct {
	Environment  string             `koanf:"environment"`
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Events       EventsConfig       `koanf:"events"`
	Identity     IdentityConfig     `koanf:"identity"`
	Knowledge    KnowledgeConfig    `koanf:"knowledge"`
	VectorIndex  VectorIndexConfig  `koanf:"vectorindex"`
	Embeddings   EmbeddingsConfig   `koanf:"embeddings"`
	Automation   AutomationConfig   `koanf:"automation"`
	Monetization MonetizationConfig `koanf:"monetization"`
}

// ServerConfig holds the HTTP surface configuration.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
	Stdout bool   `koanf:"stdout"`
}

// TelemetryConfig controls OTEL tracing.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"`
	Insecure     bool    `koanf:"insecure"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

// EventsConfig controls the NATS event bus.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	// Embedded starts an in-process NATS server instead of dialing URL.
	Embedded bool `koanf:"embedded"`
}

// IdentityConfig configures the identity pillar.
type IdentityConfig struct {
	ZeroTrustEnabled bool     `koanf:"zero_trust_enabled"`
	SSOProvider      string   `koanf:"sso_provider"`
	SSOEndpoint      string   `koanf:"sso_endpoint"`
	SessionTimeout   Duration `koanf:"session_timeout"`
}

// KnowledgeConfig configures the knowledge pillar.
type KnowledgeConfig struct {
	Domains       []string `koanf:"domains"`
	SeedDocuments bool     `koanf:"seed_documents"`
}

// VectorIndexConfig configures the vector index backend.
type VectorIndexConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider   string             `koanf:"provider"`
	VectorSize int                `koanf:"vector_size"`
	Chromem    ChromemIndexConfig `koanf:"chromem"`
	Qdrant     QdrantIndexConfig  `koanf:"qdrant"`
}

// ChromemIndexConfig configures the embedded chromem-go backend.
type ChromemIndexConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	Compress   bool   `koanf:"compress"`
}

// QdrantIndexConfig configures the Qdrant gRPC backend.
type QdrantIndexConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	UseTLS     bool   `koanf:"use_tls"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "tei", "openai" or "fastembed".
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   Secret `koanf:"api_key"`
	CacheDir string `koanf:"cache_dir"`
}

// AutomationConfig configures the automation pillar.
type AutomationConfig struct {
	// EngineHostPort is the workflow engine address (Temporal frontend).
	EngineHostPort         string   `koanf:"engine_host_port"`
	Namespace              string   `koanf:"namespace"`
	TaskQueue              string   `koanf:"task_queue"`
	APIGatewayEnabled      bool     `koanf:"api_gateway_enabled"`
	MaxConcurrentWorkflows int      `koanf:"max_concurrent_workflows"`
	ExecutionTimeout       Duration `koanf:"execution_timeout"`
	// GatewayRateLimit is the outbound calls-per-second budget per service.
	GatewayRateLimit float64 `koanf:"gateway_rate_limit"`
}

// MonetizationConfig configures the monetization pillar.
type MonetizationConfig struct {
	FunnelURL      string `koanf:"funnel_url"`
	PrimaryProduct string `koanf:"primary_product"`
	PricingModel   string `koanf:"pricing_model"`
}

// HealthCheckInterval is how often the orchestrator samples pillar health.
const HealthCheckInterval = 30 * time.Second

// applyDefaults fills unset fields with production-ready defaults.
func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9090
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		if cfg.Environment == EnvDevelopment {
			cfg.Logging.Format = "console"
		} else {
			cfg.Logging.Format = "json"
		}
	}
	if cfg.Telemetry.SamplingRate == 0 {
		cfg.Telemetry.SamplingRate = 1.0
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Events.URL == "" {
		cfg.Events.URL = "nats://localhost:4222"
	}
	if cfg.Identity.SSOProvider == "" {
		cfg.Identity.SSOProvider = "cloudflare"
	}
	if cfg.Identity.SessionTimeout == 0 {
		cfg.Identity.SessionTimeout = Duration(time.Hour)
	}
	if len(cfg.Knowledge.Domains) == 0 {
		cfg.Knowledge.Domains = []string{"Healthcare", "Business", "Tech", "Content"}
	}
	if cfg.VectorIndex.Provider == "" {
		cfg.VectorIndex.Provider = "chromem"
	}
	if cfg.VectorIndex.VectorSize == 0 {
		cfg.VectorIndex.VectorSize = 384
	}
	if cfg.VectorIndex.Chromem.Path == "" {
		cfg.VectorIndex.Chromem.Path = "~/.config/dosd/vectorindex"
	}
	if cfg.VectorIndex.Chromem.Collection == "" {
		cfg.VectorIndex.Chromem.Collection = "dos_knowledge"
	}
	if cfg.VectorIndex.Qdrant.Host == "" {
		cfg.VectorIndex.Qdrant.Host = "localhost"
	}
	if cfg.VectorIndex.Qdrant.Port == 0 {
		cfg.VectorIndex.Qdrant.Port = 6334
	}
	if cfg.VectorIndex.Qdrant.Collection == "" {
		cfg.VectorIndex.Qdrant.Collection = "dos_knowledge"
	}
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "fastembed"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Automation.EngineHostPort == "" {
		cfg.Automation.EngineHostPort = "localhost:7233"
	}
	if cfg.Automation.Namespace == "" {
		cfg.Automation.Namespace = "default"
	}
	if cfg.Automation.TaskQueue == "" {
		cfg.Automation.TaskQueue = "dos-automation"
	}
	if cfg.Automation.MaxConcurrentWorkflows == 0 {
		cfg.Automation.MaxConcurrentWorkflows = 10
	}
	if cfg.Automation.ExecutionTimeout == 0 {
		cfg.Automation.ExecutionTimeout = Duration(5 * time.Minute)
	}
	if cfg.Automation.GatewayRateLimit == 0 {
		cfg.Automation.GatewayRateLimit = 10
	}
	if cfg.Monetization.FunnelURL == "" {
		cfg.Monetization.FunnelURL = "https://brainsait.com/solutions"
	}
	if cfg.Monetization.PrimaryProduct == "" {
		cfg.Monetization.PrimaryProduct = "ClaimLinc"
	}
	if cfg.Monetization.PricingModel == "" {
		cfg.Monetization.PricingModel = "usage-based"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("invalid environment %q (want development, staging or production)", c.Environment)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.VectorIndex.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unsupported vectorindex provider %q (supported: chromem, qdrant)", c.VectorIndex.Provider)
	}
	if c.VectorIndex.VectorSize <= 0 {
		return fmt.Errorf("vector size must be positive, got %d", c.VectorIndex.VectorSize)
	}
	switch c.Embeddings.Provider {
	case "tei", "openai", "fastembed":
	default:
		return fmt.Errorf("unsupported embeddings provider %q (supported: tei, openai, fastembed)", c.Embeddings.Provider)
	}
	if c.Identity.SessionTimeout.Duration() <= 0 {
		return fmt.Errorf("session timeout must be positive")
	}
	if c.Automation.MaxConcurrentWorkflows <= 0 {
		return fmt.Errorf("max concurrent workflows must be positive, got %d", c.Automation.MaxConcurrentWorkflows)
	}
	if len(c.Knowledge.Domains) == 0 {
		return fmt.Errorf("at least one knowledge domain is required")
	}
	return nil
}
