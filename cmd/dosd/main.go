// Dosd is the BrainSAIT digital operating system daemon.
//
// It runs the five platform pillars behind one orchestrator and exposes
// them over HTTP: identity, knowledge, automation, agents, and
// monetization.
//
// Configuration is loaded from an optional YAML file plus DOS_
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults
//	dosd
//
//	# Configure via file and environment
//	dosd -config /etc/dosd/config.yaml
//	DOS_SERVER_PORT=9090 dosd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/embeddings"
	"github.com/brainsait/dosd/internal/events"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/logging"
	"github.com/brainsait/dosd/internal/monetization"
	"github.com/brainsait/dosd/internal/orchestrator"
	"github.com/brainsait/dosd/internal/server"
	"github.com/brainsait/dosd/internal/telemetry"
	"github.com/brainsait/dosd/internal/vectorindex"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  dosd           Start the platform daemon\n")
			fmt.Fprintf(os.Stderr, "  dosd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("dosd error: %v", err)
	}

	log.Println("dosd shutdown complete")
}

func printVersion() {
	fmt.Printf("dosd by BrainSAIT\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the platform and blocks until the context is cancelled.
//
// Startup order:
//  1. Load and validate configuration
//  2. Initialize logger, metrics registry, and tracing
//  3. Connect the event bus
//  4. Build the five pillars and the orchestrator
//  5. Start the orchestrator, then the HTTP server
//
// Shutdown runs in reverse: HTTP server first, then orchestrator, then
// infrastructure.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting dosd",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	bus, err := events.NewBus(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("connecting event bus: %w", err)
	}
	defer bus.Close()

	orch, err := buildPlatform(cfg, metrics, bus, logger)
	if err != nil {
		return fmt.Errorf("building platform: %w", err)
	}

	if err := orch.Start(ctx); err != nil {
		return fmt.Errorf("starting platform: %w", err)
	}

	srv, err := server.NewServer(orch, registry, logger, cfg.Server)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			orch.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}
	orch.Stop(shutdownCtx)

	return nil
}

// buildPlatform wires the pillars in their dependency order and hands
// them to the orchestrator.
func buildPlatform(cfg *config.Config, metrics *telemetry.Metrics, bus *events.Bus, logger *zap.Logger) (*orchestrator.Orchestrator, error) {
	index, err := vectorindex.New(cfg.VectorIndex, logger.Named("vectorindex"))
	if err != nil {
		return nil, fmt.Errorf("creating vector index: %w", err)
	}

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	var gateway automation.Gateway
	if cfg.Automation.APIGatewayEnabled {
		gateway = automation.NewHTTPGateway(cfg.Automation.GatewayRateLimit, logger.Named("gateway"))
	}

	deps := orchestrator.Deps{
		Identity:     identity.NewGate(cfg.Identity, nil, logger.Named("identity")),
		Knowledge:    knowledge.NewStore(cfg.Knowledge, index, embedder, metrics, logger.Named("knowledge")),
		Automation:   automation.NewSpine(cfg.Automation, automation.NewTemporalEngine(cfg.Automation, logger.Named("engine")), gateway, metrics, logger.Named("automation")),
		Agents:       agents.NewRegistry(metrics, bus, logger.Named("agents")),
		Monetization: monetization.NewEngine(cfg.Monetization, logger.Named("monetization")),

		Metrics: metrics,
		Bus:     bus,
		Logger:  logger.Named("orchestrator"),
	}

	return orchestrator.New(deps), nil
}
