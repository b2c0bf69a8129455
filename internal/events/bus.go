// Package events publishes platform lifecycle events over NATS.
//
// The presentation layer subscribes to dos.* subjects instead of polling
// the HTTP surface: status transitions, health snapshots and agent task
// completions are pushed as JSON envelopes.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
)

// Subjects for platform events.
const (
	SubjectStatus    = "dos.status"
	SubjectHealth    = "dos.health"
	SubjectAgentTask = "dos.agent.task"
)

// Publisher is the write side of the bus. Components hold this interface
// so tests can substitute a recording fake.
type Publisher interface {
	// Publish sends v as JSON on subject. Best-effort: delivery failures
	// are logged, never returned, so event publication cannot fail a
	// control-plane operation.
	Publish(subject string, v any)
}

// Envelope wraps every published payload.
type Envelope struct {
	Subject   string          `json:"subject"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Bus is a NATS-backed Publisher. The zero value is a no-op bus.
type Bus struct {
	nc     *nats.Conn
	srv    *natsserver.Server
	logger *zap.Logger
}

// NewBus connects to NATS per config. With Embedded set, an in-process
// server on a random port is started and dialed instead of cfg.URL. A
// disabled config yields a no-op bus.
func NewBus(cfg config.EventsConfig, logger *zap.Logger) (*Bus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return &Bus{logger: logger}, nil
	}

	b := &Bus{logger: logger}
	url := cfg.URL

	if cfg.Embedded {
		srv, err := natsserver.NewServer(&natsserver.Options{
			Host:   "127.0.0.1",
			Port:   -1,
			NoLog:  true,
			NoSigs: true,
		})
		if err != nil {
			return nil, fmt.Errorf("creating embedded NATS server: %w", err)
		}
		go srv.Start()
		if !srv.ReadyForConnections(5 * time.Second) {
			srv.Shutdown()
			return nil, fmt.Errorf("embedded NATS server not ready")
		}
		b.srv = srv
		url = srv.ClientURL()
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		if b.srv != nil {
			b.srv.Shutdown()
		}
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	b.nc = nc

	logger.Info("event bus connected",
		zap.String("url", url),
		zap.Bool("embedded", cfg.Embedded),
	)
	return b, nil
}

// Publish implements Publisher.
func (b *Bus) Publish(subject string, v any) {
	if b.nc == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Warn("event payload not serializable",
			zap.String("subject", subject), zap.Error(err))
		return
	}

	env, err := json.Marshal(Envelope{
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		b.logger.Warn("event envelope not serializable",
			zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := b.nc.Publish(subject, env); err != nil {
		b.logger.Warn("event publish failed",
			zap.String("subject", subject), zap.Error(err))
	}
}

// Conn exposes the underlying connection for subscribers (dosctl, tests).
func (b *Bus) Conn() *nats.Conn {
	return b.nc
}

// Close drains the connection and stops the embedded server if present.
func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
	if b.srv != nil {
		b.srv.Shutdown()
		b.srv.WaitForShutdown()
	}
}
