// Package publisher emits domain events over NATS. Publishing is best
// effort: a failed publish is logged and never fails the request that
// triggered it.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

// Publisher publishes JSON-encoded events to NATS subjects. A zero-valued
// disabled publisher drops events silently, which keeps event wiring out of
// tests and single-node deployments.
type Publisher struct {
	conn *nats.Conn
}

// New connects to the NATS server at url.
func New(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("warbler-server"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Disabled returns a publisher that drops all events.
func Disabled() *Publisher {
	return &Publisher{}
}

// Publish encodes event as JSON and publishes it to subject. Errors are
// logged, not returned.
func (p *Publisher) Publish(ctx context.Context, subject string, event any) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

// Close flushes pending events and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Flush()
	p.conn.Close()
}
