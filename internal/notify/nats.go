package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"lejio/tracking/internal/domain"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	conn    *nats.Conn
	pub     natsConn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("gps-ingestion"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn, pub: conn, subject: subject}, nil
}

// Publish sends to "<subject>.<alert type>" so consumers can subscribe to
// one transition kind or to "<subject>.*".
func (p *NATSPublisher) Publish(_ context.Context, alert domain.GeofenceAlert) error {
	body, err := Encode(alert)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(p.subject+"."+string(alert.AlertType), body); err != nil {
		return fmt.Errorf("nats publish alert: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
