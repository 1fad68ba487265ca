package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "uptime.alerts"

// publisher is the subset of *nats.Conn used to emit alerts.
type publisher interface {
	Publish(subject string, data []byte) error
}

type Event struct {
	Title  string    `json:"title"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// NATS publishes alerts as JSON events on a subject.
type NATS struct {
	Subject string
	conn    publisher
	raw     *nats.Conn
}

func NewNATS(url, subject string) (*NATS, error) {
	if url == "" {
		return nil, nil
	}
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url, nats.Name("uptimeboard"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{Subject: subject, conn: conn, raw: conn}, nil
}

func (n *NATS) Send(ctx context.Context, title, text string) error {
	if n == nil || n.conn == nil {
		return errors.New("nats disabled")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(Event{Title: title, Text: text, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return n.conn.Publish(n.Subject, body)
}

func (n *NATS) Close() error {
	if n == nil || n.raw == nil {
		return nil
	}
	err := n.raw.Drain()
	n.raw.Close()
	return err
}
