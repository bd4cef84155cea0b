// Package events publishes notifications about completed logins to RabbitMQ, so that
// other services can react to new Patreon sign-ins without polling us.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golden-vcr/server-common/rmq"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Login describes a completed Patreon login. It never carries the user's access token.
type Login struct {
	Id    string `json:"id"`
	Tier  string `json:"tier"`
	User  string `json:"user"`
	Email string `json:"email"`
}

// Publisher sends login events to interested consumers
type Publisher interface {
	PublishLogin(ctx context.Context, ev Login) error
}

// producer represents the subset of rmq.Producer functionality used to send messages
type producer interface {
	Send(ctx context.Context, data []byte) error
}

type rmqPublisher struct {
	producer producer
	newId    func() string
}

// NewPublisher initializes an rmq producer that sends login events to the given
// exchange
func NewPublisher(conn *amqp.Connection, exchange string) (Publisher, error) {
	p, err := rmq.NewProducer(conn, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize producer for exchange '%s': %w", exchange, err)
	}
	return newPublisher(p), nil
}

func newPublisher(p producer) *rmqPublisher {
	return &rmqPublisher{
		producer: p,
		newId:    uuid.NewString,
	}
}

// PublishLogin sends the event as JSON, assigning it a unique ID if it doesn't already
// have one
func (p *rmqPublisher) PublishLogin(ctx context.Context, ev Login) error {
	if ev.Id == "" {
		ev.Id = p.newId()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.producer.Send(ctx, data)
}

// NopPublisher discards all events; it's used when no message broker is configured
type NopPublisher struct{}

func (NopPublisher) PublishLogin(ctx context.Context, ev Login) error {
	return nil
}
