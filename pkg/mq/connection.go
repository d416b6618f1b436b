package mq

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "agency.events"

	heartbeat = 10 * time.Second
)

// NewConnection dials the broker. name shows up as the connection name in
// the RabbitMQ management UI.
func NewConnection(brokerURL, name string) (*amqp091.Connection, error) {
	props := amqp091.NewConnectionProperties()
	if name != "" {
		props.SetClientConnectionName(name)
	}
	conn, err := amqp091.DialConfig(brokerURL, amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ at %s as %q: %w", redactURL(brokerURL), name, err)
	}
	return conn, nil
}

// redactURL drops the password from an amqp URL for logs and errors.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

// DeclareExchange declares the durable topic exchange all agency events go
// through.
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, amqp091.ExchangeTopic, true, false, false, false, nil)
}
