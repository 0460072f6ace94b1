package mq

import "context"

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error requeues it.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations the service relies on.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend and remembers which channel user events go to.
type MQ struct {
	backend Backend
	channel string
}

// NewMQ constructs an MQ wrapper for the provided backend.
func NewMQ(backend Backend, channel string) *MQ {
	return &MQ{backend: backend, channel: channel}
}

// Channel returns the default channel name.
func (m *MQ) Channel() string {
	return m.channel
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
