package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	err     error
}

func (r *recordingBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.channel = channel
	r.data = data
	r.attrs = attrs
	return "msg-1", nil
}

func (r *recordingBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return handler(ctx, Message{ID: "msg-1", Data: r.data, Attributes: r.attrs})
}

func (r *recordingBackend) Close() error { return nil }

func TestEventPublisherPublish(t *testing.T) {
	backend := &recordingBackend{}
	publisher := NewEventPublisher(NewMQ(backend, "user-events"))
	publisher.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	err := publisher.Publish(context.Background(), Event{
		Type:   EventUserResumeUploaded,
		UserID: 3,
		Asset:  "/uploads/resumes/resume-1.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-events", backend.channel)
	assert.Equal(t, EventUserResumeUploaded, backend.attrs["event"])
	assert.JSONEq(t,
		`{"type":"user.resume_uploaded","user_id":3,"asset":"/uploads/resumes/resume-1.pdf","occurred_at":"2024-01-01T00:00:00Z"}`,
		string(backend.data))
}

func TestEventPublisherWrapsBackendError(t *testing.T) {
	boom := errors.New("broker down")
	publisher := NewEventPublisher(NewMQ(&recordingBackend{err: boom}, "user-events"))

	err := publisher.Publish(context.Background(), Event{Type: EventUserRegistered, UserID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestDecodeEvent(t *testing.T) {
	backend := &recordingBackend{}
	m := NewMQ(backend, "user-events")
	require.NoError(t, NewEventPublisher(m).Publish(context.Background(), Event{Type: EventUserUpdated, UserID: 9}))

	var got Event
	err := m.Subscribe(context.Background(), m.Channel(), func(ctx context.Context, msg Message) error {
		var err error
		got, err = DecodeEvent(msg)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, EventUserUpdated, got.Type)
	assert.Equal(t, 9, got.UserID)
	assert.False(t, got.OccurredAt.IsZero())

	_, err = DecodeEvent(Message{ID: "bad", Data: []byte("{")})
	assert.Error(t, err)

	fromAttr, err := DecodeEvent(Message{Data: []byte(`{"user_id":2}`), Attributes: map[string]string{"event": EventUserRegistered}})
	require.NoError(t, err)
	assert.Equal(t, EventUserRegistered, fromAttr.Type)
}

func TestNoopSubscribeBlocksUntilCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Noop{}.Subscribe(ctx, "user-events", func(context.Context, Message) error {
		t.Fatal("noop must not deliver")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	id, err := Noop{}.Publish(context.Background(), "user-events", []byte("{}"), nil)
	assert.NoError(t, err)
	assert.Empty(t, id)
}
