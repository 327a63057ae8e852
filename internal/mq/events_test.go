package mq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	published []Message
	channels  []string
	failWith  error
	closed    bool
}

func (f *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	id := "msg-" + string(rune('0'+len(f.published)))
	f.published = append(f.published, Message{ID: id, Data: data, Attributes: attrs})
	f.channels = append(f.channels, channel)
	return id, nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	f.mu.Lock()
	msgs := append([]Message(nil), f.published...)
	f.mu.Unlock()
	for _, msg := range msgs {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestPublishProjectEvent(t *testing.T) {
	backend := &fakeBackend{}
	bus := NewMQ(backend, "")
	assert.Equal(t, "projects", bus.Channel())

	project := types.Project{ID: "p1", OwnerID: "u1", Name: "demo", Language: "go", Code: "package main"}
	id, err := bus.PublishProjectEvent(context.Background(), NewProjectEvent(ProjectSaved, project))
	require.NoError(t, err)
	assert.Equal(t, "msg-0", id)

	require.Len(t, backend.published, 1)
	assert.Equal(t, "projects", backend.channels[0])
	msg := backend.published[0]
	assert.Equal(t, "project.saved", msg.Attributes[AttrEventType])
	assert.Equal(t, "p1", msg.Attributes[AttrProjectID])
	assert.Equal(t, "u1", msg.Attributes[AttrOwnerID])
	assert.NotContains(t, string(msg.Data), "package main")

	ev, err := DecodeProjectEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, ProjectSaved, ev.Type)
	assert.Equal(t, "demo", ev.Name)
	assert.Equal(t, len(project.Code), ev.CodeLength)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestPublishProjectEventError(t *testing.T) {
	boom := errors.New("broker down")
	bus := NewMQ(&fakeBackend{failWith: boom}, "events")

	_, err := bus.PublishProjectEvent(context.Background(), NewProjectEvent(ProjectDeleted, types.Project{ID: "p1"}))
	assert.ErrorIs(t, err, boom)
}

func TestSubscribeDeliversEvents(t *testing.T) {
	backend := &fakeBackend{}
	bus := NewMQ(backend, "projects")
	ctx := context.Background()

	for _, typ := range []EventType{ProjectCreated, ProjectRenamed} {
		_, err := bus.PublishProjectEvent(ctx, NewProjectEvent(typ, types.Project{ID: "p1", OwnerID: "u1"}))
		require.NoError(t, err)
	}

	var got []EventType
	err := bus.Subscribe(ctx, func(_ context.Context, msg Message) error {
		ev, err := DecodeProjectEvent(msg)
		if err != nil {
			return err
		}
		got = append(got, ev.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []EventType{ProjectCreated, ProjectRenamed}, got)

	require.NoError(t, bus.Close())
	assert.True(t, backend.closed)
}

func TestDecodeProjectEventRejectsGarbage(t *testing.T) {
	_, err := DecodeProjectEvent(Message{ID: "x", Data: []byte("{")})
	assert.Error(t, err)
}

func TestNewDisabledAndUnknown(t *testing.T) {
	bus, err := New(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, bus)

	_, err = New(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.MQConfig{Backend: "rabbitmq"})
	assert.Error(t, err)
}
