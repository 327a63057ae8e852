package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dcode-ide/apiserver/types"
)

// EventType names a project lifecycle transition.
type EventType string

const (
	ProjectCreated EventType = "project.created"
	ProjectSaved   EventType = "project.saved"
	ProjectRenamed EventType = "project.renamed"
	ProjectDeleted EventType = "project.deleted"
)

// Attribute keys set on every published event.
const (
	AttrEventType = "event_type"
	AttrProjectID = "project_id"
	AttrOwnerID   = "owner_id"
)

// ProjectEvent is the JSON body of a lifecycle message. Code is never
// included.
type ProjectEvent struct {
	Type       EventType `json:"type"`
	ProjectID  string    `json:"projectId"`
	OwnerID    string    `json:"ownerId"`
	Name       string    `json:"name,omitempty"`
	Language   string    `json:"language,omitempty"`
	CodeLength int       `json:"codeLength"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewProjectEvent describes project after a transition of kind t.
func NewProjectEvent(t EventType, project types.Project) ProjectEvent {
	return ProjectEvent{
		Type:       t,
		ProjectID:  project.ID,
		OwnerID:    project.OwnerID,
		Name:       project.Name,
		Language:   project.Language,
		CodeLength: len(project.Code),
		OccurredAt: time.Now().UTC(),
	}
}

// PublishProjectEvent encodes ev and publishes it to the event channel.
func (m *MQ) PublishProjectEvent(ctx context.Context, ev ProjectEvent) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	id, err := m.backend.Publish(ctx, m.channel, data, map[string]string{
		AttrEventType: string(ev.Type),
		AttrProjectID: ev.ProjectID,
		AttrOwnerID:   ev.OwnerID,
	})
	if err != nil {
		return "", fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return id, nil
}

// DecodeProjectEvent parses a message produced by PublishProjectEvent.
func DecodeProjectEvent(msg Message) (ProjectEvent, error) {
	var ev ProjectEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return ProjectEvent{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return ev, nil
}
