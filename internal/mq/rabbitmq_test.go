package mq

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	attrs := map[string]string{AttrEventType: string(ProjectSaved), AttrProjectID: "p1"}

	msg := newPublishing([]byte(`{}`), attrs, true, now)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, string(ProjectSaved), msg.Type)
	assert.Equal(t, rabbitAppID, msg.AppId)
	assert.Equal(t, now.UTC(), msg.Timestamp)
	assert.Equal(t, amqp.Table{AttrEventType: string(ProjectSaved), AttrProjectID: "p1"}, msg.Headers)
	require.NotEmpty(t, msg.MessageId)

	other := newPublishing(nil, nil, false, now)
	assert.Equal(t, amqp.Transient, other.DeliveryMode)
	assert.NotEqual(t, msg.MessageId, other.MessageId)
	assert.Empty(t, other.Type)
}

func TestDeliveryMessage(t *testing.T) {
	msg := deliveryMessage(amqp.Delivery{
		MessageId: "m1",
		Body:      []byte("body"),
		Headers: amqp.Table{
			AttrEventType: string(ProjectDeleted),
			"raw":         []byte("bytes"),
			"count":       int32(3),
		},
	})
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, []byte("body"), msg.Data)
	assert.Equal(t, map[string]string{
		AttrEventType: string(ProjectDeleted),
		"raw":         "bytes",
		"count":       "3",
	}, msg.Attributes)

	bare := deliveryMessage(amqp.Delivery{MessageId: "m2"})
	assert.Nil(t, bare.Attributes)
}
