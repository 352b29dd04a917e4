package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"mass_kg":1e10}`),
		Topic:     "meteor-impact-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("dashboard")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.JSONEq(t, `{"mass_kg":1e10}`, string(raw.Value))
	assert.Equal(t, "meteor-impact-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "dashboard", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestMapMessageToRawEvent_NoHeaders(t *testing.T) {
	raw := mapMessageToRawEvent(kafkago.Message{Value: []byte(`{}`)})
	assert.NotNil(t, raw.Headers)
	assert.Empty(t, raw.Headers)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 10, 0, 0, time.UTC)
	report := domain.ImpactReport{
		ID: "impact-0123456789abcdef",
		Request: domain.ImpactRequest{
			MassKg:       1e10,
			SpeedKmS:     20,
			AngleDegrees: 45,
			Composition:  domain.Iron,
			Region:       domain.Europe,
		},
		Metrics:     domain.ImpactMetrics{Airburst: true},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte("impact-0123456789abcdef"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "outcome", msg.Headers[0].Key)
	assert.Equal(t, []byte("airburst"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.ImpactReport
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.Iron, decoded.Request.Composition)
	assert.Equal(t, domain.Europe, decoded.Request.Region)
	assert.True(t, decoded.Metrics.Airburst)
}
