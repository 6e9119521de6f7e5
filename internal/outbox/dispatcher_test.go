package outbox

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/jimiryquai/training-manager/internal/events"
)

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: copied})
	return nil
}

func newTestDispatcher(producer messageWriter) *Dispatcher {
	d := NewDispatcher(nil, producer, 0, 0)
	d.now = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func TestNewDispatcherDefaults(t *testing.T) {
	d := NewDispatcher(nil, &stubProducer{}, 0, -1)
	require.Equal(t, time.Second, d.pollInterval)
	require.Equal(t, 100, d.batchSize)
}

func TestDeliverGroupsByTopicAndSetsHeaders(t *testing.T) {
	producer := &stubProducer{}
	d := newTestDispatcher(producer)

	messages := []Message{
		{EventID: 1, TenantID: "t1", EventType: events.TypeWorkoutSessionLogged, Topic: events.TopicTrainingEvents, PartitionKey: "t1:u1", Payload: json.RawMessage(`{"session_id":"s1"}`)},
		{EventID: 2, TenantID: "t1", EventType: events.TypeWellnessRecorded, Topic: events.TopicWellnessEvents, PartitionKey: "t1:u1", Payload: json.RawMessage(`{"sample_id":"w1"}`)},
		{EventID: 3, TenantID: "t2", EventType: events.TypeWorkoutSessionLogged, Topic: events.TopicTrainingEvents, PartitionKey: "t2:u9", Payload: json.RawMessage(`{"session_id":"s2"}`)},
	}

	require.NoError(t, d.deliver(context.Background(), messages))
	require.Len(t, producer.writes, 2)

	training := producer.writes[0]
	require.Equal(t, events.TopicTrainingEvents, training.topic)
	require.Len(t, training.messages, 2)
	require.Equal(t, "t1:u1", string(training.messages[0].Key))
	require.JSONEq(t, `{"session_id":"s1"}`, string(training.messages[0].Value))
	require.Equal(t, []kafka.Header{
		{Key: events.HeaderEventType, Value: []byte(events.TypeWorkoutSessionLogged)},
		{Key: events.HeaderTenantID, Value: []byte("t2")},
	}, training.messages[1].Headers)

	require.Equal(t, events.TopicWellnessEvents, producer.writes[1].topic)
}

func TestDeliverRejectsUnknownEventType(t *testing.T) {
	producer := &stubProducer{}
	d := newTestDispatcher(producer)

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, TenantID: "t1", EventType: "meal.logged", Topic: "nutrition_events", Payload: json.RawMessage(`{}`)},
	})
	require.ErrorContains(t, err, "no topic metadata for event_type=meal.logged")
	require.Empty(t, producer.writes)
}

func TestDeliverRejectsMisroutedAndMalformedRows(t *testing.T) {
	d := newTestDispatcher(&stubProducer{})

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, EventType: events.TypeWellnessRecorded, Topic: events.TopicTrainingEvents, Payload: json.RawMessage(`{}`)},
	})
	require.ErrorContains(t, err, "expected wellness_events")

	err = d.deliver(context.Background(), []Message{
		{EventID: 7, EventType: events.TypeWellnessRecorded, Topic: events.TopicWellnessEvents, Payload: json.RawMessage(`{"broken"`)},
	})
	require.ErrorContains(t, err, "event 7 has an invalid JSON payload")
}
