package events

// Kafka topics the outbox publishes to.
const (
	TopicTrainingEvents = "training_events"
	TopicWellnessEvents = "wellness_events"
)

// Header keys set on every published message.
const (
	HeaderEventType = "event_type"
	HeaderTenantID  = "tenant_id"
)

var topicByType = map[string]string{
	TypeWorkoutSessionLogged: TopicTrainingEvents,
	TypeWellnessRecorded:     TopicWellnessEvents,
}

// TopicFor returns the topic an event type is routed to.
func TopicFor(eventType string) (string, bool) {
	topic, ok := topicByType[eventType]
	return topic, ok
}
