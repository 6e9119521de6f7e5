package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopicFor(t *testing.T) {
	topic, ok := TopicFor(TypeWorkoutSessionLogged)
	require.True(t, ok)
	require.Equal(t, TopicTrainingEvents, topic)

	topic, ok = TopicFor(TypeWellnessRecorded)
	require.True(t, ok)
	require.Equal(t, TopicWellnessEvents, topic)

	_, ok = TopicFor("nutrition.logged")
	require.False(t, ok)
}
