// Package events defines the payloads published when training records change.
package events

import "time"

// Event types carried in the outbox and in Kafka headers.
const (
	TypeWorkoutSessionLogged = "workout_session.logged"
	TypeWellnessRecorded     = "wellness.recorded"
)

// WorkoutSessionLogged is emitted when a session is stored.
type WorkoutSessionLogged struct {
	SessionID       string    `json:"session_id"`
	TenantID        string    `json:"tenant_id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	Modality        string    `json:"modality"`
	DurationMinutes int       `json:"duration_minutes"`
	SRPE            int       `json:"srpe"`
	TrainingLoad    float64   `json:"training_load"`
	LoggedAt        time.Time `json:"logged_at"`
}

// WellnessRecorded is emitted when a wellness sample is created or replaced.
type WellnessRecorded struct {
	SampleID   string    `json:"sample_id"`
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	RHR        float64   `json:"rhr"`
	HRVRmssd   float64   `json:"hrv_rmssd"`
	HRVRatio   float64   `json:"hrv_ratio"`
	RecordedAt time.Time `json:"recorded_at"`
}
