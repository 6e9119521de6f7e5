// Package domain holds the training-readiness model: records, load arithmetic and the readiness composer.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWellnessNotFound is returned when no wellness sample exists for a day.
	ErrWellnessNotFound = errors.New("wellness sample not found")
	// ErrInvalidModality is returned for modalities outside the supported set.
	ErrInvalidModality = errors.New("invalid modality")
)

// Modality classifies a workout session.
type Modality string

const (
	ModalityStrength Modality = "strength"
	ModalityRowing   Modality = "rowing"
	ModalityRunning  Modality = "running"
	ModalityCycling  Modality = "cycling"
	ModalitySwimming Modality = "swimming"
	ModalityOther    Modality = "other"
)

// Valid reports whether m is one of the supported modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityStrength, ModalityRowing, ModalityRunning, ModalityCycling, ModalitySwimming, ModalityOther:
		return true
	}
	return false
}

// WorkoutSession is a logged training session. TrainingLoad is fixed at creation.
type WorkoutSession struct {
	ID                string
	TenantID          string
	UserID            string
	Date              Day
	Modality          Modality
	DurationMinutes   int
	PerceivedExertion int
	TrainingLoad      float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WellnessSample is one athlete's morning check-in for a day.
type WellnessSample struct {
	ID                   string
	TenantID             string
	UserID               string
	Date                 Day
	RestingHeartRate     float64
	HeartRateVariability float64
	HRVRatio             float64
	SleepScore           *int
	FatigueScore         *int
	MuscleSorenessScore  *int
	StressScore          *int
	MoodScore            *int
	DietScore            *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Identity is the caller on whose behalf records are read. An empty UserID
// widens session reads to the whole tenant.
type Identity struct {
	TenantID string
	UserID   string
}

// SessionFilter narrows a workout session read to a closed date range.
type SessionFilter struct {
	TenantID string
	UserID   string
	Start    Day
	End      Day
}

// RecordSource is the read side of the record store.
type RecordSource interface {
	ListWellnessSamples(ctx context.Context, tenantID, userID string, start, end Day) ([]WellnessSample, error)
	ListWorkoutSessions(ctx context.Context, filter SessionFilter) ([]WorkoutSession, error)
}

// RecordWriter is the write side of the record store.
type RecordWriter interface {
	CreateWorkoutSession(ctx context.Context, session WorkoutSession) error
	UpsertWellnessSample(ctx context.Context, sample WellnessSample) (WellnessSample, error)
	GetWellnessSample(ctx context.Context, tenantID, userID string, date Day) (*WellnessSample, error)
}

// RecordStore combines both sides; every persistence backend implements it.
type RecordStore interface {
	RecordSource
	RecordWriter
}

// TrainingLoad is the session-RPE load: duration in minutes times perceived exertion.
func TrainingLoad(durationMinutes, perceivedExertion int) float64 {
	return float64(durationMinutes * perceivedExertion)
}

// HRVRatio divides heart-rate variability by resting heart rate, 0 when rhr is 0.
func HRVRatio(hrv, rhr float64) float64 {
	if rhr == 0 {
		return 0
	}
	return hrv / rhr
}
