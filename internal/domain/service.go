package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates training and wellness workflows over a record store.
type Service struct {
	source RecordSource
	writer RecordWriter
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(store RecordStore) *Service {
	return &Service{
		source: store,
		writer: store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// LogWorkoutInput captures a session submitted by the API layer.
type LogWorkoutInput struct {
	TenantID          string
	UserID            string
	Date              Day
	Modality          Modality
	DurationMinutes   int
	PerceivedExertion int
}

// RecordWellnessInput captures a wellness check-in submitted by the API layer.
type RecordWellnessInput struct {
	TenantID             string
	UserID               string
	Date                 Day
	RestingHeartRate     float64
	HeartRateVariability float64
	SleepScore           *int
	FatigueScore         *int
	MuscleSorenessScore  *int
	StressScore          *int
	MoodScore            *int
	DietScore            *int
}

// LogWorkoutSession stores a new session with its load derived once, here.
func (s *Service) LogWorkoutSession(ctx context.Context, input LogWorkoutInput) (*WorkoutSession, error) {
	if !input.Modality.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModality, input.Modality)
	}

	now := s.now()
	session := WorkoutSession{
		ID:                uuid.NewString(),
		TenantID:          input.TenantID,
		UserID:            input.UserID,
		Date:              input.Date,
		Modality:          input.Modality,
		DurationMinutes:   input.DurationMinutes,
		PerceivedExertion: input.PerceivedExertion,
		TrainingLoad:      TrainingLoad(input.DurationMinutes, input.PerceivedExertion),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.writer.CreateWorkoutSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordWellness upserts the sample for (tenant, user, date).
func (s *Service) RecordWellness(ctx context.Context, input RecordWellnessInput) (*WellnessSample, error) {
	now := s.now()
	sample := WellnessSample{
		ID:                   uuid.NewString(),
		TenantID:             input.TenantID,
		UserID:               input.UserID,
		Date:                 input.Date,
		RestingHeartRate:     input.RestingHeartRate,
		HeartRateVariability: input.HeartRateVariability,
		HRVRatio:             HRVRatio(input.HeartRateVariability, input.RestingHeartRate),
		SleepScore:           input.SleepScore,
		FatigueScore:         input.FatigueScore,
		MuscleSorenessScore:  input.MuscleSorenessScore,
		StressScore:          input.StressScore,
		MoodScore:            input.MoodScore,
		DietScore:            input.DietScore,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	stored, err := s.writer.UpsertWellnessSample(ctx, sample)
	if err != nil {
		return nil, err
	}
	stored.HRVRatio = HRVRatio(stored.HeartRateVariability, stored.RestingHeartRate)
	return &stored, nil
}

// GetWellness fetches the sample recorded for a day.
func (s *Service) GetWellness(ctx context.Context, id Identity, date Day) (*WellnessSample, error) {
	sample, err := s.writer.GetWellnessSample(ctx, id.TenantID, id.UserID, date)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, ErrWellnessNotFound
	}
	sample.HRVRatio = HRVRatio(sample.HeartRateVariability, sample.RestingHeartRate)
	return sample, nil
}

// ACWR computes the ratio for a single day from one 28-day session fetch.
// An empty UserID aggregates the whole tenant.
func (s *Service) ACWR(ctx context.Context, id Identity, date Day) (ACWRResult, error) {
	sessions, err := s.source.ListWorkoutSessions(ctx, SessionFilter{
		TenantID: id.TenantID,
		UserID:   id.UserID,
		Start:    date.AddDays(-(chronicWindowDays - 1)),
		End:      date,
	})
	if err != nil {
		return ACWRResult{}, err
	}
	points := LoadPoints(sessions)
	return ComputeACWR(points, points, date), nil
}
