package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/jimiryquai/training-manager/internal/domain"
)

// LogWorkoutRequest is the payload for POST /v1/workouts.
type LogWorkoutRequest struct {
	Date            domain.Day `json:"date"`
	Modality        string     `json:"modality"`
	DurationMinutes int        `json:"duration_minutes"`
	SRPE            int        `json:"srpe"`
}

// Validate ensures request correctness.
func (r LogWorkoutRequest) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if !domain.Modality(r.Modality).Valid() {
		return fmt.Errorf("modality %q is not supported", r.Modality)
	}
	if r.DurationMinutes < 1 || r.DurationMinutes > 480 {
		return errors.New("duration_minutes must be between 1 and 480")
	}
	if r.SRPE < 1 || r.SRPE > 10 {
		return errors.New("srpe must be between 1 and 10")
	}
	return nil
}

// RecordWellnessRequest is the payload for PUT /v1/wellness.
type RecordWellnessRequest struct {
	Date                domain.Day `json:"date"`
	RHR                 float64    `json:"rhr"`
	HRVRmssd            float64    `json:"hrv_rmssd"`
	SleepScore          *int       `json:"sleep_score,omitempty"`
	FatigueScore        *int       `json:"fatigue_score,omitempty"`
	MuscleSorenessScore *int       `json:"muscle_soreness_score,omitempty"`
	StressScore         *int       `json:"stress_score,omitempty"`
	MoodScore           *int       `json:"mood_score,omitempty"`
	DietScore           *int       `json:"diet_score,omitempty"`
}

// Validate ensures request correctness.
func (r RecordWellnessRequest) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.RHR < 30 || r.RHR > 200 {
		return errors.New("rhr must be between 30 and 200")
	}
	if r.HRVRmssd < 0 || r.HRVRmssd > 200 {
		return errors.New("hrv_rmssd must be between 0 and 200")
	}
	scores := []struct {
		name  string
		value *int
	}{
		{"sleep_score", r.SleepScore},
		{"fatigue_score", r.FatigueScore},
		{"muscle_soreness_score", r.MuscleSorenessScore},
		{"stress_score", r.StressScore},
		{"mood_score", r.MoodScore},
		{"diet_score", r.DietScore},
	}
	for _, s := range scores {
		if s.value != nil && (*s.value < 1 || *s.value > 5) {
			return fmt.Errorf("%s must be between 1 and 5", s.name)
		}
	}
	return nil
}

// WorkoutView describes a stored session.
type WorkoutView struct {
	SessionID       string     `json:"session_id"`
	UserID          string     `json:"user_id"`
	Date            domain.Day `json:"date"`
	Modality        string     `json:"modality"`
	DurationMinutes int        `json:"duration_minutes"`
	SRPE            int        `json:"srpe"`
	TrainingLoad    float64    `json:"training_load"`
	CreatedAt       time.Time  `json:"created_at"`
}

// WellnessView describes a stored wellness sample.
type WellnessView struct {
	SampleID            string     `json:"sample_id"`
	UserID              string     `json:"user_id"`
	Date                domain.Day `json:"date"`
	RHR                 float64    `json:"rhr"`
	HRVRmssd            float64    `json:"hrv_rmssd"`
	HRVRatio            float64    `json:"hrv_ratio"`
	SleepScore          *int       `json:"sleep_score"`
	FatigueScore        *int       `json:"fatigue_score"`
	MuscleSorenessScore *int       `json:"muscle_soreness_score"`
	StressScore         *int       `json:"stress_score"`
	MoodScore           *int       `json:"mood_score"`
	DietScore           *int       `json:"diet_score"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ACWRResponse is the body of GET /v1/acwr.
type ACWRResponse struct {
	Date        domain.Day `json:"date"`
	AcuteLoad   float64    `json:"acuteLoad"`
	ChronicLoad float64    `json:"chronicLoad"`
	Ratio       float64    `json:"ratio"`
	IsDanger    bool       `json:"isDanger"`
}

func toWorkoutView(s domain.WorkoutSession) WorkoutView {
	return WorkoutView{
		SessionID:       s.ID,
		UserID:          s.UserID,
		Date:            s.Date,
		Modality:        string(s.Modality),
		DurationMinutes: s.DurationMinutes,
		SRPE:            s.PerceivedExertion,
		TrainingLoad:    s.TrainingLoad,
		CreatedAt:       s.CreatedAt,
	}
}

func toWellnessView(w domain.WellnessSample) WellnessView {
	return WellnessView{
		SampleID:            w.ID,
		UserID:              w.UserID,
		Date:                w.Date,
		RHR:                 w.RestingHeartRate,
		HRVRmssd:            w.HeartRateVariability,
		HRVRatio:            w.HRVRatio,
		SleepScore:          w.SleepScore,
		FatigueScore:        w.FatigueScore,
		MuscleSorenessScore: w.MuscleSorenessScore,
		StressScore:         w.StressScore,
		MoodScore:           w.MoodScore,
		DietScore:           w.DietScore,
		UpdatedAt:           w.UpdatedAt,
	}
}
