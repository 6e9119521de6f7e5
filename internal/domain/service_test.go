package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogWorkoutSessionDerivesLoadOnce(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)
	fixed := time.Date(2026, time.March, 1, 7, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	session, err := svc.LogWorkoutSession(context.Background(), LogWorkoutInput{
		TenantID:          "tenant-1",
		UserID:            "user-1",
		Date:              mustDay("2026-03-01"),
		Modality:          ModalityRowing,
		DurationMinutes:   45,
		PerceivedExertion: 8,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, 360.0, session.TrainingLoad)
	require.Equal(t, fixed, session.CreatedAt)
	require.Len(t, store.created, 1)
	require.Equal(t, *session, store.created[0])
}

func TestLogWorkoutSessionRejectsUnknownModality(t *testing.T) {
	store := &stubStore{}
	_, err := NewService(store).LogWorkoutSession(context.Background(), LogWorkoutInput{Modality: "yoga"})
	require.ErrorIs(t, err, ErrInvalidModality)
	require.Empty(t, store.created)
}

func TestLogWorkoutSessionPropagatesStoreError(t *testing.T) {
	boom := errors.New("insert failed")
	_, err := NewService(&stubStore{sessionErr: boom}).LogWorkoutSession(context.Background(), LogWorkoutInput{Modality: ModalityOther})
	require.ErrorIs(t, err, boom)
}

func TestRecordWellnessUpsertsByNaturalKey(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)
	ctx := context.Background()
	day := mustDay("2026-03-02")
	mood := 3

	first, err := svc.RecordWellness(ctx, RecordWellnessInput{TenantID: "t", UserID: "u", Date: day, RestingHeartRate: 50, HeartRateVariability: 40})
	require.NoError(t, err)
	require.InDelta(t, 0.8, first.HRVRatio, 1e-9)

	second, err := svc.RecordWellness(ctx, RecordWellnessInput{TenantID: "t", UserID: "u", Date: day, RestingHeartRate: 60, HeartRateVariability: 30, MoodScore: &mood})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.InDelta(t, 0.5, second.HRVRatio, 1e-9)

	got, err := svc.GetWellness(ctx, Identity{TenantID: "t", UserID: "u"}, day)
	require.NoError(t, err)
	require.Equal(t, 60.0, got.RestingHeartRate)
	require.Equal(t, 3, *got.MoodScore)
}

func TestGetWellnessNotFound(t *testing.T) {
	_, err := NewService(&stubStore{}).GetWellness(context.Background(), Identity{TenantID: "t", UserID: "u"}, mustDay("2026-03-02"))
	require.ErrorIs(t, err, ErrWellnessNotFound)
}

func TestACWRFetchesTwentyEightDayWindow(t *testing.T) {
	day := mustDay("2026-03-28")
	store := &stubStore{sessions: []WorkoutSession{
		{Date: day, TrainingLoad: 300},
		{Date: day.AddDays(-20), TrainingLoad: 100},
	}}

	got, err := NewService(store).ACWR(context.Background(), Identity{TenantID: "t"}, day)
	require.NoError(t, err)
	require.Equal(t, SessionFilter{TenantID: "t", Start: mustDay("2026-03-01"), End: day}, store.sessionFilter)
	require.Equal(t, ACWRResult{AcuteLoad: 300, ChronicLoad: 100, Ratio: 3, IsDanger: true}, got)
}
