package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/jimiryquai/training-manager/internal/domain"
)

func mustDay(value string) domain.Day {
	d, err := domain.ParseDay(value)
	if err != nil {
		panic(err)
	}
	return d
}

// stubRow hands back column values the way pgx decodes them: DATE and
// TIMESTAMPTZ as time.Time, nullable INTEGER as nil or int.
type stubRow struct {
	values []any
	err    error
}

var _ pgx.Row = stubRow{}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.values))
	}
	for i, target := range dest {
		value := r.values[i]
		switch d := target.(type) {
		case sql.Scanner:
			if err := d.Scan(value); err != nil {
				return err
			}
		case *string:
			*d = value.(string)
		case *int:
			*d = value.(int)
		case *float64:
			*d = value.(float64)
		case *time.Time:
			*d = value.(time.Time)
		case **int:
			if value == nil {
				*d = nil
				continue
			}
			n := value.(int)
			*d = &n
		default:
			return fmt.Errorf("scan: unsupported destination %T", target)
		}
	}
	return nil
}

func TestScanSession(t *testing.T) {
	created := time.Date(2026, 3, 10, 7, 30, 0, 0, time.FixedZone("CET", 3600))
	row := stubRow{values: []any{
		"session-1", "club-1", "athlete-1",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		"rowing", 45, 7, 315.0, created, created,
	}}

	got, err := scanSession(row)
	require.NoError(t, err)
	require.Equal(t, "session-1", got.ID)
	require.Equal(t, mustDay("2026-03-10"), got.Date)
	require.Equal(t, domain.ModalityRowing, got.Modality)
	require.Equal(t, 45, got.DurationMinutes)
	require.Equal(t, 7, got.PerceivedExertion)
	require.Equal(t, 315.0, got.TrainingLoad)
	require.Equal(t, time.UTC, got.CreatedAt.Location())
	require.True(t, got.CreatedAt.Equal(created))
}

func TestScanWellnessKeepsMissingScoresNil(t *testing.T) {
	stamp := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	row := stubRow{values: []any{
		"sample-1", "club-1", "athlete-1",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		50.0, 75.0,
		8, nil, 3, nil, nil, 6,
		stamp, stamp,
	}}

	got, err := scanWellness(row)
	require.NoError(t, err)
	require.Equal(t, mustDay("2026-03-10"), got.Date)
	require.Equal(t, 1.5, got.HRVRatio)
	require.NotNil(t, got.SleepScore)
	require.Equal(t, 8, *got.SleepScore)
	require.Nil(t, got.FatigueScore)
	require.Equal(t, 3, *got.MuscleSorenessScore)
	require.Nil(t, got.StressScore)
	require.Nil(t, got.MoodScore)
	require.Equal(t, 6, *got.DietScore)
}

func TestScanWellnessPropagatesNoRows(t *testing.T) {
	_, err := scanWellness(stubRow{err: pgx.ErrNoRows})
	require.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = scanSession(stubRow{values: []any{"too", "few"}})
	require.Error(t, err)
}
