// Package sqlite provides an embedded SQLite record store for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jimiryquai/training-manager/internal/domain"
	"github.com/jimiryquai/training-manager/internal/observability"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS workout_sessions (
    session_id        TEXT PRIMARY KEY,
    tenant_id         TEXT NOT NULL,
    user_id           TEXT NOT NULL,
    session_date      TEXT NOT NULL,
    modality          TEXT NOT NULL,
    duration_minutes  INTEGER NOT NULL,
    srpe              INTEGER NOT NULL,
    training_load     REAL NOT NULL,
    created_at        INTEGER NOT NULL,
    updated_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS workout_sessions_tenant_user_date_idx
    ON workout_sessions (tenant_id, user_id, session_date);
CREATE TABLE IF NOT EXISTS wellness_samples (
    sample_id              TEXT PRIMARY KEY,
    tenant_id              TEXT NOT NULL,
    user_id                TEXT NOT NULL,
    sample_date            TEXT NOT NULL,
    rhr                    REAL NOT NULL,
    hrv_rmssd              REAL NOT NULL,
    sleep_score            INTEGER,
    fatigue_score          INTEGER,
    muscle_soreness_score  INTEGER,
    stress_score           INTEGER,
    mood_score             INTEGER,
    diet_score             INTEGER,
    created_at             INTEGER NOT NULL,
    updated_at             INTEGER NOT NULL,
    UNIQUE (tenant_id, user_id, sample_date)
);`

const sessionColumns = `session_id, tenant_id, user_id, session_date, modality, duration_minutes, srpe, training_load, created_at, updated_at`

const wellnessColumns = `sample_id, tenant_id, user_id, sample_date, rhr, hrv_rmssd, sleep_score, fatigue_score, muscle_soreness_score, stress_score, mood_score, diet_score, created_at, updated_at`

// Store persists training records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ domain.RecordStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) the database at path and ensures its tables exist.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListWorkoutSessions returns sessions in [Start, End] ordered by date. An
// empty UserID reads the whole tenant.
func (s *Store) ListWorkoutSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.WorkoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM workout_sessions
	          WHERE tenant_id = ? AND session_date >= ? AND session_date <= ?`
	args := []any{filter.TenantID, filter.Start, filter.End}
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY session_date, session_id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workout sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.WorkoutSession
	for rows.Next() {
		var (
			session          domain.WorkoutSession
			modality         string
			created, updated int64
		)
		if err := rows.Scan(&session.ID, &session.TenantID, &session.UserID, &session.Date, &modality,
			&session.DurationMinutes, &session.PerceivedExertion, &session.TrainingLoad, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan workout session: %w", err)
		}
		session.Modality = domain.Modality(modality)
		session.CreatedAt = fromMillis(created)
		session.UpdatedAt = fromMillis(updated)
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workout sessions: %w", err)
	}
	return out, nil
}

// ListWellnessSamples returns a user's samples in [start, end] ordered by date.
func (s *Store) ListWellnessSamples(ctx context.Context, tenantID, userID string, start, end domain.Day) ([]domain.WellnessSample, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+wellnessColumns+` FROM wellness_samples
	          WHERE tenant_id = ? AND user_id = ? AND sample_date >= ? AND sample_date <= ?
	          ORDER BY sample_date`, tenantID, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list wellness samples: %w", err)
	}
	defer rows.Close()

	var out []domain.WellnessSample
	for rows.Next() {
		sample, err := scanWellness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wellness samples: %w", err)
	}
	return out, nil
}

// GetWellnessSample returns the sample for one day, or nil when none exists.
func (s *Store) GetWellnessSample(ctx context.Context, tenantID, userID string, date domain.Day) (*domain.WellnessSample, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+wellnessColumns+` FROM wellness_samples
	          WHERE tenant_id = ? AND user_id = ? AND sample_date = ?`, tenantID, userID, date)
	sample, err := scanWellness(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

// CreateWorkoutSession inserts one session.
func (s *Store) CreateWorkoutSession(ctx context.Context, session domain.WorkoutSession) error {
	_, err := s.sqlDB.ExecContext(ctx, `INSERT INTO workout_sessions (`+sessionColumns+`)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.TenantID, session.UserID, session.Date, string(session.Modality),
		session.DurationMinutes, session.PerceivedExertion, session.TrainingLoad,
		toMillis(session.CreatedAt), toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert workout session: %w", err)
	}
	observability.RecordSessionPersisted(session.CreatedAt)
	return nil
}

// UpsertWellnessSample inserts or replaces the sample for (tenant, user, date),
// keeping the stored ID and created_at of an existing row.
func (s *Store) UpsertWellnessSample(ctx context.Context, w domain.WellnessSample) (domain.WellnessSample, error) {
	var (
		id      string
		created int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `INSERT INTO wellness_samples (`+wellnessColumns+`)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT (tenant_id, user_id, sample_date) DO UPDATE SET
	              rhr = excluded.rhr,
	              hrv_rmssd = excluded.hrv_rmssd,
	              sleep_score = excluded.sleep_score,
	              fatigue_score = excluded.fatigue_score,
	              muscle_soreness_score = excluded.muscle_soreness_score,
	              stress_score = excluded.stress_score,
	              mood_score = excluded.mood_score,
	              diet_score = excluded.diet_score,
	              updated_at = excluded.updated_at
	          RETURNING sample_id, created_at`,
		w.ID, w.TenantID, w.UserID, w.Date, w.RestingHeartRate, w.HeartRateVariability,
		w.SleepScore, w.FatigueScore, w.MuscleSorenessScore, w.StressScore, w.MoodScore, w.DietScore,
		toMillis(w.CreatedAt), toMillis(w.UpdatedAt),
	).Scan(&id, &created)
	if err != nil {
		return domain.WellnessSample{}, fmt.Errorf("upsert wellness sample: %w", err)
	}
	w.ID = id
	w.CreatedAt = fromMillis(created)
	return w, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWellness(row rowScanner) (domain.WellnessSample, error) {
	var (
		w                domain.WellnessSample
		created, updated int64
	)
	if err := row.Scan(&w.ID, &w.TenantID, &w.UserID, &w.Date, &w.RestingHeartRate, &w.HeartRateVariability,
		&w.SleepScore, &w.FatigueScore, &w.MuscleSorenessScore, &w.StressScore, &w.MoodScore, &w.DietScore,
		&created, &updated); err != nil {
		return domain.WellnessSample{}, err
	}
	w.CreatedAt = fromMillis(created)
	w.UpdatedAt = fromMillis(updated)
	w.HRVRatio = domain.HRVRatio(w.HeartRateVariability, w.RestingHeartRate)
	return w, nil
}
