// Package postgres implements the training record store on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jimiryquai/training-manager/internal/domain"
	"github.com/jimiryquai/training-manager/internal/events"
	"github.com/jimiryquai/training-manager/internal/observability"
)

// Schema holds the table definitions the repository expects.
//
//go:embed schema.sql
var Schema string

// ApplySchema creates missing tables and policies.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

// Repository provides Postgres-backed persistence for sessions, wellness samples and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.RecordStore = (*Repository)(nil)

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `session_id, tenant_id, user_id, session_date, modality, duration_minutes, srpe, training_load, created_at, updated_at`

const wellnessColumns = `sample_id, tenant_id, user_id, sample_date, rhr, hrv_rmssd, sleep_score, fatigue_score, muscle_soreness_score, stress_score, mood_score, diet_score, created_at, updated_at`

// inTenant runs fn in a transaction scoped to tenantID for row-level security.
func (r *Repository) inTenant(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListWorkoutSessions returns sessions in [Start, End] ordered by date. An
// empty UserID reads the whole tenant.
func (r *Repository) ListWorkoutSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.WorkoutSession, error) {
	args := []interface{}{filter.TenantID, filter.Start.Time(), filter.End.Time()}
	query := `SELECT ` + sessionColumns + `
        FROM workout_sessions WHERE tenant_id=$1 AND session_date >= $2 AND session_date <= $3`
	if filter.UserID != "" {
		query += ` AND user_id=$4`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY session_date, session_id`

	var results []domain.WorkoutSession
	err := r.inTenant(ctx, filter.TenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			session, err := scanSession(rows)
			if err != nil {
				return err
			}
			results = append(results, session)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListWellnessSamples returns a user's samples in [start, end] ordered by date.
func (r *Repository) ListWellnessSamples(ctx context.Context, tenantID, userID string, start, end domain.Day) ([]domain.WellnessSample, error) {
	const query = `SELECT ` + wellnessColumns + `
        FROM wellness_samples WHERE tenant_id=$1 AND user_id=$2 AND sample_date >= $3 AND sample_date <= $4
        ORDER BY sample_date`

	var results []domain.WellnessSample
	err := r.inTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, start.Time(), end.Time())
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			sample, err := scanWellness(rows)
			if err != nil {
				return err
			}
			results = append(results, sample)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetWellnessSample returns the sample for one day, or nil when none exists.
func (r *Repository) GetWellnessSample(ctx context.Context, tenantID, userID string, date domain.Day) (*domain.WellnessSample, error) {
	const query = `SELECT ` + wellnessColumns + `
        FROM wellness_samples WHERE tenant_id=$1 AND user_id=$2 AND sample_date=$3`

	var found *domain.WellnessSample
	err := r.inTenant(ctx, tenantID, func(tx pgx.Tx) error {
		sample, err := scanWellness(tx.QueryRow(ctx, query, tenantID, userID, date.Time()))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		found = &sample
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateWorkoutSession persists the session and its outbox event in one transaction.
func (r *Repository) CreateWorkoutSession(ctx context.Context, s domain.WorkoutSession) error {
	const insert = `INSERT INTO workout_sessions (` + sessionColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	err := r.inTenant(ctx, s.TenantID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insert,
			s.ID, s.TenantID, s.UserID, s.Date.Time(), string(s.Modality),
			s.DurationMinutes, s.PerceivedExertion, s.TrainingLoad, s.CreatedAt, s.UpdatedAt,
		); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, outboxRecord{
			tenantID:      s.TenantID,
			userID:        s.UserID,
			aggregateType: "workout_session",
			aggregateID:   s.ID,
			eventType:     events.TypeWorkoutSessionLogged,
		}, events.WorkoutSessionLogged{
			SessionID:       s.ID,
			TenantID:        s.TenantID,
			UserID:          s.UserID,
			Date:            s.Date.String(),
			Modality:        string(s.Modality),
			DurationMinutes: s.DurationMinutes,
			SRPE:            s.PerceivedExertion,
			TrainingLoad:    s.TrainingLoad,
			LoggedAt:        s.CreatedAt,
		})
	})
	if err != nil {
		return err
	}
	observability.RecordSessionPersisted(s.CreatedAt)
	return nil
}

// UpsertWellnessSample inserts or replaces the sample for (tenant, user, date).
// The stored ID and created_at of an existing row are kept.
func (r *Repository) UpsertWellnessSample(ctx context.Context, w domain.WellnessSample) (domain.WellnessSample, error) {
	const upsert = `INSERT INTO wellness_samples (` + wellnessColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        ON CONFLICT (tenant_id, user_id, sample_date) DO UPDATE SET
            rhr = EXCLUDED.rhr,
            hrv_rmssd = EXCLUDED.hrv_rmssd,
            sleep_score = EXCLUDED.sleep_score,
            fatigue_score = EXCLUDED.fatigue_score,
            muscle_soreness_score = EXCLUDED.muscle_soreness_score,
            stress_score = EXCLUDED.stress_score,
            mood_score = EXCLUDED.mood_score,
            diet_score = EXCLUDED.diet_score,
            updated_at = EXCLUDED.updated_at
        RETURNING sample_id, created_at`

	stored := w
	err := r.inTenant(ctx, w.TenantID, func(tx pgx.Tx) error {
		var id string
		var createdAt time.Time
		if err := tx.QueryRow(ctx, upsert,
			w.ID, w.TenantID, w.UserID, w.Date.Time(), w.RestingHeartRate, w.HeartRateVariability,
			w.SleepScore, w.FatigueScore, w.MuscleSorenessScore, w.StressScore, w.MoodScore, w.DietScore,
			w.CreatedAt, w.UpdatedAt,
		).Scan(&id, &createdAt); err != nil {
			return err
		}
		stored.ID = id
		stored.CreatedAt = createdAt

		return insertOutbox(ctx, tx, outboxRecord{
			tenantID:      w.TenantID,
			userID:        w.UserID,
			aggregateType: "wellness_sample",
			aggregateID:   id,
			eventType:     events.TypeWellnessRecorded,
			// Every revision of a day's sample is published.
			dedupeSuffix: w.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}, events.WellnessRecorded{
			SampleID:   id,
			TenantID:   w.TenantID,
			UserID:     w.UserID,
			Date:       w.Date.String(),
			RHR:        w.RestingHeartRate,
			HRVRmssd:   w.HeartRateVariability,
			HRVRatio:   domain.HRVRatio(w.HeartRateVariability, w.RestingHeartRate),
			RecordedAt: w.UpdatedAt,
		})
	})
	if err != nil {
		return domain.WellnessSample{}, err
	}
	return stored, nil
}

// scanSession reads one sessionColumns row. pgx.Rows satisfies pgx.Row.
func scanSession(row pgx.Row) (domain.WorkoutSession, error) {
	var (
		s        domain.WorkoutSession
		modality string
	)
	if err := row.Scan(&s.ID, &s.TenantID, &s.UserID, &s.Date, &modality,
		&s.DurationMinutes, &s.PerceivedExertion, &s.TrainingLoad, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.WorkoutSession{}, err
	}
	s.Modality = domain.Modality(modality)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

// scanWellness reads one wellnessColumns row. Unanswered scores stay nil.
func scanWellness(row pgx.Row) (domain.WellnessSample, error) {
	var w domain.WellnessSample
	if err := row.Scan(&w.ID, &w.TenantID, &w.UserID, &w.Date, &w.RestingHeartRate, &w.HeartRateVariability,
		&w.SleepScore, &w.FatigueScore, &w.MuscleSorenessScore, &w.StressScore, &w.MoodScore, &w.DietScore,
		&w.CreatedAt, &w.UpdatedAt); err != nil {
		return domain.WellnessSample{}, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	w.HRVRatio = domain.HRVRatio(w.HeartRateVariability, w.RestingHeartRate)
	return w, nil
}

type outboxRecord struct {
	tenantID      string
	userID        string
	aggregateType string
	aggregateID   string
	eventType     string
	dedupeSuffix  string
}

func insertOutbox(ctx context.Context, tx pgx.Tx, rec outboxRecord, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	topic, ok := events.TopicFor(rec.eventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", rec.eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", rec.aggregateID, rec.eventType)
	if rec.dedupeSuffix != "" {
		dedupeKey += ":" + rec.dedupeSuffix
	}

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		rec.tenantID,
		rec.aggregateType,
		rec.aggregateID,
		rec.eventType,
		topic,
		fmt.Sprintf("%s:%s", rec.tenantID, rec.userID),
		body,
		dedupeKey,
	)
	return err
}
