package outbox

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxReasonBytes bounds outbox_dlq.reason; broker errors can embed whole batches.
const maxReasonBytes = 1024

const insertDeadLetter = `INSERT INTO outbox_dlq
        (tenant_id, event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, partition_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

// DLQWriter parks outbox rows the dispatcher could not publish.
type DLQWriter struct {
	pool *pgxpool.Pool
}

// NewDLQWriter returns a DLQWriter on pool.
func NewDLQWriter(pool *pgxpool.Pool) *DLQWriter {
	return &DLQWriter{pool: pool}
}

// Park copies one tenant's failed messages into outbox_dlq in a single
// transaction. Each entry records cause and the topic the row was stored for.
func (w *DLQWriter) Park(ctx context.Context, tenantID string, messages []Message, cause string) error {
	return inTenant(ctx, w.pool, tenantID, func(tx pgx.Tx) error {
		for _, msg := range messages {
			if _, err := tx.Exec(ctx, insertDeadLetter, deadLetterArgs(msg, cause)...); err != nil {
				return fmt.Errorf("park event %d: %w", msg.EventID, err)
			}
		}
		return nil
	})
}

func deadLetterArgs(msg Message, cause string) []any {
	return []any{
		msg.TenantID, msg.EventID, msg.EventType, msg.Topic, msg.Payload,
		failureReason(cause, msg.Topic),
		msg.AggregateType, msg.AggregateID, msg.PartitionKey,
	}
}

// failureReason tags cause with the stored topic, cutting it on a rune
// boundary so the suffix always survives.
func failureReason(cause, topic string) string {
	suffix := fmt.Sprintf(" (topic=%s)", topic)
	if budget := maxReasonBytes - len(suffix); len(cause) > budget {
		cut := max(budget, 0)
		for cut > 0 && !utf8.RuneStart(cause[cut]) {
			cut--
		}
		cause = cause[:cut]
	}
	return cause + suffix
}
