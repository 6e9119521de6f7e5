package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// inTenant runs fn in one transaction with app.tenant_id set, so the outbox
// row-level security policies admit only tenantID's rows.
func inTenant(ctx context.Context, pool *pgxpool.Pool, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := pool.Acquire(ctx)
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

// byTenant splits messages per tenant, keeping claim order within each group
// and listing tenants in order of first appearance.
func byTenant(messages []Message) (order []string, groups map[string][]Message) {
	groups = make(map[string][]Message)
	for _, msg := range messages {
		if _, seen := groups[msg.TenantID]; !seen {
			order = append(order, msg.TenantID)
		}
		groups[msg.TenantID] = append(groups[msg.TenantID], msg)
	}
	return order, groups
}
