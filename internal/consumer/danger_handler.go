package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jimiryquai/training-manager/internal/domain"
	"github.com/jimiryquai/training-manager/internal/events"
)

// ACWRCalculator computes the workload ratio for one athlete on one day.
type ACWRCalculator interface {
	ACWR(ctx context.Context, id domain.Identity, date domain.Day) (domain.ACWRResult, error)
}

// DangerAlertHandler recomputes the ACWR whenever a workout session is logged
// and reports athletes who crossed the danger threshold.
type DangerAlertHandler struct {
	calc   ACWRCalculator
	logger *log.Logger
}

// NewDangerAlertHandler constructs a handler that reads loads through calc.
func NewDangerAlertHandler(calc ACWRCalculator, logger *log.Logger) *DangerAlertHandler {
	if logger == nil {
		logger = log.New(log.Writer(), "[danger-alert] ", log.LstdFlags)
	}
	return &DangerAlertHandler{calc: calc, logger: logger}
}

// Handle ignores every event type other than workout_session.logged.
func (h *DangerAlertHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.TypeWorkoutSessionLogged {
		return nil
	}

	var payload events.WorkoutSessionLogged
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}
	date, err := domain.ParseDay(payload.Date)
	if err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}
	tenantID := payload.TenantID
	if tenantID == "" {
		tenantID = msg.TenantID
	}

	result, err := h.calc.ACWR(ctx, domain.Identity{TenantID: tenantID, UserID: payload.UserID}, date)
	if err != nil {
		return err
	}

	if result.IsDanger {
		dangerZoneCounter.Inc()
		h.logger.Printf("acwr danger zone tenant=%s user=%s date=%s ratio=%.2f acute=%.0f chronic=%.0f",
			tenantID, payload.UserID, date, result.Ratio, result.AcuteLoad, result.ChronicLoad)
	}
	return nil
}
