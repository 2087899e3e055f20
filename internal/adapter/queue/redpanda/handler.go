package redpanda

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// Recalculator is the slice of the scoring service the handler needs.
type Recalculator interface {
	RecalculateUserScore(ctx domain.Context, userID string, extra *domain.ProfileOverride) (*domain.ScoreResult, error)
}

// TaskHandler decodes queued tasks and runs the recalculation. Failures are
// logged, not returned to the consumer loop: a task that cannot be decoded is
// unrecoverable, and a failed recalculation will be retried by the next
// trigger for that user rather than by redelivery.
type TaskHandler struct {
	svc Recalculator
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(svc Recalculator) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Handle processes one raw record payload.
func (h *TaskHandler) Handle(ctx domain.Context, payload []byte) {
	if err := h.handle(ctx, payload); err != nil {
		slog.Error("task handling failed", slog.Any("error", err))
	}
}

func (h *TaskHandler) handle(ctx domain.Context, payload []byte) error {
	var task domain.RecalculateTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("op=queue.handle decode: %w", err)
	}
	if task.UserID == "" {
		return fmt.Errorf("op=queue.handle: %w: empty user id", domain.ErrInvalidArgument)
	}

	slog.Info("processing recalculation task",
		slog.String("task_id", task.TaskID),
		slog.String("user_id", task.UserID))

	res, err := h.svc.RecalculateUserScore(ctx, task.UserID, task.Extra)
	if err != nil {
		return fmt.Errorf("op=queue.handle user=%s: %w", task.UserID, err)
	}

	slog.Info("recalculation task finished",
		slog.String("task_id", task.TaskID),
		slog.String("user_id", task.UserID),
		slog.Int("overall_score", res.OverallScore))
	return nil
}
