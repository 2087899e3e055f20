package usecase

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/talentfolio/scoring-engine/internal/adapter/observability"
	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
)

// Reconciler writes per-project evaluation results back onto stored project
// rows. Evaluations carry only a title, so each one is located with the
// three-tier matcher; an evaluation that matches nothing is logged and
// skipped, leaving that project's previous score in place.
type Reconciler struct {
	Projects domain.ProjectRepository
}

// NewReconciler constructs a Reconciler.
func NewReconciler(projects domain.ProjectRepository) Reconciler {
	return Reconciler{Projects: projects}
}

// Reconcile applies every evaluation to the user's stored projects. A failed
// load aborts; a failed row write or a match miss is logged and processing
// continues, since earlier writes are not rolled back.
func (r Reconciler) Reconcile(ctx domain.Context, userID string, evals []domain.ProjectEvaluation) error {
	tracer := otel.Tracer("usecase.reconcile")
	ctx, span := tracer.Start(ctx, "reconcile.Reconcile")
	defer span.End()

	records, err := r.Projects.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("op=reconcile.list: %w", err)
	}

	for _, e := range evals {
		idx, ok := scoring.MatchRecordTitle(e.Title, records)
		if !ok {
			observability.ReconciliationMissesTotal.Inc()
			slog.Warn("no stored project matches evaluation title",
				slog.String("user_id", userID),
				slog.String("title", e.Title))
			continue
		}

		aiScore := e.RawAIScore
		if aiScore == 0 {
			aiScore = e.Score
		}
		status := domain.ProjectStatusScored
		if !e.IsValid {
			status = domain.ProjectStatusRejected
		}
		if err := r.Projects.UpdateEvaluation(ctx, records[idx].ID, e.Score, aiScore, e.Feedback, status); err != nil {
			slog.Error("project evaluation write failed",
				slog.String("user_id", userID),
				slog.String("project_id", records[idx].ID),
				slog.Any("error", err))
		}
	}
	return nil
}
