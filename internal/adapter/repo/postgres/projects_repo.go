package postgres

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// ProjectRepo persists and loads project records from PostgreSQL.
type ProjectRepo struct{ Pool PgxPool }

// NewProjectRepo constructs a ProjectRepo with the given pool.
func NewProjectRepo(p PgxPool) *ProjectRepo { return &ProjectRepo{Pool: p} }

// ListByUser loads every project row belonging to a user.
func (r *ProjectRepo) ListByUser(ctx domain.Context, userID string) ([]domain.ProjectRecord, error) {
	tracer := otel.Tracer("repo.projects")
	ctx, span := tracer.Start(ctx, "projects.ListByUser")
	defer span.End()
	q := `SELECT id, user_id, title, COALESCE(description,''), technologies, company_score, company_verification_status, score, ai_score, COALESCE(reviewer_notes,''), COALESCE(status,''), updated_at
	FROM projects WHERE user_id=$1 ORDER BY updated_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=project.list: %w", err)
	}
	defer rows.Close()

	var out []domain.ProjectRecord
	for rows.Next() {
		var p domain.ProjectRecord
		var status string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Technologies,
			&p.CompanyScore, &status, &p.Score, &p.AIScore, &p.ReviewerNotes, &p.Status, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("op=project.list: scan: %w", err)
		}
		p.CompanyVerificationStatus = domain.VerificationStatus(status)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=project.list: %w", err)
	}
	return out, nil
}

// UpdateEvaluation writes the reconciled score, AI score, reviewer notes and
// status onto a single project row.
func (r *ProjectRepo) UpdateEvaluation(ctx domain.Context, projectID string, score, aiScore int, notes, status string) error {
	tracer := otel.Tracer("repo.projects")
	ctx, span := tracer.Start(ctx, "projects.UpdateEvaluation")
	defer span.End()
	q := `UPDATE projects SET score=$2, ai_score=$3, reviewer_notes=$4, status=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, projectID, score, aiScore, notes, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=project.update_evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=project.update_evaluation: %w", domain.ErrNotFound)
	}
	return nil
}
