package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// UserRepo persists and loads user records from PostgreSQL.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

// Get loads a user by id.
func (r *UserRepo) Get(ctx domain.Context, id string) (domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Get")
	defer span.End()
	q := `SELECT id, name, skills, achievements, logins_last_30_days, submissions_count, pages_viewed, score, score_analysis, updated_at FROM users WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var (
		u            domain.User
		achievements []byte
		analysis     []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Skills, &achievements,
		&u.Activity.LoginsLast30Days, &u.Activity.SubmissionsCount, &u.Activity.PagesViewed,
		&u.Score, &analysis, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("op=user.get: %w", domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("op=user.get: %w", err)
	}
	if len(achievements) > 0 {
		if err := json.Unmarshal(achievements, &u.Achievements); err != nil {
			return domain.User{}, fmt.Errorf("op=user.get: decode achievements: %w", err)
		}
	}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &u.ScoreAnalysis); err != nil {
			return domain.User{}, fmt.Errorf("op=user.get: decode score analysis: %w", err)
		}
	}
	return u, nil
}

// UpdateScore persists the aggregate score and its narrative analysis.
func (r *UserRepo) UpdateScore(ctx domain.Context, id string, score int, analysis domain.ScoreAnalysis) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.UpdateScore")
	defer span.End()
	b, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("op=user.update_score: encode analysis: %w", err)
	}
	q := `UPDATE users SET score=$2, score_analysis=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, score, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=user.update_score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.update_score: %w", domain.ErrNotFound)
	}
	return nil
}
