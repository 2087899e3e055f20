// Package usecase contains the scoring orchestration logic.
package usecase

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/talentfolio/scoring-engine/internal/adapter/observability"
	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
)

// ScoreService drives a full recalculation: assemble the profile, judge or
// fall back, persist the user-level score, reconcile every project.
//
// Concurrent invocations for the same user are expected and unsynchronized;
// the user score and project rows follow last-write-wins semantics.
type ScoreService struct {
	Users      domain.UserRepository
	Projects   domain.ProjectRepository
	Judge      domain.ProjectJudge
	Reconciler Reconciler
	Cache      domain.ResultCache // optional
}

// NewScoreService constructs a ScoreService with its dependencies.
func NewScoreService(users domain.UserRepository, projects domain.ProjectRepository, judge domain.ProjectJudge, cache domain.ResultCache) ScoreService {
	return ScoreService{
		Users:      users,
		Projects:   projects,
		Judge:      judge,
		Reconciler: NewReconciler(projects),
		Cache:      cache,
	}
}

// RecalculateUserScore recomputes a user's reputation score and every
// project's score/status. AI failures are absorbed by the fallback scorer and
// never surface to the caller; storage failures abort the run with a nil
// result.
func (s ScoreService) RecalculateUserScore(ctx domain.Context, userID string, extra *domain.ProfileOverride) (*domain.ScoreResult, error) {
	tracer := otel.Tracer("usecase.score")
	ctx, span := tracer.Start(ctx, "score.RecalculateUserScore")
	defer span.End()

	runID := uuid.NewString()
	log := slog.Default().With(slog.String("run_id", runID), slog.String("user_id", userID))

	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		log.Error("load user failed", slog.Any("error", err))
		observability.RecalculationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	records, err := s.Projects.ListByUser(ctx, userID)
	if err != nil {
		log.Error("load projects failed", slog.Any("error", err))
		observability.RecalculationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	profile := assembleProfile(user, records, extra)

	validated, rejected := preValidate(profile)
	log.Info("profile assembled",
		slog.Int("projects", len(profile.Projects)),
		slog.Int("rejected", len(rejected)),
		slog.Int("skills", len(profile.Skills)))

	var (
		result  *domain.ScoreResult
		outcome string
	)
	switch {
	case len(validated.Projects) == 0:
		// Nothing readable to judge; no AI call is made.
		r := scoring.Fallback(profile, rejected, false)
		result, outcome = &r, "all_rejected"
	default:
		result, err = s.Judge.Evaluate(ctx, validated, rejected)
		if err != nil {
			if !errors.Is(err, domain.ErrAIUnavailable) {
				log.Error("judge failed with unexpected error", slog.Any("error", err))
			} else {
				log.Warn("judge unavailable; scoring deterministically", slog.Any("error", err))
			}
			r := scoring.Fallback(profile, rejected, true)
			result, outcome = &r, "fallback"
		} else {
			scoring.Blend(result, profile, rejected)
			outcome = "ai"
		}
	}

	if err := s.Users.UpdateScore(ctx, userID, result.OverallScore, result.Analysis()); err != nil {
		log.Error("persist user score failed", slog.Any("error", err))
		observability.RecalculationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.Reconciler.Reconcile(ctx, userID, result.ProjectEvaluations); err != nil {
		// The user-level score is already durable; project rows keep their
		// previous values until the next successful run.
		log.Error("project reconciliation failed", slog.Any("error", err))
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, *result); err != nil {
			log.Warn("score cache write failed", slog.Any("error", err))
		}
	}

	observability.ObserveRecalculation(outcome, result.OverallScore)
	log.Info("recalculation finished",
		slog.String("outcome", outcome),
		slog.Int("overall_score", result.OverallScore),
		slog.Int("evaluations", len(result.ProjectEvaluations)))
	return result, nil
}

// assembleProfile builds the ephemeral evaluation payload from the stored
// records, applying caller-supplied overrides where present.
func assembleProfile(user domain.User, records []domain.ProjectRecord, extra *domain.ProfileOverride) domain.Profile {
	profile := domain.Profile{
		Name:         user.Name,
		Skills:       user.Skills,
		Achievements: user.Achievements,
		Activity:     user.Activity,
	}
	if extra != nil {
		if extra.Skills != nil {
			profile.Skills = extra.Skills
		}
		if extra.Achievements != nil {
			profile.Achievements = extra.Achievements
		}
		if extra.Activity != nil {
			profile.Activity = *extra.Activity
		}
	}
	for _, rec := range records {
		status := rec.CompanyVerificationStatus
		if status == "" {
			status = domain.VerificationNotApplicable
		}
		profile.Projects = append(profile.Projects, domain.ProjectInput{
			Title:              rec.Title,
			Description:        rec.Description,
			Technologies:       rec.Technologies,
			CompanyScore:       rec.CompanyScore,
			VerificationStatus: status,
		})
	}
	return profile
}

// preValidate splits the profile into the subset sent to the judge and the
// placeholder evaluations for projects that failed the readability check.
func preValidate(profile domain.Profile) (domain.Profile, []domain.ProjectEvaluation) {
	validated := profile
	validated.Projects = nil
	var rejected []domain.ProjectEvaluation
	for _, p := range profile.Projects {
		if v := scoring.PreValidateProject(p); !v.IsValid {
			rejected = append(rejected, scoring.RejectedEvaluation(p, v.Reason))
			continue
		}
		validated.Projects = append(validated.Projects, p)
	}
	return validated, rejected
}
