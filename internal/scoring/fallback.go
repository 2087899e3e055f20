package scoring

import (
	"fmt"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

const fallbackNeutralScore = 50

// Fallback computes a fully deterministic score when the AI judge failed
// (aiFailed true) or when pre-validation rejected every submitted project.
// Instead of the quality-weighted portfolio formula it uses a step function
// over the surviving project count, since no AI evaluations exist. Every
// project still receives an evaluation placeholder: pre-rejected ones keep
// their rejection feedback and score 0, the rest get a neutral score with a
// note that AI scoring was unavailable.
func Fallback(profile domain.Profile, rejected []domain.ProjectEvaluation, aiFailed bool) domain.ScoreResult {
	skip := make(map[string]struct{}, len(rejected))
	for _, r := range rejected {
		skip[NormalizeTitle(r.Title)] = struct{}{}
	}

	evals := make([]domain.ProjectEvaluation, 0, len(profile.Projects))
	surviving := 0
	for _, p := range profile.Projects {
		if _, ok := skip[NormalizeTitle(p.Title)]; ok {
			continue
		}
		surviving++
		if aiFailed {
			evals = append(evals, domain.ProjectEvaluation{
				Title:      p.Title,
				IsValid:    true,
				Score:      fallbackNeutralScore,
				RawAIScore: fallbackNeutralScore,
				Feedback:   "AI scoring was temporarily unavailable; a provisional neutral score was applied.",
			})
		}
	}
	evals = append(evals, rejected...)

	portfolio := fallbackPortfolioScore(surviving)
	breakdown := domain.ScoreBreakdown{
		Skills:       SkillScore(len(profile.Skills)),
		Achievements: AchievementFallbackScore(len(profile.Achievements)),
		Activity:     ActivityScore(profile.Activity),
		Portfolio:    portfolio,
	}

	summary := "Portfolio scored without AI assistance; project quality was not assessed."
	recommendations := []string{"Resubmit or update your projects to receive a full AI review."}
	if !aiFailed {
		summary = "All submitted projects were rejected by the readability check, so only profile signals were scored."
		recommendations = []string{"Rewrite project titles and descriptions in plain language and resubmit."}
	}

	var weaknesses []string
	if surviving == 0 {
		weaknesses = append(weaknesses, fmt.Sprintf("No readable projects out of %d submitted.", len(profile.Projects)))
	}

	return domain.ScoreResult{
		OverallScore:       capOverall(breakdown.Portfolio + breakdown.Skills + breakdown.Achievements + breakdown.Activity),
		ProjectEvaluations: evals,
		Breakdown:          breakdown,
		Summary:            summary,
		Weaknesses:         weaknesses,
		Recommendations:    recommendations,
	}
}

// fallbackPortfolioScore is the step function replacing the quality-weighted
// portfolio formula when no AI evaluations exist.
func fallbackPortfolioScore(projects int) int {
	switch {
	case projects >= 3:
		return 60
	case projects == 2:
		return 45
	case projects == 1:
		return 30
	default:
		return 0
	}
}
