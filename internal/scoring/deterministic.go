package scoring

import (
	"math"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// Deterministic category caps. Portfolio + Skills + Achievements + Activity
// can exceed 100, so the overall score is capped separately.
const (
	MaxPortfolioScore   = 60
	MaxSkillScore       = 20
	MaxAchievementScore = 20
	MaxActivityScore    = 5
	achievementFallback = 15
	verifiedScoreWeight = 1.2
)

// ActivityScore maps activity counters to 0..5.
func ActivityScore(a domain.ActivitySnapshot) int {
	score := a.LoginsLast30Days
	if score > 3 {
		score = 3
	}
	if a.SubmissionsCount > 0 {
		score++
	}
	if a.PagesViewed > 10 {
		score++
	}
	return score
}

// SkillScore maps a skill count to 0..20: zero skills score nothing, the first
// skill is worth 10, every further one 2, capped at 20 (reached at 6 skills).
func SkillScore(count int) int {
	if count <= 0 {
		return 0
	}
	score := 10 + 2*(count-1)
	if score > MaxSkillScore {
		score = MaxSkillScore
	}
	return score
}

// AchievementFallbackScore maps an achievement count to 0..15. Used when the
// AI omits the achievements category or returns a non-numeric value.
func AchievementFallbackScore(count int) int {
	score := 5 * count
	if score > achievementFallback {
		score = achievementFallback
	}
	if score < 0 {
		score = 0
	}
	return score
}

// PortfolioScore computes the 0..60 portfolio category from the valid project
// evaluations: base points by valid-project count (20/15/15, flat after the
// third) plus a quality bonus of up to 10 derived from the average evaluation
// score, weighted in favor of company-verified projects.
func PortfolioScore(evals []domain.ProjectEvaluation, projects []domain.ProjectInput) int {
	valid := make([]domain.ProjectEvaluation, 0, len(evals))
	for _, e := range evals {
		if e.IsValid {
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return 0
	}

	base := 20
	if len(valid) >= 2 {
		base += 15
	}
	if len(valid) >= 3 {
		base += 15
	}

	var sum, n float64
	for _, e := range valid {
		w := 1.0
		if idx, ok := MatchInputTitle(e.Title, projects); ok && isCompanyVerified(projects[idx]) {
			w = verifiedScoreWeight
		}
		sum += float64(e.Score) * w
		n++
	}
	bonus := math.Min(10, sum/n/100*10)

	score := base + int(math.Round(bonus))
	if score > MaxPortfolioScore {
		score = MaxPortfolioScore
	}
	return score
}

func isCompanyVerified(p domain.ProjectInput) bool {
	return p.VerificationStatus == domain.VerificationVerified && p.CompanyScore != nil
}

// capOverall clamps an overall score into [0,100].
func capOverall(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
