package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// AchievementsUnset marks the achievements category as missing or non-numeric
// in the parsed AI response, so Blend substitutes the deterministic fallback.
const AchievementsUnset = -1

// Blend finalizes an AI score result against the full profile:
//
//  1. reconciles every AI evaluation with its profile project by title and
//     blends 50/50 with the company verification score where one exists
//  2. blends company scores into the profile-level implementation/complexity
//     categories and floors the descriptive categories when any verified
//     project vouches for real work
//  3. recomputes skills, achievements, activity and portfolio from the
//     deterministic scorers, overwriting whatever the AI returned
//  4. strips self-contradictory weakness bullets
//
// Evaluations in rejected came from pre-validation, not from the AI; they are
// left untouched.
func Blend(res *domain.ScoreResult, profile domain.Profile, rejected []domain.ProjectEvaluation) {
	skip := make(map[string]struct{}, len(rejected))
	for _, r := range rejected {
		skip[NormalizeTitle(r.Title)] = struct{}{}
	}

	for i := range res.ProjectEvaluations {
		e := &res.ProjectEvaluations[i]
		if _, ok := skip[NormalizeTitle(e.Title)]; ok {
			continue
		}
		e.RawAIScore = e.Score

		idx, ok := MatchInputTitle(e.Title, profile.Projects)
		if !ok {
			slog.Warn("no profile project matches evaluation title",
				slog.String("title", e.Title))
			continue
		}
		p := profile.Projects[idx]
		if isCompanyVerified(p) {
			cs := *p.CompanyScore
			e.Score = int(math.Round(float64(e.RawAIScore)*0.5 + float64(cs)*0.5))
			e.Title = p.Title
			e.IsValid = true
			e.Feedback = strings.TrimSpace(e.Feedback +
				fmt.Sprintf(" Score blended with company verification score of %d.", cs))
		}
		if !e.IsValid {
			e.Score = 0
		}
	}

	b := &res.Breakdown
	if avg, ok := averageCompanyScore(profile.Projects); ok {
		b.Implementation = int(math.Round(float64(b.Implementation)*0.5 + avg*0.5))
		b.Complexity = int(math.Round(float64(b.Complexity)*0.7 + avg*0.3))
		if b.Innovation < 40 {
			b.Innovation = 40
		}
		if b.Usability < 50 {
			b.Usability = 50
		}
		if b.Documentation < 50 {
			b.Documentation = 50
		}
	}
	b.Innovation = clampCategory(b.Innovation)
	b.Implementation = clampCategory(b.Implementation)
	b.Complexity = clampCategory(b.Complexity)
	b.Documentation = clampCategory(b.Documentation)
	b.Usability = clampCategory(b.Usability)

	b.Skills = SkillScore(len(profile.Skills))
	b.Activity = ActivityScore(profile.Activity)
	if b.Achievements == AchievementsUnset {
		b.Achievements = AchievementFallbackScore(len(profile.Achievements))
	} else if b.Achievements > MaxAchievementScore {
		b.Achievements = MaxAchievementScore
	} else if b.Achievements < 0 {
		b.Achievements = 0
	}
	b.Portfolio = PortfolioScore(res.ProjectEvaluations, profile.Projects)
	res.OverallScore = capOverall(b.Portfolio + b.Skills + b.Achievements + b.Activity)

	res.Weaknesses = stripContradictions(res.Weaknesses, profile)
}

func averageCompanyScore(projects []domain.ProjectInput) (float64, bool) {
	var sum float64
	n := 0
	for _, p := range projects {
		if isCompanyVerified(p) {
			sum += float64(*p.CompanyScore)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func clampCategory(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// stripContradictions drops weakness bullets complaining about missing skills
// or achievements when the profile in fact has them. The deterministic
// overrides already raised those categories, so the bullets would contradict
// the numbers next to them.
func stripContradictions(weaknesses []string, profile domain.Profile) []string {
	out := weaknesses[:0]
	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		if len(profile.Skills) > 0 && strings.Contains(lower, "skill") {
			continue
		}
		if len(profile.Achievements) > 0 && strings.Contains(lower, "achievement") {
			continue
		}
		out = append(out, w)
	}
	return out
}
