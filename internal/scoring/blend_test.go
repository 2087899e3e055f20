package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
)

func TestBlend_CompanyScoreBlending(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{
		Skills: []string{"Go", "SQL"},
		Projects: []domain.ProjectInput{
			{Title: "Inventory System", VerificationStatus: domain.VerificationVerified, CompanyScore: intPtr(90)},
		},
	}
	res := &domain.ScoreResult{
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "inventory system", IsValid: true, Score: 70, Feedback: "Solid work."},
		},
		Breakdown: domain.ScoreBreakdown{Achievements: scoring.AchievementsUnset},
	}

	scoring.Blend(res, profile, nil)

	e := res.ProjectEvaluations[0]
	assert.Equal(t, 80, e.Score, "round(70*0.5 + 90*0.5)")
	assert.Equal(t, 70, e.RawAIScore)
	assert.Equal(t, "Inventory System", e.Title, "title canonicalized to the stored form")
	assert.True(t, e.IsValid)
	assert.Contains(t, e.Feedback, "company verification score of 90")
}

func TestBlend_BreakdownBlendAndFloors(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{
		Projects: []domain.ProjectInput{
			{Title: "Alpha", VerificationStatus: domain.VerificationVerified, CompanyScore: intPtr(80)},
			{Title: "Beta", VerificationStatus: domain.VerificationVerified, CompanyScore: intPtr(60)},
		},
	}
	res := &domain.ScoreResult{
		Breakdown: domain.ScoreBreakdown{
			Innovation:     10,
			Implementation: 40,
			Complexity:     50,
			Documentation:  20,
			Usability:      5,
			Achievements:   scoring.AchievementsUnset,
		},
	}

	scoring.Blend(res, profile, nil)

	b := res.Breakdown
	assert.Equal(t, 55, b.Implementation, "round(40*0.5 + 70*0.5)")
	assert.Equal(t, 56, b.Complexity, "round(50*0.7 + 70*0.3)")
	assert.Equal(t, 40, b.Innovation)
	assert.Equal(t, 50, b.Usability)
	assert.Equal(t, 50, b.Documentation)
}

func TestBlend_DeterministicOverridesAndOverall(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{
		Skills:       []string{"Go", "Python", "SQL"},
		Achievements: []domain.Achievement{{Title: "Hackathon winner"}},
		Activity:     domain.ActivitySnapshot{LoginsLast30Days: 5, SubmissionsCount: 1, PagesViewed: 42},
		Projects:     []domain.ProjectInput{{Title: "Alpha"}},
	}
	res := &domain.ScoreResult{
		OverallScore: 999,
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "Alpha", IsValid: true, Score: 80},
		},
		// The AI is not trusted for these four; wild values must be replaced.
		Breakdown: domain.ScoreBreakdown{Skills: 93, Achievements: scoring.AchievementsUnset, Activity: 77, Portfolio: 200},
	}

	scoring.Blend(res, profile, nil)

	b := res.Breakdown
	assert.Equal(t, 14, b.Skills)
	assert.Equal(t, 5, b.Achievements)
	assert.Equal(t, 5, b.Activity)
	assert.Equal(t, 28, b.Portfolio)
	assert.Equal(t, 28+14+5+5, res.OverallScore)
}

func TestBlend_AchievementsNumericFromAIClamped(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{}
	res := &domain.ScoreResult{Breakdown: domain.ScoreBreakdown{Achievements: 35}}
	scoring.Blend(res, profile, nil)
	assert.Equal(t, 20, res.Breakdown.Achievements)
}

func TestBlend_InvalidEvaluationForcedToZero(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{Projects: []domain.ProjectInput{{Title: "Alpha"}}}
	res := &domain.ScoreResult{
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "Alpha", IsValid: false, Score: 55},
		},
		Breakdown: domain.ScoreBreakdown{Achievements: scoring.AchievementsUnset},
	}
	scoring.Blend(res, profile, nil)
	assert.Zero(t, res.ProjectEvaluations[0].Score)
}

func TestBlend_SkipsPreRejectedEvaluations(t *testing.T) {
	t.Parallel()
	rejected := []domain.ProjectEvaluation{
		{Title: "1111", IsValid: false, Score: 0, Feedback: "project title rejected: text contains no letters"},
	}
	profile := domain.Profile{
		Projects: []domain.ProjectInput{
			{Title: "1111", VerificationStatus: domain.VerificationVerified, CompanyScore: intPtr(99)},
		},
	}
	res := &domain.ScoreResult{
		ProjectEvaluations: append([]domain.ProjectEvaluation(nil), rejected...),
		Breakdown:          domain.ScoreBreakdown{Achievements: scoring.AchievementsUnset},
	}
	scoring.Blend(res, profile, rejected)

	e := res.ProjectEvaluations[0]
	assert.False(t, e.IsValid, "pre-rejected projects never become valid through blending")
	assert.Zero(t, e.Score)
	assert.Equal(t, "project title rejected: text contains no letters", e.Feedback)
}

func TestBlend_StripsContradictoryWeaknesses(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{
		Skills:       []string{"Go"},
		Achievements: []domain.Achievement{{Title: "Cert"}},
	}
	res := &domain.ScoreResult{
		Breakdown: domain.ScoreBreakdown{Achievements: scoring.AchievementsUnset},
		Weaknesses: []string{
			"No skills listed on the profile",
			"Profile lacks achievements",
			"Projects have sparse documentation",
		},
	}
	scoring.Blend(res, profile, nil)
	require.Len(t, res.Weaknesses, 1)
	assert.Equal(t, "Projects have sparse documentation", res.Weaknesses[0])
}

func TestBlend_UnmatchedEvaluationKeepsRawScore(t *testing.T) {
	t.Parallel()
	profile := domain.Profile{Projects: []domain.ProjectInput{{Title: "Alpha"}}}
	res := &domain.ScoreResult{
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "Totally Different", IsValid: true, Score: 64},
		},
		Breakdown: domain.ScoreBreakdown{Achievements: scoring.AchievementsUnset},
	}
	scoring.Blend(res, profile, nil)
	e := res.ProjectEvaluations[0]
	assert.Equal(t, 64, e.RawAIScore)
	assert.Equal(t, 64, e.Score)
}
