package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
	"github.com/talentfolio/scoring-engine/internal/usecase"
)

func baseUser() domain.User {
	return domain.User{
		ID:     "u-1",
		Name:   "Ada",
		Skills: []string{"Go", "SQL"},
		Achievements: []domain.Achievement{
			{Title: "Hackathon winner"},
		},
		Activity: domain.ActivitySnapshot{
			LoginsLast30Days: 2,
			SubmissionsCount: 1,
			PagesViewed:      12,
		},
	}
}

func baseRecords() []domain.ProjectRecord {
	return []domain.ProjectRecord{
		{
			ID:          "p-1",
			UserID:      "u-1",
			Title:       "Weather App",
			Description: "A weather dashboard using the OpenWeather API",
		},
	}
}

func judgeResult() *domain.ScoreResult {
	return &domain.ScoreResult{
		OverallScore: 70,
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "Weather App", IsValid: true, Score: 70, Feedback: "Solid work."},
		},
		Breakdown: domain.ScoreBreakdown{
			Innovation:     60,
			Implementation: 70,
			Complexity:     65,
			Documentation:  55,
			Usability:      50,
			Achievements:   scoring.AchievementsUnset,
		},
		Summary: "A focused single-project portfolio.",
	}
}

func TestRecalculateUserScore_AIPath(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(baseRecords(), nil)
	judge.On("Evaluate", mock.Anything, mock.MatchedBy(func(p domain.Profile) bool {
		return len(p.Projects) == 1 && p.Projects[0].Title == "Weather App" &&
			p.Projects[0].VerificationStatus == domain.VerificationNotApplicable
	}), mock.Anything).Return(judgeResult(), nil)

	// Portfolio 20+7, skills 12, achievements 5, activity 4.
	users.On("UpdateScore", mock.Anything, "u-1", 48, mock.Anything).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", 70, 70, "Solid work.", domain.ProjectStatusScored).Return(nil)

	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.NoError(t, err)
	require.Equal(t, 48, res.OverallScore)
	require.Equal(t, 27, res.Breakdown.Portfolio)
	require.Equal(t, 12, res.Breakdown.Skills)
	require.Equal(t, 5, res.Breakdown.Achievements)
	require.Equal(t, 4, res.Breakdown.Activity)
	require.Len(t, res.ProjectEvaluations, 1)
	require.Equal(t, 70, res.ProjectEvaluations[0].Score)

	users.AssertExpectations(t)
	projects.AssertExpectations(t)
	judge.AssertExpectations(t)
}

func TestRecalculateUserScore_OverrideReplacesSkills(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(baseRecords(), nil)
	judge.On("Evaluate", mock.Anything, mock.MatchedBy(func(p domain.Profile) bool {
		return len(p.Skills) == 6 && p.Skills[0] == "Rust"
	}), mock.Anything).Return(judgeResult(), nil)
	users.On("UpdateScore", mock.Anything, "u-1", mock.Anything, mock.Anything).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	override := &domain.ProfileOverride{
		Skills: []string{"Rust", "Go", "SQL", "Kafka", "Redis", "Terraform"},
	}
	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", override)
	require.NoError(t, err)
	require.Equal(t, 20, res.Breakdown.Skills)
	judge.AssertExpectations(t)
}

func TestRecalculateUserScore_JudgeFailureFallsBack(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(baseRecords(), nil)
	judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrAIUnavailable)

	// Step portfolio 30 for one surviving project.
	users.On("UpdateScore", mock.Anything, "u-1", 51, mock.Anything).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", 50, 50, mock.Anything, domain.ProjectStatusScored).Return(nil)

	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.NoError(t, err)
	require.Equal(t, 51, res.OverallScore)
	require.Equal(t, 30, res.Breakdown.Portfolio)
	require.True(t, res.ProjectEvaluations[0].IsValid)
	require.Equal(t, 50, res.ProjectEvaluations[0].Score)

	users.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestRecalculateUserScore_AllRejectedSkipsJudge(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	records := []domain.ProjectRecord{
		{ID: "p-9", UserID: "u-1", Title: "1111"},
	}
	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(records, nil)
	users.On("UpdateScore", mock.Anything, "u-1", 21, mock.Anything).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-9", 0, 0, mock.Anything, domain.ProjectStatusRejected).Return(nil)

	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.NoError(t, err)
	require.Equal(t, 21, res.OverallScore)
	require.Equal(t, 0, res.Breakdown.Portfolio)
	require.Len(t, res.ProjectEvaluations, 1)
	require.False(t, res.ProjectEvaluations[0].IsValid)
	require.Equal(t, 0, res.ProjectEvaluations[0].Score)

	judge.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
	users.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestRecalculateUserScore_UserLoadFailure(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	users.On("Get", mock.Anything, "u-1").Return(domain.User{}, domain.ErrNotFound)

	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Nil(t, res)
	judge.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecalculateUserScore_PersistFailureAborts(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}
	judge := &mockJudge{}

	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(baseRecords(), nil)
	judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(judgeResult(), nil)
	users.On("UpdateScore", mock.Anything, "u-1", mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	svc := usecase.NewScoreService(users, projects, judge, nil)
	res, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.Error(t, err)
	require.Nil(t, res)
	projects.AssertNotCalled(t, "UpdateEvaluation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// freshJudge returns a new result per call, like a real client would.
type freshJudge struct{}

func (freshJudge) Evaluate(ctx domain.Context, validated domain.Profile, rejected []domain.ProjectEvaluation) (*domain.ScoreResult, error) {
	return judgeResult(), nil
}

func TestRecalculateUserScore_Deterministic(t *testing.T) {
	t.Parallel()
	users := &mockUserRepo{}
	projects := &mockProjectRepo{}

	users.On("Get", mock.Anything, "u-1").Return(baseUser(), nil)
	projects.On("ListByUser", mock.Anything, "u-1").Return(baseRecords(), nil)
	users.On("UpdateScore", mock.Anything, "u-1", mock.Anything, mock.Anything).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := usecase.NewScoreService(users, projects, freshJudge{}, nil)
	first, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.NoError(t, err)
	second, err := svc.RecalculateUserScore(context.Background(), "u-1", nil)
	require.NoError(t, err)

	require.Equal(t, first.OverallScore, second.OverallScore)
	require.Equal(t, first.Breakdown, second.Breakdown)
	require.Equal(t, first.ProjectEvaluations, second.ProjectEvaluations)
	require.GreaterOrEqual(t, first.OverallScore, 0)
	require.LessOrEqual(t, first.OverallScore, 100)
}
