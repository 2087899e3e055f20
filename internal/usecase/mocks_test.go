package usecase_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Get(ctx domain.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateScore(ctx domain.Context, id string, score int, analysis domain.ScoreAnalysis) error {
	args := m.Called(ctx, id, score, analysis)
	return args.Error(0)
}

type mockProjectRepo struct{ mock.Mock }

func (m *mockProjectRepo) ListByUser(ctx domain.Context, userID string) ([]domain.ProjectRecord, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]domain.ProjectRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepo) UpdateEvaluation(ctx domain.Context, projectID string, score, aiScore int, notes, status string) error {
	args := m.Called(ctx, projectID, score, aiScore, notes, status)
	return args.Error(0)
}

type mockJudge struct{ mock.Mock }

func (m *mockJudge) Evaluate(ctx domain.Context, validated domain.Profile, rejected []domain.ProjectEvaluation) (*domain.ScoreResult, error) {
	args := m.Called(ctx, validated, rejected)
	if v := args.Get(0); v != nil {
		return v.(*domain.ScoreResult), args.Error(1)
	}
	return nil, args.Error(1)
}
