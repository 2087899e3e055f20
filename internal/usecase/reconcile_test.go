package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/usecase"
)

func TestReconcile_MatchesAcrossTiers(t *testing.T) {
	t.Parallel()
	projects := &mockProjectRepo{}
	records := []domain.ProjectRecord{
		{ID: "p-1", Title: "Weather App"},
		{ID: "p-2", Title: "my app"},
		{ID: "p-3", Title: "My Full App Name"},
	}
	projects.On("ListByUser", mock.Anything, "u-1").Return(records, nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", 70, 85, "exact", domain.ProjectStatusScored).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-2", 55, 55, "normalized", domain.ProjectStatusScored).Return(nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-3", 0, 40, "substring", domain.ProjectStatusRejected).Return(nil)

	evals := []domain.ProjectEvaluation{
		{Title: "weather app", IsValid: true, Score: 70, RawAIScore: 85, Feedback: "exact"},
		{Title: "My-App!!", IsValid: true, Score: 55, Feedback: "normalized"},
		{Title: "Full App", IsValid: false, Score: 0, RawAIScore: 40, Feedback: "substring"},
	}

	r := usecase.NewReconciler(projects)
	require.NoError(t, r.Reconcile(context.Background(), "u-1", evals))
	projects.AssertExpectations(t)
}

func TestReconcile_MissIsSkipped(t *testing.T) {
	t.Parallel()
	projects := &mockProjectRepo{}
	projects.On("ListByUser", mock.Anything, "u-1").Return([]domain.ProjectRecord{
		{ID: "p-1", Title: "Weather App"},
	}, nil)

	evals := []domain.ProjectEvaluation{
		{Title: "Chess Engine", IsValid: true, Score: 60},
	}

	r := usecase.NewReconciler(projects)
	require.NoError(t, r.Reconcile(context.Background(), "u-1", evals))
	projects.AssertNotCalled(t, "UpdateEvaluation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_ListFailure(t *testing.T) {
	t.Parallel()
	projects := &mockProjectRepo{}
	projects.On("ListByUser", mock.Anything, "u-1").Return(nil, errors.New("timeout"))

	r := usecase.NewReconciler(projects)
	err := r.Reconcile(context.Background(), "u-1", []domain.ProjectEvaluation{{Title: "x"}})
	require.Error(t, err)
}

func TestReconcile_WriteFailureContinues(t *testing.T) {
	t.Parallel()
	projects := &mockProjectRepo{}
	records := []domain.ProjectRecord{
		{ID: "p-1", Title: "First"},
		{ID: "p-2", Title: "Second"},
	}
	projects.On("ListByUser", mock.Anything, "u-1").Return(records, nil)
	projects.On("UpdateEvaluation", mock.Anything, "p-1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("deadlock"))
	projects.On("UpdateEvaluation", mock.Anything, "p-2", 45, 45, "", domain.ProjectStatusScored).Return(nil)

	evals := []domain.ProjectEvaluation{
		{Title: "First", IsValid: true, Score: 80},
		{Title: "Second", IsValid: true, Score: 45},
	}

	r := usecase.NewReconciler(projects)
	require.NoError(t, r.Reconcile(context.Background(), "u-1", evals))
	projects.AssertExpectations(t)
}
