package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "myapp", scoring.NormalizeTitle("My-App!!"))
	assert.Equal(t, "myapp", scoring.NormalizeTitle("my app"))
	assert.Equal(t, "todolist2", scoring.NormalizeTitle("  ToDo List 2  "))
	assert.Equal(t, "", scoring.NormalizeTitle("!!!"))
}

func TestMatchRecordTitle_Tiers(t *testing.T) {
	t.Parallel()
	records := []domain.ProjectRecord{
		{ID: "1", Title: "my app"},
		{ID: "2", Title: "My Full App Name"},
		{ID: "3", Title: "Chat Service"},
	}

	t.Run("exact case-insensitive", func(t *testing.T) {
		t.Parallel()
		idx, ok := scoring.MatchRecordTitle("CHAT SERVICE", records)
		require.True(t, ok)
		assert.Equal(t, "3", records[idx].ID)
	})

	t.Run("normalized equality", func(t *testing.T) {
		t.Parallel()
		idx, ok := scoring.MatchRecordTitle("My-App!!", records)
		require.True(t, ok)
		assert.Equal(t, "1", records[idx].ID)
	})

	t.Run("substring inside stored title", func(t *testing.T) {
		t.Parallel()
		idx, ok := scoring.MatchRecordTitle("Full App", records)
		require.True(t, ok)
		assert.Equal(t, "2", records[idx].ID)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		_, ok := scoring.MatchRecordTitle("Completely Different", records)
		assert.False(t, ok)
	})
}

func TestMatchInputTitle_SubstringEitherDirection(t *testing.T) {
	t.Parallel()
	projects := []domain.ProjectInput{
		{Title: "Weather Station"},
		{Title: "Portfolio"},
	}

	idx, ok := scoring.MatchInputTitle("Weather Station v2 (rewrite)", projects)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = scoring.MatchInputTitle("folio", projects)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = scoring.MatchInputTitle("Unrelated", projects)
	assert.False(t, ok)
}
