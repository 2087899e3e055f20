package ai

import (
	"fmt"
	"log/slog"

	"github.com/talentfolio/scoring-engine/internal/adapter/ai/tokencount"
	"github.com/talentfolio/scoring-engine/internal/domain"
)

// placeholderScore is assigned when the judge answers without a
// projectEvaluations array and per-project verdicts must be synthesized.
const placeholderScore = 30

// Judge sends a pre-validated profile to the chat-completions client and turns
// the textual answer into a structured ScoreResult. Transport and parse
// failures surface as domain.ErrAIUnavailable; the orchestrator recovers with
// the fallback scorer.
type Judge struct {
	client    domain.AIClient
	cleaner   *ResponseCleaner
	counter   *tokencount.Counter
	maxTokens int
	budget    int
}

// NewJudge constructs a Judge. budget caps the serialized profile in tokens;
// zero disables the guard.
func NewJudge(client domain.AIClient, maxTokens, budget int) *Judge {
	return &Judge{
		client:    client,
		cleaner:   NewResponseCleaner(),
		counter:   tokencount.NewCounter(),
		maxTokens: maxTokens,
		budget:    budget,
	}
}

// Evaluate implements domain.ProjectJudge. validated must already have
// pre-rejected projects stripped; their evaluations arrive in rejected and are
// re-appended to the returned set unconditionally, even if the judge echoed
// them anyway.
func (j *Judge) Evaluate(ctx domain.Context, validated domain.Profile, rejected []domain.ProjectEvaluation) (*domain.ScoreResult, error) {
	payload, err := buildUserPayload(validated, j.budget, j.counter)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal profile: %v", domain.ErrInternal, err)
	}

	content, err := j.client.ChatJSON(ctx, systemRubric, payload, j.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}

	cleaned := j.cleaner.Clean(content)
	res, hasEvaluations, err := parseResult(cleaned)
	if err != nil {
		slog.Error("judge response unparseable",
			slog.Int("response_length", len(content)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}

	if !hasEvaluations {
		slog.Warn("judge response missing projectEvaluations; synthesizing placeholders",
			slog.Int("projects", len(validated.Projects)))
		for _, p := range validated.Projects {
			res.ProjectEvaluations = append(res.ProjectEvaluations, domain.ProjectEvaluation{
				Title:    p.Title,
				IsValid:  true,
				Score:    placeholderScore,
				Feedback: "The judge did not return a detailed evaluation for this project.",
			})
		}
	}

	res.ProjectEvaluations = append(res.ProjectEvaluations, rejected...)
	return res, nil
}
