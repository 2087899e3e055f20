package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/scoring"
)

// The judge's output is untyped JSON from a language model: field presence and
// types cannot be trusted. Everything numeric goes through coercion before any
// arithmetic.

type rawEvaluation struct {
	Title    string          `json:"title"`
	IsValid  *bool           `json:"isValid"`
	Score    json.RawMessage `json:"score"`
	Feedback string          `json:"feedback"`
}

type rawResult struct {
	OverallScore       json.RawMessage            `json:"overall_score"`
	Summary            string                     `json:"summary"`
	Strengths          []string                   `json:"strengths"`
	Weaknesses         []string                   `json:"weaknesses"`
	Recommendations    []string                   `json:"recommendations"`
	Breakdown          map[string]json.RawMessage `json:"breakdown"`
	ProjectEvaluations *[]rawEvaluation           `json:"projectEvaluations"`
}

// parseResult converts cleaned judge JSON into a domain result. hasEvaluations
// is false when the response lacked a projectEvaluations array entirely, so
// the caller can synthesize placeholders. Breakdown categories the judge
// omitted parse as zero except achievements, which parses as
// scoring.AchievementsUnset so the blender applies the deterministic fallback.
func parseResult(cleaned string) (*domain.ScoreResult, bool, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, false, fmt.Errorf("%w: decode judge response: %v", domain.ErrSchemaInvalid, err)
	}

	res := &domain.ScoreResult{
		OverallScore:    clampScore(coerceInt(raw.OverallScore, 0)),
		Summary:         strings.TrimSpace(raw.Summary),
		Strengths:       raw.Strengths,
		Weaknesses:      raw.Weaknesses,
		Recommendations: raw.Recommendations,
		Breakdown: domain.ScoreBreakdown{
			Innovation:     clampScore(breakdownField(raw.Breakdown, "innovation", 0)),
			Implementation: clampScore(breakdownField(raw.Breakdown, "implementation", 0)),
			Complexity:     clampScore(breakdownField(raw.Breakdown, "complexity", 0)),
			Documentation:  clampScore(breakdownField(raw.Breakdown, "documentation", 0)),
			Usability:      clampScore(breakdownField(raw.Breakdown, "usability", 0)),
			Skills:         clampScore(breakdownField(raw.Breakdown, "skills", 0)),
			Achievements:   breakdownField(raw.Breakdown, "achievements", scoring.AchievementsUnset),
			Activity:       clampScore(breakdownField(raw.Breakdown, "activity", 0)),
			Portfolio:      clampScore(breakdownField(raw.Breakdown, "portfolio", 0)),
		},
	}

	if raw.ProjectEvaluations == nil {
		return res, false, nil
	}

	res.ProjectEvaluations = make([]domain.ProjectEvaluation, 0, len(*raw.ProjectEvaluations))
	for _, re := range *raw.ProjectEvaluations {
		e := domain.ProjectEvaluation{
			Title:    strings.TrimSpace(re.Title),
			IsValid:  re.IsValid == nil || *re.IsValid,
			Score:    clampScore(coerceInt(re.Score, 0)),
			Feedback: strings.TrimSpace(re.Feedback),
		}
		if !e.IsValid {
			e.Score = 0
		}
		res.ProjectEvaluations = append(res.ProjectEvaluations, e)
	}
	return res, true, nil
}

// breakdownField reads one breakdown category, returning def when the field
// is absent or not a usable number.
func breakdownField(b map[string]json.RawMessage, key string, def int) int {
	if b == nil {
		return def
	}
	v, ok := b[key]
	if !ok {
		return def
	}
	return coerceInt(v, def)
}

// coerceInt accepts JSON numbers and numeric strings; anything else yields def.
func coerceInt(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f + 0.5)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f + 0.5)
		}
	}
	return def
}

func clampScore(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
