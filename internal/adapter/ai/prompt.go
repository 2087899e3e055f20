// Package ai implements the AI judge: prompt construction, response cleaning,
// parsing of the judge's untyped JSON output, and the token budget guard.
package ai

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/talentfolio/scoring-engine/internal/adapter/ai/tokencount"
	"github.com/talentfolio/scoring-engine/internal/domain"
)

// systemRubric is the fixed scoring rubric sent as the system message. The
// blending and cap logic downstream is what actually guarantees score bounds;
// the rubric only instructs the model.
const systemRubric = `You are a strict technical portfolio judge. You receive a JSON profile with a user's skills, achievements, projects and activity. Respond with ONLY a valid JSON object, no code fences, no commentary, matching exactly this shape:

{
  "overall_score": 0,
  "summary": "...",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "recommendations": ["..."],
  "breakdown": {
    "innovation": 0,
    "implementation": 0,
    "complexity": 0,
    "documentation": 0,
    "usability": 0,
    "skills": 0,
    "achievements": 0,
    "activity": 0,
    "portfolio": 0
  },
  "projectEvaluations": [
    {"title": "...", "isValid": true, "score": 0, "feedback": "..."}
  ]
}

Scoring rules:
- A project is valid unless it is nonsensical. A project whose verificationStatus is "verified" or "rejected" must be treated as valid regardless of description length.
- Per-project score bands: 90-100 exceptional, 70-89 good, 40-69 basic, 10-39 trivial. An invalid project scores 0.
- A verified project gets a floor of 60. A project rejected by its company is scored on content alone, without any verification bonus.
- Echo every project title exactly as given.
- All scores are integers from 0 to 100.`

// maxDescriptionFloor is the smallest length truncation will shrink a project
// description to before giving up.
const maxDescriptionFloor = 80

// buildUserPayload serializes the profile for the judge, truncating the
// longest project descriptions first until the prompt fits the token budget.
func buildUserPayload(profile domain.Profile, budget int, counter *tokencount.Counter) (string, error) {
	b, err := json.Marshal(profile)
	if err != nil {
		return "", err
	}
	if budget <= 0 || counter == nil {
		return string(b), nil
	}

	for counter.Count(string(b)) > budget {
		if !truncateLongestDescription(&profile) {
			slog.Warn("profile exceeds token budget after truncation",
				slog.Int("budget", budget),
				slog.Int("tokens", counter.Count(string(b))))
			break
		}
		if b, err = json.Marshal(profile); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// truncateLongestDescription halves the longest still-truncatable project
// description. Returns false once nothing is left to shrink.
func truncateLongestDescription(profile *domain.Profile) bool {
	idxs := make([]int, len(profile.Projects))
	for i := range idxs {
		idxs[i] = i
	}
	sort.Slice(idxs, func(a, b int) bool {
		return len(profile.Projects[idxs[a]].Description) > len(profile.Projects[idxs[b]].Description)
	})
	for _, i := range idxs {
		d := profile.Projects[i].Description
		if len(d) <= maxDescriptionFloor {
			return false
		}
		cut := len(d) / 2
		if cut < maxDescriptionFloor {
			cut = maxDescriptionFloor
		}
		profile.Projects[i].Description = d[:cut]
		return true
	}
	return false
}
