// Package stub provides a fast, deterministic AI client for local runs and
// tests: same profile in, same judgement out, no network.
package stub

import (
	"encoding/json"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

type Client struct{}

func New() *Client { return &Client{} }

// ChatJSON echoes a fixed-shape judgement derived from the user payload. Each
// submitted project is scored from a stable hash of its title so repeated
// calls are idempotent.
func (c *Client) ChatJSON(_ domain.Context, _ string, userPrompt string, _ int) (string, error) {
	var profile domain.Profile
	_ = json.Unmarshal([]byte(userPrompt), &profile)

	evals := make([]map[string]any, 0, len(profile.Projects))
	for _, p := range profile.Projects {
		evals = append(evals, map[string]any{
			"title":    p.Title,
			"isValid":  true,
			"score":    40 + titleHash(p.Title)%50,
			"feedback": "Reasonable scope and clear description.",
		})
	}

	payload := map[string]any{
		"overall_score": 70,
		"summary":       "Competent portfolio with room to grow.",
		"strengths":     []string{"Clear project descriptions"},
		"weaknesses":    []string{"Limited production depth"},
		"recommendations": []string{
			"Add deployment details and metrics to project descriptions.",
		},
		"breakdown": map[string]any{
			"innovation":     55,
			"implementation": 60,
			"complexity":     50,
			"documentation":  45,
			"usability":      58,
		},
		"projectEvaluations": evals,
	}
	b, _ := json.Marshal(payload)
	return string(b), nil
}

func titleHash(s string) int {
	h := 0
	for _, r := range s {
		h = (h*31 + int(r)) % 9973
	}
	return h
}
