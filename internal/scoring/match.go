package scoring

import (
	"regexp"
	"strings"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// The AI judge is never given a stable project identifier, only title text,
// and titles come back with cosmetic differences (case, punctuation, partial
// repetition). Matching is therefore tiered, from strict to loose, and kept
// here as isolated functions so the heuristics can be tuned without touching
// scoring math.

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTitle lowercases a title and strips every non-alphanumeric rune.
func NormalizeTitle(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

// MatchInputTitle locates the profile project an AI evaluation refers to,
// used during blending. A project matches when the normalized titles are
// equal, or when either title contains the other case-insensitively.
func MatchInputTitle(evalTitle string, projects []domain.ProjectInput) (int, bool) {
	norm := NormalizeTitle(evalTitle)
	for i, p := range projects {
		if NormalizeTitle(p.Title) == norm {
			return i, true
		}
	}
	lower := strings.ToLower(strings.TrimSpace(evalTitle))
	if lower == "" {
		return 0, false
	}
	for i, p := range projects {
		stored := strings.ToLower(strings.TrimSpace(p.Title))
		if stored == "" {
			continue
		}
		if strings.Contains(stored, lower) || strings.Contains(lower, stored) {
			return i, true
		}
	}
	return 0, false
}

// MatchRecordTitle locates the stored project row an evaluation belongs to.
// Tiers, stopping at the first hit:
//  1. exact case-insensitive equality
//  2. equality after normalization
//  3. case-insensitive substring: the AI title found inside the stored title
func MatchRecordTitle(evalTitle string, records []domain.ProjectRecord) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(evalTitle))
	for i, r := range records {
		if strings.ToLower(strings.TrimSpace(r.Title)) == lower {
			return i, true
		}
	}

	norm := NormalizeTitle(evalTitle)
	if norm != "" {
		for i, r := range records {
			if NormalizeTitle(r.Title) == norm {
				return i, true
			}
		}
	}

	if lower != "" {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(evalTitle)))
		if err == nil {
			for i, r := range records {
				if re.MatchString(r.Title) {
					return i, true
				}
			}
		}
	}
	return 0, false
}
