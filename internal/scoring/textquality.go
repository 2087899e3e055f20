// Package scoring contains the pure scoring logic of the portfolio engine:
// text-quality validation, deterministic sub-scores, company-score blending,
// the fallback path and title matching. Nothing in this package touches
// storage or the network.
package scoring

import (
	"math"
	"regexp"
	"strings"
)

// Validation is the outcome of a text-quality or pre-validation check.
// A rejection is a classification, not an error.
type Validation struct {
	IsValid bool
	Reason  string
}

var (
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
	wordRe   = regexp.MustCompile(`[a-zA-Z]{2,}`)
)

// hasRepeatRun reports whether s contains the same non-newline character four
// or more times in a row (the equivalent of the PCRE pattern `(.)\1{3,}`,
// which Go's RE2 engine cannot express because it lacks backreferences).
func hasRepeatRun(s string) bool {
	var prev rune
	count := 0
	for _, r := range s {
		if r == prev {
			count++
		} else {
			prev, count = r, 1
		}
		if count >= 4 && r != '\n' {
			return true
		}
	}
	return false
}

// commonWords is a small fixed dictionary of frequent English and tech words.
// A word found here counts as recognizable regardless of its vowel profile.
var commonWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "for", "with", "using", "use",
		"to", "of", "in", "on", "at", "by", "is", "it", "this", "that",
		"app", "web", "api", "site", "tool", "bot", "game", "shop", "store",
		"my", "new", "real", "time", "data", "user", "users", "chat", "page",
		"made", "built", "build", "create", "created", "manage", "management",
		"system", "service", "server", "client", "mobile", "online", "simple",
		"platform", "project", "website", "application", "dashboard", "tracker",
		"weather", "music", "video", "photo", "image", "blog", "news", "social",
		"react", "node", "python", "java", "golang", "rust", "docker", "cloud",
	} {
		commonWords[w] = struct{}{}
	}
}

// ValidateText is a cheap heuristic gibberish detector. It exists only to
// reject obvious junk before paying for an AI call; false positives and
// negatives are acceptable.
func ValidateText(text string) Validation {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return Validation{Reason: "text is empty or too short"}
	}
	if !letterRe.MatchString(trimmed) {
		return Validation{Reason: "text contains no letters"}
	}
	words := wordRe.FindAllString(strings.ToLower(trimmed), -1)
	if len(words) == 0 {
		return Validation{Reason: "text contains no readable words"}
	}
	if ratio := vowelRatio(trimmed); ratio < 0.15 || ratio > 0.80 {
		return Validation{Reason: "text looks like random characters"}
	}
	if hasRepeatRun(trimmed) {
		return Validation{Reason: "text contains repeated character runs"}
	}

	need := int(math.Ceil(float64(len(words)) * 0.3))
	if need < 1 {
		need = 1
	}
	recognized := 0
	for _, w := range words {
		if isRecognizable(w) {
			recognized++
		}
	}
	if recognized < need {
		return Validation{Reason: "text does not contain enough recognizable words"}
	}
	return Validation{IsValid: true}
}

// isRecognizable reports whether a single lowercase word looks like language:
// either a dictionary hit, or long enough with a plausible vowel profile.
func isRecognizable(w string) bool {
	if _, ok := commonWords[w]; ok {
		return true
	}
	if len(w) < 4 {
		return false
	}
	r := vowelRatio(w)
	return r >= 0.20 && r <= 0.70
}

func vowelRatio(s string) float64 {
	letters, vowels := 0, 0
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			letters++
			switch r {
			case 'a', 'e', 'i', 'o', 'u':
				vowels++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(vowels) / float64(letters)
}
