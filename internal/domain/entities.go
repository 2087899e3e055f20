// Package domain holds the core entities and ports of the scoring engine.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrAIUnavailable covers transport failures, non-2xx responses and
	// unparseable judge output. It never escapes the orchestrator; the
	// fallback scorer absorbs it.
	ErrAIUnavailable = errors.New("ai unavailable")
	ErrSchemaInvalid = errors.New("schema invalid")
	ErrInternal      = errors.New("internal error")
)

// VerificationStatus is the third-party (company) verification state of a project.
type VerificationStatus string

const (
	VerificationNotApplicable VerificationStatus = "not_applicable"
	VerificationPending       VerificationStatus = "pending_verification"
	VerificationVerified      VerificationStatus = "verified"
	VerificationRejected      VerificationStatus = "rejected"
)

// Project status values written by the reconciler.
const (
	ProjectStatusScored   = "scored"
	ProjectStatusRejected = "Rejected"
)

// Achievement is a single user achievement as stored on the user record.
type Achievement struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// ScoreAnalysis is the narrative part of a score, persisted on the user record.
type ScoreAnalysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// User is the stored user record, limited to the fields the engine reads/writes.
type User struct {
	ID            string
	Name          string
	Skills        []string
	Achievements  []Achievement
	Activity      ActivitySnapshot
	Score         int
	ScoreAnalysis ScoreAnalysis
	UpdatedAt     time.Time
}

// ProjectRecord is the stored project row scoped to a user.
type ProjectRecord struct {
	ID                        string
	UserID                    string
	Title                     string
	Description               string
	Technologies              []string
	CompanyScore              *int
	CompanyVerificationStatus VerificationStatus
	Score                     int
	AIScore                   int
	ReviewerNotes             string
	Status                    string
	UpdatedAt                 time.Time
}

// ActivitySnapshot carries the activity counters feeding the activity sub-score.
type ActivitySnapshot struct {
	LoginsLast30Days int `json:"loginsLast30Days"`
	SubmissionsCount int `json:"submissionsCount"`
	PagesViewed      int `json:"pagesViewed"`
}

// ProjectInput is an immutable snapshot of a project taken at scoring time.
type ProjectInput struct {
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Technologies       []string           `json:"technologies,omitempty"`
	CompanyScore       *int               `json:"companyScore,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// Profile is the ephemeral evaluation payload assembled per scoring call.
// It is never persisted.
type Profile struct {
	Name         string           `json:"name"`
	Skills       []string         `json:"skills"`
	Achievements []Achievement    `json:"achievements"`
	Projects     []ProjectInput   `json:"projects"`
	Activity     ActivitySnapshot `json:"activity"`
}

// ProfileOverride lets callers replace parts of the stored profile for one call.
type ProfileOverride struct {
	Skills       []string          `json:"skills,omitempty" validate:"omitempty,dive,min=1"`
	Achievements []Achievement     `json:"achievements,omitempty"`
	Activity     *ActivitySnapshot `json:"activity,omitempty"`
}

// ProjectEvaluation is a single per-project verdict, AI-sourced or synthesized.
// Projects are identified by title text only; no stable id crosses the AI
// boundary, so every evaluation must be reconciled back by string matching.
type ProjectEvaluation struct {
	Title      string `json:"title"`
	IsValid    bool   `json:"isValid"`
	Score      int    `json:"score"`
	RawAIScore int    `json:"rawAiScore"`
	Feedback   string `json:"feedback"`
}

// ScoreBreakdown holds the fixed set of named sub-scores.
// Innovation through Usability are AI-sourced and informational only; Skills,
// Achievements, Activity and Portfolio are recomputed deterministically and
// are the ones summed into the overall score.
type ScoreBreakdown struct {
	Innovation     int `json:"innovation"`
	Implementation int `json:"implementation"`
	Complexity     int `json:"complexity"`
	Documentation  int `json:"documentation"`
	Usability      int `json:"usability"`
	Skills         int `json:"skills"`
	Achievements   int `json:"achievements"`
	Activity       int `json:"activity"`
	Portfolio      int `json:"portfolio"`
}

// ScoreResult is the full outcome of one scoring call.
// Invariants: OverallScore in [0,100]; Portfolio <= 60; Skills <= 20;
// Achievements <= 20; Activity <= 5; every invalid evaluation has Score == 0.
type ScoreResult struct {
	OverallScore       int                 `json:"overall_score"`
	ProjectEvaluations []ProjectEvaluation `json:"projectEvaluations"`
	Breakdown          ScoreBreakdown      `json:"breakdown"`
	Summary            string              `json:"summary"`
	Strengths          []string            `json:"strengths"`
	Weaknesses         []string            `json:"weaknesses"`
	Recommendations    []string            `json:"recommendations"`
}

// Analysis extracts the persistable narrative fields.
func (r ScoreResult) Analysis() ScoreAnalysis {
	return ScoreAnalysis{
		Summary:         r.Summary,
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
		Recommendations: r.Recommendations,
	}
}

// Repositories (ports)

type UserRepository interface {
	Get(ctx Context, id string) (User, error)
	UpdateScore(ctx Context, id string, score int, analysis ScoreAnalysis) error
}

type ProjectRepository interface {
	ListByUser(ctx Context, userID string) ([]ProjectRecord, error)
	UpdateEvaluation(ctx Context, projectID string, score, aiScore int, notes, status string) error
}

// AIClient (port)

type AIClient interface {
	// ChatJSON sends a system rubric plus user payload to a chat-completions
	// endpoint and returns the first choice's message content.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// ProjectJudge (port)
// Evaluate scores a pre-validated profile. Implementations wrap transport and
// parse failures in ErrAIUnavailable.
type ProjectJudge interface {
	Evaluate(ctx Context, validated Profile, rejected []ProjectEvaluation) (*ScoreResult, error)
}

// ResultCache (port)
// Best effort: failures are logged and ignored by callers.
type ResultCache interface {
	Set(ctx Context, userID string, res ScoreResult) error
	Get(ctx Context, userID string) (ScoreResult, error)
}

// Queue (port)

type RecalculateTask struct {
	TaskID string           `json:"task_id"`
	UserID string           `json:"user_id"`
	Extra  *ProfileOverride `json:"extra,omitempty"`
}

type Queue interface {
	EnqueueRecalculate(ctx Context, task RecalculateTask) (string, error)
}

// Context is an alias so the domain package stays decoupled from call sites;
// adapters and usecases pass context.Context through.
type Context = context.Context
