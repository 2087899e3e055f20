package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talentfolio/scoring-engine/internal/config"
	"github.com/talentfolio/scoring-engine/internal/domain"
)

// ScoreTrigger is the slice of the scoring service the handlers need.
type ScoreTrigger interface {
	RecalculateUserScore(ctx domain.Context, userID string, extra *domain.ProfileOverride) (*domain.ScoreResult, error)
}

// Server binds the HTTP handlers to their dependencies. Queue and Cache are
// optional; without a queue recalculations run in-process, without a cache
// score reads fall through to the user repository.
type Server struct {
	Cfg        config.Config
	Scores     ScoreTrigger
	Users      domain.UserRepository
	Queue      domain.Queue
	Cache      domain.ResultCache
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error

	validate *validator.Validate
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, scores ScoreTrigger, users domain.UserRepository, queue domain.Queue, cache domain.ResultCache, dbCheck, redisCheck func(ctx context.Context) error) *Server {
	return &Server{
		Cfg:        cfg,
		Scores:     scores,
		Users:      users,
		Queue:      queue,
		Cache:      cache,
		DBCheck:    dbCheck,
		RedisCheck: redisCheck,
		validate:   validator.New(),
	}
}

var userIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validUserID(id string) bool {
	return id != "" && len(id) <= 100 && userIDRe.MatchString(id)
}

// RecalculateHandler triggers a score recalculation for a user. An optional
// JSON body overrides parts of the stored profile for this run. With a queue
// configured the task is enqueued; otherwise it runs in a detached goroutine.
// Either way the response is 202.
func (s *Server) RecalculateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if !validUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), nil)
			return
		}

		var extra *domain.ProfileOverride
		if r.ContentLength != 0 {
			var override domain.ProfileOverride
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&override); err != nil {
				writeError(w, r, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidArgument, err), nil)
				return
			}
			if err := s.validate.Struct(override); err != nil {
				writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
				return
			}
			extra = &override
		}

		if s.Queue != nil {
			taskID, err := s.Queue.EnqueueRecalculate(r.Context(), domain.RecalculateTask{UserID: userID, Extra: extra})
			if err != nil {
				LoggerFrom(r).Error("enqueue failed", slog.Any("error", err))
				writeError(w, r, err, nil)
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]string{
				"task_id": taskID,
				"user_id": userID,
				"status":  "queued",
			})
			return
		}

		// No queue configured: run detached so the HTTP deadline does not
		// cancel the AI call mid-flight.
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Minute)
			defer cancel()
			if _, err := s.Scores.RecalculateUserScore(ctx, userID, extra); err != nil {
				slog.Error("in-process recalculation failed",
					slog.String("user_id", userID),
					slog.Any("error", err))
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{
			"user_id": userID,
			"status":  "processing",
		})
	}
}

type scoreResponse struct {
	UserID             string                     `json:"user_id"`
	OverallScore       int                        `json:"overall_score"`
	Breakdown          *domain.ScoreBreakdown     `json:"breakdown,omitempty"`
	ProjectEvaluations []domain.ProjectEvaluation `json:"projectEvaluations,omitempty"`
	Summary            string                     `json:"summary,omitempty"`
	Strengths          []string                   `json:"strengths,omitempty"`
	Weaknesses         []string                   `json:"weaknesses,omitempty"`
	Recommendations    []string                   `json:"recommendations,omitempty"`
	UpdatedAt          *time.Time                 `json:"updated_at,omitempty"`
}

// ScoreHandler serves the latest score for a user, preferring the cache and
// falling back to the stored user record.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if !validUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), nil)
			return
		}

		if s.Cache != nil {
			if res, err := s.Cache.Get(r.Context(), userID); err == nil {
				writeJSON(w, http.StatusOK, scoreResponse{
					UserID:             userID,
					OverallScore:       res.OverallScore,
					Breakdown:          &res.Breakdown,
					ProjectEvaluations: res.ProjectEvaluations,
					Summary:            res.Summary,
					Strengths:          res.Strengths,
					Weaknesses:         res.Weaknesses,
					Recommendations:    res.Recommendations,
				})
				return
			}
		}

		user, err := s.Users.Get(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		resp := scoreResponse{
			UserID:          userID,
			OverallScore:    user.Score,
			Summary:         user.ScoreAnalysis.Summary,
			Strengths:       user.ScoreAnalysis.Strengths,
			Weaknesses:      user.ScoreAnalysis.Weaknesses,
			Recommendations: user.ScoreAnalysis.Recommendations,
		}
		if !user.UpdatedAt.IsZero() {
			t := user.UpdatedAt
			resp.UpdatedAt = &t
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ReadyzHandler reports per-dependency readiness.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
