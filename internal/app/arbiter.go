package app

import (
	"context"
	"log/slog"
	"time"

	"educraft-session-service/internal/content"
	"educraft-session-service/internal/domain"
)

// DefaultRetryBudget is the maximum number of generator calls per request.
const DefaultRetryBudget = 15

// QuestionGenerator is the external content generator capability.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req domain.GenerationRequest) (domain.Question, error)
}

// DedupCache tracks which fingerprints a session has already been shown.
type DedupCache interface {
	Contains(ctx context.Context, key, fingerprint string) (bool, error)
	Record(ctx context.Context, key, fingerprint string) error
	// Claim atomically checks and records fingerprint for key, reporting
	// whether it was unseen. Concurrent claims for one key are serialized.
	Claim(ctx context.Context, key, fingerprint string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// Content sources reported alongside a question.
const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// GeneratedQuestion is the arbiter's answer to a question request.
type GeneratedQuestion struct {
	domain.Question
	Source      string `json:"source"`
	Attempts    int    `json:"attempts"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Arbiter obtains session-unique questions from the generator with a bounded
// number of calls, substituting fallback content when it cannot.
type Arbiter struct {
	generator QuestionGenerator
	cache     DedupCache
	budget    int
	timeout   time.Duration
	log       *slog.Logger
}

// ArbiterOption configures an Arbiter.
type ArbiterOption func(*Arbiter)

// WithRetryBudget overrides the number of generator calls per request.
func WithRetryBudget(n int) ArbiterOption {
	return func(a *Arbiter) {
		if n > 0 {
			a.budget = n
		}
	}
}

// WithGeneratorTimeout bounds each generator call.
func WithGeneratorTimeout(d time.Duration) ArbiterOption {
	return func(a *Arbiter) {
		a.timeout = d
	}
}

// WithArbiterLogger sets the logger.
func WithArbiterLogger(l *slog.Logger) ArbiterOption {
	return func(a *Arbiter) {
		if l != nil {
			a.log = l
		}
	}
}

func NewArbiter(generator QuestionGenerator, cache DedupCache, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		generator: generator,
		cache:     cache,
		budget:    DefaultRetryBudget,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateQuestion normalizes and validates req, then runs GenerateUnique
// under the request's session key.
func (a *Arbiter) GenerateQuestion(ctx context.Context, req domain.GenerationRequest) (GeneratedQuestion, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return GeneratedQuestion{}, err
	}
	return a.GenerateUnique(ctx, req.SessionKey(), req), nil
}

// GenerateUnique never fails: generator errors and malformed output return the
// fallback immediately, and an exhausted budget resets the session history
// before returning the fallback.
func (a *Arbiter) GenerateUnique(ctx context.Context, key string, req domain.GenerationRequest) GeneratedQuestion {
	for attempt := 1; attempt <= a.budget; attempt++ {
		q, err := a.generate(ctx, req)
		if err == nil {
			err = q.Validate()
		}
		if err != nil {
			a.log.Warn("generator failed, serving fallback",
				"session", key, "attempt", attempt, "subject", req.Subject, "difficulty", req.Difficulty, "error", err)
			return a.fallback(req, attempt)
		}

		fp := content.Fingerprint(q)
		claimed, err := a.cache.Claim(ctx, key, fp)
		if err != nil {
			a.log.Error("dedup cache unavailable, serving unchecked question", "session", key, "error", err)
			return GeneratedQuestion{Question: q, Source: SourceGenerated, Attempts: attempt, Fingerprint: fp}
		}
		if claimed {
			return GeneratedQuestion{Question: q, Source: SourceGenerated, Attempts: attempt, Fingerprint: fp}
		}
		a.log.Debug("duplicate question rejected", "session", key, "attempt", attempt)
	}

	a.log.Info("retry budget exhausted, resetting history", "session", key, "budget", a.budget)
	if err := a.cache.Reset(ctx, key); err != nil {
		a.log.Error("dedup reset failed", "session", key, "error", err)
	}
	return a.fallback(req, a.budget)
}

func (a *Arbiter) generate(ctx context.Context, req domain.GenerationRequest) (domain.Question, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.generator.GenerateQuestion(ctx, req)
}

func (a *Arbiter) fallback(req domain.GenerationRequest, attempts int) GeneratedQuestion {
	return GeneratedQuestion{
		Question: content.FallbackQuestion(req.Subject, req.Difficulty),
		Source:   SourceFallback,
		Attempts: attempts,
	}
}
