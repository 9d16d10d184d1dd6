package narration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/research"
)

// Submitter executes a research query.
type Submitter interface {
	Submit(ctx context.Context, q research.Query) (*research.Result, error)
}

// FailureMessage is the error event message for a failed submission.
const FailureMessage = "Research failed"

// Runner narrates submissions. Narrations are bound to the runner's base
// context, not to the request that started them.
type Runner struct {
	base      context.Context
	submitter Submitter
	policy    DeliveryPolicy
	script    Script
	logger    *zerolog.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// NewRunner creates a runner. base bounds the lifetime of every narration.
func NewRunner(base context.Context, submitter Submitter, policy DeliveryPolicy, script Script, logger *zerolog.Logger) *Runner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Runner{
		base:      base,
		submitter: submitter,
		policy:    policy,
		script:    script,
		logger:    logger,
		now:       time.Now,
	}
}

// Start accepts q and narrates it in the background. It returns the
// submission's request id.
func (r *Runner) Start(q research.Query) Submission {
	sub := Submission{
		RequestID:   uuid.NewString(),
		Query:       q,
		SubmittedAt: r.now(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(r.base, sub)
	}()

	return sub
}

// Run narrates sub synchronously: every stage after one pace interval,
// then the upstream outcome. It stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, sub Submission) {
	log := r.logger.With().
		Str("request_id", sub.RequestID).
		Str("script", r.script.Name).
		Str("delivery", r.policy.Name()).
		Logger()

	log.Info().Str("query", sub.Query.Query).Msg("Narrating research")

	for _, stage := range r.script.Stages {
		if !r.sleep(ctx) {
			log.Warn().Msg("Narration cancelled")
			return
		}
		r.policy.Deliver(sub, stage.Type, stage.Payload(sub))
	}

	result, err := r.submitter.Submit(ctx, sub.Query)
	if err != nil {
		log.Error().
			Err(err).
			Bool("timeout", errors.IsTimeout(err)).
			Bool("upstream_unavailable", errors.IsUpstreamUnavailable(err)).
			Msg("Research error")
		r.policy.Deliver(sub, events.Error, map[string]any{
			"message":   FailureMessage,
			"error":     err.Error(),
			"requestId": sub.RequestID,
		})
		return
	}

	r.policy.Deliver(sub, events.Results, result)
	log.Info().Int("papers", len(result.Papers)).Msg("Research results delivered")
}

func (r *Runner) sleep(ctx context.Context) bool {
	if r.script.Pace <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(r.script.Pace)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Wait blocks until every started narration has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Script returns the runner's script.
func (r *Runner) Script() Script {
	return r.script
}
