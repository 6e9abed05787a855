// Package reconciler turns the raw output of repeated, overlapping collection
// passes into one canonical, deduplicated candidate directory.
//
// The pipeline runs from scratch on every call and is a pure, synchronous
// transform over an in-memory record set:
//
//	validate -> normalize -> split -> dedup -> merge -> statistics -> assemble
//
// Given the same input and configuration, two runs produce the same survivors
// in the same order with the same statistics.
package reconciler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/dataset"
	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/normalize"
	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/validator"
)

// Reconciler runs the reconciliation pipeline with one rule set. It holds
// no state between runs and is safe for concurrent use.
type Reconciler struct {
	cfg        *rules.Config
	validator  *validator.Validator
	normalizer *normalize.Normalizer
	chain      *dedup.Chain
	opts       *options
}

// New creates a Reconciler. A nil config uses the defaults.
func New(cfg *rules.Config, opts ...Option) (*Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = rules.Default()
	}
	chain, err := newChain(cfg)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		cfg:        cfg,
		validator:  validator.New(cfg),
		normalizer: normalize.New(cfg),
		chain:      chain,
		opts:       options,
	}, nil
}

// Reconcile runs the pipeline once with a fresh Reconciler.
func Reconcile(records []candidates.Record, cfg *rules.Config, opts ...Option) (*Result, error) {
	r, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r.Reconcile(records)
}

// Config returns the rule set.
func (r *Reconciler) Config() *rules.Config {
	return r.cfg
}

// runContext holds the state of one run.
type runContext struct {
	runID   string
	start   time.Time
	logger  zerolog.Logger
	tracker provenance.Tracker
	stats   ResultStatistics
}

// Reconcile performs reconciliation with clean step-by-step flow. The input
// slice is not modified. The only error is an AssemblyError, returned when
// the counts of the run do not add up; no envelope is produced then.
func (r *Reconciler) Reconcile(records []candidates.Record) (*Result, error) {
	// Step 1: Initialize run context
	rctx := r.initialize(len(records))

	// Step 2: Drop records whose name is not a plausible candidate name
	accepted := r.filter(rctx, records)

	// Step 3: Normalize fields and split concatenated readings
	prepared := r.prepare(rctx, accepted)

	// Step 4: Detect duplicates and resolve each group to one survivor
	survivors := r.merge(rctx, prepared)

	// Step 5: Assemble the envelope with freshly counted statistics
	env, err := dataset.Assemble(survivors, dataset.Counts{
		Input:      rctx.stats.Input,
		Rejected:   rctx.stats.Rejected,
		Duplicates: rctx.stats.Duplicates,
	}, dataset.Run{
		ID:          rctx.runID,
		GeneratedAt: r.opts.clock(),
		Strategies:  r.strategyNames(),
	})
	if err != nil {
		rctx.logger.Error().Err(err).Msg("Refusing to publish inconsistent dataset")
		return nil, err
	}

	// Step 6: Build and return result
	return r.result(rctx, env), nil
}

// initialize sets up the run context and reports configuration warnings.
func (r *Reconciler) initialize(input int) *runContext {
	rctx := &runContext{
		runID:   r.opts.runID(),
		start:   r.opts.clock().Time,
		tracker: provenance.NewTracker(r.opts.tracking),
		stats:   newResultStatistics(),
	}
	rctx.stats.Input = input
	rctx.logger = r.opts.logger.With().Str("run_id", rctx.runID).Logger()

	for _, w := range r.cfg.Warnings() {
		rctx.logger.Warn().
			Str("field", w.Field).
			Msg(w.Message)
	}
	rctx.logger.Debug().
		Int("input", input).
		Str("chain", r.chain.String()).
		Msg("Starting reconciliation")
	return rctx
}

// result builds the final result.
func (r *Reconciler) result(rctx *runContext, env *candidates.Envelope) *Result {
	end := r.opts.clock().Time
	res := &Result{
		Envelope:   env,
		Provenance: rctx.tracker.Entries(),
		Warnings:   r.cfg.Warnings(),
		Metadata: ResultMetadata{
			RunID:      rctx.runID,
			StartTime:  rctx.start,
			EndTime:    end,
			Duration:   end.Sub(rctx.start),
			Strategies: r.chain.Types(),
			Stats:      rctx.stats,
		},
	}
	rctx.logger.Info().
		Int("input", rctx.stats.Input).
		Int("rejected", rctx.stats.Rejected).
		Int("split", rctx.stats.Split).
		Int("duplicates", rctx.stats.Duplicates).
		Int("survivors", rctx.stats.Survivors).
		Dur("duration", res.Metadata.Duration).
		Msg("Reconciliation complete")
	return res
}
