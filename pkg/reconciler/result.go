package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/validator"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	// Envelope is the canonical output: metadata, statistics and survivors.
	Envelope *candidates.Envelope

	// Metadata
	Metadata ResultMetadata

	// Audit trail, empty when provenance is disabled
	Provenance []provenance.Entry

	// Configuration warnings
	Warnings []rules.Warning
}

// ResultMetadata contains metadata about the reconciliation run.
type ResultMetadata struct {
	// RunID identifies the run
	RunID string

	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Strategies in the order they were applied
	Strategies []dedup.StrategyType

	// Statistics about the reconciliation
	Stats ResultStatistics
}

// ResultStatistics contains record counts for each stage.
type ResultStatistics struct {
	Input         int
	Rejected      int
	Split         int
	SplitsSkipped int // Splits whose name part failed validation
	Duplicates    int
	Survivors     int

	RejectedByReason  map[validator.Reason]int
	RemovedByStrategy map[dedup.StrategyType]int
	GroupsByStrategy  map[dedup.StrategyType]int
}

// Discarded returns rejected plus duplicate records.
func (s ResultStatistics) Discarded() int {
	return s.Rejected + s.Duplicates
}

// Records returns the surviving records.
func (r *Result) Records() []candidates.Record {
	if r.Envelope == nil {
		return nil
	}
	return r.Envelope.Data
}

// HasWarnings returns true if the configuration produced warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Report summarizes the audit trail.
func (r *Result) Report() *provenance.Report {
	return provenance.GenerateReport(r.Provenance)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	summary := fmt.Sprintf("Reconciled %d records into %d candidates (%d rejected, %d duplicates removed, %d names split)",
		s.Input, s.Survivors, s.Rejected, s.Duplicates, s.Split)
	if r.HasWarnings() {
		summary += fmt.Sprintf(" with %d configuration warnings", len(r.Warnings))
	}
	return summary
}

func newResultStatistics() ResultStatistics {
	return ResultStatistics{
		RejectedByReason:  make(map[validator.Reason]int),
		RemovedByStrategy: make(map[dedup.StrategyType]int),
		GroupsByStrategy:  make(map[dedup.StrategyType]int),
	}
}
