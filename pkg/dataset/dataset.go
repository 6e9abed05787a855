// Package dataset assembles the canonical output envelope and refuses to
// produce one whose counts do not add up.
package dataset

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/stats"
)

// Counts are the record tallies of one run.
type Counts struct {
	Input      int // Raw records handed to the pipeline
	Rejected   int // Dropped by the validator
	Duplicates int // Discarded by the merge resolver
}

// Discarded returns rejected plus duplicate records.
func (c Counts) Discarded() int {
	return c.Rejected + c.Duplicates
}

// Run describes the run that produced the survivors.
type Run struct {
	ID          string
	GeneratedAt utc.Time
	Strategies  []string
}

// Assemble wraps survivors and their freshly computed statistics into the
// output envelope. It returns an AssemblyError, and no envelope, unless
// discarded == input - survivors.
func Assemble(survivors []candidates.Record, counts Counts, run Run) (*candidates.Envelope, error) {
	if err := Check(len(survivors), counts); err != nil {
		return nil, err
	}

	statistics := stats.Aggregate(survivors)
	data := candidates.CloneAll(survivors)
	if data == nil {
		data = []candidates.Record{}
	}

	return &candidates.Envelope{
		Metadata: candidates.Metadata{
			TotalCandidates:   len(survivors),
			GeneratedAt:       run.GeneratedAt,
			DuplicatesRemoved: counts.Duplicates,
			Coverage:          stats.Coverage(statistics),
			RunID:             run.ID,
			InputCount:        counts.Input,
			RejectedCount:     counts.Rejected,
			DiscardedCount:    counts.Discarded(),
			Strategies:        append([]string(nil), run.Strategies...),
		},
		Statistics: statistics,
		Data:       data,
	}, nil
}

// Check verifies that every input record is accounted for exactly once.
func Check(survivors int, counts Counts) error {
	fail := func(msg string) error {
		return &errors.AssemblyError{
			Input:      counts.Input,
			Survivors:  survivors,
			Discarded:  counts.Discarded(),
			Rejected:   counts.Rejected,
			Duplicates: counts.Duplicates,
			Message:    msg,
		}
	}
	switch {
	case counts.Input < 0 || counts.Rejected < 0 || counts.Duplicates < 0:
		return fail("negative count")
	case counts.Discarded() != counts.Input-survivors:
		return fail("discarded count does not equal input minus survivors")
	}
	return nil
}
