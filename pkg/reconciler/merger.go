package reconciler

import (
	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/merge"
	"github.com/agentstation/candimap/pkg/provenance"
)

// merge runs the dedup chain and audits every removal against the input
// position of the records involved.
func (r *Reconciler) merge(rctx *runContext, prepared []indexed) []candidates.Record {
	records := make([]candidates.Record, len(prepared))
	for i := range prepared {
		records[i] = prepared[i].record
	}

	outcome := merge.Run(records, r.chain)

	for _, removal := range outcome.Removals {
		survivorIndex := prepared[removal.SurvivorIndex].index
		rctx.tracker.Track(provenance.Entry{
			Kind:          provenance.KindRemoval,
			Index:         prepared[removal.Index].index,
			Ref:           removal.Record.Ref(),
			Name:          removal.Record.Name,
			Source:        removal.Record.Source,
			Reason:        removal.Rule.String(),
			Strategy:      removal.Strategy.String(),
			Key:           removal.Key,
			Survivor:      removal.Survivor,
			SurvivorIndex: &survivorIndex,
		})
		rctx.stats.RemovedByStrategy[removal.Strategy]++
	}
	for strategy, groups := range outcome.Groups {
		rctx.stats.GroupsByStrategy[strategy] = groups
	}
	rctx.stats.Duplicates = outcome.Discarded()
	rctx.stats.Survivors = len(outcome.Survivors)

	rctx.logger.Debug().
		Int("duplicates", rctx.stats.Duplicates).
		Int("survivors", rctx.stats.Survivors).
		Msg("Merged duplicate groups")
	return outcome.Survivors
}
