package reconciler

import (
	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/provenance"
)

// indexed is a record together with its input position.
type indexed struct {
	record candidates.Record
	index  int
}

// filter validates every name and keeps the accepted records in input order.
// Rejections are counted by reason and audited, never returned as errors.
func (r *Reconciler) filter(rctx *runContext, records []candidates.Record) []indexed {
	accepted := make([]indexed, 0, len(records))
	for i, rec := range records {
		verdict := r.validator.Validate(rec.Name)
		if verdict.Accepted {
			accepted = append(accepted, indexed{record: rec.Clone(), index: i})
			continue
		}

		rctx.stats.Rejected++
		rctx.stats.RejectedByReason[verdict.Reason]++
		rctx.tracker.Track(provenance.Entry{
			Kind:   provenance.KindRejection,
			Index:  i,
			Ref:    rec.Ref(),
			Name:   rec.Name,
			Source: rec.Source,
			Reason: verdict.Reason.String(),
			Detail: verdict.Detail,
		})
		rctx.logger.Debug().
			Int("index", i).
			Str("name", rec.Name).
			Str("reason", verdict.Reason.String()).
			Str("detail", verdict.Detail).
			Msg("Rejected name")
	}

	rctx.logger.Debug().
		Int("accepted", len(accepted)).
		Int("rejected", rctx.stats.Rejected).
		Msg("Validated names")
	return accepted
}
