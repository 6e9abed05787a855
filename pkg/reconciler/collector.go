package reconciler

import (
	"github.com/agentstation/candimap/pkg/normalize"
	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/splitter"
)

// prepare normalizes each accepted record and splits names captured together
// with their reading. A split is kept only when the name part still passes
// validation; otherwise the record passes through unsplit.
func (r *Reconciler) prepare(rctx *runContext, accepted []indexed) []indexed {
	prepared := make([]indexed, len(accepted))
	for i, item := range accepted {
		rec := r.normalizer.Record(item.record)

		if rec.Reading == "" && splitter.NeedsSplit(rec.Name) {
			match := splitter.Match(rec.Name)
			name := normalize.Text(match.Name)
			verdict := r.validator.Validate(name)
			switch {
			case !match.Split():
			case !verdict.Accepted:
				rctx.stats.SplitsSkipped++
				rctx.logger.Debug().
					Int("index", item.index).
					Str("name", rec.Name).
					Str("rule", match.Rule.String()).
					Str("reason", verdict.Reason.String()).
					Msg("Keeping name whole")
			default:
				rctx.stats.Split++
				rctx.tracker.Track(provenance.Entry{
					Kind:   provenance.KindSplit,
					Index:  item.index,
					Ref:    rec.Ref(),
					Name:   rec.Name,
					Source: rec.Source,
					Reason: match.Rule.String(),
					Detail: name + " / " + match.Reading,
				})
				rec.Name = name
				rec.Reading = match.Reading
			}
		}

		prepared[i] = indexed{record: rec, index: item.index}
	}

	rctx.logger.Debug().
		Int("records", len(prepared)).
		Int("split", rctx.stats.Split).
		Int("kept_whole", rctx.stats.SplitsSkipped).
		Msg("Normalized records")
	return prepared
}
