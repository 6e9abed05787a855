package reconciler

import (
	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/rules"
)

// newChain builds the dedup chain from the configured strategy order.
func newChain(cfg *rules.Config) (*dedup.Chain, error) {
	chain, err := dedup.NewChain(cfg.StrategyOrder()...)
	if err != nil {
		return nil, errors.NewConfigError("dedupStrategyOrder", "cannot build strategy chain", err)
	}
	return chain, nil
}

// strategyNames returns the chain as strings for the envelope metadata.
func (r *Reconciler) strategyNames() []string {
	types := r.chain.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
