package dedup

import (
	"strings"

	"github.com/agentstation/candimap/pkg/candidates"
)

// Chain is an ordered list of strategies, highest priority first.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain from strategy types. Repeated types are kept once.
func NewChain(types ...StrategyType) (*Chain, error) {
	c := &Chain{}
	seen := make(map[StrategyType]bool, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		s, err := New(t)
		if err != nil {
			return nil, err
		}
		seen[t] = true
		c.strategies = append(c.strategies, s)
	}
	return c, nil
}

// DefaultChain returns the chain in default priority order.
func DefaultChain() *Chain {
	c, _ := NewChain(StrategyTypes()...)
	return c
}

// Strategies returns the strategies in priority order.
func (c *Chain) Strategies() []Strategy {
	return append([]Strategy(nil), c.strategies...)
}

// Types returns the strategy types in priority order.
func (c *Chain) Types() []StrategyType {
	out := make([]StrategyType, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Type()
	}
	return out
}

// String renders the chain as "by-identifier > by-name-region".
func (c *Chain) String() string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Type().String()
	}
	return strings.Join(names, " > ")
}

// Detect runs every strategy independently over the same records and returns
// all duplicate groups. A record may appear under several strategies.
func (c *Chain) Detect(records []candidates.Record) []Group {
	var out []Group
	for _, s := range c.strategies {
		out = append(out, Duplicates(s.Group(records))...)
	}
	return out
}
