package merge

import (
	"slices"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/dedup"
)

// Removal records one discarded record for the audit trail.
type Removal struct {
	Strategy      dedup.StrategyType `json:"strategy" yaml:"strategy"`
	Key           string             `json:"key" yaml:"key"`
	Rule          Rule               `json:"rule" yaml:"rule"`
	Index         int                `json:"index" yaml:"index"` // Input position of the discarded record
	Record        candidates.Record  `json:"record" yaml:"record"`
	Survivor      string             `json:"survivor" yaml:"survivor"` // Survivor identifier, or its reference when it has none
	SurvivorIndex int                `json:"survivorIndex" yaml:"survivorIndex"`
}

// Outcome is the result of running a chain over a record set.
type Outcome struct {
	// Survivors in output order: untouched records keep their relative
	// order and each survivor takes the place of its group's earliest member.
	Survivors []candidates.Record

	// Indexes holds the input position of each survivor.
	Indexes []int

	Removals []Removal

	// Groups counts duplicate groups resolved per strategy.
	Groups map[dedup.StrategyType]int
}

// Discarded returns the number of removed records.
func (o *Outcome) Discarded() int {
	return len(o.Removals)
}

type item struct {
	record candidates.Record
	index  int // Input position of this record
	slot   int // Output position: the smallest input position it stands for
}

// Run applies the chain in priority order. Each strategy groups only the
// records still alive after the strategies before it, so no record is
// discarded twice and every record ends up either surviving or in exactly
// one Removal.
func Run(records []candidates.Record, chain *dedup.Chain) *Outcome {
	if chain == nil {
		chain = dedup.DefaultChain()
	}

	live := make([]item, len(records))
	for i, r := range records {
		live[i] = item{record: r.Clone(), index: i, slot: i}
	}

	out := &Outcome{Groups: make(map[dedup.StrategyType]int)}
	for _, strategy := range chain.Strategies() {
		current := make([]candidates.Record, len(live))
		for i := range live {
			current[i] = live[i].record
		}

		dead := make(map[int]bool)
		for _, g := range dedup.Duplicates(strategy.Group(current)) {
			members := make([]Member, len(g.Members))
			slot := live[g.Members[0]].slot
			for i, li := range g.Members {
				members[i] = Member{Record: live[li].record, Index: live[li].index}
				slot = min(slot, live[li].slot)
			}

			res := Resolve(members)
			winner := g.Members[res.Winner]
			live[winner].record = res.Survivor.Record
			live[winner].slot = slot

			survivorRef := res.Survivor.Record.Identifier
			if survivorRef == "" {
				survivorRef = res.Survivor.Record.Ref()
			}
			for i, li := range g.Members {
				if i == res.Winner {
					continue
				}
				dead[li] = true
				out.Removals = append(out.Removals, Removal{
					Strategy:      g.Strategy,
					Key:           g.Key,
					Rule:          res.Rule,
					Index:         live[li].index,
					Record:        live[li].record,
					Survivor:      survivorRef,
					SurvivorIndex: res.Survivor.Index,
				})
			}
			out.Groups[g.Strategy]++
		}

		if len(dead) == 0 {
			continue
		}
		next := make([]item, 0, len(live)-len(dead))
		for i := range live {
			if !dead[i] {
				next = append(next, live[i])
			}
		}
		slices.SortStableFunc(next, func(a, b item) int { return a.slot - b.slot })
		live = next
	}

	out.Survivors = make([]candidates.Record, len(live))
	out.Indexes = make([]int, len(live))
	for i := range live {
		out.Survivors[i] = live[i].record
		out.Indexes[i] = live[i].index
	}
	return out
}
