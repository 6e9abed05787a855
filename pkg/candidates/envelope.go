package candidates

import (
	"encoding/json"

	"github.com/agentstation/utc"
)

// Envelope is the canonical output: run metadata, derived statistics and the
// surviving records.
type Envelope struct {
	Metadata   Metadata   `json:"metadata" yaml:"metadata"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
	Data       []Record   `json:"data" yaml:"data"`
}

// Metadata describes a reconciliation run.
type Metadata struct {
	TotalCandidates   int      `json:"totalCandidates" yaml:"totalCandidates"`
	GeneratedAt       utc.Time `json:"generatedAt" yaml:"generatedAt"`
	DuplicatesRemoved int      `json:"duplicatesRemoved" yaml:"duplicatesRemoved"`
	Coverage          Coverage `json:"coverage" yaml:"coverage"`
	RunID             string   `json:"runId,omitempty" yaml:"runId,omitempty"`
	InputCount        int      `json:"inputCount" yaml:"inputCount"`
	RejectedCount     int      `json:"rejectedCount" yaml:"rejectedCount"`
	DiscardedCount    int      `json:"discardedCount" yaml:"discardedCount"`
	Strategies        []string `json:"strategies,omitempty" yaml:"strategies,omitempty"`
}

// Coverage counts the distinct parties and prefectures present in the data.
type Coverage struct {
	Parties     int `json:"parties" yaml:"parties"`
	Prefectures int `json:"prefectures" yaml:"prefectures"`
}

// Statistics are count mappings derived from the surviving records.
type Statistics struct {
	ByParty            map[string]int `json:"byParty" yaml:"byParty"`
	ByPrefecture       map[string]int `json:"byPrefecture" yaml:"byPrefecture"`
	ByConstituencyType map[string]int `json:"byConstituencyType" yaml:"byConstituencyType"`
}

// UnmarshalJSON accepts trueDuplicatesRemoved as an alias of duplicatesRemoved.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.DuplicatesRemoved == 0 {
		var alias struct {
			TrueDuplicatesRemoved int `json:"trueDuplicatesRemoved"`
		}
		if err := json.Unmarshal(data, &alias); err != nil {
			return err
		}
		p.DuplicatesRemoved = alias.TrueDuplicatesRemoved
	}
	*m = Metadata(p)
	return nil
}
