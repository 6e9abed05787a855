// Package candidates defines the candidate record, the canonical output
// envelope, and loading and saving of both.
package candidates

import (
	"encoding/json"
	"slices"
)

// Record is one candidate as captured by a single collection pass.
type Record struct {
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"` // Site-assigned ID, stable across passes when present
	Name       string `json:"name" yaml:"name"`
	Reading    string `json:"reading,omitempty" yaml:"reading,omitempty"` // Katakana reading

	Party           string `json:"party,omitempty" yaml:"party,omitempty"`
	PartyNormalized string `json:"partyNormalized,omitempty" yaml:"partyNormalized,omitempty"`

	Region       string       `json:"region,omitempty" yaml:"region,omitempty"`
	District     string       `json:"district,omitempty" yaml:"district,omitempty"`
	DistrictType DistrictType `json:"districtType" yaml:"districtType"`

	ProfileURL string `json:"profileUrl,omitempty" yaml:"profileUrl,omitempty"`

	// Provenance. Never used for identity.
	SourcePage  string    `json:"sourcePage,omitempty" yaml:"sourcePage,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	CollectedAt Timestamp `json:"collectedAt" yaml:"collectedAt"`
	Latest      bool      `json:"latest,omitempty" yaml:"latest,omitempty"`

	// Enrichment. Each field is independently optional.
	Websites   []string `json:"websites,omitempty" yaml:"websites,omitempty"`
	AgeInfo    string   `json:"ageInfo,omitempty" yaml:"ageInfo,omitempty"`
	Birthplace string   `json:"birthplace,omitempty" yaml:"birthplace,omitempty"`
	Occupation string   `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Career     string   `json:"career,omitempty" yaml:"career,omitempty"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	r.Websites = slices.Clone(r.Websites)
	return r
}

// EnrichmentCount returns how many enrichment fields carry a value.
func (r Record) EnrichmentCount() int {
	n := 0
	for _, website := range r.Websites {
		if website != "" {
			n++
			break
		}
	}
	for _, v := range []string{r.AgeInfo, r.Birthplace, r.Occupation, r.Career} {
		if v != "" {
			n++
		}
	}
	return n
}

// Ref returns a short human reference for audit output: the identifier,
// the profile URL, or the name, whichever is present first.
func (r Record) Ref() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.ProfileURL != "":
		return r.ProfileURL
	default:
		return r.Name
	}
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}

// recordAliases lists the snake_case keys written by the original collectors.
type recordAliases struct {
	CandidateID      string          `json:"candidate_id"`
	NameKana         string          `json:"name_kana"`
	Kana             string          `json:"kana"`
	PartyNormalized  string          `json:"party_normalized"`
	Prefecture       string          `json:"prefecture"`
	Constituency     string          `json:"constituency"`
	ConstituencyType json.RawMessage `json:"constituency_type"`
	ProfileURL       string          `json:"profile_url"`
	SourcePage       string          `json:"source_page"`
	CollectedAt      json.RawMessage `json:"collected_at"`
	ScrapedAt        json.RawMessage `json:"scraped_at"`
	AgeInfo          string          `json:"age_info"`
}

// UnmarshalJSON accepts both the canonical camelCase keys and the snake_case
// keys used by collectors. Canonical keys win when both are present.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var a recordAliases
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	fill := func(dst *string, alts ...string) {
		for _, alt := range alts {
			if *dst == "" && alt != "" {
				*dst = alt
			}
		}
	}
	fill(&p.Identifier, a.CandidateID)
	fill(&p.Reading, a.NameKana, a.Kana)
	fill(&p.PartyNormalized, a.PartyNormalized)
	fill(&p.Region, a.Prefecture)
	fill(&p.District, a.Constituency)
	fill(&p.ProfileURL, a.ProfileURL)
	fill(&p.SourcePage, a.SourcePage)
	fill(&p.AgeInfo, a.AgeInfo)

	if p.DistrictType == "" && len(a.ConstituencyType) > 0 {
		if err := json.Unmarshal(a.ConstituencyType, &p.DistrictType); err != nil {
			return err
		}
	}
	if p.CollectedAt.IsZero() {
		for _, raw := range []json.RawMessage{a.CollectedAt, a.ScrapedAt} {
			if len(raw) == 0 {
				continue
			}
			if err := json.Unmarshal(raw, &p.CollectedAt); err != nil {
				return err
			}
			break
		}
	}
	if p.DistrictType == "" {
		p.DistrictType = DistrictUnknown
	}

	*r = Record(p)
	return nil
}
