// Package normalize canonicalizes record fields before comparison: it
// collapses whitespace, maps free-text party names onto the configured
// taxonomy and recognizes nationwide proportional slots.
package normalize

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/rules"
)

// Text collapses every whitespace run, full-width spaces included, to one
// half-width space and trims both ends. Text(Text(s)) == Text(s).
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Key folds s for matching only: full-width ASCII becomes half-width,
// half-width katakana becomes full-width, and whitespace is removed. Keys
// are never written back to records.
func Key(s string) string {
	folded := norm.NFC.String(width.Fold.String(s))
	return strings.Join(strings.Fields(folded), "")
}

type partyEntry struct {
	key       string
	canonical string
}

// Normalizer applies a rule set to records. It is safe for concurrent use.
type Normalizer struct {
	parties       []partyEntry // Taxonomy first, then aliases; longest key first
	exact         map[string]string
	unclassified  string
	proportional  string
	regionAliases map[string]bool
	latestMarkers []string
}

// New creates a normalizer. A nil config uses the defaults.
func New(cfg *rules.Config) *Normalizer {
	if cfg == nil {
		cfg = rules.Default()
	}
	n := &Normalizer{
		exact:         make(map[string]string),
		unclassified:  cfg.UnclassifiedParty(),
		proportional:  cfg.ProportionalRegion(),
		regionAliases: make(map[string]bool),
	}

	for _, party := range cfg.PartyTaxonomy() {
		n.addParty(party, party)
	}
	aliases := cfg.PartyAliases()
	for _, alias := range slices.Sorted(maps.Keys(aliases)) {
		n.addParty(alias, aliases[alias])
	}
	slices.SortStableFunc(n.parties, func(a, b partyEntry) int {
		return cmp.Compare(utf8.RuneCountInString(b.key), utf8.RuneCountInString(a.key))
	})

	if regionAliases := cfg.ProportionalRegionAliases(); len(regionAliases) > 0 {
		for _, alias := range regionAliases {
			n.regionAliases[Key(alias)] = true
		}
		n.regionAliases[Key(n.proportional)] = true
	}

	for _, marker := range cfg.LatestSourceMarkers() {
		n.latestMarkers = append(n.latestMarkers, strings.ToLower(marker))
	}
	return n
}

func (n *Normalizer) addParty(name, canonical string) {
	key := Key(name)
	if key == "" {
		return
	}
	if _, seen := n.exact[key]; !seen {
		n.exact[key] = canonical
	}
	n.parties = append(n.parties, partyEntry{key: key, canonical: canonical})
}

// Party maps free text onto the taxonomy. An exact match on a party or
// alias wins; otherwise the longest party or alias contained in the text
// wins. Empty and unmatched text map to the unclassified sentinel.
func (n *Normalizer) Party(s string) string {
	key := Key(s)
	if key == "" {
		return n.unclassified
	}
	if canonical, ok := n.exact[key]; ok {
		return canonical
	}
	for _, p := range n.parties {
		if strings.Contains(key, p.key) {
			return p.canonical
		}
	}
	return n.unclassified
}

// Region maps a region denoting a nationwide proportional slot to the
// proportional sentinel and forces the district type to proportional. Other
// regions pass through with whitespace collapsed.
func (n *Normalizer) Region(region string, districtType candidates.DistrictType) (string, candidates.DistrictType) {
	text := Text(region)
	if n.regionAliases[Key(text)] {
		return n.proportional, candidates.DistrictProportional
	}
	if districtType == "" {
		districtType = candidates.DistrictUnknown
	}
	return text, districtType
}

// IsLatest reports whether a provenance source names the designated latest
// artifact.
func (n *Normalizer) IsLatest(source string) bool {
	source = strings.ToLower(source)
	for _, marker := range n.latestMarkers {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

// Record returns a normalized copy of r. Text fields are collapsed, the
// party is canonicalized into PartyNormalized, proportional regions are
// recognized, blank and repeated websites are dropped and the latest flag is
// derived from the source. Provenance is otherwise untouched.
func (n *Normalizer) Record(r candidates.Record) candidates.Record {
	out := r.Clone()

	out.Identifier = strings.TrimSpace(r.Identifier)
	out.Name = Text(r.Name)
	out.Reading = Text(r.Reading)
	out.Party = Text(r.Party)
	out.District = Text(r.District)
	out.ProfileURL = strings.TrimSpace(r.ProfileURL)
	out.AgeInfo = Text(r.AgeInfo)
	out.Birthplace = Text(r.Birthplace)
	out.Occupation = Text(r.Occupation)
	out.Career = Text(r.Career)

	party := out.Party
	if party == "" {
		party = r.PartyNormalized
	}
	out.PartyNormalized = n.Party(party)

	out.Region, out.DistrictType = n.Region(r.Region, r.DistrictType)

	out.Websites = nil
	for _, site := range r.Websites {
		site = strings.TrimSpace(site)
		if site != "" && !slices.Contains(out.Websites, site) {
			out.Websites = append(out.Websites, site)
		}
	}

	out.Latest = r.Latest || n.IsLatest(r.Source)
	return out
}
