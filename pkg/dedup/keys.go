package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"slices"
	"strings"

	"github.com/agentstation/candimap/pkg/candidates"
)

// CanonicalURL reduces a profile URL to a comparable form: lower-case scheme
// and host, no default port, no fragment, no trailing slash. Strings that do
// not parse as absolute URLs are returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	switch port := u.Port(); {
	case port == "", port == "80" && u.Scheme == "http", port == "443" && u.Scheme == "https":
		u.Host = host
	default:
		u.Host = host + ":" + port
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// identity is the part of a record that participates in the content hash.
// Provenance (sourcePage, source, collectedAt, latest) is left out so that
// the same record captured twice hashes the same.
type identity struct {
	Identifier      string   `json:"identifier"`
	Name            string   `json:"name"`
	Reading         string   `json:"reading"`
	Party           string   `json:"party"`
	PartyNormalized string   `json:"partyNormalized"`
	Region          string   `json:"region"`
	District        string   `json:"district"`
	DistrictType    string   `json:"districtType"`
	ProfileURL      string   `json:"profileUrl"`
	Websites        []string `json:"websites"`
	AgeInfo         string   `json:"ageInfo"`
	Birthplace      string   `json:"birthplace"`
	Occupation      string   `json:"occupation"`
	Career          string   `json:"career"`
}

// ContentHash returns the hex SHA-256 of the record's identity fields.
// Websites are order-independent.
func ContentHash(r candidates.Record) string {
	websites := slices.Clone(r.Websites)
	slices.Sort(websites)

	data, _ := json.Marshal(identity{
		Identifier:      r.Identifier,
		Name:            r.Name,
		Reading:         r.Reading,
		Party:           r.Party,
		PartyNormalized: r.PartyNormalized,
		Region:          r.Region,
		District:        r.District,
		DistrictType:    r.DistrictType.String(),
		ProfileURL:      CanonicalURL(r.ProfileURL),
		Websites:        websites,
		AgeInfo:         r.AgeInfo,
		Birthplace:      r.Birthplace,
		Occupation:      r.Occupation,
		Career:          r.Career,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
