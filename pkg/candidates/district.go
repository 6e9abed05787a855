package candidates

import (
	"encoding/json"
	"strings"
)

// DistrictType classifies how a candidate is contesting the election.
type DistrictType string

// District types.
const (
	DistrictSingleMember DistrictType = "single_member"
	DistrictProportional DistrictType = "proportional"
	DistrictUnknown      DistrictType = "unknown"
)

// String returns the string representation of a district type.
func (d DistrictType) String() string {
	if d == "" {
		return string(DistrictUnknown)
	}
	return string(d)
}

// ParseDistrictType maps the spellings seen in collector output onto the enum.
// Unrecognized values map to DistrictUnknown.
func ParseDistrictType(s string) DistrictType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "single_member", "single", "smd", "小選挙区", "選挙区":
		return DistrictSingleMember
	case "proportional", "pr", "比例", "比例代表", "比例区":
		return DistrictProportional
	default:
		return DistrictUnknown
	}
}

// UnmarshalJSON parses a district type leniently. null decodes to unknown.
func (d *DistrictType) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*d = DistrictUnknown
		return nil
	}
	*d = ParseDistrictType(*s)
	return nil
}
