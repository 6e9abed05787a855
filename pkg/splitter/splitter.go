// Package splitter separates a display name from its katakana reading when
// the two were captured as one string with no delimiter, as in
// "板津ゆかイタヅユカ". Script class boundaries are the only signal, so the
// rules are an ordered list of matchers and the first that applies wins.
package splitter

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule tags the matcher that produced a split.
type Rule string

// Rules, in the order they are tried.
const (
	RuleIdeographHiraganaKatakana Rule = "ideograph-hiragana-katakana"
	RuleNameKatakana              Rule = "name-katakana"
	RuleBoundaryScan              Rule = "boundary-scan"
	RuleSeparator                 Rule = "separator"
	RulePartition                 Rule = "partition"
	RuleNone                      Rule = "none"
)

// String returns the rule tag.
func (r Rule) String() string {
	return string(r)
}

// Result is a split name.
type Result struct {
	Name    string `json:"name" yaml:"name"`
	Reading string `json:"reading" yaml:"reading"`
	Rule    Rule   `json:"rule" yaml:"rule"`
}

// Split reports whether a reading was separated out.
func (r Result) Split() bool {
	return r.Rule != RuleNone
}

// Matcher is one splitting rule. Apply reports ok=false when the rule does
// not fit the input; it never fails otherwise.
type Matcher struct {
	Rule  Rule
	Apply func(s string) (name, reading string, ok bool)
}

var (
	ideographHiraganaKatakana = regexp.MustCompile(`^([\p{Han}々〆ヶ]+\p{Hiragana}+)([\p{Katakana}ー]+)$`)
	nameKatakana              = regexp.MustCompile(`^([\p{Han}々〆ヶ]+\p{Hiragana}*)([\p{Katakana}ー]+)$`)
)

// Matchers returns the splitting rules in priority order.
func Matchers() []Matcher {
	return []Matcher{
		{Rule: RuleIdeographHiraganaKatakana, Apply: regexpMatcher(ideographHiraganaKatakana)},
		{Rule: RuleNameKatakana, Apply: regexpMatcher(nameKatakana)},
		{Rule: RuleBoundaryScan, Apply: boundaryScan},
		{Rule: RuleSeparator, Apply: separator},
		{Rule: RulePartition, Apply: partition},
	}
}

var matchers = Matchers()

// Match splits raw with the first rule that applies. When none does the
// result is raw unchanged with an empty reading and RuleNone.
func Match(raw string) Result {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, m := range matchers {
			if name, reading, ok := m.Apply(s); ok {
				return Result{Name: name, Reading: reading, Rule: m.Rule}
			}
		}
	}
	return Result{Name: raw, Rule: RuleNone}
}

// Split returns the display name and reading of raw. It never fails:
// Split("") is ("", "").
func Split(raw string) (name, reading string) {
	r := Match(raw)
	return r.Name, r.Reading
}

// NeedsSplit reports whether s mixes katakana with ideographs or hiragana,
// the signature of a name captured together with its reading.
func NeedsSplit(s string) bool {
	var hasName, hasReading bool
	for _, r := range s {
		switch {
		case isNameRune(r):
			hasName = true
		case isReadingRune(r):
			hasReading = true
		}
	}
	return hasName && hasReading
}

func regexpMatcher(re *regexp.Regexp) func(string) (string, string, bool) {
	return func(s string) (string, string, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return "", "", false
		}
		return m[1], m[2], true
	}
}

// boundaryScan takes the leading run of ideographs and hiragana in any order
// as the name and requires the rest to be katakana.
func boundaryScan(s string) (string, string, bool) {
	cut := strings.IndexFunc(s, func(r rune) bool { return !isNameRune(r) })
	if cut <= 0 {
		return "", "", false
	}
	name, reading := s[:cut], s[cut:]
	if !isAll(reading, isReadingRune) {
		return "", "", false
	}
	return name, reading, true
}

// separator splits on a single run of half- or full-width spaces when the
// second part is katakana.
func separator(s string) (string, string, bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 || !isAll(parts[1], isReadingRune) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// partition buckets every rune by script. Whitespace after a name rune is
// kept as a name separator; every other rune of neither class is dropped.
func partition(s string) (string, string, bool) {
	var name, reading strings.Builder
	inName := false
	for _, r := range s {
		switch {
		case isNameRune(r):
			name.WriteRune(r)
			inName = true
		case isReadingRune(r):
			reading.WriteRune(r)
			inName = false
		case unicode.IsSpace(r) && inName:
			name.WriteRune(' ')
		default:
			inName = false
		}
	}
	n := strings.Join(strings.Fields(name.String()), " ")
	k := strings.Join(strings.Fields(reading.String()), "")
	if !strings.ContainsFunc(n, isNameRune) || k == "" {
		return "", "", false
	}
	return n, k, true
}

func isNameRune(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		r == '々' || r == '〆' || r == 'ヶ'
}

func isReadingRune(r rune) bool {
	return (unicode.Is(unicode.Katakana, r) && r != 'ヶ') || r == 'ー'
}

func isAll(s string, class func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !class(r) {
			return false
		}
	}
	return true
}
