// Package validator decides whether a captured string is plausibly a
// candidate's name. Selectors on the source pages are loose, so captures
// include office names, navigation links, party names and role titles.
package validator

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/agentstation/candimap/pkg/rules"
)

// Reason is the code attached to a rejected name.
type Reason string

// Rejection reasons, in the order they are checked.
const (
	ReasonEmpty       Reason = "empty"
	ReasonLength      Reason = "length"
	ReasonDenylist    Reason = "denylist"
	ReasonDigit       Reason = "contains-digit"
	ReasonPunctuation Reason = "punctuation"
	ReasonLatin       Reason = "latin"
	ReasonShape       Reason = "shape"
	ReasonSuspicious  Reason = "suspicious"
)

const (
	webMarkerHTTP = "http"
	webMarkerWWW  = "www"
)

// Reasons returns every rejection reason in check order.
func Reasons() []Reason {
	return []Reason{
		ReasonEmpty,
		ReasonLength,
		ReasonDenylist,
		ReasonDigit,
		ReasonPunctuation,
		ReasonLatin,
		ReasonShape,
		ReasonSuspicious,
	}
}

// String returns the reason code.
func (r Reason) String() string {
	return string(r)
}

// Verdict is the outcome of validating one name.
type Verdict struct {
	Accepted bool   `json:"accepted" yaml:"accepted"`
	Reason   Reason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"` // The matched denylist entry, character or pattern
}

// Accept returns an accepting verdict.
func Accept() Verdict {
	return Verdict{Accepted: true}
}

// Reject returns a rejecting verdict.
func Reject(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// String renders the verdict for reports.
func (v Verdict) String() string {
	if v.Accepted {
		return "accepted"
	}
	if v.Detail != "" {
		return "rejected(" + v.Reason.String() + ": " + v.Detail + ")"
	}
	return "rejected(" + v.Reason.String() + ")"
}

// Validator applies the name checks of a rule set. It is safe for
// concurrent use.
type Validator struct {
	minLength   int
	maxLength   int
	denylist    []string
	punctuation string
	shapes      []*regexp.Regexp
	suspicious  []*regexp.Regexp
}

// New creates a validator. A nil config uses the defaults.
func New(cfg *rules.Config) *Validator {
	if cfg == nil {
		cfg = rules.Default()
	}
	v := &Validator{
		denylist:    cfg.Denylist(),
		punctuation: cfg.Punctuation(),
		shapes:      cfg.NameShapes(),
		suspicious:  cfg.SuspiciousPatterns(),
	}
	v.minLength, v.maxLength = cfg.NameLength()
	return v
}

// Validate classifies name. Whitespace runs are collapsed first, and the
// length and shape checks ignore whitespace entirely, so validating before
// or after normalization gives the same outcome. The first failing check
// decides the reason.
func (v *Validator) Validate(name string) Verdict {
	text := strings.Join(strings.Fields(name), " ")
	if text == "" {
		return Reject(ReasonEmpty, "")
	}
	compact := strings.Join(strings.Fields(text), "")

	if n := utf8.RuneCountInString(compact); n < v.minLength || n > v.maxLength {
		return Reject(ReasonLength, "")
	}

	for _, term := range v.denylist {
		if strings.Contains(text, term) || strings.Contains(compact, term) {
			return Reject(ReasonDenylist, term)
		}
	}

	for _, r := range text {
		if unicode.IsDigit(r) {
			return Reject(ReasonDigit, string(r))
		}
	}

	if v.punctuation != "" {
		if i := strings.IndexAny(text, v.punctuation); i >= 0 {
			r, _ := utf8.DecodeRuneInString(text[i:])
			return Reject(ReasonPunctuation, string(r))
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, webMarkerHTTP) {
		return Reject(ReasonLatin, webMarkerHTTP)
	}
	if strings.Contains(lower, webMarkerWWW) {
		return Reject(ReasonLatin, webMarkerWWW)
	}
	for _, r := range text {
		if unicode.In(r, unicode.Latin) {
			return Reject(ReasonLatin, string(r))
		}
	}

	if len(v.shapes) > 0 {
		matched := false
		for _, shape := range v.shapes {
			if shape.MatchString(compact) {
				matched = true
				break
			}
		}
		if !matched {
			return Reject(ReasonShape, "")
		}
	}

	for _, pattern := range v.suspicious {
		if pattern.MatchString(text) || pattern.MatchString(compact) {
			return Reject(ReasonSuspicious, pattern.String())
		}
	}

	return Accept()
}

var defaultValidator = sync.OnceValue(func() *Validator { return New(nil) })

// Validate classifies name with the default rules.
func Validate(name string) Verdict {
	return defaultValidator().Validate(name)
}
