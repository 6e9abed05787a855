package reconciler

import (
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/validator"
)

// ValidateName classifies one name with the reconciler's rules. Collectors
// use it to filter at capture time with the same checks the pipeline applies.
func (r *Reconciler) ValidateName(name string) validator.Verdict {
	return r.validator.Validate(name)
}

// ValidateName classifies one name. A nil config uses the defaults.
func ValidateName(name string, cfg *rules.Config) validator.Verdict {
	if cfg == nil {
		return validator.Validate(name)
	}
	return validator.New(cfg).Validate(name)
}
