package automation

import (
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

// maxExpressionLength bounds condition and action text. The columns are
// unbounded TEXT; the limit keeps request bodies sane.
const maxExpressionLength = 1024

// ValidateRule checks a rule before persistence. Condition and action are
// trimmed in place.
func ValidateRule(r *Rule) error {
	errs := validation.Errors{}
	r.Condition = strings.TrimSpace(r.Condition)
	r.Action = strings.TrimSpace(r.Action)

	errs.PositiveID("home_id", r.HomeID)
	errs.Required("condition", r.Condition, maxExpressionLength)
	errs.Required("action", r.Action, maxExpressionLength)
	return errs.Err()
}
