package automation

import "errors"

// ErrRuleNotFound is returned when a rule ID does not exist.
var ErrRuleNotFound = errors.New("rule not found")
