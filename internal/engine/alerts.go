// Package engine computes budget aggregates over immutable snapshots
// of a user's ledger, budget table and category registry. Every
// function here is pure: inputs are never mutated and results carry no
// references back into them.
package engine

import "github.com/shopspring/decimal"

// Alert levels reported to callers and carried on alert events.
const (
	LevelNearLimit  = "near_limit"
	LevelOverBudget = "over_budget"
)

// nearLimitThreshold is the spend/limit ratio at which a category is
// flagged as approaching its budget. Fixed policy, no per-category
// overrides.
var nearLimitThreshold = decimal.New(8, -1) // 0.8

// Alert is the threshold classification of spend against a limit.
// At most one of the two flags is set.
type Alert struct {
	OverBudget bool
	NearLimit  bool
}

// Classify maps (spent, limit) to an alert state. A non-positive limit
// means no budget is set and yields no alert regardless of spend.
func Classify(spent, limit decimal.Decimal) Alert {
	if limit.LessThanOrEqual(decimal.Zero) {
		return Alert{}
	}
	if spent.GreaterThan(limit) {
		return Alert{OverBudget: true}
	}
	// spent/limit >= 0.8  <=>  spent >= limit*0.8, no division needed
	if spent.GreaterThanOrEqual(limit.Mul(nearLimitThreshold)) {
		return Alert{NearLimit: true}
	}
	return Alert{}
}

// Level returns the alert level string, or "" when no threshold is
// crossed.
func (a Alert) Level() string {
	switch {
	case a.OverBudget:
		return LevelOverBudget
	case a.NearLimit:
		return LevelNearLimit
	default:
		return ""
	}
}
