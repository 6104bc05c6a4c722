package subscription

import (
	"fmt"

	"github.com/tutora/tutora-backend/internal/domain/plan"
)

const ReasonNoActiveSubscription = "no active subscription"

// LimitResult is the outcome of checking whether a center may add increment
// resources of Kind.
type LimitResult struct {
	Allowed        bool
	Kind           plan.ResourceKind
	Reason         string
	Current        int
	Limit          int
	Increment      int
	Remaining      int
	SuggestedPlans []plan.Plan
}

// Evaluate decides a limit check. sub is nil when the center has no active
// subscription. suggest is called only on denial with the projected need and
// returns the plans that would cover it.
func Evaluate(sub *Subscription, kind plan.ResourceKind, current, increment int, suggest func(need int) []plan.Plan) LimitResult {
	if increment < 1 {
		increment = 1
	}
	result := LimitResult{Kind: kind, Current: current, Increment: increment}

	if sub == nil || sub.Plan == nil {
		result.Reason = ReasonNoActiveSubscription
		result.SuggestedPlans = suggest(current + increment)
		return result
	}

	result.Limit = sub.Plan.Cap(kind)
	if current+increment <= result.Limit {
		result.Allowed = true
		result.Remaining = result.Limit - current - increment
		return result
	}

	result.Reason = fmt.Sprintf("max %ss reached", kind)
	result.SuggestedPlans = suggest(current + increment)
	return result
}

// LimitExceededError is returned by guarded creates whose check was denied.
type LimitExceededError struct {
	Result LimitResult
}

func (e *LimitExceededError) Error() string {
	return e.Result.Reason
}

func (e *LimitExceededError) Unwrap() error {
	if e.Result.Reason == ReasonNoActiveSubscription {
		return ErrNoActiveSubscription
	}
	return ErrLimitReached
}
