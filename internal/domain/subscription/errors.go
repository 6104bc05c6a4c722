package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrLimitReached         = errors.New("limit reached")
	ErrSamePlan             = errors.New("already subscribed to this plan")
)
