package cron

import (
	"context"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
)

// BillingJobs keeps subscriptions and monthly dues current.
type BillingJobs struct {
	subscriptionService subscription.SubscriptionService
	paymentService      payment.PaymentService
	now                 func() time.Time
}

func NewBillingJobs(subscriptionService subscription.SubscriptionService, paymentService payment.PaymentService) *BillingJobs {
	return &BillingJobs{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
		now:                 time.Now,
	}
}

func (j *BillingJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "expire_overdue_subscriptions",
		Interval: time.Hour,
		Timeout:  time.Minute,
		Fn:       j.ExpireOverdueSubscriptions,
	})

	// Idempotent, so hourly runs only fill gaps left by new students or groups.
	scheduler.AddJob(Job{
		Name:     "generate_monthly_dues",
		Interval: time.Hour,
		Timeout:  5 * time.Minute,
		Fn:       j.GenerateMonthlyDues,
	})
}

func (j *BillingJobs) ExpireOverdueSubscriptions(ctx context.Context) error {
	_, err := j.subscriptionService.ExpireOverdue(ctx)
	return err
}

func (j *BillingJobs) GenerateMonthlyDues(ctx context.Context) error {
	_, err := j.paymentService.GenerateMonthlyDues(ctx, j.now().UTC())
	return err
}
