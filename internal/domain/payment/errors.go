package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentExists    = errors.New("a payment for this period already exists")
	ErrNotMonthlyGroup  = errors.New("group is not billed monthly")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrAlreadyPaid      = errors.New("payment is already paid")
	ErrNotPaid          = errors.New("payment is not paid")
	ErrInvalidDateRange = errors.New("from must not be after to")
)
