package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// CreateMonthlyRequest creates one monthly due. Amount defaults to the
// group's student price.
type CreateMonthlyRequest struct {
	StudentID string           `json:"student_id" validate:"required,uuid"`
	GroupID   string           `json:"group_id" validate:"required,uuid"`
	Month     string           `json:"month" validate:"required,month"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Notes     *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CreateMonthlyRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	if r.Amount != nil && !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: ErrInvalidAmount.Error()})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthDate returns Month parsed; call after Validate.
func (r *CreateMonthlyRequest) MonthDate() time.Time {
	m, _ := validator.IsValidMonth(r.Month)
	return m
}

type PaymentFilter struct {
	StudentID   *string
	GroupID     *string
	PaymentType *group.PaymentType
	IsPaid      *bool
	From        *time.Time
	To          *time.Time
	TeacherID   *string
	Page        int
	Limit       int
}

func (f *PaymentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f PaymentFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

func (f PaymentFilter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return ErrInvalidDateRange
	}
	return nil
}

type PaymentResponse struct {
	ID          string            `json:"id"`
	StudentID   string            `json:"student_id"`
	StudentName string            `json:"student_name,omitempty"`
	GroupID     string            `json:"group_id"`
	GroupName   string            `json:"group_name,omitempty"`
	PaymentType group.PaymentType `json:"payment_type"`
	RelatedDate string            `json:"related_date"`
	Amount      decimal.Decimal   `json:"amount"`
	IsPaid      bool              `json:"is_paid"`
	PaidAt      *string           `json:"paid_at,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		StudentID:   p.StudentID,
		StudentName: p.StudentName,
		GroupID:     p.GroupID,
		GroupName:   p.GroupName,
		PaymentType: p.PaymentType,
		RelatedDate: p.RelatedDate.Format("2006-01-02"),
		Amount:      p.Amount,
		IsPaid:      p.IsPaid,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		t := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &t
	}
	return resp
}

type ListPaymentResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Payments   []PaymentResponse `json:"payments"`
}
