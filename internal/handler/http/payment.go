package http

import (
	"net/http"

	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/handler/http/middleware"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

type PaymentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	CreateMonthly(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	MarkUnpaid(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService payment.PaymentService
}

func NewPaymentHandler(paymentService payment.PaymentService) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

// GET /api/v1/payments?student_id=&group_id=&payment_type=&is_paid=&from=&to=&page=&limit=
func (h *paymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter payment.PaymentFilter
	var ok bool
	if filter.StudentID, ok = queryUUID(w, r, "student_id"); !ok {
		return
	}
	if filter.GroupID, ok = queryUUID(w, r, "group_id"); !ok {
		return
	}
	if pt := queryString(r, "payment_type"); pt != nil {
		t := group.PaymentType(*pt)
		if !t.IsValid() {
			response.BadRequest(w, "Invalid query parameters", map[string]string{"payment_type": "must be monthly or per_session"})
			return
		}
		filter.PaymentType = &t
	}
	if filter.IsPaid, ok = queryBool(w, r, "is_paid"); !ok {
		return
	}
	if filter.From, ok = queryDate(w, r, "from"); !ok {
		return
	}
	if filter.To, ok = queryDate(w, r, "to"); !ok {
		return
	}
	if filter.Page, filter.Limit, ok = paging(w, r); !ok {
		return
	}

	resp, err := h.paymentService.List(r.Context(), middleware.Scope(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, resp.Payments, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

func (h *paymentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.paymentService.GetByID(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, p)
}

// POST /api/v1/payments/monthly
func (h *paymentHandlerImpl) CreateMonthly(w http.ResponseWriter, r *http.Request) {
	var req payment.CreateMonthlyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.paymentService.CreateMonthly(r.Context(), middleware.Scope(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payment created successfully", p)
}

// POST /api/v1/payments/{id}/pay
func (h *paymentHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.paymentService.MarkPaid(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payment marked as paid", p)
}

// POST /api/v1/payments/{id}/unpay
func (h *paymentHandlerImpl) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.paymentService.MarkUnpaid(r.Context(), middleware.Scope(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payment marked as unpaid", p)
}

func (h *paymentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.paymentService.Delete(r.Context(), middleware.Scope(r), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payment deleted successfully", nil)
}
