package dashboard

import (
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
)

// DashboardResponse is the combined response for the center dashboard
type DashboardResponse struct {
	Counts       CountsResponse                     `json:"counts"`
	Attendance   TodayAttendanceResponse            `json:"attendance_today"`
	Unpaid       UnpaidResponse                     `json:"unpaid"`
	Subscription *subscription.SubscriptionResponse `json:"subscription,omitempty"`
}

type CountsResponse struct {
	Students   int `json:"students"`
	Groups     int `json:"groups"`
	Teachers   int `json:"teachers"`
	Assistants int `json:"assistants"`
}

// TodayAttendanceResponse summarizes attendance recorded for today
type TodayAttendanceResponse struct {
	Present     int     `json:"present"`
	Total       int     `json:"total"`
	RatePercent float64 `json:"rate_percent"`
	Date        string  `json:"date"` // Format: "YYYY-MM-DD"
}

type UnpaidResponse struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
