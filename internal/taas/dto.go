package taas

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceBookingStatusPlaced is the only booking status listed by the console.
const ResourceBookingStatusPlaced = "placed"

// ChallengePaymentStatusFailed filters bookings having failed payments.
const ChallengePaymentStatusFailed = "failed"

// ResourceBooking is a staffing record with its work periods.
type ResourceBooking struct {
	ID               string          `json:"id"`
	ProjectID        int64           `json:"projectId"`
	JobID            string          `json:"jobId"`
	UserID           string          `json:"userId"`
	MemberRate       decimal.Decimal `json:"memberRate"`
	CustomerRate     decimal.Decimal `json:"customerRate"`
	BillingAccountID *int64          `json:"billingAccountId"`
	Status           string          `json:"status"`
	Job              *Job            `json:"job,omitempty"`
	WorkPeriods      []WorkPeriod    `json:"workPeriods"`
}

// Job is the job a booking staffs.
type Job struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WorkPeriod is one weekly billing period as returned by the API.
type WorkPeriod struct {
	ID                string          `json:"id"`
	ResourceBookingID string          `json:"resourceBookingId"`
	ProjectID         int64           `json:"projectId"`
	UserHandle        string          `json:"userHandle"`
	StartDate         string          `json:"startDate"`
	EndDate           string          `json:"endDate"`
	DaysWorked        int             `json:"daysWorked"`
	DaysPaid          int             `json:"daysPaid"`
	PaymentTotal      decimal.Decimal `json:"paymentTotal"`
	PaymentStatus     string          `json:"paymentStatus"`
	Payments          []Payment       `json:"payments"`
}

// Payment is a work period payment.
type Payment struct {
	ID               string          `json:"id"`
	WorkPeriodID     string          `json:"workPeriodId"`
	Amount           decimal.Decimal `json:"amount"`
	Days             int             `json:"days"`
	MemberRate       decimal.Decimal `json:"memberRate"`
	Status           string          `json:"status"`
	BillingAccountID int64           `json:"billingAccountId"`
	CreatedAt        time.Time       `json:"createdAt"`
	Error            *ItemError      `json:"error,omitempty"`
}

// ItemError is a per-item failure inside a bulk response.
type ItemError struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// BillingAccount is a project's billing account.
type BillingAccount struct {
	TCBillingAccountID int64  `json:"tcBillingAccountId"`
	Name               string `json:"name"`
}

// Pagination is read from the X-Total, X-Total-Pages, X-Page and X-Per-Page headers.
type Pagination struct {
	TotalCount int
	PageCount  int
	PageNumber int
	PageSize   int
}

// ResourceBookingPage is one page of bookings.
type ResourceBookingPage struct {
	Items      []ResourceBooking
	Pagination Pagination
}

// ResourceBookingQuery filters the resource booking listing.
type ResourceBookingQuery struct {
	Fields          string
	Page            int
	PerPage         int
	SortBy          string
	SortOrder       string
	Status          string
	UserHandle      string
	StartDate       string
	PaymentStatuses []string
	PaymentsStatus  string
}

// PaymentCreate schedules a new payment.
type PaymentCreate struct {
	WorkPeriodID string          `json:"workPeriodId"`
	Days         int             `json:"days"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentUpdate edits an existing payment. Nil fields are left untouched.
type PaymentUpdate struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Days   *int             `json:"days,omitempty"`
	Status string           `json:"status,omitempty"`
}

// PaymentBillingAccountUpdate moves one payment to another billing account.
type PaymentBillingAccountUpdate struct {
	ID               string `json:"id"`
	BillingAccountID int64  `json:"billingAccountId"`
}

// PaymentRequest asks the API to pay for one work period.
type PaymentRequest struct {
	WorkPeriodID string `json:"workPeriodId"`
}

// PaymentRequestResult is the outcome for one PaymentRequest.
type PaymentRequestResult struct {
	WorkPeriodID string     `json:"workPeriodId"`
	Error        *ItemError `json:"error,omitempty"`
}

// PaymentsQuery scopes payment processing by filters instead of ids.
type PaymentsQuery struct {
	Status          string
	UserHandle      string
	StartDate       string
	PaymentStatuses []string
}

// PaymentsQueryResult reports aggregate processing counts.
type PaymentsQueryResult struct {
	TotalSuccess int `json:"totalSuccess"`
	TotalError   int `json:"totalError"`
}
