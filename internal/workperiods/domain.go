package workperiods

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxWorkingDays is the number of billable days in one work week.
// TODO: confirm with product whether this should follow a configurable work-week length.
const MaxWorkingDays = 5

// MaxUserHandleLength bounds the user handle filter.
const MaxUserHandleLength = 256

// MaxAdditionalPaymentAmount is the exclusive upper bound for ad-hoc payments.
var MaxAdditionalPaymentAmount = decimal.NewFromInt(100000)

// PageSizes lists the allowed page sizes.
var PageSizes = []int{10, 20, 50, 100}

// DefaultPageSize is used when no preference is stored.
const DefaultPageSize = 10

// IsValidPageSize reports whether size is in PageSizes.
func IsValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// PaymentStatus enumerates aggregated work period payment statuses.
type PaymentStatus string

const (
	PaymentStatusCancelled          PaymentStatus = "CANCELLED"
	PaymentStatusCompleted          PaymentStatus = "COMPLETED"
	PaymentStatusFailed             PaymentStatus = "FAILED"
	PaymentStatusInProgress         PaymentStatus = "IN_PROGRESS"
	PaymentStatusNoDays             PaymentStatus = "NO_DAYS"
	PaymentStatusPartiallyCompleted PaymentStatus = "PARTIALLY_COMPLETED"
	PaymentStatusPending            PaymentStatus = "PENDING"
	PaymentStatusScheduled          PaymentStatus = "SCHEDULED"
	PaymentStatusUndefined          PaymentStatus = "UNDEFINED"
)

// paymentStatusAPI maps statuses to the values used by the TaaS API.
var paymentStatusAPI = map[PaymentStatus]string{
	PaymentStatusCancelled:          "cancelled",
	PaymentStatusCompleted:          "completed",
	PaymentStatusFailed:             "failed",
	PaymentStatusInProgress:         "in-progress",
	PaymentStatusNoDays:             "no-days",
	PaymentStatusPartiallyCompleted: "partially-completed",
	PaymentStatusPending:            "pending",
	PaymentStatusScheduled:          "scheduled",
}

// ParsePaymentStatus accepts either the enum name (any case) or the API value.
func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	upper := PaymentStatus(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := paymentStatusAPI[upper]; ok {
		return upper, true
	}
	lower := strings.ToLower(strings.TrimSpace(value))
	for status, api := range paymentStatusAPI {
		if api == lower {
			return status, true
		}
	}
	return PaymentStatusUndefined, false
}

// APIValue returns the TaaS API representation of the status.
func (s PaymentStatus) APIValue() string {
	return paymentStatusAPI[s]
}

// ChallengePaymentStatus is the status of a single payment transaction.
type ChallengePaymentStatus string

const (
	ChallengePaymentScheduled  ChallengePaymentStatus = "scheduled"
	ChallengePaymentInProgress ChallengePaymentStatus = "in-progress"
	ChallengePaymentCompleted  ChallengePaymentStatus = "completed"
	ChallengePaymentFailed     ChallengePaymentStatus = "failed"
	ChallengePaymentCancelled  ChallengePaymentStatus = "cancelled"
)

// IsActive reports whether the payment still counts towards days paid.
func (s ChallengePaymentStatus) IsActive() bool {
	switch s {
	case ChallengePaymentScheduled, ChallengePaymentInProgress, ChallengePaymentCompleted:
		return true
	}
	return false
}

// SortBy enumerates sortable columns.
type SortBy string

const (
	SortByUserHandle     SortBy = "USER_HANDLE"
	SortByJobName        SortBy = "JOB_NAME"
	SortByStartDate      SortBy = "START_DATE"
	SortByEndDate        SortBy = "END_DATE"
	SortByWeeklyRate     SortBy = "WEEKLY_RATE"
	SortByPaymentStatus  SortBy = "PAYMENT_STATUS"
	SortByPaymentTotal   SortBy = "PAYMENT_TOTAL"
	SortByWorkingDays    SortBy = "WORKING_DAYS"
	SortByBillingAccount SortBy = "BILLING_ACCOUNT"
)

// DefaultSortBy is used when no valid criteria is given.
const DefaultSortBy = SortByUserHandle

var sortByAPI = map[SortBy]string{
	SortByUserHandle:     "workPeriods.userHandle",
	SortByJobName:        "workPeriods.jobName",
	SortByStartDate:      "startDate",
	SortByEndDate:        "endDate",
	SortByWeeklyRate:     "memberRate",
	SortByPaymentStatus:  "workPeriods.paymentStatus",
	SortByPaymentTotal:   "workPeriods.paymentTotal",
	SortByWorkingDays:    "workPeriods.daysWorked",
	SortByBillingAccount: "billingAccountId",
}

// ParseSortBy is case-insensitive.
func ParseSortBy(value string) (SortBy, bool) {
	criteria := SortBy(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := sortByAPI[criteria]
	return criteria, ok
}

// APIValue returns the sortBy parameter understood by the TaaS API.
func (s SortBy) APIValue() string {
	if v, ok := sortByAPI[s]; ok {
		return v
	}
	return sortByAPI[DefaultSortBy]
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// DefaultSortOrder is used when no valid order is given.
const DefaultSortOrder = SortOrderAsc

// ParseSortOrder is case-insensitive.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case SortOrderAsc:
		return SortOrderAsc, true
	case SortOrderDesc:
		return SortOrderDesc, true
	}
	return DefaultSortOrder, false
}

// WorkPeriod holds the static attributes of one weekly billing period row.
type WorkPeriod struct {
	ID                string          `json:"id"`
	ResourceBookingID string          `json:"resourceBookingId"`
	JobID             string          `json:"jobId"`
	JobTitle          string          `json:"jobTitle,omitempty"`
	ProjectID         int64           `json:"projectId"`
	UserHandle        string          `json:"userHandle"`
	BillingAccountID  int64           `json:"billingAccountId"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	WeeklyRate        decimal.Decimal `json:"weeklyRate"`
}

// PeriodData holds the mutable part of a work period.
type PeriodData struct {
	DaysWorked          int             `json:"daysWorked"`
	DaysPaid            int             `json:"daysPaid"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	PaymentTotal        decimal.Decimal `json:"paymentTotal"`
	Payments            []Payment       `json:"payments"`
	DaysWorkedIsUpdated bool            `json:"daysWorkedIsUpdated"`
	Cancel              *CancelHandle   `json:"-"`
}

// Payment is one payment transaction against a work period.
type Payment struct {
	ID               string                 `json:"id"`
	WorkPeriodID     string                 `json:"workPeriodId"`
	Amount           decimal.Decimal        `json:"amount"`
	Days             int                    `json:"days"`
	MemberRate       decimal.Decimal        `json:"memberRate"`
	Status           ChallengePaymentStatus `json:"status"`
	BillingAccountID int64                  `json:"billingAccountId"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// PaymentAmount computes round(days * memberRate / 5, 2).
func PaymentAmount(days int, memberRate decimal.Decimal) decimal.Decimal {
	return memberRate.Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(MaxWorkingDays)).
		Round(2)
}

// MaxPaymentDays returns how many days an existing payment may be edited to.
func MaxPaymentDays(data PeriodData, payment Payment) int {
	max := data.DaysWorked - data.DaysPaid
	if payment.Status.IsActive() {
		max += payment.Days
	}
	return max
}

// PeriodWithData joins a work period row with its payment data.
type PeriodWithData struct {
	WorkPeriod
	Data PeriodData
}

// BillingAccountOption is a selectable billing account for a project.
type BillingAccountOption struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

const (
	billingAccountsNoneLabel    = "No Accounts Available"
	billingAccountsLoadingLabel = "Loading..."
	billingAccountsErrorLabel   = "Error loading accounts"
)

func assignedBillingAccountOption(id int64) BillingAccountOption {
	return BillingAccountOption{Value: id, Label: "<Assigned Account> (" + formatInt(id) + ")"}
}
