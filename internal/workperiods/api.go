package workperiods

import (
	"context"

	"github.com/odyssey-erp/wpadmin/internal/taas"
)

// API is the subset of the TaaS API the console talks to. *taas.Client
// implements it.
type API interface {
	ListResourceBookings(ctx context.Context, q taas.ResourceBookingQuery) (taas.ResourceBookingPage, error)
	GetWorkPeriod(ctx context.Context, id string) (taas.WorkPeriod, error)
	ListWorkPeriods(ctx context.Context, resourceBookingID string) ([]taas.WorkPeriod, error)
	ListBillingAccounts(ctx context.Context, projectID int64) ([]taas.BillingAccount, error)
	CreatePayment(ctx context.Context, in taas.PaymentCreate) (taas.Payment, error)
	UpdatePayment(ctx context.Context, id string, in taas.PaymentUpdate) (taas.Payment, error)
	CancelPayment(ctx context.Context, id string) (taas.Payment, error)
	UpdatePaymentsBillingAccount(ctx context.Context, in []taas.PaymentBillingAccountUpdate) ([]taas.Payment, error)
	ProcessPayments(ctx context.Context, in []taas.PaymentRequest) ([]taas.PaymentRequestResult, error)
	ProcessPaymentsByQuery(ctx context.Context, q taas.PaymentsQuery) (taas.PaymentsQueryResult, error)
	UpdateWorkingDays(ctx context.Context, id string, daysWorked int) (taas.WorkPeriod, error)
	UpdateResourceBookingBillingAccount(ctx context.Context, id string, billingAccountID int64) (taas.ResourceBooking, error)
}

var _ API = (*taas.Client)(nil)

// apiFields limits the booking listing to what the console shows.
const apiFields = "id,jobId,projectId,userId,memberRate,customerRate,billingAccountId,status," +
	"job.title,workPeriods.id,workPeriods.userHandle,workPeriods.startDate,workPeriods.endDate," +
	"workPeriods.daysWorked,workPeriods.daysPaid,workPeriods.paymentTotal,workPeriods.paymentStatus," +
	"workPeriods.payments"

// pageRequest builds the booking listing request for the current filters,
// sorting and pagination.
func pageRequest(s *State) taas.ResourceBookingQuery {
	statuses := s.Filters.SelectedPaymentStatuses()
	apiStatuses := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if v := status.APIValue(); v != "" {
			apiStatuses = append(apiStatuses, v)
		}
	}
	q := taas.ResourceBookingQuery{
		Fields:          apiFields,
		Page:            s.Pagination.PageNumber,
		PerPage:         s.Pagination.PageSize,
		SortBy:          s.Sorting.Criteria.APIValue(),
		SortOrder:       string(s.Sorting.Order),
		Status:          taas.ResourceBookingStatusPlaced,
		UserHandle:      s.Filters.UserHandle,
		StartDate:       s.Filters.DateRange.Start.Format(DateFormatAPI),
		PaymentStatuses: apiStatuses,
	}
	if s.Filters.OnlyFailedPayments {
		q.PaymentsStatus = taas.ChallengePaymentStatusFailed
	}
	return q
}

// paymentsQuery scopes bulk processing by the current filters.
func paymentsQuery(s *State) taas.PaymentsQuery {
	req := pageRequest(s)
	return taas.PaymentsQuery{
		Status:          req.Status,
		UserHandle:      req.UserHandle,
		StartDate:       req.StartDate,
		PaymentStatuses: req.PaymentStatuses,
	}
}
