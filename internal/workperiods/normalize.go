package workperiods

import (
	"time"

	"github.com/odyssey-erp/wpadmin/internal/taas"
)

// normalizeBookings turns a resource booking page into page rows. The API
// filters work periods by start date, so each booking carries at most one.
func normalizeBookings(bookings []taas.ResourceBooking) []PeriodWithData {
	out := make([]PeriodWithData, 0, len(bookings))
	for _, rb := range bookings {
		if len(rb.WorkPeriods) == 0 {
			continue
		}
		wp := rb.WorkPeriods[0]
		out = append(out, PeriodWithData{
			WorkPeriod: bookingPeriod(rb, wp),
			Data:       normalizePeriodData(wp),
		})
	}
	return out
}

func bookingPeriod(rb taas.ResourceBooking, wp taas.WorkPeriod) WorkPeriod {
	period := WorkPeriod{
		ID:                wp.ID,
		ResourceBookingID: rb.ID,
		JobID:             rb.JobID,
		ProjectID:         rb.ProjectID,
		UserHandle:        wp.UserHandle,
		StartDate:         parseAPIDate(wp.StartDate),
		EndDate:           parseAPIDate(wp.EndDate),
		WeeklyRate:        rb.MemberRate,
	}
	if rb.Job != nil {
		period.JobTitle = rb.Job.Title
	}
	if rb.BillingAccountID != nil {
		period.BillingAccountID = *rb.BillingAccountID
	}
	return period
}

// normalizeDetailsPeriods turns the work periods of one booking into
// sub-periods sharing the booking attributes of owner.
func normalizeDetailsPeriods(owner WorkPeriod, periods []taas.WorkPeriod) []PeriodWithData {
	out := make([]PeriodWithData, 0, len(periods))
	for _, wp := range periods {
		period := owner
		period.ID = wp.ID
		period.StartDate = parseAPIDate(wp.StartDate)
		period.EndDate = parseAPIDate(wp.EndDate)
		if wp.UserHandle != "" {
			period.UserHandle = wp.UserHandle
		}
		out = append(out, PeriodWithData{WorkPeriod: period, Data: normalizePeriodData(wp)})
	}
	return out
}

func normalizePeriodData(wp taas.WorkPeriod) PeriodData {
	status, ok := ParsePaymentStatus(wp.PaymentStatus)
	if !ok {
		status = PaymentStatusUndefined
	}
	payments := make([]Payment, 0, len(wp.Payments))
	for _, p := range wp.Payments {
		payments = append(payments, normalizePayment(p))
	}
	return PeriodData{
		DaysWorked:    wp.DaysWorked,
		DaysPaid:      wp.DaysPaid,
		PaymentStatus: status,
		PaymentTotal:  wp.PaymentTotal,
		Payments:      payments,
	}
}

func normalizePayment(p taas.Payment) Payment {
	return Payment{
		ID:               p.ID,
		WorkPeriodID:     p.WorkPeriodID,
		Amount:           p.Amount,
		Days:             p.Days,
		MemberRate:       p.MemberRate,
		Status:           ChallengePaymentStatus(p.Status),
		BillingAccountID: p.BillingAccountID,
		CreatedAt:        p.CreatedAt,
	}
}

func normalizeBillingAccounts(accounts []taas.BillingAccount) []BillingAccountOption {
	out := make([]BillingAccountOption, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, BillingAccountOption{
			Value: a.TCBillingAccountID,
			Label: a.Name + " (" + formatInt(a.TCBillingAccountID) + ")",
		})
	}
	return out
}

// parseAPIDate returns the zero time for malformed dates.
func parseAPIDate(value string) time.Time {
	if len(value) > len(DateFormatAPI) {
		value = value[:len(DateFormatAPI)]
	}
	t, err := time.Parse(DateFormatAPI, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
