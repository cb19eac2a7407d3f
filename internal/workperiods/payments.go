package workperiods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/wpadmin/internal/taas"
)

const msgPeriodNotReloaded = " but working period data was not reloaded.\n"

// findPeriod looks a period up among page rows and opened details.
func findPeriod(state *State, periodID string) (WorkPeriod, bool) {
	if period, ok := state.Period(periodID); ok {
		return period, true
	}
	for _, details := range state.PeriodsDetails {
		for _, period := range details.Periods {
			if period.ID == periodID {
				return period, true
			}
		}
	}
	return WorkPeriod{}, false
}

func findPayment(data PeriodData, paymentID string) (Payment, bool) {
	for _, p := range data.Payments {
		if p.ID == paymentID {
			return p, true
		}
	}
	return Payment{}, false
}

// AddPayment schedules a payment for days of a period at its weekly rate,
// then reloads the period after the settle delay.
func (s *Service) AddPayment(ctx context.Context, periodID string, days int) (bool, error) {
	state := s.store.State()
	period, ok := findPeriod(state, periodID)
	data, hasData := state.PeriodsData[periodID]
	if !ok || !hasData {
		return false, ErrUnknownPeriod
	}
	if days < 1 || days > data.DaysWorked-data.DaysPaid {
		return false, ErrInvalidDays
	}
	amount := PaymentAmount(days, period.WeeklyRate)
	return s.createPayment(ctx, "add_payment", taas.PaymentCreate{WorkPeriodID: periodID, Days: days, Amount: amount}), nil
}

// ProcessAdditionalPayment schedules a payment of amount not tied to days.
func (s *Service) ProcessAdditionalPayment(ctx context.Context, periodID string, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() || !amount.LessThan(MaxAdditionalPaymentAmount) {
		return false, ErrInvalidAmount
	}
	return s.createPayment(ctx, "additional_payment", taas.PaymentCreate{WorkPeriodID: periodID, Days: 0, Amount: amount.Round(2)}), nil
}

func (s *Service) createPayment(ctx context.Context, workflow string, in taas.PaymentCreate) bool {
	payment, err := s.api.CreatePayment(ctx, in)
	if err == nil && payment.Error != nil {
		err = errors.New(payment.Error.Message)
	}
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe(workflow, OutcomeError)
		return false
	}

	const msg = "Additional payment scheduled for resource"
	if _, errMsg := s.LoadPeriodData(ctx, in.WorkPeriodID, s.settleDelay); errMsg != "" {
		s.notify(ctx, SeverityWarning, msg+msgPeriodNotReloaded+errMsg)
		s.observe(workflow, OutcomePartial)
		return true
	}
	s.notify(ctx, SeveritySuccess, msg)
	s.observe(workflow, OutcomeSuccess)
	return true
}

// UpdatePayment changes the number of days of a payment. The amount follows
// from the payment's member rate.
func (s *Service) UpdatePayment(ctx context.Context, periodID, paymentID string, days int) (bool, error) {
	data, ok := s.store.State().PeriodsData[periodID]
	if !ok {
		return false, ErrUnknownPeriod
	}
	payment, ok := findPayment(data, paymentID)
	if !ok {
		return false, ErrUnknownPayment
	}
	if days < 1 || days > MaxPaymentDays(data, payment) {
		return false, ErrInvalidDays
	}
	amount := PaymentAmount(days, payment.MemberRate)

	updated, err := s.api.UpdatePayment(ctx, paymentID, taas.PaymentUpdate{Amount: &amount, Days: &days})
	if err == nil && updated.Error != nil {
		err = errors.New(updated.Error.Message)
	}
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe("update_payment", OutcomeError)
		return false, nil
	}
	s.store.Dispatch(SetPaymentData{Payment: normalizePayment(updated)})

	const msg = "Payment was successfully updated"
	if _, errMsg := s.LoadPeriodData(ctx, periodID, s.settleDelay); errMsg != "" {
		s.notify(ctx, SeverityWarning, msg+msgPeriodNotReloaded+errMsg)
		s.observe("update_payment", OutcomePartial)
		return true, nil
	}
	s.notify(ctx, SeveritySuccess, msg)
	s.observe("update_payment", OutcomeSuccess)
	return true, nil
}

// CancelPayment marks a payment as cancelled and reloads its period.
func (s *Service) CancelPayment(ctx context.Context, periodID, paymentID string) bool {
	cancelled, err := s.api.CancelPayment(ctx, paymentID)
	if err == nil && cancelled.Error != nil {
		err = errors.New(cancelled.Error.Message)
	}
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe("cancel_payment", OutcomeError)
		return false
	}
	payment := normalizePayment(cancelled)
	s.store.Dispatch(SetPaymentData{Payment: payment})

	loaded, errMsg := s.LoadPeriodData(ctx, periodID, s.settleDelay)
	switch {
	case errMsg != "":
		s.notify(ctx, SeverityWarning, fmt.Sprintf("Payment %s was marked as \"cancelled\"%s%s",
			FormatCurrency(payment.Amount), msgPeriodNotReloaded, errMsg))
		s.observe("cancel_payment", OutcomePartial)
	case loaded != nil:
		amount := payment.Amount
		if p, ok := findPayment(loaded.Data, paymentID); ok {
			amount = p.Amount
		}
		s.notify(ctx, SeveritySuccess, fmt.Sprintf("Payment %s for %s was marked as \"cancelled\"",
			FormatCurrency(amount), loaded.UserHandle))
		s.observe("cancel_payment", OutcomeSuccess)
	default:
		s.observe("cancel_payment", OutcomeCanceled)
	}
	return true
}

// ProcessPayments schedules payments for the selection. When every period
// matching the filters is selected and they span several pages the API
// processes them by query; otherwise the selected ids are sent and failed
// ones are highlighted. Calls made while processing is running are ignored.
func (s *Service) ProcessPayments(ctx context.Context) {
	prev, state := s.store.Dispatch(SetProcessingPayments{On: true})
	if prev.IsProcessingPayments {
		s.observe("process_payments", OutcomeNoop)
		return
	}
	defer s.store.Dispatch(SetProcessingPayments{On: false})

	if state.IsSelectedAll && state.Pagination.TotalCount > state.Pagination.PageSize {
		s.processPaymentsAll(ctx, state)
		return
	}
	s.processPaymentsSelected(ctx, state)
}

func (s *Service) processPaymentsAll(ctx context.Context, state *State) {
	s.logger.InfoContext(ctx, "processing payments by query", slog.Int("count", state.Pagination.TotalCount))
	result, err := s.api.ProcessPaymentsByQuery(ctx, paymentsQuery(state))
	off := false
	s.store.Dispatch(ToggleAll{On: &off})
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe("process_payments", OutcomeError)
		return
	}
	s.reportPayments(ctx, result.TotalSuccess, result.TotalError)
}

func (s *Service) processPaymentsSelected(ctx context.Context, state *State) {
	ids := state.SelectedIDs()
	if len(ids) == 0 {
		s.observe("process_payments", OutcomeNoop)
		return
	}
	s.logger.InfoContext(ctx, "processing payments", slog.Int("count", len(ids)))
	requests := make([]taas.PaymentRequest, len(ids))
	for i, id := range ids {
		requests[i] = taas.PaymentRequest{WorkPeriodID: id}
	}
	results, err := s.api.ProcessPayments(ctx, requests)
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe("process_payments", OutcomeError)
		return
	}

	highlight := make(map[string]bool, len(results))
	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			highlight[r.WorkPeriodID] = true
			failed++
			continue
		}
		highlight[r.WorkPeriodID] = false
		succeeded++
	}
	s.store.Dispatch(HighlightFailedPeriods{Periods: highlight})
	s.reportPayments(ctx, succeeded, failed)
}

func (s *Service) reportPayments(ctx context.Context, succeeded, failed int) {
	switch {
	case succeeded > 0 && failed > 0:
		s.notify(ctx, SeverityWarning, fmt.Sprintf("Payments processed: %d succeeded, %d failed", succeeded, failed))
		s.observe("process_payments", OutcomePartial)
	case succeeded > 0:
		s.notify(ctx, SeveritySuccess, "Payment scheduled for "+FormatPlural(succeeded, "resource"))
		s.observe("process_payments", OutcomeSuccess)
	default:
		s.notify(ctx, SeverityError, "Failed to schedule payment for "+FormatPlural(failed, "resource"))
		s.observe("process_payments", OutcomeError)
	}
}

// UpdatePaymentsBillingAccount moves every payment of a period to
// billingAccountID. Only payments on another account are sent; those the API
// updated are kept locally even when others failed.
func (s *Service) UpdatePaymentsBillingAccount(ctx context.Context, periodID string, billingAccountID int64) bool {
	data, ok := s.store.State().PeriodsData[periodID]
	if !ok {
		return true
	}
	var changes []taas.PaymentBillingAccountUpdate
	for _, p := range data.Payments {
		if p.BillingAccountID != billingAccountID {
			changes = append(changes, taas.PaymentBillingAccountUpdate{ID: p.ID, BillingAccountID: billingAccountID})
		}
	}
	if len(changes) == 0 {
		s.notify(ctx, SeveritySuccess, "All payments have desired billing account. Nothing to update.")
		s.observe("update_payments_billing_account", OutcomeNoop)
		return true
	}

	results, err := s.api.UpdatePaymentsBillingAccount(ctx, changes)
	if err != nil {
		s.notify(ctx, SeverityError, err.Error())
		s.observe("update_payments_billing_account", OutcomeError)
		return false
	}

	updated := make(map[string]bool, len(results))
	notUpdated := 0
	for _, r := range results {
		if r.Error != nil || r.BillingAccountID != billingAccountID {
			notUpdated++
			continue
		}
		updated[r.ID] = true
	}

	if len(updated) > 0 {
		if data, ok := s.store.State().PeriodsData[periodID]; ok {
			payments := make([]Payment, len(data.Payments))
			for i, p := range data.Payments {
				// Only the account is taken over; other fields stay in line
				// with the period aggregates until the next reload.
				if updated[p.ID] {
					p.BillingAccountID = billingAccountID
				}
				payments[i] = p
			}
			s.store.Dispatch(SetPayments{PeriodID: periodID, Payments: payments})
		}
	}
	if notUpdated > 0 || len(updated) < len(changes) {
		s.notify(ctx, SeverityError, "Could not update billing account for some payments.")
		s.observe("update_payments_billing_account", OutcomePartial)
		return false
	}
	s.notify(ctx, SeveritySuccess, "Billing account was successfully updated for all the payments.")
	s.observe("update_payments_billing_account", OutcomeSuccess)
	return true
}

// UpdateResourceBookingBillingAccount assigns a billing account to the
// booking of a period, locally first and then remotely.
func (s *Service) UpdateResourceBookingBillingAccount(ctx context.Context, periodID string, billingAccountID int64) error {
	state := s.store.State()
	rbID := ""
	if details, ok := state.PeriodsDetails[periodID]; ok {
		rbID = details.ResourceBookingID
	} else if period, ok := state.Period(periodID); ok {
		rbID = period.ResourceBookingID
	}
	if rbID == "" {
		return ErrUnknownPeriod
	}
	s.store.Dispatch(SetBillingAccount{PeriodID: periodID, AccountID: billingAccountID})

	if _, err := s.api.UpdateResourceBookingBillingAccount(ctx, rbID, billingAccountID); err != nil {
		s.notify(ctx, SeverityError, fmt.Sprintf("Failed to update billing account for resource booking %s.\n%s", rbID, err))
		s.observe("update_booking_billing_account", OutcomeError)
		return nil
	}
	s.observe("update_booking_billing_account", OutcomeSuccess)
	return nil
}
