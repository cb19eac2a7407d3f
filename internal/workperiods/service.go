package workperiods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultSettleDelay is the wait before reloading a period after a payment
// mutation so that the API can recompute aggregated fields.
const DefaultSettleDelay = 3 * time.Second

// Workflow outcomes reported to the WorkflowRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomePartial  = "partial"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeStale    = "stale"
	OutcomeNoop     = "noop"
)

// Input validation errors returned before any remote call is made.
var (
	ErrUnknownPeriod  = errors.New("workperiods: unknown work period")
	ErrUnknownPayment = errors.New("workperiods: unknown payment")
	ErrInvalidDays    = errors.New("workperiods: invalid number of days")
	ErrInvalidAmount  = errors.New("workperiods: invalid amount")
)

// WorkflowRecorder counts workflow outcomes.
type WorkflowRecorder interface {
	ObserveWorkflow(workflow, outcome string)
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	SettleDelay time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
	Metrics     WorkflowRecorder
	Preferences *Preferences
}

// Service runs the console workflows against the TaaS API. Workflows never
// return remote failures: they dispatch error transitions and notify.
type Service struct {
	store       *Store
	api         API
	notifier    Notifier
	prefs       *Preferences
	metrics     WorkflowRecorder
	logger      *slog.Logger
	now         func() time.Time
	settleDelay time.Duration
}

// NewService wires a Service.
func NewService(store *Store, api API, notifier Notifier, opts Options) *Service {
	svc := &Service{
		store:       store,
		api:         api,
		notifier:    notifier,
		prefs:       opts.Preferences,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         opts.Now,
		settleDelay: opts.SettleDelay,
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.settleDelay <= 0 {
		svc.settleDelay = DefaultSettleDelay
	}
	return svc
}

// Store exposes the state container.
func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) observe(workflow, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveWorkflow(workflow, outcome)
	}
}

func (s *Service) notify(ctx context.Context, severity Severity, message string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, severity, message)
	}
}

// LoadPage loads the page described by the current filters, sorting and
// pagination. A newer LoadPage cancels this one.
func (s *Service) LoadPage(ctx context.Context) {
	s.store.Dispatch(SetCurrentDate{Date: s.now()})

	reqCtx, handle := NewCancelHandle(ctx)
	defer handle.Cancel()
	_, state := s.store.Dispatch(LoadPagePending{Cancel: handle})

	page, err := s.api.ListResourceBookings(reqCtx, pageRequest(state))
	if err != nil {
		if IsCanceled(err) {
			s.observe("load_page", OutcomeCanceled)
			return
		}
		s.logger.WarnContext(ctx, "load work periods page", slog.Any("error", err))
		s.store.Dispatch(LoadPageError{Cancel: handle, Message: err.Error()})
		s.observe("load_page", OutcomeError)
		return
	}
	s.store.Dispatch(LoadPageSuccess{
		Cancel:     handle,
		Periods:    normalizeBookings(page.Items),
		TotalCount: page.Pagination.TotalCount,
		PageCount:  page.Pagination.PageCount,
	})
	s.observe("load_page", OutcomeSuccess)
}

// RefreshPage reloads the current page and reports a failed load as an
// error. It backs the scheduled refresh job.
func (s *Service) RefreshPage(ctx context.Context) error {
	s.LoadPage(ctx)
	if msg := s.store.State().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

// LoadedPeriod is the result of LoadPeriodData.
type LoadedPeriod struct {
	UserHandle string
	Data       PeriodData
}

// LoadPeriodData reloads one period after waiting delay. It returns the
// loaded data, or an error message when the request failed. Both are empty
// when the request was cancelled.
func (s *Service) LoadPeriodData(ctx context.Context, periodID string, delay time.Duration) (*LoadedPeriod, string) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.observe("load_period", OutcomeCanceled)
			return nil, ""
		case <-timer.C:
		}
	}

	reqCtx, handle := NewCancelHandle(ctx)
	defer handle.Cancel()
	s.store.Dispatch(PeriodDataPending{PeriodID: periodID, Cancel: handle})

	wp, err := s.api.GetWorkPeriod(reqCtx, periodID)
	if err != nil {
		if IsCanceled(err) {
			s.observe("load_period", OutcomeCanceled)
			return nil, ""
		}
		s.store.Dispatch(PeriodDataError{PeriodID: periodID, Cancel: handle})
		s.observe("load_period", OutcomeError)
		return nil, err.Error()
	}
	data := normalizePeriodData(wp)
	s.store.Dispatch(PeriodDataSuccess{PeriodID: periodID, Data: data, Cancel: handle})
	s.observe("load_period", OutcomeSuccess)
	return &LoadedPeriod{UserHandle: wp.UserHandle, Data: data}, ""
}

// ToggleDetails shows or hides the details of a page row. A nil show flips
// the current visibility. Sub-periods and billing accounts load in parallel
// and fail independently.
func (s *Service) ToggleDetails(ctx context.Context, periodID string, show *bool) error {
	state := s.store.State()
	_, open := state.PeriodsDetails[periodID]
	on := !open
	if show != nil {
		on = *show
	}
	if !on {
		s.store.Dispatch(HideDetails{PeriodID: periodID})
		return nil
	}
	if open {
		return nil
	}
	period, ok := state.Period(periodID)
	if !ok {
		return ErrUnknownPeriod
	}

	periodsCtx, periodsHandle := NewCancelHandle(ctx)
	defer periodsHandle.Cancel()
	accountsCtx, accountsHandle := NewCancelHandle(ctx)
	defer accountsHandle.Cancel()
	s.store.Dispatch(LoadDetailsPending{
		Period:         period,
		PeriodsCancel:  periodsHandle,
		AccountsCancel: accountsHandle,
	})

	var g errgroup.Group
	g.Go(func() error {
		accounts, err := s.api.ListBillingAccounts(accountsCtx, period.ProjectID)
		if err != nil {
			if !IsCanceled(err) {
				s.store.Dispatch(LoadBillingAccountsError{PeriodID: periodID, Message: err.Error()})
			}
			return nil
		}
		s.store.Dispatch(LoadBillingAccountsSuccess{PeriodID: periodID, Accounts: normalizeBillingAccounts(accounts)})
		return nil
	})
	g.Go(func() error {
		periods, err := s.api.ListWorkPeriods(periodsCtx, period.ResourceBookingID)
		if err != nil {
			if IsCanceled(err) {
				return nil
			}
			s.store.Dispatch(LoadDetailsError{PeriodID: periodID, Message: err.Error()})
			s.notify(ctx, SeverityError, err.Error())
			return err
		}
		s.store.Dispatch(LoadDetailsSuccess{PeriodID: periodID, Periods: normalizeDetailsPeriods(period, periods)})
		return nil
	})
	if err := g.Wait(); err != nil {
		s.observe("load_details", OutcomeError)
		return nil
	}
	s.observe("load_details", OutcomeSuccess)
	return nil
}

// SetDetailsHidePastPeriods hides sub-periods starting before the filter week.
func (s *Service) SetDetailsHidePastPeriods(periodID string, hide bool) *State {
	_, next := s.store.Dispatch(SetDetailsHidePastPeriods{PeriodID: periodID, Hide: hide})
	return next
}

// UpdateWorkingDays stores a new number of working days. The value is
// clamped to [daysPaid, MaxWorkingDays] and applied locally first. A response
// is discarded when the local value changed while it was in transit.
func (s *Service) UpdateWorkingDays(ctx context.Context, periodID string, daysWorked int) error {
	data, ok := s.store.State().PeriodsData[periodID]
	if !ok {
		return ErrUnknownPeriod
	}
	days := clampWorkingDays(daysWorked, data.DaysPaid)
	s.store.Dispatch(SetWorkingDays{PeriodID: periodID, DaysWorked: days})

	reqCtx, handle := NewCancelHandle(ctx)
	defer handle.Cancel()
	s.store.Dispatch(PeriodDataPending{PeriodID: periodID, Cancel: handle})

	wp, err := s.api.UpdateWorkingDays(reqCtx, periodID, days)
	if err != nil {
		if IsCanceled(err) {
			s.observe("update_working_days", OutcomeCanceled)
			return nil
		}
		s.notify(ctx, SeverityError, fmt.Sprintf("Failed to update working days for working period %s.\n%s", periodID, err))
		s.store.Dispatch(PeriodDataError{PeriodID: periodID, Cancel: handle})
		s.observe("update_working_days", OutcomeError)
		return nil
	}

	result := normalizePeriodData(wp)
	current, ok := s.store.State().PeriodsData[periodID]
	if !ok || current.DaysWorked != result.DaysWorked {
		s.observe("update_working_days", OutcomeStale)
		return nil
	}
	s.store.Dispatch(PeriodDataSuccess{PeriodID: periodID, Data: result, Cancel: handle})
	s.observe("update_working_days", OutcomeSuccess)
	return nil
}

// AcknowledgeWorkingDaysUpdated clears the "updated" marker of a period.
func (s *Service) AcknowledgeWorkingDaysUpdated(periodID string) *State {
	_, next := s.store.Dispatch(ToggleWorkingDaysUpdated{PeriodID: periodID, On: false})
	return next
}

// reloadOnChange dispatches a and reloads the page when the state changed.
func (s *Service) reloadOnChange(ctx context.Context, a Action) bool {
	prev, next := s.store.Dispatch(a)
	if prev == next {
		return false
	}
	s.LoadPage(ctx)
	return true
}

// SetDateRange shows the week containing date.
func (s *Service) SetDateRange(ctx context.Context, date time.Time) bool {
	return s.reloadOnChange(ctx, SetDateRange{Date: date})
}

// SetPaymentStatuses switches payment status filters on or off.
func (s *Service) SetPaymentStatuses(ctx context.Context, statuses map[PaymentStatus]bool) bool {
	return s.reloadOnChange(ctx, SetPaymentStatuses{Statuses: statuses})
}

// SetUserHandle filters by user handle.
func (s *Service) SetUserHandle(ctx context.Context, handle string) bool {
	return s.reloadOnChange(ctx, SetUserHandle{UserHandle: handle})
}

// ToggleOnlyFailedPayments sets or flips the failed payments filter.
func (s *Service) ToggleOnlyFailedPayments(ctx context.Context, on *bool) bool {
	return s.reloadOnChange(ctx, ToggleOnlyFailedPayments{On: on})
}

// ResetFilters restores the default filters.
func (s *Service) ResetFilters(ctx context.Context) bool {
	return s.reloadOnChange(ctx, ResetFilters{})
}

// SetSortBy changes the sort column.
func (s *Service) SetSortBy(ctx context.Context, criteria SortBy) bool {
	return s.reloadOnChange(ctx, SetSortBy{Criteria: criteria})
}

// SetSortOrder changes the sort direction.
func (s *Service) SetSortOrder(ctx context.Context, order SortOrder) bool {
	return s.reloadOnChange(ctx, SetSortOrder{Order: order})
}

// SetPageNumber moves to another page.
func (s *Service) SetPageNumber(ctx context.Context, pageNumber int) bool {
	return s.reloadOnChange(ctx, SetPageNumber{PageNumber: pageNumber})
}

// SetPageSize changes and persists the page size.
func (s *Service) SetPageSize(ctx context.Context, pageSize int) bool {
	if !s.reloadOnChange(ctx, SetPageSize{PageSize: pageSize}) {
		return false
	}
	if err := s.prefs.SetPageSize(ctx, pageSize); err != nil {
		s.logger.WarnContext(ctx, "persist page size", slog.Any("error", err))
	}
	return true
}

// UpdateFromQuery applies a URL query and reloads when it changed the state.
func (s *Service) UpdateFromQuery(ctx context.Context, query string) bool {
	return s.reloadOnChange(ctx, UpdateFromQuery{Query: query})
}

// SelectPeriods selects or deselects periods of the current page.
func (s *Service) SelectPeriods(periods map[string]bool) *State {
	_, next := s.store.Dispatch(SelectPeriods{Periods: periods})
	return next
}

// TogglePeriod flips the selection of one period.
func (s *Service) TogglePeriod(periodID string) *State {
	_, next := s.store.Dispatch(TogglePeriod{PeriodID: periodID})
	return next
}

// ToggleAll selects every period matching the filters.
func (s *Service) ToggleAll(on *bool) *State {
	_, next := s.store.Dispatch(ToggleAll{On: on})
	return next
}

// ToggleVisible selects the periods of the current page.
func (s *Service) ToggleVisible(on *bool) *State {
	_, next := s.store.Dispatch(ToggleVisible{On: on})
	return next
}
