package workperiods

import "time"

// Action is a state transition payload. The set is closed: only types in
// this file implement it and Reduce handles each of them.
type Action interface {
	action()
}

// SetCurrentDate moves the calendar "today" used by the future-week rule.
type SetCurrentDate struct{ Date time.Time }

// LoadPagePending starts a page load and records its cancel handle.
type LoadPagePending struct{ Cancel *CancelHandle }

// LoadPageSuccess installs a loaded page.
type LoadPageSuccess struct {
	Cancel     *CancelHandle
	Periods    []PeriodWithData
	TotalCount int
	PageCount  int
}

// LoadPageError records a failed page load and keeps the shown periods.
type LoadPageError struct {
	Cancel  *CancelHandle
	Message string
}

// LoadDetailsPending opens the details of a period.
type LoadDetailsPending struct {
	Period         WorkPeriod
	PeriodsCancel  *CancelHandle
	AccountsCancel *CancelHandle
}

// LoadDetailsSuccess installs the sub-periods of an opened period.
type LoadDetailsSuccess struct {
	PeriodID string
	Periods  []PeriodWithData
}

// LoadDetailsError records a failed sub-period load. The billing account
// request of the same details keeps running.
type LoadDetailsError struct {
	PeriodID string
	Message  string
}

// LoadBillingAccountsSuccess installs the billing account options.
type LoadBillingAccountsSuccess struct {
	PeriodID string
	Accounts []BillingAccountOption
}

// LoadBillingAccountsError records a failed billing account load.
type LoadBillingAccountsError struct {
	PeriodID string
	Message  string
}

// HideDetails removes the details entry of a period.
type HideDetails struct{ PeriodID string }

// SetBillingAccount assigns a billing account to a period.
type SetBillingAccount struct {
	PeriodID  string
	AccountID int64
}

// SetDetailsHidePastPeriods toggles hiding sub-periods before the filter week.
type SetDetailsHidePastPeriods struct {
	PeriodID string
	Hide     bool
}

// SetPaymentData replaces one payment after an edit or cancellation.
type SetPaymentData struct{ Payment Payment }

// SetPayments replaces all payments of a period.
type SetPayments struct {
	PeriodID string
	Payments []Payment
}

// ResetFilters restores default filters.
type ResetFilters struct{}

// SetDateRange selects the week containing Date.
type SetDateRange struct{ Date time.Time }

// SetPaymentStatuses switches the listed statuses on or off.
type SetPaymentStatuses struct{ Statuses map[PaymentStatus]bool }

// SetUserHandle sets the user handle filter.
type SetUserHandle struct{ UserHandle string }

// ToggleOnlyFailedPayments sets the flag, or flips it when On is nil.
type ToggleOnlyFailedPayments struct{ On *bool }

// SetSortBy changes the sort column.
type SetSortBy struct{ Criteria SortBy }

// SetSortOrder changes the sort direction only.
type SetSortOrder struct{ Order SortOrder }

// SetPageNumber moves to another page.
type SetPageNumber struct{ PageNumber int }

// SetPageSize changes the page size.
type SetPageSize struct{ PageSize int }

// SelectPeriods selects (true) or deselects (false) periods.
type SelectPeriods struct{ Periods map[string]bool }

// TogglePeriod flips the selection of one period.
type TogglePeriod struct{ PeriodID string }

// ToggleAll selects every period matching the filters, or flips when On is nil.
type ToggleAll struct{ On *bool }

// ToggleVisible selects the periods of the current page, or flips when On is nil.
type ToggleVisible struct{ On *bool }

// HighlightFailedPeriods marks failed periods (true) and deselects succeeded ones (false).
type HighlightFailedPeriods struct{ Periods map[string]bool }

// SetProcessingPayments marks the payment processing workflow as running.
type SetProcessingPayments struct{ On bool }

// PeriodDataPending records the cancel handle of a period data request.
type PeriodDataPending struct {
	PeriodID string
	Cancel   *CancelHandle
}

// PeriodDataSuccess applies authoritative period data.
type PeriodDataSuccess struct {
	PeriodID string
	Data     PeriodData
	Cancel   *CancelHandle
}

// PeriodDataError clears the cancel handle of a failed request.
type PeriodDataError struct {
	PeriodID string
	Cancel   *CancelHandle
}

// SetWorkingDays edits working days locally, clamped to [daysPaid, MaxWorkingDays].
type SetWorkingDays struct {
	PeriodID   string
	DaysWorked int
}

// ToggleWorkingDaysUpdated sets the "updated" marker shown after a save.
type ToggleWorkingDaysUpdated struct {
	PeriodID string
	On       bool
}

// UpdateFromQuery applies a URL query string.
type UpdateFromQuery struct{ Query string }

func (SetCurrentDate) action()             {}
func (LoadPagePending) action()            {}
func (LoadPageSuccess) action()            {}
func (LoadPageError) action()              {}
func (LoadDetailsPending) action()         {}
func (LoadDetailsSuccess) action()         {}
func (LoadDetailsError) action()           {}
func (LoadBillingAccountsSuccess) action() {}
func (LoadBillingAccountsError) action()   {}
func (HideDetails) action()                {}
func (SetBillingAccount) action()          {}
func (SetDetailsHidePastPeriods) action()  {}
func (SetPaymentData) action()             {}
func (SetPayments) action()                {}
func (ResetFilters) action()               {}
func (SetDateRange) action()               {}
func (SetPaymentStatuses) action()         {}
func (SetUserHandle) action()              {}
func (ToggleOnlyFailedPayments) action()   {}
func (SetSortBy) action()                  {}
func (SetSortOrder) action()               {}
func (SetPageNumber) action()              {}
func (SetPageSize) action()                {}
func (SelectPeriods) action()              {}
func (TogglePeriod) action()               {}
func (ToggleAll) action()                  {}
func (ToggleVisible) action()              {}
func (HighlightFailedPeriods) action()     {}
func (SetProcessingPayments) action()      {}
func (PeriodDataPending) action()          {}
func (PeriodDataSuccess) action()          {}
func (PeriodDataError) action()            {}
func (SetWorkingDays) action()             {}
func (ToggleWorkingDaysUpdated) action()   {}
func (UpdateFromQuery) action()            {}
