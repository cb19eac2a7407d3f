package workperiods

import "unicode/utf8"

// Reduce applies one transition. It never panics and returns s itself when
// the transition changes nothing, including for unknown actions.
func Reduce(s *State, a Action) *State {
	switch a := a.(type) {
	case SetCurrentDate:
		return reduceSetCurrentDate(s, a)
	case LoadPagePending:
		return reduceLoadPagePending(s, a)
	case LoadPageSuccess:
		return reduceLoadPageSuccess(s, a)
	case LoadPageError:
		return reduceLoadPageError(s, a)
	case LoadDetailsPending:
		return reduceLoadDetailsPending(s, a)
	case LoadDetailsSuccess:
		return reduceLoadDetailsSuccess(s, a)
	case LoadDetailsError:
		return reduceLoadDetailsError(s, a)
	case LoadBillingAccountsSuccess:
		return reduceBillingAccountsSuccess(s, a)
	case LoadBillingAccountsError:
		return reduceBillingAccountsError(s, a)
	case HideDetails:
		return reduceHideDetails(s, a)
	case SetBillingAccount:
		return reduceSetBillingAccount(s, a)
	case SetDetailsHidePastPeriods:
		return reduceSetDetailsHidePastPeriods(s, a)
	case SetPaymentData:
		return reduceSetPaymentData(s, a)
	case SetPayments:
		return reduceSetPayments(s, a)
	case ResetFilters:
		return reduceResetFilters(s)
	case SetDateRange:
		return reduceSetDateRange(s, a)
	case SetPaymentStatuses:
		return reduceSetPaymentStatuses(s, a)
	case SetUserHandle:
		return reduceSetUserHandle(s, a)
	case ToggleOnlyFailedPayments:
		return reduceToggleOnlyFailedPayments(s, a)
	case SetSortBy:
		return reduceSetSortBy(s, a)
	case SetSortOrder:
		return reduceSetSortOrder(s, a)
	case SetPageNumber:
		return reduceSetPageNumber(s, a)
	case SetPageSize:
		return reduceSetPageSize(s, a)
	case SelectPeriods:
		return reduceSelectPeriods(s, a)
	case TogglePeriod:
		return reduceTogglePeriod(s, a)
	case ToggleAll:
		return reduceToggleAll(s, a)
	case ToggleVisible:
		return reduceToggleVisible(s, a)
	case HighlightFailedPeriods:
		return reduceHighlightFailedPeriods(s, a)
	case SetProcessingPayments:
		return reduceSetProcessingPayments(s, a)
	case PeriodDataPending:
		return reducePeriodDataPending(s, a)
	case PeriodDataSuccess:
		return reducePeriodDataSuccess(s, a)
	case PeriodDataError:
		return reducePeriodDataError(s, a)
	case SetWorkingDays:
		return reduceSetWorkingDays(s, a)
	case ToggleWorkingDaysUpdated:
		return reduceToggleWorkingDaysUpdated(s, a)
	case UpdateFromQuery:
		return reduceUpdateFromQuery(s, a)
	}
	return s
}

func reduceSetCurrentDate(s *State, a SetCurrentDate) *State {
	week := WeekOf(a.Date)
	if week.Equal(s.CurrentWeek) {
		return s
	}
	next := s.clone()
	next.CurrentWeek = week
	derive(next)
	return next
}

func reduceLoadPagePending(s *State, a LoadPagePending) *State {
	next := s.clone()
	next.Cancel = a.Cancel
	next.Error = ""
	next.IsSelectedAll = false
	next.IsSelectedVisible = false
	next.Periods = nil
	next.PeriodsData = map[string]PeriodData{}
	next.PeriodsDetails = map[string]PeriodDetails{}
	next.PeriodsDisabled = map[string]Reasons{}
	next.PeriodsFailed = map[string]bool{}
	next.PeriodsSelected = map[string]bool{}
	return next
}

func reduceLoadPageSuccess(s *State, a LoadPageSuccess) *State {
	if a.Cancel != s.Cancel {
		return s
	}
	next := s.clone()
	next.Cancel = nil
	next.Error = ""
	next.Pagination.TotalCount = a.TotalCount
	next.Pagination.PageCount = a.PageCount
	next.Periods = make([]WorkPeriod, 0, len(a.Periods))
	next.PeriodsData = make(map[string]PeriodData, len(a.Periods))
	for _, p := range a.Periods {
		next.Periods = append(next.Periods, p.WorkPeriod)
		next.PeriodsData[p.ID] = freshPeriodData(p.Data)
	}
	derive(next)
	return next
}

func reduceLoadPageError(s *State, a LoadPageError) *State {
	if a.Cancel != s.Cancel {
		return s
	}
	next := s.clone()
	next.Cancel = nil
	next.Error = a.Message
	return next
}

func freshPeriodData(data PeriodData) PeriodData {
	data.Cancel = nil
	data.DaysWorkedIsUpdated = false
	return data
}

func reduceLoadDetailsPending(s *State, a LoadDetailsPending) *State {
	next := s.clone()
	next.PeriodsDetails = cloneMap(s.PeriodsDetails)
	next.PeriodsDetails[a.Period.ID] = PeriodDetails{
		PeriodID:          a.Period.ID,
		ResourceBookingID: a.Period.ResourceBookingID,
		JobID:             a.Period.JobID,
		BillingAccountID:  a.Period.BillingAccountID,
		BillingAccounts: []BillingAccountOption{
			{Value: a.Period.BillingAccountID, Label: billingAccountsLoadingLabel},
		},
		BillingAccountsIsDisabled: true,
		BillingAccountsIsLoading:  true,
		PeriodsIsLoading:          true,
		PeriodsCancel:             a.PeriodsCancel,
		AccountsCancel:            a.AccountsCancel,
	}
	return next
}

func reduceLoadDetailsSuccess(s *State, a LoadDetailsSuccess) *State {
	details, ok := s.PeriodsDetails[a.PeriodID]
	if !ok {
		return s
	}
	next := s.clone()
	next.PeriodsData = cloneMap(s.PeriodsData)
	periods := make([]WorkPeriod, 0, len(a.Periods))
	for _, p := range a.Periods {
		periods = append(periods, p.WorkPeriod)
		// Page rows keep their own data, which may have a request in flight.
		if s.HasPeriod(p.ID) {
			continue
		}
		next.PeriodsData[p.ID] = freshPeriodData(p.Data)
	}
	details.Periods = periods
	details.PeriodsIsLoading = false
	details.PeriodsCancel = nil
	details.PeriodsVisible = visibleDetailsPeriods(details, s.Filters)
	next.PeriodsDetails = cloneMap(s.PeriodsDetails)
	next.PeriodsDetails[a.PeriodID] = details
	return next
}

func reduceLoadDetailsError(s *State, a LoadDetailsError) *State {
	details, ok := s.PeriodsDetails[a.PeriodID]
	if !ok {
		return s
	}
	details.PeriodsIsLoading = false
	details.PeriodsError = a.Message
	details.PeriodsCancel = nil
	return withDetails(s, details)
}

func visibleDetailsPeriods(details PeriodDetails, filters Filters) []WorkPeriod {
	if details.HidePastPeriods {
		return filterPeriodsByStartDate(details.Periods, filters.DateRange.Start)
	}
	return details.Periods
}

func reduceBillingAccountsSuccess(s *State, a LoadBillingAccountsSuccess) *State {
	details, ok := s.PeriodsDetails[a.PeriodID]
	if !ok {
		return s
	}
	accounts := append([]BillingAccountOption(nil), a.Accounts...)
	disabled := false
	if len(accounts) == 0 {
		accounts = append(accounts, BillingAccountOption{Value: details.BillingAccountID, Label: billingAccountsNoneLabel})
		disabled = true
	}
	details.BillingAccounts = accounts
	details.BillingAccountsError = ""
	details.BillingAccountsIsDisabled = disabled
	details.BillingAccountsIsLoading = false
	details.AccountsCancel = nil
	return withDetails(s, details)
}

func reduceBillingAccountsError(s *State, a LoadBillingAccountsError) *State {
	details, ok := s.PeriodsDetails[a.PeriodID]
	if !ok {
		return s
	}
	if details.BillingAccountID != 0 {
		details.BillingAccounts = []BillingAccountOption{assignedBillingAccountOption(details.BillingAccountID)}
		details.BillingAccountsIsDisabled = false
	} else {
		details.BillingAccounts = []BillingAccountOption{{Value: 0, Label: billingAccountsErrorLabel}}
		details.BillingAccountsIsDisabled = true
	}
	details.BillingAccountsError = a.Message
	details.BillingAccountsIsLoading = false
	details.AccountsCancel = nil
	return withDetails(s, details)
}

func withDetails(s *State, details PeriodDetails) *State {
	next := s.clone()
	next.PeriodsDetails = cloneMap(s.PeriodsDetails)
	next.PeriodsDetails[details.PeriodID] = details
	return next
}

func reduceHideDetails(s *State, a HideDetails) *State {
	if _, ok := s.PeriodsDetails[a.PeriodID]; !ok {
		return s
	}
	next := s.clone()
	next.PeriodsDetails = cloneMap(s.PeriodsDetails)
	delete(next.PeriodsDetails, a.PeriodID)
	return next
}

func reduceSetBillingAccount(s *State, a SetBillingAccount) *State {
	details, hasDetails := s.PeriodsDetails[a.PeriodID]
	index, onPage := s.periodIndex(a.PeriodID)
	if !hasDetails && !onPage {
		return s
	}
	if (!hasDetails || details.BillingAccountID == a.AccountID) &&
		(!onPage || s.Periods[index].BillingAccountID == a.AccountID) {
		return s
	}
	next := s.clone()
	if hasDetails {
		details.BillingAccountID = a.AccountID
		next.PeriodsDetails = cloneMap(s.PeriodsDetails)
		next.PeriodsDetails[a.PeriodID] = details
	}
	if onPage {
		next.Periods = append([]WorkPeriod(nil), s.Periods...)
		next.Periods[index].BillingAccountID = a.AccountID
		derive(next)
	}
	return next
}

func reduceSetDetailsHidePastPeriods(s *State, a SetDetailsHidePastPeriods) *State {
	details, ok := s.PeriodsDetails[a.PeriodID]
	if !ok || details.HidePastPeriods == a.Hide {
		return s
	}
	details.HidePastPeriods = a.Hide
	details.PeriodsVisible = visibleDetailsPeriods(details, s.Filters)
	return withDetails(s, details)
}

func reduceSetPaymentData(s *State, a SetPaymentData) *State {
	data, ok := s.PeriodsData[a.Payment.WorkPeriodID]
	if !ok {
		return s
	}
	for i, p := range data.Payments {
		if p.ID != a.Payment.ID {
			continue
		}
		payments := append([]Payment(nil), data.Payments...)
		payments[i] = a.Payment
		data.Payments = payments
		return withPeriodData(s, a.Payment.WorkPeriodID, data, false)
	}
	return s
}

func reduceSetPayments(s *State, a SetPayments) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok {
		return s
	}
	data.Payments = append([]Payment(nil), a.Payments...)
	return withPeriodData(s, a.PeriodID, data, false)
}

func withPeriodData(s *State, id string, data PeriodData, rederive bool) *State {
	next := s.clone()
	next.PeriodsData = cloneMap(s.PeriodsData)
	next.PeriodsData[id] = data
	if rederive {
		derive(next)
	}
	return next
}

// withFilters installs new filters, goes back to the first page and
// re-derives because the filter week feeds the disabled reasons.
func withFilters(s *State, filters Filters) *State {
	next := s.clone()
	next.Filters = filters
	next.Pagination.PageNumber = 1
	derive(next)
	return next
}

func reduceResetFilters(s *State) *State {
	defaults := defaultFilters(s.CurrentWeek)
	if filtersEqual(s.Filters, defaults) && s.Pagination.PageNumber == 1 {
		return s
	}
	return withFilters(s, defaults)
}

func filtersEqual(a, b Filters) bool {
	if !a.DateRange.Equal(b.DateRange) || a.OnlyFailedPayments != b.OnlyFailedPayments || a.UserHandle != b.UserHandle {
		return false
	}
	return statusSetEqual(a.PaymentStatuses, b.PaymentStatuses)
}

func statusSetEqual(a, b map[PaymentStatus]bool) bool {
	count := 0
	for status, on := range a {
		if !on {
			continue
		}
		count++
		if !b[status] {
			return false
		}
	}
	for _, on := range b {
		if on {
			count--
		}
	}
	return count == 0
}

func reduceSetDateRange(s *State, a SetDateRange) *State {
	week := WeekOf(a.Date)
	if week.Equal(s.Filters.DateRange) {
		return s
	}
	filters := s.Filters
	filters.DateRange = week
	return withFilters(s, filters)
}

func reduceSetPaymentStatuses(s *State, a SetPaymentStatuses) *State {
	statuses := cloneMap(s.Filters.PaymentStatuses)
	for status, on := range a.Statuses {
		if on {
			statuses[status] = true
		} else {
			delete(statuses, status)
		}
	}
	if statusSetEqual(statuses, s.Filters.PaymentStatuses) {
		return s
	}
	filters := s.Filters
	filters.PaymentStatuses = statuses
	return withFilters(s, filters)
}

func reduceSetUserHandle(s *State, a SetUserHandle) *State {
	handle := truncateRunes(a.UserHandle, MaxUserHandleLength)
	if handle == s.Filters.UserHandle {
		return s
	}
	filters := s.Filters
	filters.UserHandle = handle
	return withFilters(s, filters)
}

func truncateRunes(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max])
}

func reduceToggleOnlyFailedPayments(s *State, a ToggleOnlyFailedPayments) *State {
	on := !s.Filters.OnlyFailedPayments
	if a.On != nil {
		on = *a.On
	}
	if on == s.Filters.OnlyFailedPayments {
		return s
	}
	filters := s.Filters
	filters.OnlyFailedPayments = on
	return withFilters(s, filters)
}

func reduceSetSortBy(s *State, a SetSortBy) *State {
	criteria, ok := ParseSortBy(string(a.Criteria))
	if !ok {
		criteria = DefaultSortBy
	}
	if criteria == s.Sorting.Criteria {
		return s
	}
	next := s.clone()
	next.Sorting.Criteria = criteria
	next.Pagination.PageNumber = 1
	return next
}

func reduceSetSortOrder(s *State, a SetSortOrder) *State {
	order, _ := ParseSortOrder(string(a.Order))
	if order == s.Sorting.Order {
		return s
	}
	next := s.clone()
	next.Sorting.Order = order
	return next
}

func reduceSetPageNumber(s *State, a SetPageNumber) *State {
	if a.PageNumber < 1 || a.PageNumber == s.Pagination.PageNumber {
		return s
	}
	next := s.clone()
	next.Pagination.PageNumber = a.PageNumber
	return next
}

func reduceSetPageSize(s *State, a SetPageSize) *State {
	if !IsValidPageSize(a.PageSize) || a.PageSize == s.Pagination.PageSize {
		return s
	}
	next := s.clone()
	next.Pagination.PageSize = a.PageSize
	next.Pagination.PageNumber = 1
	deriveSelectionFlags(next)
	return next
}

func reduceSelectPeriods(s *State, a SelectPeriods) *State {
	var selected map[string]bool
	for id, on := range a.Periods {
		if on == s.PeriodsSelected[id] {
			continue
		}
		if _, disabled := s.PeriodsDisabled[id]; on && disabled {
			continue
		}
		if selected == nil {
			selected = cloneMap(s.PeriodsSelected)
		}
		if on {
			selected[id] = true
		} else {
			delete(selected, id)
		}
	}
	if selected == nil {
		return s
	}
	return withSelection(s, selected)
}

func withSelection(s *State, selected map[string]bool) *State {
	next := s.clone()
	next.PeriodsSelected = selected
	deriveSelectionFlags(next)
	return next
}

func reduceTogglePeriod(s *State, a TogglePeriod) *State {
	if _, disabled := s.PeriodsDisabled[a.PeriodID]; disabled {
		return s
	}
	selected := cloneMap(s.PeriodsSelected)
	if selected[a.PeriodID] {
		delete(selected, a.PeriodID)
	} else {
		selected[a.PeriodID] = true
	}
	return withSelection(s, selected)
}

func selectablePageIDs(s *State) map[string]bool {
	selected := make(map[string]bool, len(s.Periods))
	for _, p := range s.Periods {
		if _, disabled := s.PeriodsDisabled[p.ID]; !disabled {
			selected[p.ID] = true
		}
	}
	return selected
}

func reduceToggleAll(s *State, a ToggleAll) *State {
	on := !s.IsSelectedAll
	if a.On != nil {
		on = *a.On
	}
	next := s.clone()
	if on {
		next.PeriodsSelected = selectablePageIDs(s)
	} else {
		next.PeriodsSelected = map[string]bool{}
	}
	next.IsSelectedAll = on
	next.IsSelectedVisible = on
	return next
}

func reduceToggleVisible(s *State, a ToggleVisible) *State {
	on := !s.IsSelectedVisible
	if a.On != nil {
		on = *a.On
	}
	next := s.clone()
	next.IsSelectedAll = false
	next.IsSelectedVisible = on
	if on {
		next.PeriodsSelected = selectablePageIDs(s)
		next.IsSelectedAll = len(s.Periods) == s.Pagination.TotalCount
	} else {
		next.PeriodsSelected = map[string]bool{}
	}
	return next
}

func reduceHighlightFailedPeriods(s *State, a HighlightFailedPeriods) *State {
	if len(a.Periods) == 0 {
		return s
	}
	next := s.clone()
	next.PeriodsFailed = cloneMap(s.PeriodsFailed)
	selected := cloneMap(s.PeriodsSelected)
	for id, failed := range a.Periods {
		if !failed {
			delete(selected, id)
			continue
		}
		next.PeriodsFailed[id] = true
		if _, disabled := s.PeriodsDisabled[id]; !disabled {
			selected[id] = true
		}
	}
	next.PeriodsSelected = selected
	deriveSelectionFlags(next)
	return next
}

func reduceSetProcessingPayments(s *State, a SetProcessingPayments) *State {
	if a.On == s.IsProcessingPayments {
		return s
	}
	next := s.clone()
	next.IsProcessingPayments = a.On
	if a.On {
		next.PeriodsFailed = map[string]bool{}
	}
	return next
}

func reducePeriodDataPending(s *State, a PeriodDataPending) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok {
		return s
	}
	data.Cancel = a.Cancel
	data.DaysWorkedIsUpdated = false
	return withPeriodData(s, a.PeriodID, data, false)
}

func reducePeriodDataSuccess(s *State, a PeriodDataSuccess) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok || data.Cancel != a.Cancel {
		return s
	}
	data.DaysPaid = a.Data.DaysPaid
	data.DaysWorked = clampWorkingDays(a.Data.DaysWorked, a.Data.DaysPaid)
	data.PaymentStatus = a.Data.PaymentStatus
	data.PaymentTotal = a.Data.PaymentTotal
	data.Payments = append([]Payment(nil), a.Data.Payments...)
	data.Cancel = nil
	data.DaysWorkedIsUpdated = true
	return withPeriodData(s, a.PeriodID, data, true)
}

func reducePeriodDataError(s *State, a PeriodDataError) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok || data.Cancel != a.Cancel {
		return s
	}
	data.Cancel = nil
	data.DaysWorkedIsUpdated = false
	return withPeriodData(s, a.PeriodID, data, false)
}

// clampWorkingDays keeps days within [daysPaid, MaxWorkingDays].
func clampWorkingDays(days, daysPaid int) int {
	if days < daysPaid {
		days = daysPaid
	}
	if days > MaxWorkingDays {
		days = MaxWorkingDays
	}
	return days
}

func reduceSetWorkingDays(s *State, a SetWorkingDays) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok {
		return s
	}
	days := clampWorkingDays(a.DaysWorked, data.DaysPaid)
	if days == data.DaysWorked {
		return s
	}
	data.DaysWorked = days
	return withPeriodData(s, a.PeriodID, data, true)
}

func reduceToggleWorkingDaysUpdated(s *State, a ToggleWorkingDaysUpdated) *State {
	data, ok := s.PeriodsData[a.PeriodID]
	if !ok || data.DaysWorkedIsUpdated == a.On {
		return s
	}
	data.DaysWorkedIsUpdated = a.On
	return withPeriodData(s, a.PeriodID, data, false)
}

func reduceUpdateFromQuery(s *State, a UpdateFromQuery) *State {
	next := DecodeQuery(a.Query, s)
	if next == s {
		return s
	}
	derive(next)
	return next
}
