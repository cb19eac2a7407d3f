package workperiods

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownAction struct{}

func (unknownAction) action() {}

func TestReduceReturnsSameStateForNoops(t *testing.T) {
	s := loadedState(10, 3, normalizeBookings(pageOf(3)))

	assert.Same(t, s, Reduce(s, unknownAction{}))
	assert.Same(t, s, Reduce(s, SetPageSize{PageSize: 15}))
	assert.Same(t, s, Reduce(s, SetPageSize{PageSize: 10}))
	assert.Same(t, s, Reduce(s, SetPageNumber{PageNumber: 0}))
	assert.Same(t, s, Reduce(s, SetSortBy{Criteria: SortByUserHandle}))
	assert.Same(t, s, Reduce(s, HideDetails{PeriodID: "wp1"}))
	assert.Same(t, s, Reduce(s, SetWorkingDays{PeriodID: "missing", DaysWorked: 3}))
	assert.Same(t, s, Reduce(s, SetWorkingDays{PeriodID: "wp1", DaysWorked: 5}))
	assert.Same(t, s, Reduce(s, HighlightFailedPeriods{}))
}

func TestTogglePeriodParity(t *testing.T) {
	s := loadedState(10, 10, normalizeBookings(pageOf(10, 3)))
	ids := make([]string, 0, len(s.Periods))
	for _, p := range s.Periods {
		ids = append(ids, p.ID)
	}

	rng := rand.New(rand.NewSource(7))
	toggles := map[string]int{}
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		toggles[id]++
		s = Reduce(s, TogglePeriod{PeriodID: id})
		checkSelectionInvariant(t, s)
	}
	for _, id := range ids {
		if _, disabled := s.PeriodsDisabled[id]; disabled {
			assert.False(t, s.PeriodsSelected[id], id)
			continue
		}
		assert.Equal(t, toggles[id]%2 == 1, s.PeriodsSelected[id], id)
	}
}

func TestSelectionInvariantHoldsAcrossTransitions(t *testing.T) {
	s := loadedState(10, 10, normalizeBookings(pageOf(10)))
	on := true
	steps := []Action{
		ToggleVisible{On: &on},
		SetWorkingDays{PeriodID: "wp2", DaysWorked: 0},
		SetBillingAccount{PeriodID: "wp3", AccountID: 0},
		HighlightFailedPeriods{Periods: map[string]bool{"wp3": true, "wp4": false}},
		SelectPeriods{Periods: map[string]bool{"wp2": true, "wp3": true, "wp5": false}},
		SetDateRange{Date: testNow.AddDate(0, 0, 14)},
		ToggleAll{On: &on},
		SetDateRange{Date: testNow},
		ToggleAll{},
	}
	for _, a := range steps {
		s = Reduce(s, a)
		checkSelectionInvariant(t, s)
	}
}

func TestToggleVisibleSkipsDisabledPeriods(t *testing.T) {
	on := true

	s := loadedState(10, 10, normalizeBookings(pageOf(10, 4, 9)))
	require.Len(t, s.PeriodsDisabled, 2)
	s = Reduce(s, ToggleVisible{On: &on})
	assert.Len(t, s.PeriodsSelected, 8)
	assert.True(t, s.IsSelectedVisible)
	assert.True(t, s.IsSelectedAll)

	s = loadedState(10, 25, normalizeBookings(pageOf(10, 4, 9)))
	s = Reduce(s, ToggleVisible{On: &on})
	assert.Len(t, s.PeriodsSelected, 8)
	assert.True(t, s.IsSelectedVisible)
	assert.False(t, s.IsSelectedAll)

	s = Reduce(s, ToggleVisible{})
	assert.Empty(t, s.PeriodsSelected)
	assert.False(t, s.IsSelectedVisible)
}

func TestDeselectingOneClearsSelectAll(t *testing.T) {
	on := true
	s := loadedState(10, 25, normalizeBookings(pageOf(10)))
	s = Reduce(s, ToggleAll{On: &on})
	require.True(t, s.IsSelectedAll)

	s = Reduce(s, TogglePeriod{PeriodID: "wp1"})
	assert.False(t, s.IsSelectedAll)
	assert.False(t, s.IsSelectedVisible)

	s = Reduce(s, TogglePeriod{PeriodID: "wp1"})
	assert.False(t, s.IsSelectedAll, "select all is not restored by reselecting the page")
	assert.True(t, s.IsSelectedVisible)
}

func TestLoadPageIgnoresSupersededResponses(t *testing.T) {
	s := NewState(testNow, 10)
	first, second := &CancelHandle{}, &CancelHandle{}
	s = Reduce(s, LoadPagePending{Cancel: first})
	s = Reduce(s, LoadPagePending{Cancel: second})

	stale := Reduce(s, LoadPageSuccess{Cancel: first, Periods: normalizeBookings(pageOf(3)), TotalCount: 3, PageCount: 1})
	assert.Same(t, s, stale)
	assert.Same(t, s, Reduce(s, LoadPageError{Cancel: first, Message: "boom"}))

	s = Reduce(s, LoadPageSuccess{Cancel: second, Periods: normalizeBookings(pageOf(2)), TotalCount: 2, PageCount: 1})
	assert.Nil(t, s.Cancel)
	assert.Len(t, s.Periods, 2)
	assert.Equal(t, 2, s.Pagination.TotalCount)
}

func TestLoadPageErrorKeepsPeriods(t *testing.T) {
	s := loadedState(10, 3, normalizeBookings(pageOf(3)))
	handle := &CancelHandle{}
	pending := Reduce(s, LoadPagePending{Cancel: handle})
	failed := Reduce(pending, LoadPageError{Cancel: handle, Message: "network down"})
	assert.Equal(t, "network down", failed.Error)
	assert.Nil(t, failed.Cancel)
	assert.Equal(t, 3, failed.Pagination.TotalCount)
	assert.Len(t, s.Periods, 3, "earlier snapshot is untouched")
}

func TestFilterChangesResetPageNumber(t *testing.T) {
	s := Reduce(NewState(testNow, 10), SetPageNumber{PageNumber: 3})
	require.Equal(t, 3, s.Pagination.PageNumber)

	next := Reduce(s, SetUserHandle{UserHandle: "alice"})
	assert.Equal(t, 1, next.Pagination.PageNumber)
	assert.Equal(t, "alice", next.Filters.UserHandle)
	assert.Equal(t, 3, s.Pagination.PageNumber)

	next = Reduce(s, SetSortOrder{Order: SortOrderDesc})
	assert.Equal(t, 3, next.Pagination.PageNumber)

	next = Reduce(s, SetSortBy{Criteria: SortByPaymentTotal})
	assert.Equal(t, 1, next.Pagination.PageNumber)

	next = Reduce(s, SetPageSize{PageSize: 20})
	assert.Equal(t, 1, next.Pagination.PageNumber)
	assert.Equal(t, 20, next.Pagination.PageSize)
}

func TestUserHandleIsTruncated(t *testing.T) {
	long := make([]rune, MaxUserHandleLength+10)
	for i := range long {
		long[i] = 'é'
	}
	s := Reduce(NewState(testNow, 10), SetUserHandle{UserHandle: string(long)})
	assert.Equal(t, string(long[:MaxUserHandleLength]), s.Filters.UserHandle)
}

func TestPaymentStatusesAndOnlyFailed(t *testing.T) {
	s := NewState(testNow, 10)
	s = Reduce(s, SetPaymentStatuses{Statuses: map[PaymentStatus]bool{PaymentStatusFailed: true, PaymentStatusPending: true}})
	assert.Equal(t, []PaymentStatus{PaymentStatusFailed, PaymentStatusPending}, s.Filters.SelectedPaymentStatuses())

	s = Reduce(s, SetPaymentStatuses{Statuses: map[PaymentStatus]bool{PaymentStatusFailed: false}})
	assert.Equal(t, []PaymentStatus{PaymentStatusPending}, s.Filters.SelectedPaymentStatuses())

	s = Reduce(s, ToggleOnlyFailedPayments{})
	assert.True(t, s.Filters.OnlyFailedPayments)
	off := false
	s = Reduce(s, ToggleOnlyFailedPayments{On: &off})
	assert.False(t, s.Filters.OnlyFailedPayments)

	s = Reduce(s, ResetFilters{})
	assert.Empty(t, s.Filters.SelectedPaymentStatuses())
	assert.Same(t, s, Reduce(s, ResetFilters{}))
}

func TestFutureWeekDisablesEveryPeriod(t *testing.T) {
	s := loadedState(10, 3, normalizeBookings(pageOf(3)))
	require.Empty(t, s.PeriodsDisabled)

	s = Reduce(s, SetDateRange{Date: testNow.AddDate(0, 0, 7)})
	require.Len(t, s.PeriodsDisabled, 3)
	for _, reasons := range s.PeriodsDisabled {
		assert.True(t, reasons.Has(ReasonNotAllowFutureWeek))
	}

	s = Reduce(s, SetCurrentDate{Date: testNow.AddDate(0, 0, 7)})
	assert.Empty(t, s.PeriodsDisabled)
}

func TestWorkingDaysAreClamped(t *testing.T) {
	bookings := pageOf(1)
	bookings[0].WorkPeriods[0].DaysWorked = 3
	bookings[0].WorkPeriods[0].DaysPaid = 2
	s := loadedState(10, 1, normalizeBookings(bookings))

	assert.Equal(t, 5, Reduce(s, SetWorkingDays{PeriodID: "wp1", DaysWorked: 9}).PeriodsData["wp1"].DaysWorked)
	assert.Equal(t, 2, Reduce(s, SetWorkingDays{PeriodID: "wp1", DaysWorked: 0}).PeriodsData["wp1"].DaysWorked)

	paidUp := Reduce(s, SetWorkingDays{PeriodID: "wp1", DaysWorked: 2})
	assert.True(t, paidUp.PeriodsDisabled["wp1"].Has(ReasonNoDaysToPayFor))
}

func TestPeriodDataSuccessRequiresMatchingHandle(t *testing.T) {
	s := loadedState(10, 1, normalizeBookings(pageOf(1)))
	older, newer := &CancelHandle{}, &CancelHandle{}
	s = Reduce(s, PeriodDataPending{PeriodID: "wp1", Cancel: older})
	s = Reduce(s, PeriodDataPending{PeriodID: "wp1", Cancel: newer})

	data := PeriodData{DaysWorked: 4, DaysPaid: 1, PaymentStatus: PaymentStatusPartiallyCompleted}
	assert.Same(t, s, Reduce(s, PeriodDataSuccess{PeriodID: "wp1", Data: data, Cancel: older}))

	next := Reduce(s, PeriodDataSuccess{PeriodID: "wp1", Data: data, Cancel: newer})
	got := next.PeriodsData["wp1"]
	assert.Equal(t, 4, got.DaysWorked)
	assert.Equal(t, PaymentStatusPartiallyCompleted, got.PaymentStatus)
	assert.True(t, got.DaysWorkedIsUpdated)
	assert.Nil(t, got.Cancel)

	next = Reduce(next, ToggleWorkingDaysUpdated{PeriodID: "wp1", On: false})
	assert.False(t, next.PeriodsData["wp1"].DaysWorkedIsUpdated)
}

func TestHighlightFailedPeriods(t *testing.T) {
	s := loadedState(10, 3, normalizeBookings(pageOf(3)))
	s = Reduce(s, SelectPeriods{Periods: map[string]bool{"wp1": true, "wp2": true, "wp3": true}})
	s = Reduce(s, HighlightFailedPeriods{Periods: map[string]bool{"wp1": false, "wp2": true, "wp3": false}})

	assert.Equal(t, map[string]bool{"wp2": true}, s.PeriodsFailed)
	assert.Equal(t, []string{"wp2"}, s.SelectedIDs())

	s = Reduce(s, SetProcessingPayments{On: true})
	assert.Empty(t, s.PeriodsFailed)
}

func TestDetailsLifecycle(t *testing.T) {
	s := loadedState(10, 1, normalizeBookings(pageOf(1)))
	period := s.Periods[0]
	periodsHandle, accountsHandle := &CancelHandle{}, &CancelHandle{}

	s = Reduce(s, LoadDetailsPending{Period: period, PeriodsCancel: periodsHandle, AccountsCancel: accountsHandle})
	details := s.PeriodsDetails["wp1"]
	assert.True(t, details.PeriodsIsLoading)
	assert.True(t, details.BillingAccountsIsLoading)
	assert.Equal(t, billingAccountsLoadingLabel, details.BillingAccounts[0].Label)

	past := period
	past.ID = "wp0"
	past.StartDate = period.StartDate.AddDate(0, 0, -7)
	past.EndDate = period.EndDate.AddDate(0, 0, -7)
	s = Reduce(s, LoadDetailsSuccess{PeriodID: "wp1", Periods: []PeriodWithData{
		{WorkPeriod: past, Data: PeriodData{DaysWorked: 5, DaysPaid: 5}},
		{WorkPeriod: period, Data: PeriodData{DaysWorked: 0}},
	}})
	details = s.PeriodsDetails["wp1"]
	assert.False(t, details.PeriodsIsLoading)
	assert.Len(t, details.PeriodsVisible, 2)
	assert.Equal(t, 5, s.PeriodsData["wp0"].DaysPaid)
	assert.Equal(t, 5, s.PeriodsData["wp1"].DaysWorked, "page row data is kept")

	s = Reduce(s, SetDetailsHidePastPeriods{PeriodID: "wp1", Hide: true})
	require.Len(t, s.PeriodsDetails["wp1"].PeriodsVisible, 1)
	assert.Equal(t, "wp1", s.PeriodsDetails["wp1"].PeriodsVisible[0].ID)

	s = Reduce(s, LoadBillingAccountsSuccess{PeriodID: "wp1"})
	details = s.PeriodsDetails["wp1"]
	assert.True(t, details.BillingAccountsIsDisabled)
	assert.Equal(t, billingAccountsNoneLabel, details.BillingAccounts[0].Label)

	s = Reduce(s, HideDetails{PeriodID: "wp1"})
	assert.NotContains(t, s.PeriodsDetails, "wp1")
}

func TestBillingAccountsError(t *testing.T) {
	s := loadedState(10, 2, normalizeBookings(pageOf(2, 2)))
	for _, p := range s.Periods {
		s = Reduce(s, LoadDetailsPending{Period: p})
		s = Reduce(s, LoadBillingAccountsError{PeriodID: p.ID, Message: "forbidden"})
	}

	withAccount := s.PeriodsDetails["wp1"]
	assert.False(t, withAccount.BillingAccountsIsDisabled)
	assert.Equal(t, "<Assigned Account> (80000001)", withAccount.BillingAccounts[0].Label)
	assert.Equal(t, "forbidden", withAccount.BillingAccountsError)

	without := s.PeriodsDetails["wp2"]
	assert.True(t, without.BillingAccountsIsDisabled)
	assert.Equal(t, billingAccountsErrorLabel, without.BillingAccounts[0].Label)
}

func TestSetBillingAccountEnablesPeriod(t *testing.T) {
	s := loadedState(10, 1, normalizeBookings(pageOf(1, 1)))
	require.True(t, s.PeriodsDisabled["wp1"].Has(ReasonNoBillingAccount))

	s = Reduce(s, LoadDetailsPending{Period: s.Periods[0]})
	s = Reduce(s, SetBillingAccount{PeriodID: "wp1", AccountID: 80000099})
	assert.NotContains(t, s.PeriodsDisabled, "wp1")
	assert.Equal(t, int64(80000099), s.PeriodsDetails["wp1"].BillingAccountID)
	assert.Equal(t, int64(80000099), s.Periods[0].BillingAccountID)
}

func TestSetPaymentData(t *testing.T) {
	bookings := pageOf(1)
	s := loadedState(10, 1, normalizeBookings(bookings))
	s = Reduce(s, SetPayments{PeriodID: "wp1", Payments: []Payment{
		{ID: "p1", WorkPeriodID: "wp1", Days: 2, Status: ChallengePaymentScheduled},
		{ID: "p2", WorkPeriodID: "wp1", Days: 1, Status: ChallengePaymentScheduled},
	}})
	before := s
	s = Reduce(s, SetPaymentData{Payment: Payment{ID: "p2", WorkPeriodID: "wp1", Days: 1, Status: ChallengePaymentCancelled}})

	assert.Equal(t, ChallengePaymentCancelled, s.PeriodsData["wp1"].Payments[1].Status)
	assert.Equal(t, ChallengePaymentScheduled, before.PeriodsData["wp1"].Payments[1].Status)
	assert.Same(t, s, Reduce(s, SetPaymentData{Payment: Payment{ID: "nope", WorkPeriodID: "wp1"}}))
}
