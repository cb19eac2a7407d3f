package workperiods

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonsDisabled(t *testing.T) {
	current := WeekOf(testNow)
	next := WeekOf(testNow.AddDate(0, 0, 7))
	past := WeekOf(testNow.AddDate(0, 0, -7))

	cases := []struct {
		name      string
		account   int64
		worked    int
		paid      int
		filter    Week
		want      Reasons
		wantNames []string
	}{
		{"payable", 42, 5, 2, current, 0, []string{}},
		{"no account", 0, 5, 2, current, ReasonNoBillingAccount, []string{"NO_BILLING_ACCOUNT"}},
		{"nothing to pay", 42, 3, 3, past, ReasonNoDaysToPayFor, []string{"NO_DAYS_TO_PAY_FOR"}},
		{"future week", 42, 5, 0, next, ReasonNotAllowFutureWeek, []string{"NOT_ALLOW_FUTURE_WEEK"}},
		{
			"everything", 0, 0, 0, next,
			ReasonNoBillingAccount | ReasonNoDaysToPayFor | ReasonNotAllowFutureWeek,
			[]string{"NO_BILLING_ACCOUNT", "NO_DAYS_TO_PAY_FOR", "NOT_ALLOW_FUTURE_WEEK"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReasonsDisabled(tc.account, tc.worked, tc.paid, tc.filter, current)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantNames, got.Names())
			// Same inputs, same answer.
			assert.Equal(t, got, ReasonsDisabled(tc.account, tc.worked, tc.paid, tc.filter, current))
		})
	}
}

func TestSelectionFlags(t *testing.T) {
	cases := []struct {
		name                 string
		selected, selectable int
		pageSize, total      int
		wasAll               bool
		wantAll, wantVisible bool
	}{
		{"single page all selected", 8, 8, 10, 10, false, true, true},
		{"single page partial", 7, 8, 10, 10, true, false, false},
		{"nothing selectable", 0, 0, 10, 5, false, false, false},
		{"multi page visible only", 10, 10, 10, 25, false, false, true},
		{"multi page keeps all", 10, 10, 10, 25, true, true, true},
		{"multi page partial clears all", 9, 10, 10, 25, true, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			all, visible := SelectionFlags(tc.selected, tc.selectable, tc.pageSize, tc.total, tc.wasAll)
			assert.Equal(t, tc.wantAll, all, "isSelectedAll")
			assert.Equal(t, tc.wantVisible, visible, "isSelectedVisible")
		})
	}
}

func TestSelectionFlagsShortLastPage(t *testing.T) {
	// Last page of 25 results at 10 per page holds 5 rows.
	s := loadedState(10, 25, normalizeBookings(pageOf(5)))
	for _, id := range []string{"wp1", "wp2", "wp3", "wp4", "wp5"} {
		s = Reduce(s, TogglePeriod{PeriodID: id})
	}
	assert.True(t, s.IsSelectedVisible, "every row on a short page is selected")
	assert.False(t, s.IsSelectedAll)

	s = Reduce(s, TogglePeriod{PeriodID: "wp3"})
	assert.False(t, s.IsSelectedVisible)
}

func TestSelectionFlagsAllRowsDisabled(t *testing.T) {
	s := loadedState(10, 2, normalizeBookings(pageOf(2, 1, 2)))
	assert.Len(t, s.PeriodsDisabled, 2)
	assert.False(t, s.IsSelectedAll)
	assert.False(t, s.IsSelectedVisible)
}

func TestReasonsSet(t *testing.T) {
	r := ReasonNoBillingAccount.Add(ReasonNoDaysToPayFor)
	assert.True(t, r.Has(ReasonNoBillingAccount))
	assert.False(t, r.Has(ReasonNotAllowFutureWeek))
	r = r.Remove(ReasonNoBillingAccount)
	assert.Equal(t, ReasonNoDaysToPayFor, r)
	assert.True(t, r.Remove(ReasonNoDaysToPayFor).Empty())

	raw, err := r.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `["NO_DAYS_TO_PAY_FOR"]`, string(raw))
}
