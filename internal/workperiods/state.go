package workperiods

import (
	"sort"
	"time"
)

// Filters narrows the listed work periods.
type Filters struct {
	DateRange          Week                   `json:"dateRange"`
	OnlyFailedPayments bool                   `json:"onlyFailedPayments"`
	PaymentStatuses    map[PaymentStatus]bool `json:"paymentStatuses"`
	UserHandle         string                 `json:"userHandle"`
}

// SelectedPaymentStatuses returns the enabled statuses in a stable order.
func (f Filters) SelectedPaymentStatuses() []PaymentStatus {
	out := make([]PaymentStatus, 0, len(f.PaymentStatuses))
	for status, on := range f.PaymentStatuses {
		if on {
			out = append(out, status)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sorting is the active sort column and direction.
type Sorting struct {
	Criteria SortBy    `json:"criteria"`
	Order    SortOrder `json:"order"`
}

// Pagination holds the page cursor. TotalCount and PageCount come from the API.
type Pagination struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	PageCount  int `json:"pageCount"`
}

// PeriodDetails is the expanded view of one period.
type PeriodDetails struct {
	PeriodID                  string                 `json:"periodId"`
	ResourceBookingID         string                 `json:"resourceBookingId"`
	JobID                     string                 `json:"jobId"`
	BillingAccountID          int64                  `json:"billingAccountId"`
	BillingAccounts           []BillingAccountOption `json:"billingAccounts"`
	BillingAccountsError      string                 `json:"billingAccountsError,omitempty"`
	BillingAccountsIsDisabled bool                   `json:"billingAccountsIsDisabled"`
	BillingAccountsIsLoading  bool                   `json:"billingAccountsIsLoading"`
	HidePastPeriods           bool                   `json:"hidePastPeriods"`
	Periods                   []WorkPeriod           `json:"periods"`
	PeriodsVisible            []WorkPeriod           `json:"periodsVisible"`
	PeriodsIsLoading          bool                   `json:"periodsIsLoading"`
	PeriodsError              string                 `json:"periodsError,omitempty"`

	PeriodsCancel  *CancelHandle `json:"-"`
	AccountsCancel *CancelHandle `json:"-"`
}

// State is the whole console state. A published *State is never mutated;
// transitions copy what they change.
type State struct {
	CurrentWeek          Week
	Cancel               *CancelHandle
	Error                string
	Filters              Filters
	IsProcessingPayments bool
	IsSelectedAll        bool
	IsSelectedVisible    bool
	Pagination           Pagination
	Periods              []WorkPeriod
	PeriodsData          map[string]PeriodData
	PeriodsDetails       map[string]PeriodDetails
	PeriodsDisabled      map[string]Reasons
	PeriodsFailed        map[string]bool
	PeriodsSelected      map[string]bool
	Sorting              Sorting
}

// NewState builds the initial state for the week containing now.
func NewState(now time.Time, pageSize int) *State {
	if !IsValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	week := WeekOf(now)
	return &State{
		CurrentWeek:     week,
		Filters:         defaultFilters(week),
		Pagination:      Pagination{PageNumber: 1, PageSize: pageSize},
		PeriodsData:     map[string]PeriodData{},
		PeriodsDetails:  map[string]PeriodDetails{},
		PeriodsDisabled: map[string]Reasons{},
		PeriodsFailed:   map[string]bool{},
		PeriodsSelected: map[string]bool{},
		Sorting:         Sorting{Criteria: DefaultSortBy, Order: DefaultSortOrder},
	}
}

func defaultFilters(week Week) Filters {
	return Filters{
		DateRange:       week,
		PaymentStatuses: map[PaymentStatus]bool{},
	}
}

// HasPeriod reports whether id is a row of the current page.
func (s *State) HasPeriod(id string) bool {
	_, ok := s.periodIndex(id)
	return ok
}

// Period returns the page row with the given id.
func (s *State) Period(id string) (WorkPeriod, bool) {
	i, ok := s.periodIndex(id)
	if !ok {
		return WorkPeriod{}, false
	}
	return s.Periods[i], true
}

func (s *State) periodIndex(id string) (int, bool) {
	for i := range s.Periods {
		if s.Periods[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// SelectedIDs returns the selection set in a stable order.
func (s *State) SelectedIDs() []string {
	return sortedKeys(s.PeriodsSelected)
}

func (s *State) clone() *State {
	next := *s
	return &next
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, on := range m {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
