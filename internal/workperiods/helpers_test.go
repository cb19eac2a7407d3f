package workperiods

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/wpadmin/internal/taas"
)

var testNow = time.Date(2021, time.June, 9, 15, 30, 0, 0, time.UTC)

type fakeAPI struct {
	mu sync.Mutex

	listResourceBookingsCalls int
	lastBookingQuery          taas.ResourceBookingQuery

	listResourceBookings                func(ctx context.Context, q taas.ResourceBookingQuery) (taas.ResourceBookingPage, error)
	getWorkPeriod                       func(ctx context.Context, id string) (taas.WorkPeriod, error)
	listWorkPeriods                     func(ctx context.Context, rbID string) ([]taas.WorkPeriod, error)
	listBillingAccounts                 func(ctx context.Context, projectID int64) ([]taas.BillingAccount, error)
	createPayment                       func(ctx context.Context, in taas.PaymentCreate) (taas.Payment, error)
	updatePayment                       func(ctx context.Context, id string, in taas.PaymentUpdate) (taas.Payment, error)
	cancelPayment                       func(ctx context.Context, id string) (taas.Payment, error)
	updatePaymentsBillingAccount        func(ctx context.Context, in []taas.PaymentBillingAccountUpdate) ([]taas.Payment, error)
	processPayments                     func(ctx context.Context, in []taas.PaymentRequest) ([]taas.PaymentRequestResult, error)
	processPaymentsByQuery              func(ctx context.Context, q taas.PaymentsQuery) (taas.PaymentsQueryResult, error)
	updateWorkingDays                   func(ctx context.Context, id string, days int) (taas.WorkPeriod, error)
	updateResourceBookingBillingAccount func(ctx context.Context, id string, accountID int64) (taas.ResourceBooking, error)
}

func (f *fakeAPI) ListResourceBookings(ctx context.Context, q taas.ResourceBookingQuery) (taas.ResourceBookingPage, error) {
	f.mu.Lock()
	f.listResourceBookingsCalls++
	f.lastBookingQuery = q
	f.mu.Unlock()
	if f.listResourceBookings == nil {
		return taas.ResourceBookingPage{}, nil
	}
	return f.listResourceBookings(ctx, q)
}

func (f *fakeAPI) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listResourceBookingsCalls
}

func (f *fakeAPI) GetWorkPeriod(ctx context.Context, id string) (taas.WorkPeriod, error) {
	if f.getWorkPeriod == nil {
		return taas.WorkPeriod{ID: id}, nil
	}
	return f.getWorkPeriod(ctx, id)
}

func (f *fakeAPI) ListWorkPeriods(ctx context.Context, rbID string) ([]taas.WorkPeriod, error) {
	if f.listWorkPeriods == nil {
		return nil, nil
	}
	return f.listWorkPeriods(ctx, rbID)
}

func (f *fakeAPI) ListBillingAccounts(ctx context.Context, projectID int64) ([]taas.BillingAccount, error) {
	if f.listBillingAccounts == nil {
		return nil, nil
	}
	return f.listBillingAccounts(ctx, projectID)
}

func (f *fakeAPI) CreatePayment(ctx context.Context, in taas.PaymentCreate) (taas.Payment, error) {
	if f.createPayment == nil {
		return taas.Payment{ID: "new", WorkPeriodID: in.WorkPeriodID, Amount: in.Amount, Days: in.Days}, nil
	}
	return f.createPayment(ctx, in)
}

func (f *fakeAPI) UpdatePayment(ctx context.Context, id string, in taas.PaymentUpdate) (taas.Payment, error) {
	if f.updatePayment == nil {
		return taas.Payment{ID: id}, nil
	}
	return f.updatePayment(ctx, id, in)
}

func (f *fakeAPI) CancelPayment(ctx context.Context, id string) (taas.Payment, error) {
	if f.cancelPayment == nil {
		return taas.Payment{ID: id, Status: "cancelled"}, nil
	}
	return f.cancelPayment(ctx, id)
}

func (f *fakeAPI) UpdatePaymentsBillingAccount(ctx context.Context, in []taas.PaymentBillingAccountUpdate) ([]taas.Payment, error) {
	if f.updatePaymentsBillingAccount == nil {
		return nil, nil
	}
	return f.updatePaymentsBillingAccount(ctx, in)
}

func (f *fakeAPI) ProcessPayments(ctx context.Context, in []taas.PaymentRequest) ([]taas.PaymentRequestResult, error) {
	if f.processPayments == nil {
		return nil, nil
	}
	return f.processPayments(ctx, in)
}

func (f *fakeAPI) ProcessPaymentsByQuery(ctx context.Context, q taas.PaymentsQuery) (taas.PaymentsQueryResult, error) {
	if f.processPaymentsByQuery == nil {
		return taas.PaymentsQueryResult{}, nil
	}
	return f.processPaymentsByQuery(ctx, q)
}

func (f *fakeAPI) UpdateWorkingDays(ctx context.Context, id string, days int) (taas.WorkPeriod, error) {
	if f.updateWorkingDays == nil {
		return taas.WorkPeriod{ID: id, DaysWorked: days}, nil
	}
	return f.updateWorkingDays(ctx, id, days)
}

func (f *fakeAPI) UpdateResourceBookingBillingAccount(ctx context.Context, id string, accountID int64) (taas.ResourceBooking, error) {
	if f.updateResourceBookingBillingAccount == nil {
		return taas.ResourceBooking{ID: id, BillingAccountID: &accountID}, nil
	}
	return f.updateResourceBookingBillingAccount(ctx, id, accountID)
}

type sentNotification struct {
	Severity Severity
	Message  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, severity Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Severity: severity, Message: message})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func (n *recordingNotifier) last() sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentNotification{}
	}
	return n.sent[len(n.sent)-1]
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ObserveWorkflow(workflow, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[workflow+"/"+outcome]++
}

func (r *countingRecorder) count(workflow, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[workflow+"/"+outcome]
}

// booking builds a placed resource booking with one work period in the test week.
func booking(n int, billingAccountID int64, daysWorked, daysPaid int) taas.ResourceBooking {
	rb := taas.ResourceBooking{
		ID:         fmt.Sprintf("rb%d", n),
		ProjectID:  17000 + int64(n),
		JobID:      fmt.Sprintf("job%d", n),
		MemberRate: decimal.NewFromInt(1000),
		Status:     taas.ResourceBookingStatusPlaced,
		Job:        &taas.Job{ID: fmt.Sprintf("job%d", n), Title: "Engineer"},
		WorkPeriods: []taas.WorkPeriod{{
			ID:            fmt.Sprintf("wp%d", n),
			UserHandle:    fmt.Sprintf("user%d", n),
			StartDate:     "2021-06-06",
			EndDate:       "2021-06-12",
			DaysWorked:    daysWorked,
			DaysPaid:      daysPaid,
			PaymentStatus: "pending",
		}},
	}
	if billingAccountID != 0 {
		rb.BillingAccountID = &billingAccountID
	}
	return rb
}

// pageOf builds n payable bookings; ids in disabled get no billing account.
func pageOf(n int, disabled ...int) []taas.ResourceBooking {
	off := map[int]bool{}
	for _, i := range disabled {
		off[i] = true
	}
	out := make([]taas.ResourceBooking, 0, n)
	for i := 1; i <= n; i++ {
		var account int64 = 80000000 + int64(i)
		if off[i] {
			account = 0
		}
		out = append(out, booking(i, account, 5, 0))
	}
	return out
}

func servePage(items []taas.ResourceBooking, total int) func(context.Context, taas.ResourceBookingQuery) (taas.ResourceBookingPage, error) {
	return func(ctx context.Context, q taas.ResourceBookingQuery) (taas.ResourceBookingPage, error) {
		pages := (total + q.PerPage - 1) / q.PerPage
		return taas.ResourceBookingPage{
			Items:      items,
			Pagination: taas.Pagination{TotalCount: total, PageCount: pages, PageNumber: q.Page, PageSize: q.PerPage},
		}, nil
	}
}

func newTestService(t *testing.T, api *fakeAPI) (*Service, *recordingNotifier, *countingRecorder) {
	t.Helper()
	store := NewStore(NewState(testNow, DefaultPageSize))
	notifier := &recordingNotifier{}
	metrics := &countingRecorder{}
	svc := NewService(store, api, notifier, Options{
		SettleDelay: time.Millisecond,
		Now:         func() time.Time { return testNow },
		Metrics:     metrics,
	})
	return svc, notifier, metrics
}

// loadedState reduces a successful page load of periods into a fresh state.
func loadedState(pageSize, total int, periods []PeriodWithData) *State {
	s := NewState(testNow, pageSize)
	handle := &CancelHandle{}
	s = Reduce(s, LoadPagePending{Cancel: handle})
	return Reduce(s, LoadPageSuccess{Cancel: handle, Periods: periods, TotalCount: total, PageCount: (total + pageSize - 1) / pageSize})
}

func checkSelectionInvariant(t *testing.T, s *State) {
	t.Helper()
	for id := range s.PeriodsSelected {
		if _, disabled := s.PeriodsDisabled[id]; disabled {
			t.Fatalf("period %s is both selected and disabled", id)
		}
	}
}
