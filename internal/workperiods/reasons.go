package workperiods

import "encoding/json"

// Reasons is a set of reasons preventing a period from being paid.
type Reasons uint8

const (
	ReasonNoBillingAccount Reasons = 1 << iota
	ReasonNoDaysToPayFor
	ReasonNotAllowFutureWeek
)

var reasonNames = []struct {
	reason Reasons
	name   string
}{
	{ReasonNoBillingAccount, "NO_BILLING_ACCOUNT"},
	{ReasonNoDaysToPayFor, "NO_DAYS_TO_PAY_FOR"},
	{ReasonNotAllowFutureWeek, "NOT_ALLOW_FUTURE_WEEK"},
}

// Has reports whether every reason in r2 is present.
func (r Reasons) Has(r2 Reasons) bool { return r&r2 == r2 }

// Add returns the union.
func (r Reasons) Add(r2 Reasons) Reasons { return r | r2 }

// Remove returns r without r2.
func (r Reasons) Remove(r2 Reasons) Reasons { return r &^ r2 }

// Empty reports whether no reason is set.
func (r Reasons) Empty() bool { return r == 0 }

// Names lists the set reasons in a stable order.
func (r Reasons) Names() []string {
	names := make([]string, 0, len(reasonNames))
	for _, rn := range reasonNames {
		if r.Has(rn.reason) {
			names = append(names, rn.name)
		}
	}
	return names
}

func (r Reasons) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Names())
}
