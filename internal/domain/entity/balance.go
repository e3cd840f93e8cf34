package entity

import "time"

// UserBalance is the spendable stored value of a user in minor units
type UserBalance struct {
	UserID    string
	Balance   int64
	UpdatedAt time.Time
}

// DebitResult reports the outcome of a guarded debit.
// Applied is false when the balance did not cover the amount; Balance then
// holds the unchanged current balance.
type DebitResult struct {
	Applied  bool
	Balance  int64
	Required int64
}

// Missing returns the shortfall of a rejected debit
func (r DebitResult) Missing() int64 {
	if r.Applied || r.Required <= r.Balance {
		return 0
	}
	return r.Required - r.Balance
}
