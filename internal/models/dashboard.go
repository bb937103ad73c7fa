package models

// MonthlyCount is one month's bucket in a count-by-month aggregation.
// Month is formatted YYYY-MM.
type MonthlyCount struct {
	Month string `db:"month" json:"month"`
	Count int    `db:"count" json:"count"`
}

// MonthlyAmount is one month's bucket in an amount-by-month aggregation.
type MonthlyAmount struct {
	Month  string  `db:"month" json:"month"`
	Amount float64 `db:"amount" json:"amount"`
}
