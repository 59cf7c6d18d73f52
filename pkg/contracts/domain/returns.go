package domain

// PriceObservation is a raw per-ticker monthly observation. Exactly one of
// Price or Return is meaningful: the builder derives simple returns from
// prices, or passes returns through unchanged.
type PriceObservation struct {
	Ticker string    `json:"ticker"`
	Month  YearMonth `json:"month"`
	Price  float64   `json:"price,omitempty"`
	Return float64   `json:"return,omitempty"`
}

// ReturnRecord is one ticker-month of the return series. RetFwd1M is the
// return of the immediately following calendar month; it is nil for a
// ticker's last observed month and across series gaps, since forward returns
// never bridge non-adjacent months.
type ReturnRecord struct {
	Ticker        string    `json:"ticker" csv:"Ticker"`
	Month         YearMonth `json:"month" csv:"Month"`
	MonthlyReturn float64   `json:"monthly_return" csv:"MonthlyReturn"`
	RetFwd1M      *float64  `json:"ret_fwd_1m" csv:"RetFwd1M"`
}
