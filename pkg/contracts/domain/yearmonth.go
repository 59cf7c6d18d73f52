package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// YearMonth identifies a calendar month. It is the time key for every joined
// table in the pipeline: brightness, returns, and the panel all key on it.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewYearMonth creates a YearMonth from a year and month number.
func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// YearMonthOf truncates a timestamp to its calendar month.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the canonical "2006-01" form.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return YearMonthOf(t), nil
}

// String renders the canonical "2006-01" form used in CSV output and join logs.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Time returns the first instant of the month in UTC.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.Time().AddDate(0, 1, 0))
}

// Prev returns the preceding calendar month.
func (ym YearMonth) Prev() YearMonth {
	return YearMonthOf(ym.Time().AddDate(0, -1, 0))
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// IsZero reports whether ym is the zero value.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// IsValid checks the month number is within the calendar range.
func (ym YearMonth) IsValid() bool {
	return ym.Year > 0 && ym.Month >= time.January && ym.Month <= time.December
}

// MarshalJSON encodes the canonical string form.
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(ym.String())
}

// UnmarshalJSON accepts the canonical string form.
func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}
