package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// columnMap resolves header names to column positions. Input files come
// from several upstream providers that disagree on capitalisation and
// naming, so lookups go through candidate lists instead of exact names.
type columnMap map[string]int

func newColumnMap(header []string) columnMap {
	m := make(columnMap, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, taken := m[key]; !taken {
			m[key] = i
		}
	}
	return m
}

// find returns the position of the first candidate present in the header.
func (m columnMap) find(candidates ...string) (int, bool) {
	for _, cand := range candidates {
		if idx, ok := m[cand]; ok {
			return idx, true
		}
	}
	return 0, false
}

// optional returns the position of the first candidate present in the
// header, or -1 when none is; cell yields "" for a negative index, so an
// absent optional column reads as empty rather than as column zero.
func (m columnMap) optional(candidates ...string) int {
	if idx, ok := m.find(candidates...); ok {
		return idx
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloatCell(row []string, idx int) (float64, bool) {
	raw := strings.ReplaceAll(cell(row, idx), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntCell(row []string, idx int) (int, bool) {
	raw := cell(row, idx)
	if raw == "" {
		return 0, false
	}
	// Some exports write integer columns as "2021.0".
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// monthLayouts are the date formats seen across the input files.
var monthLayouts = []string{"2006-01-02", "2006-01", "2006/01/02", "01/02/2006"}

// parseMonthCell reads a calendar month from a date-like cell.
func parseMonthCell(row []string, idx int) (domain.YearMonth, bool) {
	raw := cell(row, idx)
	if raw == "" {
		return domain.YearMonth{}, false
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.YearMonthOf(t), true
		}
	}
	return domain.YearMonth{}, false
}

func timeMonth(m int) time.Month {
	return time.Month(m)
}

// NormalizeTicker canonicalises a ticker symbol for joining: surrounding
// whitespace is stripped and the symbol is upper-cased.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// zeroPadFIPS left-pads a county FIPS code to the standard five digits;
// CSV round-trips routinely strip the leading zero from New England codes.
func zeroPadFIPS(raw string) string {
	code := strings.TrimSpace(raw)
	// Strip a float artifact such as "1073.0".
	if dot := strings.IndexByte(code, '.'); dot > 0 {
		code = code[:dot]
	}
	for len(code) > 0 && len(code) < 5 {
		code = "0" + code
	}
	return code
}
