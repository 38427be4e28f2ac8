package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a (year, month) filing period.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod accepts "YYYY-MM" and "MM/YYYY", the two layouts found in
// filing records and reference tables.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	var yearPart, monthPart string
	switch {
	case strings.Contains(s, "-"):
		parts := strings.SplitN(s, "-", 2)
		yearPart, monthPart = parts[0], parts[1]
	case strings.Contains(s, "/"):
		parts := strings.SplitN(s, "/", 2)
		monthPart, yearPart = parts[0], parts[1]
	default:
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM or MM/YYYY", s)
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: bad year", s)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid period %q: bad month", s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month, wrapping year boundaries.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p precedes q chronologically.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// IsZero reports whether p is the zero period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalJSON encodes the period as its "YYYY-MM" string form.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the same layouts as ParsePeriod.
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
