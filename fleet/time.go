package fleet

import (
	"time"
)

// =============================================================================
// DATE - Calendar day (assignments and requests are day-granular)
// =============================================================================

// Date is a calendar day. Assignment intervals and requested dates are
// day-granular; price points and approval stamps are instant-granular.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(at time.Time) Date {
	return NewDate(at.Year(), at.Month(), at.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// StartOfDay returns the first instant of the day.
func (d Date) StartOfDay() time.Time { return d.t }

// EndOfDay returns 23:59:59 of the day. Back-dated approvals price against
// this instant so that any price change made during the requested day is
// already in effect.
func (d Date) EndOfDay() time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 23, 59, 59, 0, d.t.Location())
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON/UnmarshalJSON keep Date as "YYYY-MM-DD" on the wire.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
