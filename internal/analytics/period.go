package analytics

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the format of period bounds.
const DateLayout = "2006-01-02"

// DefaultPeriodDays is the length of the period used when none is given.
const DefaultPeriodDays = 7

// ErrBadPeriod is returned for unparseable or inverted period bounds.
var ErrBadPeriod = errors.New("invalid period")

// Period is an inclusive range of whole days.
type Period struct {
	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

// Start returns the first instant of the period.
func (p Period) Start() time.Time { return p.From }

// End returns the last second of the period.
func (p Period) End() time.Time { return p.To.Add(24*time.Hour - time.Second) }

// Filter selects trips of the given vehicles inside the period.
func (p Period) Filter(codes []string) TripFilter {
	return TripFilter{VehicleCodes: codes, From: p.From, To: p.To}
}

// MarshalJSON renders the period as dates.
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(`{"from":"` + p.From.Format(DateLayout) + `","to":"` + p.To.Format(DateLayout) + `"}`), nil
}

// ParsePeriod reads YYYY-MM-DD bounds in now's location. An empty to means
// today; an empty from means DefaultPeriodDays ending at to.
func ParsePeriod(from, to string, now time.Time) (Period, error) {
	loc := now.Location()
	y, m, d := now.Date()
	p := Period{To: time.Date(y, m, d, 0, 0, 0, 0, loc)}

	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: to %q is not YYYY-MM-DD", ErrBadPeriod, to)
		}
		p.To = t
	}
	p.From = p.To.AddDate(0, 0, -(DefaultPeriodDays - 1))
	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: from %q is not YYYY-MM-DD", ErrBadPeriod, from)
		}
		p.From = t
	}
	if p.From.After(p.To) {
		return Period{}, fmt.Errorf("%w: from %s is after to %s", ErrBadPeriod, p.From.Format(DateLayout), p.To.Format(DateLayout))
	}
	return p, nil
}
