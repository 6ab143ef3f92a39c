// internal/domain/deadline/deadline.go
package deadline

import "time"

// Status classifies a recurring obligation relative to a reference date.
type Status string

const (
	StatusOverdue  Status = "overdue"
	StatusUpcoming Status = "upcoming"
	StatusNormal   Status = "normal"
	StatusUnknown  Status = "unknown" // base date or periodicity is missing
)

// Record represents one trackable recurring obligation (equipment service,
// medical examination, key event). It is a pure view computed on demand from
// the owning record; it is never persisted on its own.
type Record struct {
	Name              string
	Detail            string     // free-form context for reports (position, factors, category)
	BaseDate          *time.Time // date of the last occurrence; nil when never recorded
	PeriodicityMonths int        // 0 means no periodicity configured
	WarningWindowDays int        // domain-specific, e.g. 7/14/30
}

// Classification is the derived state of one Record at a reference date.
type Classification struct {
	Status    Status
	NextDate  *time.Time // nil when Status is StatusUnknown
	DaysUntil int        // negative when overdue; meaningless when Status is StatusUnknown
}

// AddMonths adds n calendar months to a date, clamping the day to the last
// valid day of the resulting month (Jan 31 + 1 month is Feb 28, or Feb 29 in
// a leap year). Date-only arithmetic, no time-zone dependence.
func AddMonths(date time.Time, n int) time.Time {
	month := int(date.Month()) - 1 + n
	year := date.Year() + month/12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}
	day := date.Day()
	if last := daysInMonth(year, time.Month(month+1)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, date.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the whole number of days from one date to another,
// ignoring the time-of-day components. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Classify derives the next due date and status for one obligation.
// Both bounds of the warning window are inclusive: daysUntil == 0 and
// daysUntil == warningWindowDays are both StatusUpcoming.
func Classify(baseDate *time.Time, periodicityMonths int, referenceDate time.Time, warningWindowDays int) Classification {
	if baseDate == nil || periodicityMonths <= 0 {
		return Classification{Status: StatusUnknown}
	}
	next := AddMonths(*baseDate, periodicityMonths)
	days := DaysBetween(referenceDate, next)
	c := Classification{NextDate: &next, DaysUntil: days}
	switch {
	case days < 0:
		c.Status = StatusOverdue
	case days <= warningWindowDays:
		c.Status = StatusUpcoming
	default:
		c.Status = StatusNormal
	}
	return c
}

// Classify evaluates the record at the given reference date.
func (r Record) Classify(referenceDate time.Time) Classification {
	return Classify(r.BaseDate, r.PeriodicityMonths, referenceDate, r.WarningWindowDays)
}
