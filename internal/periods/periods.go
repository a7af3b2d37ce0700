// Package periods plans the date windows a comparison report runs over.
package periods

import (
	"fmt"
	"time"
)

// DateLayout is the wire format the reporting API expects for dates.
const DateLayout = "2006-01-02"

// yoyWindowDays is the span of each window in year-over-year mode.
const yoyWindowDays = 30

// InvalidArgumentError represents a request rejected before any network call.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: reason}
}

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider is the default implementation that uses the system clock
type DefaultTimeProvider struct{}

// Now returns the current time without any adjustments
func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// Window is one inclusive start/end date range. Bounds are UTC midnights and
// Start never follows End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the window length in days, counting both bounds.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// StartDate returns the start bound in the reporting API's date format.
func (w Window) StartDate() string {
	return w.Start.Format(DateLayout)
}

// EndDate returns the end bound in the reporting API's date format.
func (w Window) EndDate() string {
	return w.End.Format(DateLayout)
}

func (w Window) String() string {
	return w.StartDate() + " to " + w.EndDate()
}

// PeriodLabel returns the label for the window at the given list position.
// Labels are 1-based: the most recent window is Period_1.
func PeriodLabel(index int) string {
	return fmt.Sprintf("Period_%d", index+1)
}

// PeriodLabels returns the labels for a plan of n windows, in window order.
func PeriodLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = PeriodLabel(i)
	}
	return labels
}

// Planner computes window plans. The zero value is not usable; construct it
// with NewPlanner.
type Planner struct {
	timeProvider TimeProvider
}

func NewPlanner(timeProvider ...TimeProvider) *Planner {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}

	return &Planner{
		timeProvider: provider,
	}
}

// Plan returns the ordered list of windows for one report request, most
// recent first. Windows never include today: the freshest bound is yesterday,
// because the reporting source publishes complete days only.
//
// For a numeric selector of D days and count N, the plan is N back-to-back
// windows of D days with no gap and no overlap. For year-over-year the count
// is ignored and the plan is the trailing 30 days plus the same span exactly
// 365 days earlier.
func (p *Planner) Plan(sel Selector, count int) ([]Window, error) {
	if count < 1 {
		return nil, NewInvalidArgumentError(fmt.Sprintf("period count must be at least 1, got %d", count))
	}

	now := p.timeProvider.Now(time.UTC)
	yesterday := truncateToDay(now).AddDate(0, 0, -1)

	if sel.YearOverYear {
		current := Window{
			Start: yesterday.AddDate(0, 0, -(yoyWindowDays - 1)),
			End:   yesterday,
		}
		historical := Window{
			Start: current.Start.AddDate(0, 0, -365),
			End:   current.End.AddDate(0, 0, -365),
		}
		return []Window{current, historical}, nil
	}

	if sel.Days < 1 {
		return nil, NewInvalidArgumentError(fmt.Sprintf("period days must be positive, got %d", sel.Days))
	}

	windows := make([]Window, 0, count)
	end := yesterday
	for i := 0; i < count; i++ {
		start := end.AddDate(0, 0, -(sel.Days - 1))
		windows = append(windows, Window{Start: start, End: end})
		end = start.AddDate(0, 0, -1)
	}
	return windows, nil
}

func truncateToDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
