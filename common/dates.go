package common

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidDateRange is an error returned when a date range fails validation
type ErrInvalidDateRange struct {
	Reason string
}

func (e ErrInvalidDateRange) Error() string {
	return fmt.Sprintf("invalid date range: %s", e.Reason)
}

// DateRange is a closed temporal interval [Start, End]
type DateRange struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// ParseDateRange parses and validates a pair of date strings (ISO-like formats accepted)
func ParseDateRange(startDate, endDate string) (DateRange, error) {
	start, err := dateparse.ParseStrict(startDate)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange{Reason: fmt.Sprintf("cannot parse start date %q: %v", startDate, err)}
	}
	end, err := dateparse.ParseStrict(endDate)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange{Reason: fmt.Sprintf("cannot parse end date %q: %v", endDate, err)}
	}
	dr := DateRange{Start: start, End: end}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Validate returns ErrInvalidDateRange if Start is after End
func (d DateRange) Validate() error {
	if d.Start.After(d.End) {
		return ErrInvalidDateRange{Reason: fmt.Sprintf("start date %s is after end date %s",
			d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"))}
	}
	return nil
}

// String formats the range as "start,end" (RFC3339), the format expected by most catalog services
func (d DateRange) String() string {
	return d.Start.Format(time.RFC3339) + "," + d.End.Format(time.RFC3339)
}
