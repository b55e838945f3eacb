package gym

import (
	"fmt"
	"math"
	"time"
)

// Source tells where an occupancy value comes from.
type Source string

const (
	// SourceNone is the source of the reading before the first poll.
	SourceNone Source = ""
	// SourceOpen readings were scraped from the studio page.
	SourceOpen Source = "open"
	// SourceClosed readings are zero because the gym is closed.
	SourceClosed Source = "closed"
	// SourceFailed readings are zero because scraping failed.
	SourceFailed Source = "failed"
)

// Occupancy is a gym capacity utilization reading, as a percentage.
// Values are usually in [0,100] but they come from a third party and
// are kept as they were scraped.
type Occupancy struct {
	Timestamp time.Time
	Percent   float64
	Source    Source
}

// Closed returns a zero reading for a closed gym.
func Closed(t time.Time) *Occupancy {
	return &Occupancy{Timestamp: t, Source: SourceClosed}
}

// Failed returns a zero reading for a failed scrape.
func Failed(t time.Time) *Occupancy {
	return &Occupancy{Timestamp: t, Source: SourceFailed}
}

func (o *Occupancy) String() string {
	return fmt.Sprintf("(%s, %.1f%%, %s)",
		o.Timestamp.Format(time.RFC3339), o.Percent, o.Source)
}

// Equal compares two readings. Percentages are considered equal if
// they differ in less than tolerance.
func (o *Occupancy) Equal(other *Occupancy, tolerance float64) bool {
	if !o.Timestamp.Equal(other.Timestamp) {
		return false
	}

	if o.Source != other.Source {
		return false
	}

	if math.Abs(o.Percent-other.Percent) > tolerance {
		return false
	}

	return true
}
