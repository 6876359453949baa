package metadata

import "time"

// FarFuture stands in for the end date of a still-open epoch, so open
// epochs participate in containment checks like any other epoch.
var FarFuture = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)

// Epoch is one metadata-asserted validity interval for a
// network/station/location/channel combination.
type Epoch struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Start    time.Time
	End      time.Time
	Open     bool // still active, End is meaningless
}

// Contains reports whether day falls inside the epoch, bounds inclusive.
func (e Epoch) Contains(day time.Time) bool {
	end := e.End
	if e.Open {
		end = FarFuture
	}
	return !day.Before(e.Start) && !day.After(end)
}
