// Package attendance turns the rows scraped off the attendance report into
// records and reconciles them against the course factors.
package attendance

// Status is the absence type label shown in the status column of the
// attendance report.
type Status string

const (
	StatusLeave  Status = "事假"
	StatusSick   Status = "病假"
	StatusTardy  Status = "遲到"
	StatusAbsent Status = "曠課"
)

// Statuses lists the recognized statuses in display order, CourseSummary.Counts
// is indexed the same way.
var Statuses = [4]Status{StatusLeave, StatusSick, StatusTardy, StatusAbsent}

// Index returns the position of the status in Statuses, or -1 when the status
// is not one of the recognized absence types.
func (s Status) Index() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return -1
}

func (s Status) Recognized() bool {
	return s.Index() >= 0
}

// Record is one row of the attendance report.
type Record struct {
	Course string
	Status Status
	// Week and Period are informational only.
	Week   string
	Period string
}
