package attendance

import "strconv"

// UnknownDays is what Days renders as when no factor is defined for a course.
const UnknownDays = "unknown"

// Days is the number of absence days of a course, it is only Known when the
// course has a factor. The zero value is unknown.
type Days struct {
	Value float64
	Known bool
}

// DaysOf converts absent periods into days, the factor must be positive.
func DaysOf(absent, factor int) Days {
	if absent == 0 {
		return Days{Value: 0, Known: true}
	}
	return Days{Value: float64(absent) / float64(factor), Known: true}
}

// String renders the days with two decimals (round half to even on the float
// value, "0.125" -> "0.12") or UnknownDays.
func (d Days) String() string {
	if !d.Known {
		return UnknownDays
	}
	return strconv.FormatFloat(d.Value, 'f', 2, 64)
}
