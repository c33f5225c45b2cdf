package attendance

import (
	"sort"

	"absence-tracker/internal/factors"
	"absence-tracker/lib/textutil"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a factor key
// to be suggested for an unmapped course.
const suggestionThreshold = 0.85

// CourseSummary is one row of the report.
type CourseSummary struct {
	Course string
	// Counts is indexed like Statuses.
	Counts [len(Statuses)]int
	// Factor is 0 when the course has no factor.
	Factor    int
	TotalDays Days
}

func (c CourseSummary) Count(status Status) int {
	i := status.Index()
	if i < 0 {
		return 0
	}
	return c.Counts[i]
}

// TotalAbsent is the sum of the counts of every recognized status.
func (c CourseSummary) TotalAbsent() int {
	total := 0
	for _, n := range c.Counts {
		total += n
	}
	return total
}

// Warning is raised for a course with absences but without a factor, its days
// cannot be computed.
type Warning struct {
	Course string
	Absent int
	// Suggestion is the factor key that looks like a misspelling of Course, if any.
	Suggestion string
}

type Report struct {
	Courses  []CourseSummary
	Warnings []Warning
}

// Course returns the summary of a course by name.
func (r Report) Course(name string) (CourseSummary, bool) {
	for _, c := range r.Courses {
		if c.Course == name {
			return c, true
		}
	}
	return CourseSummary{}, false
}

// Aggregate counts the records per course and status and reconciles them with
// the factors.
//
// Courses are ordered with every course of the factor mapping first, in mapping
// order, followed by every recorded course without a factor, sorted. Records
// with unrecognized statuses are not counted. A course without a factor has
// unknown days even with zero absences, a warning is only raised when it has
// absences.
func Aggregate(records []Record, f *factors.Factors) Report {
	counts := map[string]*[len(Statuses)]int{}
	for _, r := range records {
		c, ok := counts[r.Course]
		if !ok {
			c = &[len(Statuses)]int{}
			counts[r.Course] = c
		}
		i := r.Status.Index()
		if i < 0 {
			continue
		}
		c[i]++
	}

	keys := f.Keys()
	var unmapped []string
	for course := range counts {
		if _, ok := f.Get(course); !ok {
			unmapped = append(unmapped, course)
		}
	}
	sort.Strings(unmapped)

	order := make([]string, 0, len(keys)+len(unmapped))
	order = append(order, keys...)
	order = append(order, unmapped...)

	var report Report
	report.Courses = make([]CourseSummary, 0, len(order))
	for _, course := range order {
		summary := CourseSummary{Course: course}
		if c, ok := counts[course]; ok {
			summary.Counts = *c
		}
		absent := summary.TotalAbsent()

		factor, ok := f.Get(course)
		if ok {
			summary.Factor = factor
			summary.TotalDays = DaysOf(absent, factor)
		} else if absent > 0 {
			suggestion, _ := textutil.ClosestMatch(course, keys, suggestionThreshold)
			report.Warnings = append(report.Warnings, Warning{
				Course:     course,
				Absent:     absent,
				Suggestion: suggestion,
			})
		}

		report.Courses = append(report.Courses, summary)
	}

	return report
}
