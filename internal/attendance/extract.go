package attendance

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ExtractRecords turns the rows of the attendance table into records in table
// order. The first row is the header and is skipped, rows with fewer cells than
// the layout requires or without a course name are dropped.
func ExtractRecords(layout AttendanceColumns, rows [][]string) []Record {
	if len(rows) <= 1 {
		return nil
	}

	var records []Record
	for _, row := range rows[1:] {
		if len(row) == 0 || len(row) < layout.MinCells {
			continue
		}
		course := strings.TrimSpace(row[layout.Course])
		if course == "" {
			continue
		}
		records = append(records, Record{
			Course: course,
			Status: Status(strings.TrimSpace(row[layout.Status])),
			Week:   strings.TrimSpace(row[layout.Week]),
			Period: strings.TrimSpace(row[layout.Period]),
		})
	}
	return records
}

// ExtractLeaveWeeks returns the week of every leave form in table order. Leave
// forms are reported on their own, they never count towards absences.
func ExtractLeaveWeeks(layout LeaveFormColumns, rows [][]string) []string {
	if len(rows) <= 1 {
		return nil
	}

	var weeks []string
	for _, row := range rows[1:] {
		if len(row) == 0 || len(row) < layout.MinCells {
			continue
		}
		weeks = append(weeks, strings.TrimSpace(row[layout.Week]))
	}
	return weeks
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

func weekNumber(week string) (int, bool) {
	groups := leadingNumber.FindStringSubmatch(week)
	if len(groups) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DistinctWeeks removes duplicate and empty week identifiers and orders them by
// their leading week number, ex. "3 (09/15~09/21)" sorts as week 3. Identifiers
// without a number go last in string order.
func DistinctWeeks(weeks []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, w := range weeks {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := weekNumber(out[i])
		b, bok := weekNumber(out[j])
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		default:
			return out[i] < out[j]
		}
	})
	return out
}
