package attendance

import "fmt"

// AttendanceColumns locates the fields of a record in a row of the attendance
// table, columns are zero-indexed.
type AttendanceColumns struct {
	MinCells int `json:"min_cells"`
	Week     int `json:"week"`
	Course   int `json:"course"`
	Status   int `json:"status"`
	Period   int `json:"period"`
}

// LeaveFormColumns locates the week in a row of the leave form table.
type LeaveFormColumns struct {
	MinCells int `json:"min_cells"`
	Week     int `json:"week"`
}

// Layout is the positional column mapping of both report tables, the header
// row is never used to discover columns.
type Layout struct {
	Attendance AttendanceColumns `json:"attendance"`
	LeaveForm  LeaveFormColumns  `json:"leave_form"`
}

// DefaultLayout matches the tables of the student portal:
//
//	attendance: 週別 | 日期 | 課程名稱 | 缺曠 | 節次
//	leave form: 假單編號 | 週別 | ...
func DefaultLayout() Layout {
	return Layout{
		Attendance: AttendanceColumns{
			MinCells: 5,
			Week:     0,
			Course:   2,
			Status:   3,
			Period:   4,
		},
		LeaveForm: LeaveFormColumns{
			MinCells: 2,
			Week:     1,
		},
	}
}

func checkColumn(table, name string, column, minCells int) error {
	if column < 0 {
		return fmt.Errorf("layout: %s.%s: column must not be negative (got %d)", table, name, column)
	}
	if column >= minCells {
		return fmt.Errorf(
			"layout: %s.%s: column %d is not covered by min_cells %d",
			table, name, column, minCells,
		)
	}
	return nil
}

// Validate makes sure every referenced column exists in any row that is not
// dropped for being too short.
func (l Layout) Validate() error {
	a := l.Attendance
	checks := []struct {
		table    string
		name     string
		column   int
		minCells int
	}{
		{"attendance", "week", a.Week, a.MinCells},
		{"attendance", "course", a.Course, a.MinCells},
		{"attendance", "status", a.Status, a.MinCells},
		{"attendance", "period", a.Period, a.MinCells},
		{"leave_form", "week", l.LeaveForm.Week, l.LeaveForm.MinCells},
	}
	for _, c := range checks {
		err := checkColumn(c.table, c.name, c.column, c.minCells)
		if err != nil {
			return err
		}
	}
	return nil
}
