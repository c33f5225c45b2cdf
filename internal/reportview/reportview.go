// Package reportview renders reports as text tables.
package reportview

import (
	"fmt"
	"io"
	"strconv"

	"absence-tracker/internal/attendance"
	"absence-tracker/internal/factors"
	"absence-tracker/internal/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const timeLayout = "2006-01-02 15:04"

type View struct {
	out   io.Writer
	style table.Style
}

// New renders with rounded box drawing characters, for terminals.
func New(out io.Writer) View {
	return View{out: out, style: table.StyleRounded}
}

// NewPlain renders with ASCII only, for mail bodies.
func NewPlain(out io.Writer) View {
	return View{out: out, style: table.StyleDefault}
}

func (v View) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(v.style)
	t.SetOutputMirror(v.out)
	return t
}

func (v View) Title(title string) {
	fmt.Fprintf(v.out, "\n%s\n", title)
}

func summaryHeader() table.Row {
	header := table.Row{"課程名稱"}
	for _, s := range attendance.Statuses {
		header = append(header, string(s))
	}
	return append(header, "總缺課數量", "應計節次", "總天數")
}

// SummaryRows returns the cells of every course of the report in display
// order, the header row is not included.
func SummaryRows(courses []attendance.CourseSummary) [][]string {
	rows := make([][]string, len(courses))
	for i, c := range courses {
		row := []string{c.Course}
		for _, n := range c.Counts {
			row = append(row, strconv.Itoa(n))
		}
		factor := "-"
		if c.Factor > 0 {
			factor = strconv.Itoa(c.Factor)
		}
		rows[i] = append(row, strconv.Itoa(c.TotalAbsent()), factor, c.TotalDays.String())
	}
	return rows
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func (v View) Summary(courses []attendance.CourseSummary) {
	if len(courses) == 0 {
		fmt.Fprintln(v.out, "無缺曠課記錄。")
		return
	}

	t := v.newTable()
	t.AppendHeader(summaryHeader())
	for _, row := range SummaryRows(courses) {
		t.AppendRow(toRow(row))
	}

	var configs []table.ColumnConfig
	for i := 2; i <= len(attendance.Statuses)+4; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	t.Render()
}

func (v View) Warnings(warnings []attendance.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(v.out, "警告: 課程【%s】缺課 %d 節但缺少應計節次，總天數無法計算 (%s)", w.Course, w.Absent, attendance.UnknownDays)
		if w.Suggestion != "" {
			fmt.Fprintf(v.out, "，是否為【%s】?", w.Suggestion)
		}
		fmt.Fprintln(v.out)
	}
}

// Records lists the raw attendance records.
func (v View) Records(records []attendance.Record) {
	if len(records) == 0 {
		fmt.Fprintln(v.out, "無缺曠課記錄。")
		return
	}

	t := v.newTable()
	t.AppendHeader(table.Row{"課程名稱", "缺曠狀態", "週別", "節次"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Course, string(r.Status), r.Week, r.Period})
	}
	t.Render()
}

func (v View) LeaveWeeks(weeks []string) {
	if len(weeks) == 0 {
		fmt.Fprintln(v.out, "無假單記錄。")
		return
	}
	for _, week := range weeks {
		fmt.Fprintf(v.out, "假單記錄於: 週%s\n", week)
	}
}

func (v View) Factors(f *factors.Factors) {
	t := v.newTable()
	t.AppendHeader(table.Row{"課程名稱", "應計節次"})
	for _, course := range f.Keys() {
		periods, _ := f.Get(course)
		t.AppendRow(table.Row{course, periods})
	}
	t.Render()
}

func (v View) History(runs []history.RunInfo) {
	t := v.newTable()
	t.AppendHeader(table.Row{"Id", "Time", "Records", "Courses", "Absences", "Warnings"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.Id,
			r.RanAt.Format(timeLayout),
			r.Records,
			r.Courses,
			r.TotalAbsent,
			r.Warnings,
		})
	}
	t.Render()
}

// Run renders a stored run the way a fresh report is shown.
func (v View) Run(run history.Run) {
	fmt.Fprintf(v.out, "%s (%s)\n", run.Id, run.RanAt.Format(timeLayout))
	v.Summary(run.Courses)
	v.Warnings(run.Warnings)
	v.Title("假單記錄週別")
	v.LeaveWeeks(run.LeaveWeeks)
}
