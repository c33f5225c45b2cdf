package attendance

import (
	"fmt"
	"math/rand"
	"testing"

	"absence-tracker/internal/factors"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newFactors(t testing.TB, pairs ...any) *factors.Factors {
	f := factors.New()
	for i := 0; i < len(pairs); i += 2 {
		err := f.Set(pairs[i].(string), pairs[i+1].(int))
		if err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func records(course string, status Status, n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{Course: course, Status: status, Week: fmt.Sprint(i + 1), Period: "2"}
	}
	return out
}

func courseNames(r Report) []string {
	var names []string
	for _, c := range r.Courses {
		names = append(names, c.Course)
	}
	return names
}

func TestAggregateExample(t *testing.T) {
	f := newFactors(t, "Math", 4, "Art", 2)
	var input []Record
	input = append(input, records("Math", StatusAbsent, 3)...)
	input = append(input, records("Bio", StatusSick, 1)...)

	report := Aggregate(input, f)
	require.Equal(t, []string{"Math", "Art", "Bio"}, courseNames(report))

	math, _ := report.Course("Math")
	require.Equal(t, 3, math.Count(StatusAbsent))
	require.Equal(t, 3, math.TotalAbsent())
	require.Equal(t, 4, math.Factor)
	require.Equal(t, "0.75", math.TotalDays.String())

	art, _ := report.Course("Art")
	require.Equal(t, 0, art.TotalAbsent())
	require.Equal(t, "0.00", art.TotalDays.String())

	bio, _ := report.Course("Bio")
	require.Equal(t, 1, bio.Count(StatusSick))
	require.Equal(t, 0, bio.Factor)
	require.False(t, bio.TotalDays.Known)
	require.Equal(t, UnknownDays, bio.TotalDays.String())

	require.Equal(t, []Warning{{Course: "Bio", Absent: 1}}, report.Warnings)
}

func TestAggregateOrder(t *testing.T) {
	f := newFactors(t, "B", 2, "A", 4)
	var input []Record
	input = append(input, records("C", StatusTardy, 1)...)
	input = append(input, records("A", StatusLeave, 2)...)

	report := Aggregate(input, f)
	require.Equal(t, []string{"B", "A", "C"}, courseNames(report))
}

func TestAggregateUnmappedSorted(t *testing.T) {
	f := newFactors(t, "Zoology", 3)
	var input []Record
	for _, course := range []string{"Physics", "Art", "程式設計", "Biology", "Art"} {
		input = append(input, records(course, StatusAbsent, 1)...)
	}

	report := Aggregate(input, f)
	require.Equal(
		t,
		[]string{"Zoology", "Art", "Biology", "Physics", "程式設計"},
		courseNames(report),
	)

	art, _ := report.Course("Art")
	require.Equal(t, 2, art.TotalAbsent())
	require.Len(t, report.Warnings, 4)
}

func TestAggregateCounts(t *testing.T) {
	f := newFactors(t, "程式設計", 3)
	input := []Record{
		{Course: "程式設計", Status: StatusLeave},
		{Course: "程式設計", Status: StatusSick},
		{Course: "程式設計", Status: StatusSick},
		{Course: "程式設計", Status: StatusTardy},
		{Course: "程式設計", Status: StatusAbsent},
		{Course: "程式設計", Status: "公假"},
		{Course: "程式設計", Status: ""},
	}

	report := Aggregate(input, f)
	require.Len(t, report.Courses, 1)

	summary := report.Courses[0]
	require.Equal(t, [4]int{1, 2, 1, 1}, summary.Counts)
	require.Equal(t, 0, summary.Count("公假"))
	require.Equal(t, 5, summary.TotalAbsent())
	require.Equal(t, "1.67", summary.TotalDays.String())
	require.Empty(t, report.Warnings)
}

func TestAggregateUnrecognizedOnly(t *testing.T) {
	report := Aggregate([]Record{{Course: "Chemistry", Status: "公假"}}, factors.New())

	require.Len(t, report.Courses, 1)
	require.Equal(t, 0, report.Courses[0].TotalAbsent())
	require.Equal(t, UnknownDays, report.Courses[0].TotalDays.String())
	require.Empty(t, report.Warnings)
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil, factors.New())
	require.Empty(t, report.Courses)
	require.Empty(t, report.Warnings)

	rows := [][]string{{"週別", "日期", "課程名稱", "缺曠", "節次"}}
	report = Aggregate(ExtractRecords(DefaultLayout().Attendance, rows), factors.New())
	require.Empty(t, report.Courses)
}

func TestAggregateFactorsOnly(t *testing.T) {
	report := Aggregate(nil, newFactors(t, "Math", 4, "Art", 2))

	expected := []CourseSummary{
		{Course: "Math", Factor: 4, TotalDays: Days{Value: 0, Known: true}},
		{Course: "Art", Factor: 2, TotalDays: Days{Value: 0, Known: true}},
	}
	if diff := cmp.Diff(expected, report.Courses); diff != "" {
		t.Fatal(diff)
	}
}

func TestAggregateSuggestion(t *testing.T) {
	f := newFactors(t, "Data Structures", 3, "Calculus", 4)
	report := Aggregate(records("Data  Structures", StatusAbsent, 2), f)

	require.Equal(t, []Warning{{
		Course:     "Data  Structures",
		Absent:     2,
		Suggestion: "Data Structures",
	}}, report.Warnings)
}

func TestAggregateDoesNotModifyFactors(t *testing.T) {
	f := newFactors(t, "Math", 4)
	before := f.Clone()
	Aggregate(records("Bio", StatusSick, 1), f)
	require.True(t, before.Equal(f))
}

func randomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range str {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

func TestAggregateProperties(t *testing.T) {
	rndm := rand.New(rand.NewSource(42))
	statuses := []Status{StatusLeave, StatusSick, StatusTardy, StatusAbsent, "公假", "喪假"}

	for iteration := 0; iteration < 200; iteration++ {
		courses := make([]string, 1+rndm.Intn(6))
		for i := range courses {
			courses[i] = randomString(rndm, 1+rndm.Intn(3))
		}

		f := factors.New()
		for _, c := range courses {
			if rndm.Intn(2) == 0 {
				require.NoError(t, f.Set(c, 1+rndm.Intn(8)))
			}
		}

		var input []Record
		recognized := map[string]int{}
		for i := rndm.Intn(40); i > 0; i-- {
			r := Record{
				Course: courses[rndm.Intn(len(courses))],
				Status: statuses[rndm.Intn(len(statuses))],
			}
			if r.Status.Recognized() {
				recognized[r.Course]++
			}
			input = append(input, r)
		}

		report := Aggregate(input, f)

		seen := map[string]bool{}
		for i, summary := range report.Courses {
			require.False(t, seen[summary.Course], "course listed twice")
			seen[summary.Course] = true

			sum := 0
			for _, n := range summary.Counts {
				require.GreaterOrEqual(t, n, 0)
				sum += n
			}
			require.Equal(t, sum, summary.TotalAbsent())
			require.Equal(t, recognized[summary.Course], summary.TotalAbsent())

			factor, ok := f.Get(summary.Course)
			if ok {
				require.Equal(t, f.Keys()[i], summary.Course)
				require.True(t, summary.TotalDays.Known)
				require.Equal(
					t,
					fmt.Sprintf("%.2f", float64(summary.TotalAbsent())/float64(factor)),
					summary.TotalDays.String(),
				)
			} else {
				require.GreaterOrEqual(t, i, f.Len())
				require.Equal(t, UnknownDays, summary.TotalDays.String())
			}
		}

		for i := f.Len() + 1; i < len(report.Courses); i++ {
			require.Less(t, report.Courses[i-1].Course, report.Courses[i].Course)
		}
	}
}
