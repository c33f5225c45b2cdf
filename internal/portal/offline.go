package portal

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
)

// FileSource reads the two report pages from saved HTML files instead of the
// portal, Login does nothing.
type FileSource struct {
	AttendanceFile string
	LeaveFormFile  string
	TableId        string
}

func (FileSource) Login(ctx context.Context, account, password string) error {
	return nil
}

func (s FileSource) FetchAttendance(ctx context.Context) ([][]string, error) {
	return s.readTable(ctx, s.AttendanceFile)
}

// FetchLeaveForms returns no rows when LeaveFormFile is empty.
func (s FileSource) FetchLeaveForms(ctx context.Context) ([][]string, error) {
	if s.LeaveFormFile == "" {
		return nil, nil
	}
	return s.readTable(ctx, s.LeaveFormFile)
}

func (s FileSource) readTable(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(contents))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rows, err := ParseTable(doc, s.TableId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
