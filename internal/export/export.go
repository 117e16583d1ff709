// Package export builds the participant spreadsheet the organizers hand to
// the front desk and archive after the event.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lightera/bundokai/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Participants"

var headers = []string{"ID", "Name", "Email", "Department", "QR Code", "Dependents", "Checked In", "Check-in Time"}

type ParticipantLister interface {
	ListWithStatus(ctx context.Context, ids []int64) ([]*model.ParticipantSummary, error)
}

type Exporter struct {
	participants ParticipantLister
}

func NewExporter(participants ParticipantLister) *Exporter {
	return &Exporter{participants: participants}
}

// ParticipantsXLSX renders every participant (or just the given ids) with
// their check-in status into a single-sheet workbook.
func (e *Exporter) ParticipantsXLSX(ctx context.Context, ids []int64) ([]byte, error) {
	rows, err := e.participants.ListWithStatus(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(rows)
}

func buildWorkbook(rows []*model.ParticipantSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for i, p := range rows {
		rowNum := i + 2
		checkedIn := "no"
		checkinTime := ""
		if p.CheckedIn {
			checkedIn = "yes"
			if p.CheckinTime != nil {
				checkinTime = p.CheckinTime.Format("2006-01-02 15:04:05")
			}
		}

		values := []any{p.ID, p.Name, p.Email, p.Department, p.Code, p.DependentsCount, checkedIn, checkinTime}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "B", "C", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "E", "H", 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the suggested download name, date-stamped so repeated
// exports do not overwrite each other.
func Filename(date string) string {
	return fmt.Sprintf("participants_%s.xlsx", date)
}
