package appointments

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medibook/internal/models"
)

var exportColumns = []string{"Date", "Time", "Doctor", "Specialty", "Type", "Status", "Notes"}

// ExportExcel writes the appointments as a one-sheet Excel workbook.
func ExportExcel(w io.Writer, appts []models.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Appointments"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	// Bold header
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for row, a := range appts {
		values := []interface{}{
			a.StartsAt.Format("2006-01-02"),
			fmt.Sprintf("%s – %s", a.StartsAt.Format("15:04"), a.EndsAt.Format("15:04")),
			a.DoctorName,
			a.Specialty,
			string(a.ConsultationType),
			a.Status,
			a.Notes,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
