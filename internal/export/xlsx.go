// Package export renders flux lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/fluxboard/internal/board"
	"github.com/spec-kit/fluxboard/internal/domain"
)

// SheetName is the worksheet holding the flux rows.
const SheetName = "Flux"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers are the column titles, in order.
var Headers = []string{
	"Date", "Client", "Téléphone", "Email", "Adresse", "Ville",
	"Code postal", "Type", "Jeu", "État", "Assigné à",
}

// WriteFluxWorkbook writes rows to w as an xlsx workbook, one line per flux,
// with the same labels the dashboard shows.
func WriteFluxWorkbook(w io.Writer, rows []domain.Flux, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := setRow(f, 1, stringsToCells(Headers)); err != nil {
		return err
	}
	for i, flux := range rows {
		if err := setRow(f, i+2, fluxCells(flux, loc)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName is the attachment name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("flux_%s.xlsx", t.Format("20060102_150405"))
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func fluxCells(f domain.Flux, loc *time.Location) []interface{} {
	return []interface{}{
		board.FormatCreatedAt(f.CreatedAt, loc),
		f.ClientName,
		f.ClientPhone,
		deref(f.ClientEmail),
		f.Address,
		f.City,
		f.PostCode,
		board.TypeLabel(f),
		board.GameLabel(f),
		board.StateLabel(f),
		board.AssigneeLabel(f),
	}
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
