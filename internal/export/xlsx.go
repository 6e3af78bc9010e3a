// Package export writes a filtered event list to spreadsheet or calendar
// files.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"wpevents/internal/event"
)

const sheetName = "Events"

// columns mirror the listing view.
var columns = []any{"Title", "Start", "End", "Place", "Categories", "Link"}

// WriteXLSX writes events to an .xlsx workbook, one row per event with a
// header row.
func WriteXLSX(path string, events []event.Event) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, evt := range events {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		row := []any{
			evt.Title,
			event.FormatDate(evt.Start),
			event.FormatDate(evt.End),
			evt.Place,
			evt.Categories,
			evt.Link,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
