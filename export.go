package main

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// ExportHistory renders a source's full price history as a spreadsheet
// in the classic table layout: one row per product, one column per
// calendar date observed anywhere in the source. Dates with no valid
// observation show "N/A".
func ExportHistory(db *Database, source string) (*excelize.File, error) {
	products, err := db.GetProducts(source)
	if err != nil {
		return nil, err
	}

	histories := make(map[uint][]PriceObservation, len(products))
	dateSet := make(map[string]bool)
	for _, product := range products {
		history, err := db.GetHistory(product.ID)
		if err != nil {
			return nil, err
		}
		histories[product.ID] = history
		for _, obs := range history {
			dateSet[obs.Date] = true
		}
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []interface{}{"ID", "Name", "Link"}
	for _, date := range dates {
		header = append(header, date)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	for i, product := range products {
		byDate := make(map[string]*float64)
		for _, obs := range histories[product.ID] {
			byDate[obs.Date] = obs.Price
		}

		row := []interface{}{product.ID, product.Name, product.Link}
		for _, date := range dates {
			if price, ok := byDate[date]; ok && price != nil {
				row = append(row, *price)
			} else {
				row = append(row, "N/A")
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %v", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %v", row, err)
	}
	return nil
}
