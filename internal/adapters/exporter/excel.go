// Package exporter renders catalog data to spreadsheet files.
package exporter

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/openmercado/shopapi/internal/domain"
)

const productSheet = "Products"

var productHeaders = []string{
	"ID", "Name", "Description", "Price", "ImageURL", "CategoryID", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes the product catalog as an xlsx workbook to w.
func WriteProducts(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productSheet); err != nil {
		return err
	}
	if err := writeRow(f, 1, toAnySlice(productHeaders)); err != nil {
		return err
	}
	for i, p := range products {
		var categoryID any
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
		}
		row := []any{
			p.ID,
			p.Name,
			p.Description,
			p.Price.StringFixed(2),
			p.ImageURL,
			categoryID,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(productSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
