package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/gunalchandran/grocery-backend/models"
)

var sheetHeaders = []string{
	"ID", "Name", "Brand", "Code", "ImageURL", "Ingredients", "Price", "Stock", "SchemaVersion",
}

// ImportResult counts what a spreadsheet import did.
type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// WriteProductSheet writes products as a single-sheet workbook.
func WriteProductSheet(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create products sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range sheetHeaders {
		header.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.Hex())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Brand)
		row.AddCell().SetString(p.Code)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetString(p.IngredientsText)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetInt(p.SchemaVersion)
	}
	return file.Write(w)
}

// Export writes the whole catalog as a workbook.
func (c *Catalog) Export(ctx context.Context, w io.Writer) error {
	products, err := c.List(ctx)
	if err != nil {
		return err
	}
	return WriteProductSheet(w, products)
}

// Import reads a workbook in the Export layout. A row whose ID names an
// existing product overwrites it; any other row is inserted. Rows without
// a name or with unparsable numbers are skipped.
func (c *Catalog) Import(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	const op = "catalog.Import"
	var res ImportResult

	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return res, &Error{Op: op, Kind: ErrValidation, Message: "Failed to parse Excel file", Err: err}
	}
	if len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
		return res, newError(op, ErrValidation, "Excel file is empty or missing header row")
	}

	sheet := book.Sheets[0]
	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		p, ok := productFromRow(get)
		if !ok {
			res.Skipped++
			continue
		}

		if id := get(0); id != "" {
			if _, err := c.products.FindProduct(ctx, id); err == nil {
				if _, err := c.products.UpdateProduct(ctx, id, fullUpdate(p)); err != nil {
					res.Skipped++
					continue
				}
				res.Updated++
				continue
			}
		}

		if _, err := c.products.InsertProduct(ctx, &p); err != nil {
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res, nil
}

func productFromRow(get func(int) string) (models.Product, bool) {
	p := models.Product{
		Name:            get(1),
		Brand:           get(2),
		Code:            get(3),
		ImageURL:        get(4),
		IngredientsText: get(5),
		SchemaVersion:   1,
	}
	if p.Name == "" {
		return p, false
	}
	if raw := get(6); raw != "" {
		price, err := parsePrice(raw)
		if err != nil {
			return p, false
		}
		p.Price = price
	}
	if raw := get(7); raw != "" {
		stock, err := parseSheetInt(raw)
		if err != nil {
			return p, false
		}
		p.Stock = stock
	}
	if raw := get(8); raw != "" {
		v, err := parseSheetInt(raw)
		if err != nil {
			return p, false
		}
		p.SchemaVersion = v
	}
	return p, true
}

// parseSheetInt accepts "12" and the "12.0" spreadsheets produce for
// numeric cells.
func parseSheetInt(raw string) (int, error) {
	if n, err := parseCount(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) || f < 0 {
		return 0, fmt.Errorf("not a whole number: %q", raw)
	}
	return int(f), nil
}

func fullUpdate(p models.Product) models.ProductUpdate {
	return models.ProductUpdate{
		Name:            &p.Name,
		Brand:           &p.Brand,
		Code:            &p.Code,
		ImageURL:        &p.ImageURL,
		IngredientsText: &p.IngredientsText,
		Price:           &p.Price,
		Stock:           &p.Stock,
		SchemaVersion:   &p.SchemaVersion,
	}
}
