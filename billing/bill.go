// Package billing renders customer bills as PDF.
package billing

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var (
	ErrNoItems     = errors.New("no items provided")
	ErrInvalidItem = errors.New("invalid bill item")
)

// Core PDF fonts have no rupee glyph.
const currency = "Rs."

// Item is one bill line.
type Item struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

func (i Item) total() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate rejects an empty bill and lines without a name or with a
// quantity below one.
func Validate(items []Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for n, item := range items {
		if item.ProductName == "" || item.Quantity < 1 || item.Price < 0 {
			return fmt.Errorf("%w: line %d", ErrInvalidItem, n+1)
		}
	}
	return nil
}

// GrandTotal sums every line.
func GrandTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.total())
	}
	return total
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Product Name", 80, "L"},
	{"Quantity", 30, "R"},
	{"Price", 35, "R"},
	{"Total", 35, "R"},
}

// Render writes the bill for items to w.
func Render(w io.Writer, items []Item) error {
	if err := Validate(items); err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Customer Bill", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header(pdf)
		}
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Customer Bill", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	header(pdf)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range items {
		cells := []string{
			tr(item.ProductName),
			fmt.Sprintf("%d", item.Quantity),
			money(decimal.NewFromFloat(item.Price)),
			money(item.total()),
		}
		for i, col := range columns {
			ln := 0
			if i == len(columns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 8, cells[i], "B", ln, col.align, false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	labelWidth := columns[0].width + columns[1].width + columns[2].width
	pdf.CellFormat(labelWidth, 8, "Grand Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(columns[3].width, 8, money(GrandTotal(items)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render bill: %w", err)
	}
	return nil
}

func header(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 12)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 9, col.title, "B", ln, col.align, false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 12)
}

func money(d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}
