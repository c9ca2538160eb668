// Package productimport bulk-creates a seller's products from an .xlsx
// sheet. The first sheet is read; row 1 is the header.
//
// Columns: name, description, category, price, discount_price, stock.
package productimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"marketplace/internal/client"
	"marketplace/internal/logger"
)

const (
	colName = iota
	colDescription
	colCategory
	colPrice
	colDiscount
	colStock
)

// Header is the expected first row, used by Template.
var Header = []string{"name", "description", "category", "price", "discount_price", "stock"}

var (
	ErrNoSheet       = errors.New("workbook has no sheets")
	ErrMissingName   = errors.New("name is required")
	ErrInvalidPrice  = errors.New("price must be a number greater than 0")
	ErrInvalidNumber = errors.New("invalid number")
)

// Row is one parsed product. Line is the 1-based spreadsheet row.
type Row struct {
	Line  int
	Input client.ProductInput
}

type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Parse reads the workbook. Blank rows are skipped; malformed rows are
// reported and do not stop the parse.
func Parse(r io.Reader) ([]Row, []*RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoSheet
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var (
		rows []Row
		errs []*RowError
	)
	for i, cols := range cells {
		if i == 0 || blank(cols) {
			continue
		}
		line := i + 1
		in, err := parseRow(cols)
		if err != nil {
			errs = append(errs, &RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{Line: line, Input: in})
	}
	return rows, errs, nil
}

func parseRow(cols []string) (client.ProductInput, error) {
	in := client.ProductInput{
		Name:        cell(cols, colName),
		Description: cell(cols, colDescription),
		Category:    cell(cols, colCategory),
	}
	if in.Name == "" {
		return in, ErrMissingName
	}

	price, err := strconv.ParseFloat(cell(cols, colPrice), 64)
	if err != nil || price <= 0 {
		return in, ErrInvalidPrice
	}
	in.OriginalPrice = price

	if v := cell(cols, colDiscount); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d < 0 {
			return in, fmt.Errorf("%w: discount_price %q", ErrInvalidNumber, v)
		}
		in.DiscountPrice = d
	}
	if v := cell(cols, colStock); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return in, fmt.Errorf("%w: stock %q", ErrInvalidNumber, v)
		}
		in.Stock = n
	}
	return in, nil
}

func cell(cols []string, i int) string {
	if i >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[i])
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

type Creator interface {
	CreateProduct(ctx context.Context, req client.ProductInput) (*client.Product, error)
}

// Result is the outcome of one row. Exactly one of Product and Err is set.
type Result struct {
	Line    int
	Product *client.Product
	Err     error
}

// Import creates the rows one by one, in sheet order. A failed row does not
// stop the import; a cancelled context does.
func Import(ctx context.Context, api Creator, rows []Row) []Result {
	out := make([]Result, 0, len(rows))
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			out = append(out, Result{Line: r.Line, Err: err})
			continue
		}
		p, err := api.CreateProduct(ctx, r.Input)
		if err != nil {
			logger.Warn().Err(err).Int("line", r.Line).Str("name", r.Input.Name).Msg("product import row failed")
			out = append(out, Result{Line: r.Line, Err: err})
			continue
		}
		out = append(out, Result{Line: r.Line, Product: p})
	}
	return out
}

// Template writes an empty workbook with the header row.
func Template(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
