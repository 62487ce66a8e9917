package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/clearbooks/internal/model"
)

// XLSXParser reads statement lines from the first sheet of a workbook. The
// header row is the first row naming Date, Description and Amount columns,
// in any order.
type XLSXParser struct{}

var xlsxDateFormats = []string{time.DateOnly, "01/02/2006", "1/2/2006", "01-02-06"}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads the workbook and returns statement lines in row order.
func (p *XLSXParser) Parse(r io.Reader) ([]model.StatementLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	header := -1
	var cols xlsxColumns
	for i, row := range rows {
		if c, ok := findColumns(row); ok {
			header, cols = i, c
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("sheet %s: no header row with Date, Description and Amount", sheets[0])
	}

	var lines []model.StatementLine
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		line, err := cols.parse(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

type xlsxColumns struct {
	date, description, amount int
}

func findColumns(row []string) (xlsxColumns, bool) {
	c := xlsxColumns{date: -1, description: -1, amount: -1}
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "date":
			c.date = i
		case "description":
			c.description = i
		case "amount":
			c.amount = i
		}
	}
	return c, c.date >= 0 && c.description >= 0 && c.amount >= 0
}

func (c xlsxColumns) parse(row []string) (model.StatementLine, error) {
	rawDate := cell(row, c.date)
	date, err := parseXLSXDate(rawDate)
	if err != nil {
		return model.StatementLine{}, err
	}

	rawAmount := strings.ReplaceAll(cell(row, c.amount), ",", "")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return model.StatementLine{}, fmt.Errorf("parsing amount %q: %w", cell(row, c.amount), err)
	}

	return model.StatementLine{
		Description: cell(row, c.description),
		Date:        date.Format(time.DateOnly),
		Amount:      amount,
	}, nil
}

func parseXLSXDate(s string) (time.Time, error) {
	for _, layout := range xlsxDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

// cell returns the trimmed value at i. GetRows drops trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
