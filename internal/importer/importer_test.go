package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

func TestChaseParser_Parse(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	lines, err := p.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, lines, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", lines[0].Description)
	assert.Equal(t, "2025-01-03", lines[0].Date)
	assert.Equal(t, "-4.00", lines[0].Amount.StringFixed(2))

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", lines[3].Description)
	assert.True(t, lines[3].Amount.IsPositive())
	assert.Equal(t, "3500.00", lines[3].Amount.StringFixed(2))

	assert.Equal(t, "2025-01-22", lines[5].Date)
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	lines, err := p.Parse(strings.NewReader(chaseHeader))
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestChaseParser_BadDate(t *testing.T) {
	csv := chaseHeader + "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
	assert.Contains(t, err.Error(), "row 2")
}

func TestChaseParser_BadAmount(t *testing.T) {
	csv := chaseHeader + "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestChaseParser_WrongFieldCount(t *testing.T) {
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader("a,b,c\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading chase CSV")
}

func writeWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestXLSXParser_Parse(t *testing.T) {
	data := writeWorkbook(t, [][]any{
		{"Acme Bank export"},
		{"Amount", "Date", "Description"},
		{"-12.30", "2024-02-01", "Coffee"},
		{},
		{"1,250.00", "02/03/2024", "Client payment"},
	})

	p := &XLSXParser{}
	lines, err := p.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Coffee", lines[0].Description)
	assert.Equal(t, "2024-02-01", lines[0].Date)
	assert.Equal(t, "-12.3", lines[0].Amount.String())

	assert.Equal(t, "Client payment", lines[1].Description)
	assert.Equal(t, "2024-02-03", lines[1].Date)
	assert.Equal(t, "1250", lines[1].Amount.String())
}

func TestXLSXParser_NoHeader(t *testing.T) {
	data := writeWorkbook(t, [][]any{{"When", "What", "How much"}})
	p := &XLSXParser{}
	_, err := p.Parse(bytes.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestXLSXParser_BadRow(t *testing.T) {
	data := writeWorkbook(t, [][]any{
		{"Date", "Description", "Amount"},
		{"someday", "Coffee", "1"},
	})
	p := &XLSXParser{}
	_, err := p.Parse(bytes.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing date")
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	p := &XLSXParser{}
	_, err := p.Parse(strings.NewReader("plain text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening workbook")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("chase"))
	assert.NotNil(t, r.Get("xlsx"))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "chase", DetectFormat("jan.CSV"))
	assert.Equal(t, "xlsx", DetectFormat("dir/jan.xlsx"))
	assert.Equal(t, "", DetectFormat("notes.txt"))
}

func TestRegistry_ParseFile(t *testing.T) {
	r := DefaultRegistry()
	lines, err := r.ParseFile("../../testdata/chase_checking.csv", "")
	require.NoError(t, err)
	assert.Len(t, lines, 6)

	_, err = r.ParseFile("../../testdata/chase_checking.csv", "ofx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser")

	_, err = r.ParseFile(filepath.Join(t.TempDir(), "missing.csv"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_FindsExports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.xlsx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "bank.csv", files[0].Name)
	assert.Equal(t, "chase", files[0].Format)
	assert.Equal(t, "bank.xlsx", files[1].Name)
	assert.Equal(t, "xlsx", files[1].Format)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "processed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed", "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(dir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "bank.csv"))
	assert.NoError(t, err)
}
