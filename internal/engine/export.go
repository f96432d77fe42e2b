package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go-contractor/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// Exporter serializes an already shaped table. It adds no business logic.
type Exporter interface {
	Format() string
	ContentType() string
	Write(w io.Writer, t Table, sheet string) error
}

type CSVExporter struct{}

func (CSVExporter) Format() string      { return "csv" }
func (CSVExporter) ContentType() string { return "text/csv" }

func (CSVExporter) Write(w io.Writer, t Table, _ string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Labels()); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type XLSXExporter struct {
	ColumnWidth float64
}

func (XLSXExporter) Format() string { return "xlsx" }
func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (x XLSXExporter) Write(w io.Writer, t Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetTitle(sheet)
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, label := range t.Labels() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range t.Rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	width := x.ColumnWidth
	if width <= 0 {
		width = 15
	}
	for i := range t.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, width)
	}

	_, err = f.WriteTo(w)
	return err
}

// sheet names are limited to 31 characters and may not contain []:*?/\
func sheetTitle(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "Report"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// ExporterFor resolves a format name; unknown formats are an error.
func ExporterFor(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return CSVExporter{}, nil
	case "xlsx", "excel":
		return XLSXExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// FileName builds "<slug>_report_<yyyymmdd_hhmmss>.<ext>".
func FileName(reportName, format string, now time.Time) string {
	slug := utils.Slugify(reportName, "_")
	if slug == "" {
		slug = "custom"
	}
	return fmt.Sprintf("%s_report_%s.%s", slug, now.Format("20060102_150405"), format)
}
