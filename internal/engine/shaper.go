package engine

import (
	"fmt"
	"math"
	"time"

	"go-contractor/internal/datastore"

	"github.com/dustin/go-humanize"
)

type DateFallback string

const (
	DateFallbackBlank DateFallback = "blank"
	DateFallbackNow   DateFallback = "now"
)

// Table is a shaped result: one display string per cell, ready for screen or export.
type Table struct {
	Columns []FieldMetadata `json:"columns"`
	Rows    [][]string      `json:"rows"`
}

// Records keys each shaped row by field key.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for j, col := range t.Columns {
			rec[col.Key] = row[j]
		}
		out[i] = rec
	}
	return out
}

func (t Table) Labels() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

// Shaper formats raw values by field type. The same instance serves the
// on-screen table and every export so the two cannot diverge.
type Shaper struct {
	CurrencySymbol string
	DateLayout     string
	DateFallback   DateFallback
	Now            func() time.Time
}

func NewShaper(symbol, layout string, fallback DateFallback) *Shaper {
	if layout == "" {
		layout = "Jan 02, 2006"
	}
	if fallback != DateFallbackNow {
		fallback = DateFallbackBlank
	}
	return &Shaper{CurrencySymbol: symbol, DateLayout: layout, DateFallback: fallback, Now: time.Now}
}

func (s *Shaper) Shape(rows []datastore.Row, fields []FieldMetadata) Table {
	t := Table{Columns: fields, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		cells := make([]string, len(fields))
		for j, f := range fields {
			cells[j] = s.FormatValue(f, r[f.Key])
		}
		t.Rows[i] = cells
	}
	return t
}

func (s *Shaper) FormatValue(f FieldMetadata, v any) string {
	if v == nil {
		return ""
	}
	switch f.Type {
	case FieldTypeCurrency:
		n, ok := toFloat(v)
		if !ok {
			return fmt.Sprint(v)
		}
		return s.currency(n)
	case FieldTypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return fmt.Sprint(v)
		}
		return humanize.Commaf(n)
	case FieldTypeDate:
		return s.date(v)
	case FieldTypeBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return "true"
			}
			return "false"
		}
		if n, ok := v.(int64); ok {
			// sqlite and mysql return booleans as integers
			return fmt.Sprint(n != 0)
		}
		return fmt.Sprint(v)
	default:
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339)
		}
		return fmt.Sprint(v)
	}
}

func (s *Shaper) currency(n float64) string {
	// round to cents first so tiny negatives do not print as -$0.00
	n = math.Round(n*100) / 100
	sign := ""
	if n < 0 {
		sign = "-"
	}
	return sign + s.CurrencySymbol + humanize.FormatFloat("#,###.##", math.Abs(n))
}

func (s *Shaper) date(v any) string {
	var t time.Time
	ok := false
	switch d := v.(type) {
	case time.Time:
		t, ok = d, !d.IsZero()
	case string:
		t, ok = toTime(d)
	}
	if ok {
		return t.Format(s.DateLayout)
	}
	if s.DateFallback == DateFallbackNow && s.Now != nil {
		return s.Now().Format(s.DateLayout)
	}
	return ""
}
