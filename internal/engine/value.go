package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Scalar is one typed predicate operand: Text, Number, Date or Bool.
type Scalar interface {
	isScalar()
	Raw() any
}

type Text string
type Number float64
type Bool bool

// Date is a calendar day; the clock part is always midnight UTC.
type Date struct{ time.Time }

func (Text) isScalar()   {}
func (Number) isScalar() {}
func (Date) isScalar()   {}
func (Bool) isScalar()   {}

func (t Text) Raw() any   { return string(t) }
func (n Number) Raw() any { return float64(n) }
func (d Date) Raw() any   { return d.Format(dateOnly) }
func (b Bool) Raw() any   { return bool(b) }

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Value is the operand shape of a predicate: Single, Range, List, NoValue or Unparsed.
type Value interface {
	isValue()
	Raw() any
}

type Single struct{ V Scalar }

// Range is inclusive on both ends.
type Range struct{ Lo, Hi Scalar }

type List struct{ Items []Scalar }

type NoValue struct{}

// Unparsed keeps a raw operand that could not be typed, so it round-trips through storage.
type Unparsed struct{ V any }

func (Single) isValue()   {}
func (Range) isValue()    {}
func (List) isValue()     {}
func (NoValue) isValue()  {}
func (Unparsed) isValue() {}

func (s Single) Raw() any { return s.V.Raw() }
func (r Range) Raw() any  { return []any{r.Lo.Raw(), r.Hi.Raw()} }
func (l List) Raw() any {
	out := make([]any, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Raw()
	}
	return out
}
func (NoValue) Raw() any    { return nil }
func (u Unparsed) Raw() any { return u.V }

const dateOnly = "2006-01-02"

var dateLayouts = []string{
	dateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

var ErrBadValue = errors.New("value does not fit the field type")

// ParseValue types a loosely shaped operand for a field type and operator.
// Lists may be given as arrays or comma separated strings.
func ParseValue(ft FieldType, op Operator, raw any) (Value, error) {
	switch op {
	case OpIsNull, OpIsNotNull:
		return NoValue{}, nil
	case OpBetween:
		items, err := splitRaw(raw)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: between needs two values, got %d", ErrBadValue, len(items))
		}
		lo, err := ParseScalar(ft, items[0])
		if err != nil {
			return nil, err
		}
		hi, err := ParseScalar(ft, items[1])
		if err != nil {
			return nil, err
		}
		return Range{Lo: lo, Hi: hi}, nil
	case OpIn:
		items, err := splitRaw(raw)
		if err != nil {
			return nil, err
		}
		list := List{Items: make([]Scalar, 0, len(items))}
		for _, it := range items {
			s, err := ParseScalar(ft, it)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, s)
		}
		return list, nil
	default:
		s, err := ParseScalar(ft, raw)
		if err != nil {
			return nil, err
		}
		return Single{V: s}, nil
	}
}

// ParseScalar converts one raw operand into the scalar variant for ft.
func ParseScalar(ft FieldType, raw any) (Scalar, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: missing value", ErrBadValue)
	}
	switch ft {
	case FieldTypeText:
		switch v := raw.(type) {
		case string:
			return Text(v), nil
		case float64, int, int32, int64, bool, json.Number:
			return Text(fmt.Sprint(v)), nil
		}
	case FieldTypeNumber, FieldTypeCurrency:
		if f, ok := toFloat(raw); ok {
			return Number(f), nil
		}
	case FieldTypeDate:
		if t, ok := toTime(raw); ok {
			return NewDate(t), nil
		}
	case FieldTypeBoolean:
		switch v := raw.(type) {
		case bool:
			return Bool(v), nil
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return Bool(b), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %v is not a %s", ErrBadValue, raw, ft)
}

func splitRaw(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	case nil:
		return nil, nil
	}
	// named slice types such as bson arrays
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected a list, got %T", ErrBadValue, raw)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case Date:
		return v.Time, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
