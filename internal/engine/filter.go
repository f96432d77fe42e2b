package engine

import (
	"github.com/google/uuid"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpGte         Operator = "gte"
	OpLte         Operator = "lte"
	OpBetween     Operator = "between"
	OpIn          Operator = "in"
	OpIsNull      Operator = "is_null"
	OpIsNotNull   Operator = "is_not_null"
)

var (
	textOperators = []Operator{OpEquals, OpNotEquals, OpContains, OpIn, OpIsNull, OpIsNotNull}
	// currency filters exactly like number
	numberOperators = []Operator{
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGte, OpLte, OpBetween, OpIn, OpIsNull, OpIsNotNull,
	}
	dateOperators = []Operator{
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGte, OpLte, OpBetween, OpIsNull, OpIsNotNull,
	}
	booleanOperators = []Operator{OpEquals, OpNotEquals, OpIsNull, OpIsNotNull}
)

// OperatorsFor returns the legal operators for a field type in display order.
func OperatorsFor(ft FieldType) []Operator {
	var ops []Operator
	switch ft {
	case FieldTypeText:
		ops = textOperators
	case FieldTypeNumber, FieldTypeCurrency:
		ops = numberOperators
	case FieldTypeDate:
		ops = dateOperators
	case FieldTypeBoolean:
		ops = booleanOperators
	default:
		return []Operator{OpIsNull, OpIsNotNull}
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

func Allows(ft FieldType, op Operator) bool {
	for _, o := range OperatorsFor(ft) {
		if o == op {
			return true
		}
	}
	return false
}

// Predicate is one filter condition. ID is assigned once and never derived from position.
type Predicate struct {
	ID       string
	Field    string
	Operator Operator
	Value    Value
}

func NewPredicate(field string, op Operator, v Value) Predicate {
	return Predicate{ID: uuid.NewString(), Field: field, Operator: op, Value: v}
}

// Validate reports whether p can be applied to ds. Invalid predicates are skipped, never fatal.
func Validate(c *Catalog, ds DataSource, p Predicate) bool {
	f, ok := c.Field(ds, p.Field)
	if !ok {
		return false
	}
	if !Allows(f.Type, p.Operator) {
		return false
	}
	return shapeFits(f.Type, p.Operator, p.Value)
}

func shapeFits(ft FieldType, op Operator, v Value) bool {
	switch op {
	case OpIsNull, OpIsNotNull:
		_, ok := v.(NoValue)
		return ok || v == nil
	case OpBetween:
		r, ok := v.(Range)
		return ok && scalarFits(ft, r.Lo) && scalarFits(ft, r.Hi)
	case OpIn:
		l, ok := v.(List)
		if !ok || len(l.Items) == 0 {
			return false
		}
		for _, it := range l.Items {
			if !scalarFits(ft, it) {
				return false
			}
		}
		return true
	case OpContains:
		s, ok := v.(Single)
		if !ok {
			return false
		}
		t, ok := s.V.(Text)
		return ok && t != ""
	default:
		s, ok := v.(Single)
		return ok && scalarFits(ft, s.V)
	}
}

// scalarFits rejects blank text so a half-filled filter row does not apply.
func scalarFits(ft FieldType, s Scalar) bool {
	switch v := s.(type) {
	case Text:
		return ft == FieldTypeText && v != ""
	case Number:
		return ft == FieldTypeNumber || ft == FieldTypeCurrency
	case Date:
		return ft == FieldTypeDate && !v.IsZero()
	case Bool:
		return ft == FieldTypeBoolean
	}
	return false
}
