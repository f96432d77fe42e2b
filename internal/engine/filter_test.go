package engine

import (
	"testing"
	"time"
)

func TestOperatorsFor(t *testing.T) {
	tests := []struct {
		ft      FieldType
		allowed []Operator
		denied  []Operator
	}{
		{FieldTypeText, []Operator{OpEquals, OpContains, OpIn, OpIsNull}, []Operator{OpBetween, OpGreaterThan}},
		{FieldTypeNumber, []Operator{OpBetween, OpIn, OpLte}, []Operator{OpContains}},
		{FieldTypeCurrency, []Operator{OpBetween, OpIn, OpGte}, []Operator{OpContains}},
		{FieldTypeDate, []Operator{OpBetween, OpLessThan, OpIsNotNull}, []Operator{OpIn, OpContains}},
		{FieldTypeBoolean, []Operator{OpEquals, OpNotEquals, OpIsNull}, []Operator{OpIn, OpGreaterThan, OpContains}},
	}
	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			for _, op := range tt.allowed {
				if !Allows(tt.ft, op) {
					t.Errorf("Allows(%s, %s) = false, want true", tt.ft, op)
				}
			}
			for _, op := range tt.denied {
				if Allows(tt.ft, op) {
					t.Errorf("Allows(%s, %s) = true, want false", tt.ft, op)
				}
			}
		})
	}
}

func TestValidateRejectsIllegalOperators(t *testing.T) {
	cat := NewConstructionCatalog()
	allOps := []Operator{
		OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpGte, OpLte, OpBetween, OpIn, OpIsNull, OpIsNotNull,
	}
	for _, f := range cat.FieldsFor(SourceExpenses) {
		for _, op := range allOps {
			if Allows(f.Type, op) {
				continue
			}
			// any value shape: the operator alone must sink it
			for _, v := range []Value{NoValue{}, Single{V: Text("x")}, Range{Lo: Number(1), Hi: Number(2)}, List{Items: []Scalar{Text("a")}}} {
				p := Predicate{ID: "p", Field: f.Key, Operator: op, Value: v}
				if Validate(cat, SourceExpenses, p) {
					t.Errorf("Validate(%s %s %v) = true for illegal operator", f.Key, op, v)
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	cat := NewConstructionCatalog()
	jan1 := NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"unknown field", Predicate{Field: "nope", Operator: OpEquals, Value: Single{V: Text("x")}}, false},
		{"text equals", Predicate{Field: "category", Operator: OpEquals, Value: Single{V: Text("Lumber")}}, true},
		{"blank text", Predicate{Field: "category", Operator: OpEquals, Value: Single{V: Text("")}}, false},
		{"contains on currency", Predicate{Field: "amount", Operator: OpContains, Value: Single{V: Text("1")}}, false},
		{"between needs range", Predicate{Field: "amount", Operator: OpBetween, Value: Single{V: Number(1)}}, false},
		{"between number", Predicate{Field: "amount", Operator: OpBetween, Value: Range{Lo: Number(1), Hi: Number(5)}}, true},
		{"between with wrong scalar", Predicate{Field: "amount", Operator: OpBetween, Value: Range{Lo: Number(1), Hi: Text("5")}}, false},
		{"in empty list", Predicate{Field: "category", Operator: OpIn, Value: List{}}, false},
		{"in list", Predicate{Field: "category", Operator: OpIn, Value: List{Items: []Scalar{Text("Fuel"), Text("Tools")}}}, true},
		{"date gte", Predicate{Field: "expense_date", Operator: OpGte, Value: Single{V: jan1}}, true},
		{"is null", Predicate{Field: "payee_name", Operator: OpIsNull, Value: NoValue{}}, true},
		{"bool equals", Predicate{Field: "receipt_attached", Operator: OpEquals, Value: Single{V: Bool(true)}}, true},
		{"unparsed value", Predicate{Field: "amount", Operator: OpEquals, Value: Unparsed{V: "abc"}}, false},
		{"nil value", Predicate{Field: "amount", Operator: OpEquals}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(cat, SourceExpenses, tt.p); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		op      Operator
		raw     any
		want    any
		wantErr bool
	}{
		{"number from string", FieldTypeCurrency, OpEquals, "$1,250.50", 1250.5, false},
		{"date range", FieldTypeDate, OpBetween, []any{"2024-01-01", "2024-01-31"}, []any{"2024-01-01", "2024-01-31"}, false},
		{"date from timestamp", FieldTypeDate, OpEquals, "2024-03-05T17:30:00Z", "2024-03-05", false},
		{"comma list", FieldTypeText, OpIn, "Fuel, Tools", []any{"Fuel", "Tools"}, false},
		{"bool string", FieldTypeBoolean, OpEquals, "true", true, false},
		{"null ops ignore raw", FieldTypeNumber, OpIsNull, "junk", nil, false},
		{"range needs two", FieldTypeNumber, OpBetween, []any{1.0}, nil, true},
		{"bad number", FieldTypeNumber, OpGte, "abc", nil, true},
		{"missing", FieldTypeText, OpEquals, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.ft, tt.op, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := v.Raw()
			if !rawEqual(got, tt.want) {
				t.Errorf("ParseValue().Raw() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func rawEqual(a, b any) bool {
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok != bok {
		return false
	}
	if !aok {
		return a == b
	}
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func TestNewPredicateIDsAreStable(t *testing.T) {
	a := NewPredicate("amount", OpGte, Single{V: Number(1)})
	b := NewPredicate("amount", OpGte, Single{V: Number(1)})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("NewPredicate ids = %q, %q; want distinct non-empty", a.ID, b.ID)
	}
}
