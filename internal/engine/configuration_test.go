package engine

import (
	"errors"
	"testing"
)

func TestTransformsDoNotMutateReceiver(t *testing.T) {
	base := NewConfiguration(SourceProjects, "project_name", "status")
	base, firstID := base.AddFilter(NewPredicate("status", OpEquals, Single{V: Text("active")}))

	next, secondID := base.AddFilter(NewPredicate("contract_amount", OpGte, Single{V: Number(1000)}))
	next = next.SetSort("contract_amount", SortAsc).SetFields([]string{"project_number"}).SetLimit(5)
	next = next.RemoveFilter(firstID)

	if len(base.Filters) != 1 || base.Filters[firstID].Field != "status" {
		t.Errorf("base filters changed: %v", base.Filters)
	}
	if base.SortBy != "" || base.Limit != 0 || len(base.Fields) != 2 {
		t.Errorf("base changed: %+v", base)
	}
	if _, ok := next.Filters[secondID]; !ok || len(next.Filters) != 1 {
		t.Errorf("next filters = %v", next.Filters)
	}
	if next.SortDirection != SortAsc || next.Limit != 5 {
		t.Errorf("next = %+v", next)
	}
}

func TestRemovingOneFilterKeepsOtherIDs(t *testing.T) {
	cfg := NewConfiguration(SourceExpenses, "amount")
	var ids []string
	for _, cat := range []string{"Fuel", "Tools", "Lumber"} {
		var id string
		cfg, id = cfg.AddFilter(NewPredicate("category", OpEquals, Single{V: Text(cat)}))
		ids = append(ids, id)
	}
	cfg = cfg.RemoveFilter(ids[0])
	if cfg.Filters[ids[1]].Value.Raw() != "Tools" || cfg.Filters[ids[2]].Value.Raw() != "Lumber" {
		t.Errorf("filters renumbered after removal: %v", cfg.Filters)
	}
}

func TestUpdateFilterKeepsID(t *testing.T) {
	cfg, id := NewConfiguration(SourceExpenses, "amount").AddFilter(NewPredicate("amount", OpGte, Single{V: Number(1)}))
	updated := cfg.UpdateFilter(id, Predicate{ID: "other", Field: "amount", Operator: OpLte, Value: Single{V: Number(9)}})
	if p := updated.Filters[id]; p.ID != id || p.Operator != OpLte {
		t.Errorf("UpdateFilter() = %+v", p)
	}
	if cfg.Filters[id].Operator != OpGte {
		t.Error("UpdateFilter() mutated the receiver")
	}
	if same := cfg.UpdateFilter("missing", Predicate{}); len(same.Filters) != 1 {
		t.Errorf("UpdateFilter(missing) = %v", same.Filters)
	}
}

func TestCheckAndStrict(t *testing.T) {
	cat := NewConstructionCatalog()

	tests := []struct {
		name      string
		cfg       Configuration
		checkErr  error
		strictErr error
	}{
		{"ok", NewConfiguration(SourceProjects, "project_name"), nil, nil},
		{"unknown source", NewConfiguration("invoices", "x"), ErrUnknownDataSource, ErrUnknownDataSource},
		{"no fields", NewConfiguration(SourceProjects), ErrNoFields, ErrNoFields},
		{"negative limit", NewConfiguration(SourceProjects, "status").SetLimit(-1), ErrInvalidLimit, ErrInvalidLimit},
		{"drifted field", NewConfiguration(SourceProjects, "legacy_code"), nil, ErrUnknownField},
		{"bad sort", NewConfiguration(SourceProjects, "status").SetSort("legacy_code", SortAsc), nil, ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Check(cat); !errors.Is(err, tt.checkErr) {
				t.Errorf("Check() = %v, want %v", err, tt.checkErr)
			}
			if err := tt.cfg.Strict(cat); !errors.Is(err, tt.strictErr) {
				t.Errorf("Strict() = %v, want %v", err, tt.strictErr)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	cat := NewConstructionCatalog()
	cfg := NewConfiguration(SourceExpenses, "expense_date", "amount").SetSort("amount", SortAsc).SetLimit(50)
	cfg, rangeID := cfg.AddFilter(NewPredicate("expense_date", OpBetween, Range{
		Lo: mustDate(t, "2024-01-01"), Hi: mustDate(t, "2024-01-31"),
	}))
	cfg, driftID := cfg.AddFilter(Predicate{Field: "gone", Operator: OpEquals, Value: Unparsed{V: "x"}})

	back := cfg.Document().Configuration(cat)

	if back.SortBy != "amount" || back.SortDirection != SortAsc || back.Limit != 50 {
		t.Errorf("round trip lost sort/limit: %+v", back)
	}
	r, ok := back.Filters[rangeID].Value.(Range)
	if !ok || r.Lo.Raw() != "2024-01-01" || r.Hi.Raw() != "2024-01-31" {
		t.Errorf("range filter = %#v", back.Filters[rangeID].Value)
	}
	if u, ok := back.Filters[driftID].Value.(Unparsed); !ok || u.V != "x" {
		t.Errorf("drifted filter = %#v, want Unparsed kept", back.Filters[driftID].Value)
	}
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	s2, err := ParseScalar(FieldTypeDate, s)
	if err != nil {
		t.Fatalf("ParseScalar(%q): %v", s, err)
	}
	return s2.(Date)
}
