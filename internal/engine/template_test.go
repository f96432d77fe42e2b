package engine

import (
	"reflect"
	"testing"
)

func TestNumberBeforeName(t *testing.T) {
	cat := NewConstructionCatalog()

	tests := []struct {
		name string
		ds   DataSource
		keys []string
		want []string
	}{
		{"inserted when missing", SourceProjects, []string{"project_name"}, []string{"project_number", "project_name"}},
		{"moved in front", SourceProjects, []string{"project_name", "status", "project_number"}, []string{"project_number", "project_name", "status"}},
		{"already ordered", SourceProjects, []string{"project_number", "project_name"}, []string{"project_number", "project_name"}},
		{"joined entity", SourceExpenses, []string{"amount", "project_name"}, []string{"amount", "project_number", "project_name"}},
		{"no counterpart in catalog", SourceProjects, []string{"client_name"}, []string{"client_name"}},
		{"number alone stays", SourceProjects, []string{"status", "project_number"}, []string{"status", "project_number"}},
		{"drifted name untouched", SourceTraining, []string{"course_name"}, []string{"course_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumberBeforeName(cat, tt.ds, tt.keys); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NumberBeforeName(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}
}

func TestInstantiateFallsBackOnDrift(t *testing.T) {
	cat := NewConstructionCatalog()
	tmpl := Template{
		Name:     "Old report",
		Category: CategoryCustom,
		Config: ConfigurationDocument{
			DataSource: SourceProjects,
			Fields:     []string{"project_name", "permit_status"},
		},
	}

	cfg, fields := Instantiate(cat, tmpl)

	if !reflect.DeepEqual(cfg.Fields, []string{"project_number", "project_name", "permit_status"}) {
		t.Errorf("cfg.Fields = %v", cfg.Fields)
	}
	if fields[2].Label != "Permit Status" || fields[2].Type != FieldTypeText {
		t.Errorf("drifted field = %+v", fields[2])
	}
	if fields[0].Label != "Project #" {
		t.Errorf("catalog field = %+v", fields[0])
	}
}

func TestInstantiateRoundTrip(t *testing.T) {
	cat := NewConstructionCatalog()
	cfg := NewConfiguration(SourceExpenses, "expense_date", "amount", "category").SetSort("amount", SortDesc).SetLimit(100)
	cfg, id := cfg.AddFilter(NewPredicate("amount", OpBetween, Range{Lo: Number(10), Hi: Number(500)}))
	fields := cat.ResolveAll(SourceExpenses, cfg.Fields)

	saved := Template{Name: "Expenses", Category: CategoryCustom, Config: cfg.Document(), Fields: fields}
	back, backFields := Instantiate(cat, saved)

	if !reflect.DeepEqual(back.Fields, cfg.Fields) || !reflect.DeepEqual(backFields, fields) {
		t.Errorf("fields = %v / %v", back.Fields, backFields)
	}
	if back.SortBy != cfg.SortBy || back.SortDirection != cfg.SortDirection || back.Limit != cfg.Limit {
		t.Errorf("config = %+v", back)
	}
	if !reflect.DeepEqual(back.Filters[id], cfg.Filters[id]) {
		t.Errorf("filter = %+v, want %+v", back.Filters[id], cfg.Filters[id])
	}
}
