package template

import (
	"strings"
	"testing"

	"go-contractor/internal/engine"
)

func TestBundledTemplatesAreValid(t *testing.T) {
	cat := engine.NewConstructionCatalog()
	templates, err := LoadStandardTemplates(cat)
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) == 0 {
		t.Fatal("no bundled templates")
	}
	for _, tmpl := range templates {
		if !tmpl.ReadOnly() {
			t.Errorf("%s: category %s", tmpl.ID, tmpl.Category)
		}
		if len(tmpl.Fields) == 0 {
			t.Errorf("%s: no fields", tmpl.ID)
		}
		cfg, _ := engine.Instantiate(cat, tmpl)
		if err := cfg.Strict(cat); err != nil {
			t.Errorf("%s: %v", tmpl.ID, err)
		}
	}
}

func TestStandardTemplateIDs(t *testing.T) {
	templates, err := LoadStandardTemplates(engine.NewConstructionCatalog())
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, tmpl := range templates {
		ids[tmpl.ID] = true
	}
	for _, want := range []string{"active-projects", "open-estimates", "billable-hours"} {
		if !ids[want] {
			t.Errorf("missing template %q", want)
		}
	}
}

func TestParseStandardTemplatesRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown field",
			"templates:\n  - name: Bad\n    config:\n      data_source: projects\n      fields: [nope]\n",
			"unknown field",
		},
		{
			"invalid filter",
			"templates:\n  - name: Bad\n    config:\n      data_source: projects\n      fields: [status]\n      filters:\n        - id: f\n          field: status\n          operator: between\n          value: x\n",
			"invalid filter",
		},
		{
			"duplicate id",
			"templates:\n  - name: A\n    config: {data_source: projects, fields: [status]}\n  - name: a\n    config: {data_source: projects, fields: [status]}\n",
			"duplicate id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStandardTemplates(engine.NewConstructionCatalog(), []byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
