package template

import (
	_ "embed"
	"fmt"

	"go-contractor/internal/engine"
	"go-contractor/pkg/utils"

	"gopkg.in/yaml.v3"
)

//go:embed standard_templates.yaml
var standardTemplatesYAML []byte

type standardFile struct {
	Templates []engine.Template `yaml:"templates"`
}

// LoadStandardTemplates parses the bundled templates and checks each one
// against the catalog. A broken bundled template is a startup error.
func LoadStandardTemplates(cat *engine.Catalog) ([]engine.Template, error) {
	return parseStandardTemplates(cat, standardTemplatesYAML)
}

func parseStandardTemplates(cat *engine.Catalog, data []byte) ([]engine.Template, error) {
	var file standardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse standard templates: %w", err)
	}

	seen := make(map[string]bool, len(file.Templates))
	for i := range file.Templates {
		t := &file.Templates[i]
		if t.ID == "" {
			t.ID = utils.Slugify(t.Name, "-")
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("standard template %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		t.Category = engine.CategoryStandard

		cfg := t.Config.Configuration(cat)
		if err := cfg.Strict(cat); err != nil {
			return nil, fmt.Errorf("standard template %q: %w", t.ID, err)
		}
		for _, p := range cfg.Filters {
			if !engine.Validate(cat, cfg.DataSource, p) {
				return nil, fmt.Errorf("standard template %q: invalid filter %q", t.ID, p.ID)
			}
		}
		t.Config = cfg.Document()
		if len(t.Fields) == 0 {
			t.Fields = cat.ResolveAll(cfg.DataSource, cfg.Fields)
		}
	}
	return file.Templates, nil
}
