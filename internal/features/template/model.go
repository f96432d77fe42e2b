package template

import "go-contractor/internal/engine"

type SaveTemplateRequest struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Config      engine.ConfigurationDocument `json:"config"`
	Fields      []string                     `json:"fields"`
}

// Instance is a template ready to run: its configuration with fields
// normalized and resolved against the current catalog.
type Instance struct {
	Template *engine.Template            `json:"template"`
	Config   engine.ConfigurationDocument `json:"config"`
	Fields   []engine.FieldMetadata      `json:"fields"`

	Configuration engine.Configuration `json:"-"`
}
