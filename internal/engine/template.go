package engine

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryStandard    Category = "standard"
	CategoryCustom      Category = "custom"
	CategoryAIGenerated Category = "ai-generated"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStandard, CategoryCustom, CategoryAIGenerated:
		return true
	}
	return false
}

// Template is a named, reusable configuration plus its field list.
type Template struct {
	ID          string                `json:"id" bson:"_id" yaml:"id"`
	Name        string                `json:"name" bson:"name" yaml:"name"`
	Description string                `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Category    Category              `json:"category" bson:"category" yaml:"category"`
	OwnerID     string                `json:"owner_id,omitempty" bson:"owner_id,omitempty" yaml:"-"`
	Config      ConfigurationDocument `json:"config" bson:"config" yaml:"config"`
	Fields      []FieldMetadata       `json:"fields" bson:"fields" yaml:"fields"`
	CreatedAt   time.Time             `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt   time.Time             `json:"updated_at" bson:"updated_at" yaml:"-"`
}

func (t Template) ReadOnly() bool {
	return t.Category == CategoryStandard
}

// FieldKeys prefers the stored field list and falls back to the config's.
func (t Template) FieldKeys() []string {
	if len(t.Fields) == 0 {
		return append([]string(nil), t.Config.Fields...)
	}
	keys := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Instantiate rehydrates a template into a live configuration and its
// resolved field list. It never fails on drift: unknown keys get humanized labels.
func Instantiate(cat *Catalog, t Template) (Configuration, []FieldMetadata) {
	cfg := t.Config.Configuration(cat)
	keys := NumberBeforeName(cat, cfg.DataSource, t.FieldKeys())
	cfg = cfg.SetFields(keys)
	return cfg, cat.ResolveAll(cfg.DataSource, keys)
}

// NumberBeforeName puts "<e>_number" directly in front of "<e>_name" whenever
// the catalog has both, inserting it when missing. Duplicates are removed.
func NumberBeforeName(cat *Catalog, ds DataSource, keys []string) []string {
	claimed := map[string]bool{}
	for _, k := range keys {
		if num, ok := numberCounterpart(cat, ds, k); ok {
			claimed[num] = true
		}
	}

	out := make([]string, 0, len(keys)+len(claimed))
	seen := map[string]bool{}
	push := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range keys {
		if claimed[k] {
			continue
		}
		if num, ok := numberCounterpart(cat, ds, k); ok {
			push(num)
		}
		push(k)
	}
	return out
}

func numberCounterpart(cat *Catalog, ds DataSource, key string) (string, bool) {
	entity, ok := strings.CutSuffix(key, "_name")
	if !ok || entity == "" {
		return "", false
	}
	num := entity + "_number"
	if _, ok := cat.Field(ds, key); !ok {
		return "", false
	}
	if _, ok := cat.Field(ds, num); !ok {
		return "", false
	}
	return num, true
}
