package engine

import (
	"sort"
	"strings"

	"go-contractor/pkg/utils"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
)

// FieldMetadata is the single source of truth for how a field is filtered, sorted and displayed.
type FieldMetadata struct {
	Key   string    `json:"key" bson:"key" yaml:"key"`
	Label string    `json:"label" bson:"label" yaml:"label"`
	Type  FieldType `json:"type" bson:"type" yaml:"type"`
}

type DataSource string

// JoinDef is a fixed relationship lookup. Fields keyed "<Alias>_<column>" are read from it.
type JoinDef struct {
	Alias      string
	Entity     string
	LocalKey   string
	ForeignKey string
}

// SourceDef describes one queryable data source. Keys prefixed "<Alias>_" read
// base entity columns without the prefix.
type SourceDef struct {
	Name      DataSource
	Label     string
	Entity    string
	Alias     string
	CreatedAt string
	Joins     []JoinDef
	Fields    []FieldMetadata
}

// Catalog is an immutable registry of data sources and their fields.
type Catalog struct {
	order   []DataSource
	sources map[DataSource]SourceDef
	index   map[DataSource]map[string]int
}

func NewCatalog(defs ...SourceDef) *Catalog {
	c := &Catalog{
		sources: make(map[DataSource]SourceDef, len(defs)),
		index:   make(map[DataSource]map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.CreatedAt == "" {
			d.CreatedAt = "created_at"
		}
		idx := make(map[string]int, len(d.Fields))
		for i, f := range d.Fields {
			idx[f.Key] = i
		}
		if _, dup := c.sources[d.Name]; !dup {
			c.order = append(c.order, d.Name)
		}
		c.sources[d.Name] = d
		c.index[d.Name] = idx
	}
	return c
}

// FieldsFor returns a copy of the source's fields in catalog order; unknown sources yield none.
func (c *Catalog) FieldsFor(ds DataSource) []FieldMetadata {
	def, ok := c.sources[ds]
	if !ok {
		return []FieldMetadata{}
	}
	out := make([]FieldMetadata, len(def.Fields))
	copy(out, def.Fields)
	return out
}

func (c *Catalog) Source(ds DataSource) (SourceDef, bool) {
	def, ok := c.sources[ds]
	return def, ok
}

func (c *Catalog) Sources() []SourceDef {
	out := make([]SourceDef, 0, len(c.order))
	for _, ds := range c.order {
		out = append(out, c.sources[ds])
	}
	return out
}

func (c *Catalog) Field(ds DataSource, key string) (FieldMetadata, bool) {
	idx, ok := c.index[ds][key]
	if !ok {
		return FieldMetadata{}, false
	}
	return c.sources[ds].Fields[idx], true
}

// Position is the field's catalog index, or -1.
func (c *Catalog) Position(ds DataSource, key string) int {
	if idx, ok := c.index[ds][key]; ok {
		return idx
	}
	return -1
}

// Resolve never fails: keys that drifted out of the catalog get a humanized text field.
func (c *Catalog) Resolve(ds DataSource, key string) FieldMetadata {
	if f, ok := c.Field(ds, key); ok {
		return f
	}
	return FieldMetadata{Key: key, Label: utils.Humanize(key), Type: FieldTypeText}
}

func (c *Catalog) ResolveAll(ds DataSource, keys []string) []FieldMetadata {
	out := make([]FieldMetadata, len(keys))
	for i, k := range keys {
		out[i] = c.Resolve(ds, k)
	}
	return out
}

// columnFor applies the alias convention: "<alias>_<column>" reads from the join
// named alias, or from the base entity when alias is the source's own.
func (def SourceDef) columnFor(key string) (join *JoinDef, column string) {
	// longest alias wins so "project_manager_x" can coexist with "project_x"
	joins := make([]JoinDef, len(def.Joins))
	copy(joins, def.Joins)
	sort.Slice(joins, func(i, j int) bool { return len(joins[i].Alias) > len(joins[j].Alias) })
	for i := range joins {
		prefix := joins[i].Alias + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			j := joins[i]
			return &j, strings.TrimPrefix(key, prefix)
		}
	}
	if def.Alias != "" {
		if col, ok := strings.CutPrefix(key, def.Alias+"_"); ok && col != "" {
			return nil, col
		}
	}
	return nil, key
}
