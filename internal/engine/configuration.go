package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

var (
	ErrUnknownDataSource = errors.New("unknown data source")
	ErrNoFields          = errors.New("report selects no fields")
	ErrInvalidLimit      = errors.New("limit must not be negative")
	ErrUnknownField      = errors.New("unknown field")
)

// Configuration is an immutable snapshot of one report run. Every transform
// returns a new value and leaves the receiver untouched.
type Configuration struct {
	DataSource    DataSource
	Filters       map[string]Predicate
	SortBy        string
	SortDirection SortDirection
	Limit         int
	Fields        []string
}

func NewConfiguration(ds DataSource, fields ...string) Configuration {
	return Configuration{
		DataSource:    ds,
		Filters:       map[string]Predicate{},
		SortDirection: SortDesc,
		Fields:        append([]string(nil), fields...),
	}
}

func (c Configuration) Clone() Configuration {
	out := c
	out.Filters = make(map[string]Predicate, len(c.Filters))
	for id, p := range c.Filters {
		out.Filters[id] = p
	}
	out.Fields = append([]string(nil), c.Fields...)
	return out
}

// AddFilter stores p under its ID, assigning a fresh one when empty.
func (c Configuration) AddFilter(p Predicate) (Configuration, string) {
	out := c.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	out.Filters[p.ID] = p
	return out, p.ID
}

func (c Configuration) RemoveFilter(id string) Configuration {
	out := c.Clone()
	delete(out.Filters, id)
	return out
}

// UpdateFilter replaces the predicate stored under id; unknown ids are ignored.
func (c Configuration) UpdateFilter(id string, p Predicate) Configuration {
	if _, ok := c.Filters[id]; !ok {
		return c.Clone()
	}
	out := c.Clone()
	p.ID = id
	out.Filters[id] = p
	return out
}

func (c Configuration) SetSort(field string, dir SortDirection) Configuration {
	out := c.Clone()
	out.SortBy = field
	if dir != SortAsc {
		dir = SortDesc
	}
	out.SortDirection = dir
	return out
}

func (c Configuration) SetFields(fields []string) Configuration {
	out := c.Clone()
	out.Fields = append([]string(nil), fields...)
	return out
}

func (c Configuration) SetLimit(limit int) Configuration {
	out := c.Clone()
	out.Limit = limit
	return out
}

// PredicatesInOrder sorts by field then id so compilation is deterministic.
func (c Configuration) PredicatesInOrder() []Predicate {
	out := make([]Predicate, 0, len(c.Filters))
	for _, p := range c.Filters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Check enforces the structural invariants needed to run at all.
func (c Configuration) Check(cat *Catalog) error {
	if _, ok := cat.Source(c.DataSource); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDataSource, c.DataSource)
	}
	if len(c.Fields) == 0 {
		return ErrNoFields
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// Strict also requires every selected field and the sort key to exist in the catalog.
func (c Configuration) Strict(cat *Catalog) error {
	if err := c.Check(cat); err != nil {
		return err
	}
	for _, key := range c.Fields {
		if _, ok := cat.Field(c.DataSource, key); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
	}
	if c.SortBy != "" {
		if _, ok := cat.Field(c.DataSource, c.SortBy); !ok {
			return fmt.Errorf("%w: sort by %q", ErrUnknownField, c.SortBy)
		}
	}
	return nil
}

// StoredPredicate is the persisted form of a predicate with its raw operand.
type StoredPredicate struct {
	ID       string   `json:"id" bson:"id" yaml:"id"`
	Field    string   `json:"field" bson:"field" yaml:"field"`
	Operator Operator `json:"operator" bson:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" bson:"value,omitempty" yaml:"value,omitempty"`
}

// ConfigurationDocument is the wire and storage form of a Configuration.
type ConfigurationDocument struct {
	DataSource    DataSource        `json:"data_source" bson:"data_source" yaml:"data_source"`
	Filters       []StoredPredicate `json:"filters" bson:"filters" yaml:"filters"`
	SortBy        string            `json:"sort_by,omitempty" bson:"sort_by,omitempty" yaml:"sort_by,omitempty"`
	SortDirection SortDirection     `json:"sort_direction,omitempty" bson:"sort_direction,omitempty" yaml:"sort_direction,omitempty"`
	Limit         int               `json:"limit,omitempty" bson:"limit,omitempty" yaml:"limit,omitempty"`
	Fields        []string          `json:"fields" bson:"fields" yaml:"fields"`
}

func (c Configuration) Document() ConfigurationDocument {
	doc := ConfigurationDocument{
		DataSource:    c.DataSource,
		Filters:       make([]StoredPredicate, 0, len(c.Filters)),
		SortBy:        c.SortBy,
		SortDirection: c.SortDirection,
		Limit:         c.Limit,
		Fields:        append([]string(nil), c.Fields...),
	}
	for _, p := range c.PredicatesInOrder() {
		sp := StoredPredicate{ID: p.ID, Field: p.Field, Operator: p.Operator}
		if p.Value != nil {
			sp.Value = p.Value.Raw()
		}
		doc.Filters = append(doc.Filters, sp)
	}
	return doc
}

// Configuration types each stored operand against the catalog. Operands that
// cannot be typed are kept as Unparsed and get dropped at compile time.
func (d ConfigurationDocument) Configuration(cat *Catalog) Configuration {
	cfg := NewConfiguration(d.DataSource, d.Fields...)
	cfg.SortBy = d.SortBy
	if d.SortDirection == SortAsc {
		cfg.SortDirection = SortAsc
	}
	cfg.Limit = d.Limit
	for _, sp := range d.Filters {
		p := Predicate{ID: sp.ID, Field: sp.Field, Operator: sp.Operator, Value: Unparsed{V: sp.Value}}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if f, ok := cat.Field(d.DataSource, sp.Field); ok {
			if v, err := ParseValue(f.Type, sp.Operator, sp.Value); err == nil {
				p.Value = v
			}
		}
		cfg.Filters[p.ID] = p
	}
	return cfg
}
