package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go-contractor/internal/engine"
	"go-contractor/internal/features/template"
)

type reportOptions struct {
	template string
	source   string
	fields   []string
	filters  []string
	sort     string
	desc     bool
	limit    int
}

func (o *reportOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.template, "template", "t", "", "standard template id")
	cmd.Flags().StringVarP(&o.source, "source", "s", "", "data source for an ad hoc report")
	cmd.Flags().StringSliceVarP(&o.fields, "field", "f", nil, "field key (repeatable or comma separated)")
	cmd.Flags().StringArrayVar(&o.filters, "filter", nil, `filter as "field operator value" (repeatable)`)
	cmd.Flags().StringVar(&o.sort, "sort", "", "sort field")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "row limit (0 uses the server default)")
}

// configuration builds the report from a template or from the ad hoc flags.
// Flags given alongside --template refine it. The name is used for exports.
func (o *reportOptions) configuration(cat *engine.Catalog) (engine.Configuration, string, error) {
	var (
		cfg  engine.Configuration
		name string
	)
	switch {
	case o.template != "":
		t, err := findStandard(cat, o.template)
		if err != nil {
			return engine.Configuration{}, "", err
		}
		cfg, _ = engine.Instantiate(cat, t)
		name = t.Name
		if len(o.fields) > 0 {
			cfg = cfg.SetFields(engine.NumberBeforeName(cat, cfg.DataSource, o.fields))
		}
	case o.source != "":
		ds := engine.DataSource(o.source)
		if _, ok := cat.Source(ds); !ok {
			return engine.Configuration{}, "", fmt.Errorf("%w: %s", engine.ErrUnknownDataSource, o.source)
		}
		fields := o.fields
		if len(fields) == 0 {
			for _, f := range cat.FieldsFor(ds) {
				fields = append(fields, f.Key)
			}
		}
		cfg = engine.NewConfiguration(ds, engine.NumberBeforeName(cat, ds, fields)...)
	default:
		return engine.Configuration{}, "", errors.New("either --template or --source is required")
	}

	for _, raw := range o.filters {
		p, err := parseFilter(cat, cfg.DataSource, raw)
		if err != nil {
			return engine.Configuration{}, "", err
		}
		cfg, _ = cfg.AddFilter(p)
	}

	if o.sort != "" {
		dir := engine.SortAsc
		if o.desc {
			dir = engine.SortDesc
		}
		cfg = cfg.SetSort(o.sort, dir)
	}
	if o.limit > 0 {
		cfg = cfg.SetLimit(o.limit)
	}
	return cfg, name, nil
}

func findStandard(cat *engine.Catalog, id string) (engine.Template, error) {
	templates, err := template.LoadStandardTemplates(cat)
	if err != nil {
		return engine.Template{}, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return engine.Template{}, fmt.Errorf("%w: %s", template.ErrTemplateNotFound, id)
}

// parseFilter reads "field operator value". The value is optional for the
// null checks; lists and ranges are comma separated.
func parseFilter(cat *engine.Catalog, ds engine.DataSource, raw string) (engine.Predicate, error) {
	field, rest := nextToken(raw)
	opName, operandText := nextToken(rest)
	if field == "" || opName == "" {
		return engine.Predicate{}, fmt.Errorf("filter %q: want \"field operator value\"", raw)
	}
	op := engine.Operator(opName)

	f, ok := cat.Field(ds, field)
	if !ok {
		return engine.Predicate{}, fmt.Errorf("filter %q: %w %s", raw, engine.ErrUnknownField, field)
	}
	if !engine.Allows(f.Type, op) {
		return engine.Predicate{}, fmt.Errorf("filter %q: operator %s is not valid for %s fields", raw, op, f.Type)
	}

	// values may contain spaces, e.g. a project name
	var operand any
	if operandText != "" {
		operand = operandText
	}
	v, err := engine.ParseValue(f.Type, op, operand)
	if err != nil {
		return engine.Predicate{}, fmt.Errorf("filter %q: %w", raw, err)
	}
	return engine.NewPredicate(field, op, v), nil
}

func nextToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}
