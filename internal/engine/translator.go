package engine

import (
	"time"

	"go-contractor/internal/datastore"
)

const (
	DefaultLimit = 500
	MaxLimit     = 10000
)

// Compiled is a configuration turned into a single datastore request.
type Compiled struct {
	Request datastore.Request
	// Fields has one entry per selected key, in selection order, drift included.
	Fields []FieldMetadata
	// Dropped lists ids of predicates that failed validation.
	Dropped []string
	Limit   int
}

type Translator struct {
	Catalog      *Catalog
	DefaultLimit int
	MaxLimit     int
}

func NewTranslator(cat *Catalog, defaultLimit, maxLimit int) *Translator {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Translator{Catalog: cat, DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// EffectiveLimit maps 0 to the default and caps everything at the maximum.
func (t *Translator) EffectiveLimit(limit int) int {
	if limit <= 0 {
		return t.DefaultLimit
	}
	if limit > t.MaxLimit {
		return t.MaxLimit
	}
	return limit
}

func (t *Translator) Compile(cfg Configuration) (Compiled, error) {
	if err := cfg.Check(t.Catalog); err != nil {
		return Compiled{}, err
	}
	def, _ := t.Catalog.Source(cfg.DataSource)

	usedJoins := map[string]bool{}
	column := func(key string) datastore.Column {
		join, name := def.columnFor(key)
		if join == nil {
			return datastore.Column{Name: name}
		}
		usedJoins[join.Alias] = true
		return datastore.Column{Table: join.Alias, Name: name}
	}

	out := Compiled{
		Fields:  t.Catalog.ResolveAll(cfg.DataSource, cfg.Fields),
		Dropped: []string{},
		Limit:   t.EffectiveLimit(cfg.Limit),
	}
	req := datastore.Request{Entity: def.Entity, Limit: int64(out.Limit)}

	seen := map[string]bool{}
	for _, key := range cfg.Fields {
		if seen[key] {
			continue
		}
		seen[key] = true
		// drifted keys are not requested; they come back absent
		if _, ok := t.Catalog.Field(cfg.DataSource, key); !ok {
			continue
		}
		col := column(key)
		col.As = key
		req.Columns = append(req.Columns, col)
	}
	if len(req.Columns) == 0 {
		// still need one column to issue a well formed request
		req.Columns = []datastore.Column{{Name: def.CreatedAt, As: "__created_at"}}
	}

	for _, p := range cfg.PredicatesInOrder() {
		if !Validate(t.Catalog, cfg.DataSource, p) {
			out.Dropped = append(out.Dropped, p.ID)
			continue
		}
		f, _ := t.Catalog.Field(cfg.DataSource, p.Field)
		req.Where = append(req.Where, compilePredicate(column(p.Field), f.Type, p))
	}

	if _, ok := t.Catalog.Field(cfg.DataSource, cfg.SortBy); ok && cfg.SortBy != "" {
		req.Sort = []datastore.Sort{{Column: column(cfg.SortBy), Desc: cfg.SortDirection != SortAsc}}
	} else {
		req.Sort = []datastore.Sort{{Column: datastore.Column{Name: def.CreatedAt}, Desc: true}}
	}
	// base id breaks ties so repeated runs return the same rows in the same order
	if last := req.Sort[len(req.Sort)-1].Column; last.Table != "" || last.Name != "id" {
		req.Sort = append(req.Sort, datastore.Sort{Column: datastore.Column{Name: "id"}})
	}

	for _, j := range def.Joins {
		if usedJoins[j.Alias] {
			req.Joins = append(req.Joins, datastore.Join{
				Alias:         j.Alias,
				Entity:        j.Entity,
				LocalColumn:   j.LocalKey,
				ForeignColumn: j.ForeignKey,
			})
		}
	}

	out.Request = req
	return out, nil
}

// compilePredicate assumes p already passed Validate. Date operands become
// whole-day windows so they match DATE and TIMESTAMP columns alike.
func compilePredicate(col datastore.Column, ft FieldType, p Predicate) datastore.Clause {
	cl := datastore.Clause{Column: col}

	switch v := p.Value.(type) {
	case NoValue, nil:
		if p.Operator == OpIsNull {
			cl.Op = datastore.OpIsNull
		} else {
			cl.Op = datastore.OpNotNull
		}
		return cl

	case Range:
		if ft == FieldTypeDate {
			lo, hi := dayStart(v.Lo), nextDay(v.Hi)
			cl.Op, cl.Values = datastore.OpWithin, []any{lo, hi}
			return cl
		}
		cl.Op, cl.Values = datastore.OpBetween, []any{operand(v.Lo), operand(v.Hi)}
		return cl

	case List:
		cl.Op = datastore.OpIn
		for _, it := range v.Items {
			cl.Values = append(cl.Values, operand(it))
		}
		return cl

	case Single:
		if ft == FieldTypeDate {
			return compileDay(cl, p.Operator, v.V)
		}
		cl.Values = []any{operand(v.V)}
		switch p.Operator {
		case OpEquals:
			cl.Op = datastore.OpEq
		case OpNotEquals:
			cl.Op = datastore.OpNe
		case OpContains:
			cl.Op = datastore.OpContains
		case OpGreaterThan:
			cl.Op = datastore.OpGt
		case OpLessThan:
			cl.Op = datastore.OpLt
		case OpGte:
			cl.Op = datastore.OpGte
		case OpLte:
			cl.Op = datastore.OpLte
		}
	}
	return cl
}

func compileDay(cl datastore.Clause, op Operator, s Scalar) datastore.Clause {
	start, next := dayStart(s), nextDay(s)
	switch op {
	case OpEquals:
		cl.Op, cl.Values = datastore.OpWithin, []any{start, next}
	case OpNotEquals:
		cl.Op, cl.Values = datastore.OpOutside, []any{start, next}
	case OpGreaterThan:
		cl.Op, cl.Values = datastore.OpGte, []any{next}
	case OpGte:
		cl.Op, cl.Values = datastore.OpGte, []any{start}
	case OpLessThan:
		cl.Op, cl.Values = datastore.OpLt, []any{start}
	case OpLte:
		cl.Op, cl.Values = datastore.OpLt, []any{next}
	}
	return cl
}

func operand(s Scalar) any {
	switch v := s.(type) {
	case Text:
		return string(v)
	case Number:
		return float64(v)
	case Date:
		return v.Time
	case Bool:
		return bool(v)
	}
	return nil
}

func dayStart(s Scalar) time.Time {
	if d, ok := s.(Date); ok {
		return d.Time
	}
	return time.Time{}
}

func nextDay(s Scalar) time.Time {
	return dayStart(s).AddDate(0, 0, 1)
}
