package datastore

import (
	"context"
	"errors"
	"time"
)

// Op is a backend-neutral comparison operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpContains Op = "contains"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpBetween  Op = "between" // inclusive [lo, hi]
	OpWithin   Op = "within"  // half-open [lo, hi)
	OpOutside  Op = "outside" // NOT [lo, hi)
	OpIn       Op = "in"
	OpIsNull   Op = "is_null"
	OpNotNull  Op = "not_null"
)

// Column references a column of the base entity (Table == "") or of a joined alias.
type Column struct {
	Table string `json:"table,omitempty"`
	Name  string `json:"name"`
	As    string `json:"as,omitempty"`
}

// Join is always a left join: base rows without a match keep absent values.
type Join struct {
	Alias         string `json:"alias"`
	Entity        string `json:"entity"`
	LocalColumn   string `json:"local_column"`
	ForeignColumn string `json:"foreign_column"`
}

// Clause is one filter condition. All clauses of a request are ANDed.
type Clause struct {
	Column Column `json:"column"`
	Op     Op     `json:"op"`
	Values []any  `json:"values,omitempty"`
}

type Sort struct {
	Column Column `json:"column"`
	Desc   bool   `json:"desc"`
}

// Request is a single structured read against the store.
type Request struct {
	Entity  string   `json:"entity"`
	Columns []Column `json:"columns"`
	Joins   []Join   `json:"joins,omitempty"`
	Where   []Clause `json:"where,omitempty"`
	Sort    []Sort   `json:"sort,omitempty"`
	Limit   int64    `json:"limit"`
}

// Row is keyed by Column.As (or Column.Name when As is empty).
type Row map[string]any

// Client executes one request per call. Implementations never retry.
type Client interface {
	Query(ctx context.Context, req Request) ([]Row, error)
	Ping(ctx context.Context) error
	Driver() string
}

var (
	ErrEmptyEntity   = errors.New("request entity is required")
	ErrNoColumns     = errors.New("request selects no columns")
	ErrUnknownJoin   = errors.New("column references an unknown join alias")
	ErrBadClauseArgs = errors.New("clause has the wrong number of values")
	ErrUnknownOp     = errors.New("clause uses an unknown operator")
)

// Key returns the name a column is returned under.
func (c Column) Key() string {
	if c.As != "" {
		return c.As
	}
	return c.Name
}

// Validate checks request shape before it reaches a backend.
func (r Request) Validate() error {
	if r.Entity == "" {
		return ErrEmptyEntity
	}
	if len(r.Columns) == 0 {
		return ErrNoColumns
	}
	aliases := make(map[string]bool, len(r.Joins))
	for _, j := range r.Joins {
		aliases[j.Alias] = true
	}
	check := func(c Column) error {
		if c.Table != "" && !aliases[c.Table] {
			return ErrUnknownJoin
		}
		return nil
	}
	for _, c := range r.Columns {
		if err := check(c); err != nil {
			return err
		}
	}
	for _, s := range r.Sort {
		if err := check(s.Column); err != nil {
			return err
		}
	}
	for _, cl := range r.Where {
		if err := check(cl.Column); err != nil {
			return err
		}
		if err := cl.checkArity(); err != nil {
			return err
		}
	}
	return nil
}

func (c Clause) checkArity() error {
	switch c.Op {
	case OpIsNull, OpNotNull:
		if len(c.Values) != 0 {
			return ErrBadClauseArgs
		}
	case OpBetween, OpWithin, OpOutside:
		if len(c.Values) != 2 {
			return ErrBadClauseArgs
		}
	case OpIn:
		if len(c.Values) == 0 {
			return ErrBadClauseArgs
		}
	case OpEq, OpNe, OpContains, OpGt, OpGte, OpLt, OpLte:
		if len(c.Values) != 1 {
			return ErrBadClauseArgs
		}
	default:
		return ErrUnknownOp
	}
	return nil
}

// normalizeValue maps driver-specific scalars onto string, float64, int64, bool, time.Time or nil.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}
