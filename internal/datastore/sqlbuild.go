package datastore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const baseAlias = "base"

// Dialect captures the differences between the SQL drivers we talk to.
type Dialect struct {
	Name       string
	DriverName string
	Dollar     bool // $1 placeholders instead of ?
	QuoteChar  byte
	ILike      bool
	// DateArg converts time arguments for drivers that compare dates as text.
	DateArg func(t time.Time) any
}

var (
	Postgres = Dialect{Name: "postgres", DriverName: "postgres", Dollar: true, QuoteChar: '"', ILike: true}
	MySQL    = Dialect{Name: "mysql", DriverName: "mysql", QuoteChar: '`'}
	SQLite   = Dialect{Name: "sqlite", DriverName: "sqlite", QuoteChar: '"', DateArg: sqliteDate}
)

// DialectFor resolves a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql driver: %s", driver)
}

func sqliteDate(t time.Time) any {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

type sqlBuilder struct {
	d    Dialect
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	if t, ok := v.(time.Time); ok && b.d.DateArg != nil {
		v = b.d.DateArg(t)
	}
	b.args = append(b.args, v)
	if b.d.Dollar {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

func (b *sqlBuilder) quote(ident string) string {
	q := string(b.d.QuoteChar)
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

func (b *sqlBuilder) column(c Column) string {
	table := c.Table
	if table == "" {
		table = baseAlias
	}
	return b.quote(table) + "." + b.quote(c.Name)
}

// BuildSQL renders a request into a SELECT statement and its arguments.
func BuildSQL(d Dialect, req Request) (string, []any, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	for _, j := range req.Joins {
		if j.Alias == baseAlias {
			return "", nil, fmt.Errorf("join alias %q is reserved", baseAlias)
		}
	}

	b := &sqlBuilder{d: d}
	var sb strings.Builder

	sb.WriteString("SELECT ")
	for i, c := range req.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.column(c))
		sb.WriteString(" AS ")
		sb.WriteString(b.quote(c.Key()))
	}

	sb.WriteString(" FROM ")
	sb.WriteString(b.quote(req.Entity))
	sb.WriteString(" AS ")
	sb.WriteString(b.quote(baseAlias))

	for _, j := range req.Joins {
		fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s.%s = %s.%s",
			b.quote(j.Entity), b.quote(j.Alias),
			b.quote(j.Alias), b.quote(j.ForeignColumn),
			b.quote(baseAlias), b.quote(j.LocalColumn))
	}

	if len(req.Where) > 0 {
		parts := make([]string, 0, len(req.Where))
		for _, cl := range req.Where {
			parts = append(parts, b.clause(cl))
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if len(req.Sort) > 0 {
		parts := make([]string, 0, len(req.Sort))
		for _, s := range req.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			parts = append(parts, b.column(s.Column)+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if req.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.FormatInt(req.Limit, 10))
	}

	return sb.String(), b.args, nil
}

func (b *sqlBuilder) clause(cl Clause) string {
	col := b.column(cl.Column)
	switch cl.Op {
	case OpEq:
		return col + " = " + b.arg(cl.Values[0])
	case OpNe:
		// absent values (including unmatched joins) differ from any operand
		return "(" + col + " <> " + b.arg(cl.Values[0]) + " OR " + col + " IS NULL)"
	case OpGt:
		return col + " > " + b.arg(cl.Values[0])
	case OpGte:
		return col + " >= " + b.arg(cl.Values[0])
	case OpLt:
		return col + " < " + b.arg(cl.Values[0])
	case OpLte:
		return col + " <= " + b.arg(cl.Values[0])
	case OpBetween:
		return "(" + col + " >= " + b.arg(cl.Values[0]) + " AND " + col + " <= " + b.arg(cl.Values[1]) + ")"
	case OpWithin:
		return "(" + col + " >= " + b.arg(cl.Values[0]) + " AND " + col + " < " + b.arg(cl.Values[1]) + ")"
	case OpOutside:
		return "(" + col + " < " + b.arg(cl.Values[0]) + " OR " + col + " >= " + b.arg(cl.Values[1]) + " OR " + col + " IS NULL)"
	case OpIn:
		ph := make([]string, len(cl.Values))
		for i, v := range cl.Values {
			ph[i] = b.arg(v)
		}
		return col + " IN (" + strings.Join(ph, ", ") + ")"
	case OpIsNull:
		return col + " IS NULL"
	case OpNotNull:
		return col + " IS NOT NULL"
	case OpContains:
		pattern := "%" + escapeLike(fmt.Sprint(cl.Values[0])) + "%"
		if b.d.ILike {
			return col + " ILIKE " + b.arg(pattern) + " ESCAPE '!'"
		}
		return "LOWER(" + col + ") LIKE LOWER(" + b.arg(pattern) + ") ESCAPE '!'"
	}
	// Validate rejects unknown ops before we get here; keep the query total anyway.
	return "1 = 0"
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
