package condition

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rule is a single comparison against a document path.
type Rule struct {
	Field    string
	Operator string
	Values   []interface{}
}

type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile ANDs all rules. An empty list yields an empty filter.
func (c *Compiler) Compile(rules []Rule) (bson.M, error) {
	if len(rules) == 0 {
		return bson.M{}, nil
	}

	conditions := make([]bson.M, 0, len(rules))
	for _, rule := range rules {
		cond, err := c.compileRule(rule)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return bson.M{"$and": conditions}, nil
}

func (c *Compiler) compileRule(rule Rule) (bson.M, error) {
	field := rule.Field
	v := rule.Values

	need := func(n int) error {
		if len(v) != n {
			return fmt.Errorf("%s operator requires %d value(s), got %d", rule.Operator, n, len(v))
		}
		return nil
	}

	switch rule.Operator {
	case "eq", "ne", "gt", "gte", "lt", "lte":
		if err := need(1); err != nil {
			return nil, err
		}
		return bson.M{field: bson.M{"$" + rule.Operator: v[0]}}, nil
	case "between":
		if err := need(2); err != nil {
			return nil, err
		}
		return bson.M{field: bson.M{"$gte": v[0], "$lte": v[1]}}, nil
	case "within":
		if err := need(2); err != nil {
			return nil, err
		}
		return bson.M{field: bson.M{"$gte": v[0], "$lt": v[1]}}, nil
	case "outside":
		if err := need(2); err != nil {
			return nil, err
		}
		// null or missing counts as outside, matching $ne
		return bson.M{"$or": []bson.M{
			{field: bson.M{"$lt": v[0]}},
			{field: bson.M{"$gte": v[1]}},
			{field: nil},
		}}, nil
	case "in":
		if len(v) == 0 {
			return nil, fmt.Errorf("in operator requires at least one value")
		}
		return bson.M{field: bson.M{"$in": v}}, nil
	case "is_null":
		return bson.M{field: nil}, nil
	case "not_null":
		return bson.M{field: bson.M{"$ne": nil}}, nil
	case "contains":
		if err := need(1); err != nil {
			return nil, err
		}
		strVal, ok := v[0].(string)
		if !ok {
			return nil, fmt.Errorf("contains operator requires string value")
		}
		return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(strVal), Options: "i"}}}, nil
	default:
		return nil, fmt.Errorf("unknown operator: %s", rule.Operator)
	}
}
