package datastore

import (
	"context"
	"fmt"
	"strconv"

	"go-contractor/pkg/condition"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient runs requests as a single aggregation over per-entity collections.
type MongoClient struct {
	DB *mongo.Database
}

func NewMongoClient(db *mongo.Database) *MongoClient {
	return &MongoClient{DB: db}
}

func (c *MongoClient) Driver() string { return "mongo" }

func (c *MongoClient) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

func (c *MongoClient) Query(ctx context.Context, req Request) ([]Row, error) {
	pipeline, err := BuildPipeline(req)
	if err != nil {
		return nil, err
	}

	cursor, err := c.DB.Collection(req.Entity).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to execute aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}

	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		row := make(Row, len(req.Columns))
		for _, col := range req.Columns {
			row[col.Key()] = normalizeBSON(doc[col.Key()])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mongoPath maps the catalog's "id" column onto the document _id.
func mongoPath(col Column) string {
	name := col.Name
	if name == "id" {
		name = "_id"
	}
	if col.Table == "" {
		return name
	}
	return col.Table + "." + name
}

// BuildPipeline renders a request into lookup, match, sort, limit and project stages.
func BuildPipeline(req Request) (mongo.Pipeline, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{}

	for _, j := range req.Joins {
		foreign := j.ForeignColumn
		if foreign == "id" {
			foreign = "_id"
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: j.Entity},
				{Key: "localField", Value: j.LocalColumn},
				{Key: "foreignField", Value: foreign},
				{Key: "as", Value: j.Alias},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + j.Alias},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}

	if len(req.Where) > 0 {
		rules := make([]condition.Rule, len(req.Where))
		for i, cl := range req.Where {
			rules[i] = condition.Rule{Field: mongoPath(cl.Column), Operator: string(cl.Op), Values: cl.Values}
		}
		match, err := condition.NewCompiler().Compile(rules)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	if len(req.Sort) > 0 {
		sort := bson.D{}
		for _, s := range req.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: mongoPath(s.Column), Value: dir})
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}

	if req.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: req.Limit}})
	}

	project := bson.D{{Key: "_id", Value: 0}}
	for _, col := range req.Columns {
		key := col.Key()
		if key == "_id" {
			continue
		}
		project = append(project, bson.E{Key: key, Value: "$" + mongoPath(col)})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: project}})

	return pipeline, nil
}

func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t.String()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return normalizeValue(v)
	}
}
