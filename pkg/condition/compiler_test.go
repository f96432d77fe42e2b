package condition

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		want    bson.M
		wantErr bool
	}{
		{
			name:  "Empty",
			rules: nil,
			want:  bson.M{},
		},
		{
			name:  "Single Equality",
			rules: []Rule{{Field: "status", Operator: "eq", Values: []interface{}{"active"}}},
			want:  bson.M{"status": bson.M{"$eq": "active"}},
		},
		{
			name:  "Half Open Window",
			rules: []Rule{{Field: "start_date", Operator: "within", Values: []interface{}{1, 2}}},
			want:  bson.M{"start_date": bson.M{"$gte": 1, "$lt": 2}},
		},
		{
			name:  "Outside",
			rules: []Rule{{Field: "d", Operator: "outside", Values: []interface{}{1, 2}}},
			want: bson.M{"$or": []bson.M{
				{"d": bson.M{"$lt": 1}},
				{"d": bson.M{"$gte": 2}},
				{"d": nil},
			}},
		},
		{
			name:  "Not Equal Keeps Missing Values",
			rules: []Rule{{Field: "client.name", Operator: "ne", Values: []interface{}{"Other Co"}}},
			want:  bson.M{"client.name": bson.M{"$ne": "Other Co"}},
		},
		{
			name: "Several Rules Are ANDed",
			rules: []Rule{
				{Field: "a", Operator: "is_null"},
				{Field: "b", Operator: "not_null"},
			},
			want: bson.M{"$and": []bson.M{
				{"a": nil},
				{"b": bson.M{"$ne": nil}},
			}},
		},
		{
			name:  "Contains Escapes Regex",
			rules: []Rule{{Field: "name", Operator: "contains", Values: []interface{}{"a.b"}}},
			want:  bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: `a\.b`, Options: "i"}}},
		},
		{
			name:    "Unknown Operator",
			rules:   []Rule{{Field: "a", Operator: "like", Values: []interface{}{"x"}}},
			wantErr: true,
		},
		{
			name:    "Wrong Arity",
			rules:   []Rule{{Field: "a", Operator: "between", Values: []interface{}{1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCompiler().Compile(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile() = %v, want %v", got, tt.want)
			}
		})
	}
}
