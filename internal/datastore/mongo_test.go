package datastore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildPipeline(t *testing.T) {
	req := Request{
		Entity: "projects",
		Columns: []Column{
			{Name: "id"},
			{Name: "name"},
			{Table: "client", Name: "name", As: "client_name"},
		},
		Joins: []Join{{Alias: "client", Entity: "clients", LocalColumn: "client_id", ForeignColumn: "id"}},
		Where: []Clause{{Column: Column{Table: "client", Name: "name"}, Op: OpEq, Values: []any{"Acme"}}},
		Sort:  []Sort{{Column: Column{Name: "created_at"}, Desc: true}},
		Limit: 25,
	}

	pipeline, err := BuildPipeline(req)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	stages := make([]string, len(pipeline))
	for i, st := range pipeline {
		stages[i] = st[0].Key
	}
	want := []string{"$lookup", "$unwind", "$match", "$sort", "$limit", "$project"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}

	lookup := pipeline[0][0].Value.(bson.D)
	for _, e := range lookup {
		if e.Key == "foreignField" && e.Value != "_id" {
			t.Errorf("foreignField = %v, want _id", e.Value)
		}
	}

	match := pipeline[2][0].Value.(bson.M)
	if _, ok := match["client.name"]; !ok {
		t.Errorf("$match = %v, want client.name condition", match)
	}

	project := pipeline[5][0].Value.(bson.D)
	got := map[string]any{}
	for _, e := range project {
		got[e.Key] = e.Value
	}
	if got["id"] != "$_id" || got["client_name"] != "$client.name" || got["_id"] != 0 {
		t.Errorf("$project = %v", project)
	}
}

func TestBuildPipelineWithoutFilters(t *testing.T) {
	pipeline, err := BuildPipeline(Request{Entity: "expenses", Columns: []Column{{Name: "amount"}}})
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(pipeline) != 1 || pipeline[0][0].Key != "$project" {
		t.Errorf("pipeline = %v, want only $project", pipeline)
	}
}

func TestBuildPipelineNotEqualsOnJoinedField(t *testing.T) {
	pipeline, err := BuildPipeline(Request{
		Entity:  "projects",
		Columns: []Column{{Name: "project_number"}},
		Joins:   []Join{{Alias: "client", Entity: "clients", LocalColumn: "client_id", ForeignColumn: "id"}},
		Where:   []Clause{{Column: Column{Table: "client", Name: "name"}, Op: OpNe, Values: []any{"Other Co"}}},
	})
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	// unmatched lookups survive the unwind with the field missing
	unwind := pipeline[1][0].Value.(bson.D)
	preserved := false
	for _, e := range unwind {
		if e.Key == "preserveNullAndEmptyArrays" && e.Value == true {
			preserved = true
		}
	}
	if !preserved {
		t.Errorf("$unwind = %v, want preserveNullAndEmptyArrays", unwind)
	}

	// $ne matches missing fields, so projects without a client stay
	match := pipeline[2][0].Value.(bson.M)
	cond, ok := match["client.name"].(bson.M)
	if !ok || cond["$ne"] != "Other Co" {
		t.Errorf("$match = %v, want client.name $ne Other Co", match)
	}
}
