package preference

import (
	"reflect"
	"testing"

	"go-contractor/internal/engine"
)

func keys(fields []engine.FieldMetadata) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key
	}
	return out
}

func TestApply(t *testing.T) {
	fields := []engine.FieldMetadata{
		{Key: "a", Label: "A"}, {Key: "b", Label: "B"}, {Key: "c", Label: "C"}, {Key: "d", Label: "D"},
	}

	tests := []struct {
		name  string
		prefs ColumnPreferences
		want  []string
	}{
		{"no preferences", ColumnPreferences{}, []string{"a", "b", "c", "d"}},
		{"reordered", ColumnPreferences{Order: []string{"c", "a"}}, []string{"c", "a", "b", "d"}},
		{"hidden column", ColumnPreferences{Visible: []string{"a", "c"}, Order: []string{"c", "b", "a"}}, []string{"c", "a", "d"}},
		{"unknown keys ignored", ColumnPreferences{Visible: []string{"zz", "b"}, Order: []string{"zz", "b", "a"}}, []string{"b", "c", "d"}},
		{"visible without order", ColumnPreferences{Visible: []string{"d", "b"}}, []string{"b", "d"}},
		{"duplicate order keys", ColumnPreferences{Order: []string{"b", "b", "a"}}, []string{"b", "a", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keys(Apply(tt.prefs, fields)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Key("u1", "projects"); got != "u1:projects" {
		t.Errorf("Key() = %q", got)
	}
}
