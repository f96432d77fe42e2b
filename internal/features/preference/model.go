package preference

import (
	"time"

	"go-contractor/internal/engine"
)

// ColumnPreferences is one user's column layout for one view.
// An empty Visible list shows every column.
type ColumnPreferences struct {
	View      string    `json:"view" bson:"view"`
	Visible   []string  `json:"visible" bson:"visible"`
	Order     []string  `json:"order" bson:"order"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Key scopes a view to a user.
func Key(userID, view string) string {
	return userID + ":" + view
}

// Apply orders and filters fields by prefs. Keys the fields do not contain are
// ignored. When Order is set, fields it never mentions stay visible at the end
// in their original order.
func Apply(prefs ColumnPreferences, fields []engine.FieldMetadata) []engine.FieldMetadata {
	visible := make(map[string]bool, len(prefs.Visible))
	for _, k := range prefs.Visible {
		visible[k] = true
	}
	rank := make(map[string]int, len(prefs.Order))
	for i, k := range prefs.Order {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}

	shown := func(key string) bool {
		if len(visible) == 0 || visible[key] {
			return true
		}
		_, ordered := rank[key]
		return len(rank) > 0 && !ordered
	}

	ordered := make([]engine.FieldMetadata, len(prefs.Order))
	placed := make([]bool, len(prefs.Order))
	var rest []engine.FieldMetadata
	for _, f := range fields {
		if !shown(f.Key) {
			continue
		}
		if i, ok := rank[f.Key]; ok {
			ordered[i] = f
			placed[i] = true
			continue
		}
		rest = append(rest, f)
	}

	out := make([]engine.FieldMetadata, 0, len(fields))
	for i, f := range ordered {
		if placed[i] {
			out = append(out, f)
		}
	}
	return append(out, rest...)
}

type UpdatePreferencesRequest struct {
	Visible []string `json:"visible"`
	Order   []string `json:"order"`
}

// ViewPreferences is the GET response: the stored layout and, when the view is
// a data source, its fields with the layout applied.
type ViewPreferences struct {
	Preferences ColumnPreferences      `json:"preferences"`
	Fields      []engine.FieldMetadata `json:"fields,omitempty"`
}
