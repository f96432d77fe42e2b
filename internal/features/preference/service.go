package preference

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-contractor/internal/engine"
)

var ErrViewRequired = errors.New("view is required")

type PreferenceService interface {
	Get(ctx context.Context, userID, view string) (*ViewPreferences, error)
	Put(ctx context.Context, userID, view string, req UpdatePreferencesRequest) (*ViewPreferences, error)
}

type PreferenceServiceImpl struct {
	Store   Store
	Catalog *engine.Catalog
	Now     func() time.Time
}

func NewPreferenceService(store Store, catalog *engine.Catalog) PreferenceService {
	return &PreferenceServiceImpl{Store: store, Catalog: catalog, Now: time.Now}
}

func (s *PreferenceServiceImpl) Get(ctx context.Context, userID, view string) (*ViewPreferences, error) {
	view = strings.TrimSpace(view)
	if view == "" {
		return nil, ErrViewRequired
	}
	prefs, found, err := s.Store.Load(ctx, Key(userID, view))
	if err != nil {
		return nil, err
	}
	if !found {
		prefs = ColumnPreferences{View: view, Visible: []string{}, Order: []string{}}
	}
	return s.view(prefs), nil
}

func (s *PreferenceServiceImpl) Put(ctx context.Context, userID, view string, req UpdatePreferencesRequest) (*ViewPreferences, error) {
	view = strings.TrimSpace(view)
	if view == "" {
		return nil, ErrViewRequired
	}
	prefs := ColumnPreferences{
		View:      view,
		Visible:   dedupe(req.Visible),
		Order:     dedupe(req.Order),
		UpdatedAt: s.Now(),
	}
	if err := s.Store.Save(ctx, Key(userID, view), prefs); err != nil {
		return nil, err
	}
	return s.view(prefs), nil
}

func (s *PreferenceServiceImpl) view(prefs ColumnPreferences) *ViewPreferences {
	out := &ViewPreferences{Preferences: prefs}
	ds := engine.DataSource(prefs.View)
	if _, ok := s.Catalog.Source(ds); ok {
		out.Fields = Apply(prefs, s.Catalog.FieldsFor(ds))
	}
	return out
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
