package preference

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if _, found, err := store.Load(ctx, "u1:projects"); err != nil || found {
		t.Fatalf("Load() on empty store = %v, %v", found, err)
	}

	prefs := ColumnPreferences{
		View:      "projects",
		Visible:   []string{"project_name"},
		Order:     []string{"project_name", "status"},
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, "u1:projects", prefs); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("prefs:u1:projects") {
		t.Error("expected key prefs:u1:projects")
	}

	got, found, err := store.Load(ctx, "u1:projects")
	if err != nil || !found {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if !reflect.DeepEqual(got, prefs) {
		t.Errorf("Load() = %+v, want %+v", got, prefs)
	}

	if _, found, _ := store.Load(ctx, "u2:projects"); found {
		t.Error("preferences leaked across users")
	}
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Set("prefs:u1:projects", "not json")

	if _, _, err := store.Load(context.Background(), "u1:projects"); err == nil {
		t.Error("expected decode error")
	}
}
