package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
)

func TestItemsPerPageDefaultsWhenUnset(t *testing.T) {
	t.Parallel()

	store := &fakeConfigStore{values: map[string]string{}}
	svc, err := NewService(store, nil, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	got, err := svc.ItemsPerPage(context.Background())
	if err != nil {
		t.Fatalf("ItemsPerPage() error = %v", err)
	}
	if got != 10 {
		t.Fatalf("ItemsPerPage() = %d, want 10", got)
	}
}

func TestItemsPerPageResolvesStoredValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored string
		want   int
	}{
		{name: "stored value", stored: "25", want: 25},
		{name: "padded value", stored: " 40 ", want: 40},
		{name: "zero falls back", stored: "0", want: 10},
		{name: "negative falls back", stored: "-3", want: 10},
		{name: "non numeric falls back", stored: "many", want: 10},
		{name: "empty falls back", stored: "", want: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeConfigStore{values: map[string]string{"report_failedemails/itemsperpage": tt.stored}}
			svc, err := NewService(store, nil, nil)
			if err != nil {
				t.Fatalf("NewService() error = %v", err)
			}

			got, err := svc.ItemsPerPage(context.Background())
			if err != nil {
				t.Fatalf("ItemsPerPage() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ItemsPerPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestItemsPerPageStoreErrorReturnsDefault(t *testing.T) {
	t.Parallel()

	store := &fakeConfigStore{getErr: errors.New("db down")}
	svc, _ := NewService(store, nil, nil)

	got, err := svc.ItemsPerPage(context.Background())
	if err == nil {
		t.Fatal("ItemsPerPage() expected error")
	}
	if got != 10 {
		t.Fatalf("ItemsPerPage() = %d, want default 10 alongside error", got)
	}
}

func TestItemsPerPageUsesCache(t *testing.T) {
	t.Parallel()

	store := &fakeConfigStore{values: map[string]string{"report_failedemails/itemsperpage": "20"}}
	cache := newFakeCache()
	svc, _ := NewService(store, cache, nil)

	for i := 0; i < 3; i++ {
		got, err := svc.ItemsPerPage(context.Background())
		if err != nil {
			t.Fatalf("ItemsPerPage() error = %v", err)
		}
		if got != 20 {
			t.Fatalf("ItemsPerPage() = %d, want 20", got)
		}
	}
	if store.gets != 1 {
		t.Fatalf("store gets = %d, want 1 (later reads served from cache)", store.gets)
	}
	if cache.ttls["config:report_failedemails:itemsperpage"] != 5*time.Minute {
		t.Fatalf("cache ttl = %v, want 5m", cache.ttls["config:report_failedemails:itemsperpage"])
	}
}

func TestSetValidatesAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	store := &fakeConfigStore{values: map[string]string{"report_failedemails/itemsperpage": "20"}}
	cache := newFakeCache()
	svc, _ := NewService(store, cache, nil)

	if _, err := svc.ItemsPerPage(context.Background()); err != nil {
		t.Fatalf("ItemsPerPage() error = %v", err)
	}

	for _, raw := range []string{"abc", "0", "-5", ""} {
		if _, err := svc.Set(context.Background(), ItemsPerPage, raw); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Set(%q) error = %v, want ErrValidation", raw, err)
		}
	}

	if _, err := svc.Set(context.Background(), "colour", "5"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Set(unknown) error = %v, want ErrNotFound", err)
	}

	value, err := svc.Set(context.Background(), ItemsPerPage, " 50 ")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value.Value != 50 || store.values["report_failedemails/itemsperpage"] != "50" {
		t.Fatalf("Set() stored %q, returned %d; want 50", store.values["report_failedemails/itemsperpage"], value.Value)
	}

	got, err := svc.ItemsPerPage(context.Background())
	if err != nil {
		t.Fatalf("ItemsPerPage() error = %v", err)
	}
	if got != 50 {
		t.Fatalf("ItemsPerPage() after Set = %d, want 50", got)
	}
}

func TestListReturnsRegisteredSettings(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&fakeConfigStore{values: map[string]string{}}, nil, nil)

	values, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("List() len = %d, want 1", len(values))
	}
	if values[0].FullName() != "report_failedemails/itemsperpage" || values[0].Value != 10 {
		t.Fatalf("List()[0] = %+v", values[0])
	}
}

type fakeConfigStore struct {
	values map[string]string
	getErr error
	gets   int
}

func (f *fakeConfigStore) Get(ctx context.Context, plugin, name string) (string, error) {
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[plugin+"/"+name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (f *fakeConfigStore) Set(ctx context.Context, plugin, name, value string) error {
	f.values[plugin+"/"+name] = value
	return nil
}

type fakeCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}
