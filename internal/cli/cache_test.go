package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/partsengine/internal/config"
	"github.com/matzehuels/partsengine/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	dir, err := cacheDir(config.Cache{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	dir, err = cacheDir(config.Cache{Dir: "/var/cache/parts"})
	if err != nil || dir != "/var/cache/parts" {
		t.Errorf("cacheDir(configured) = %q, %v", dir, err)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		check   func(cache.Cache) bool
	}{
		{config.BackendNone, func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{config.BackendMemory, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{config.BackendLRU, func(c cache.Cache) bool { _, ok := c.(*cache.LRUCache); return ok }},
		{config.BackendFile, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := newCache(ctx, config.Cache{Backend: tt.backend, Size: 10, Dir: t.TempDir()})
			if err != nil {
				t.Fatalf("newCache(%s) error: %v", tt.backend, err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache(%s) = %T", tt.backend, c)
			}
		})
	}

	if _, err := newCache(ctx, config.Cache{Backend: "floppy"}); err == nil {
		t.Error("newCache(floppy) should fail")
	}
}

func TestPersistent(t *testing.T) {
	for backend, want := range map[string]bool{
		config.BackendFile:   true,
		config.BackendRedis:  true,
		config.BackendMongo:  true,
		config.BackendMemory: false,
		config.BackendLRU:    false,
		config.BackendNone:   false,
	} {
		if got := persistent(backend); got != want {
			t.Errorf("persistent(%s) = %v, want %v", backend, got, want)
		}
	}
}
