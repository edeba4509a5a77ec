package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cardimposer/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/xdg-cache", "impose"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", "")
		t.Setenv("HOME", home)
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join(home, ".cache", "impose"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("config override", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.Config.Cache.Dir = "/srv/impose-cache"
		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if dir != "/srv/impose-cache" {
			t.Errorf("cacheDir() = %q", dir)
		}
	})
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		backend string
		noCache bool
		isFile  bool
	}{
		{name: "file", backend: CacheFile, isFile: true},
		{name: "none", backend: CacheNone},
		{name: "no-cache flag wins", backend: CacheFile, noCache: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config.Cache.Backend = tt.backend
			c.Config.Cache.Dir = t.TempDir()

			store, err := c.newCache(ctx, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer store.Close()

			_, isFile := store.(*cache.FileCache)
			if isFile != tt.isFile {
				t.Errorf("newCache() = %T, want file cache %v", store, tt.isFile)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
