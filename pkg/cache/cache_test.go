package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	value := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	if err := c.Set(ctx, "image:a", value, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "image:a")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(got) != string(value) {
		t.Errorf("Get = %v, want %v", got, value)
	}

	if err := c.Delete(ctx, "image:a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "image:a"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "image:a"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheStatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte("12345"), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, size, err := c.Stats()
	if err != nil || n != 3 || size != 3*(8+5) {
		t.Errorf("Stats() = %d, %d, %v, want 3, 39, nil", n, size, err)
	}

	cleared, err := c.Clear(ctx)
	if err != nil || cleared != 3 {
		t.Errorf("Clear() = %d, %v, want 3, nil", cleared, err)
	}
	if n, _, _ := c.Stats(); n != 0 {
		t.Errorf("Stats() after Clear = %d entries", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
	if HashValue(map[string]int{"a": 1}) != HashValue(map[string]int{"a": 1}) {
		t.Error("HashValue should be deterministic")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src := ImageSource{Path: "/art/alice.png", Size: 1024, ModTime: mod}
	opts := ImageKeyOpts{Width: 1063, Height: 591, FitMode: "fit-proportional"}

	base := k.ImageKey(src, opts)
	if !strings.HasPrefix(base, "image:") {
		t.Errorf("ImageKey = %q, want image: prefix", base)
	}
	if base != k.ImageKey(src, opts) {
		t.Error("ImageKey should be deterministic")
	}

	variants := []struct {
		name string
		src  ImageSource
		opts ImageKeyOpts
	}{
		{"touched file", ImageSource{Path: src.Path, Size: src.Size, ModTime: mod.Add(time.Second)}, opts},
		{"resized file", ImageSource{Path: src.Path, Size: 2048, ModTime: mod}, opts},
		{"turned left", src, ImageKeyOpts{Width: 1063, Height: 591, FitMode: "fit-proportional", Turn: 90}},
		{"turned right", src, ImageKeyOpts{Width: 1063, Height: 591, FitMode: "fit-proportional", Turn: 270}},
		{"stretch", src, ImageKeyOpts{Width: 1063, Height: 591, FitMode: "stretch"}},
		{"other dpi", src, ImageKeyOpts{Width: 532, Height: 296, FitMode: "fit-proportional"}},
	}
	for _, v := range variants {
		if k.ImageKey(v.src, v.opts) == base {
			t.Errorf("%s: key did not change", v.name)
		}
	}

	a1 := k.ArtifactKey("layout-hash", ArtifactKeyOpts{Format: "png", Scale: 4})
	a2 := k.ArtifactKey("layout-hash", ArtifactKeyOpts{Format: "png", Scale: 8})
	if a1 == a2 || !strings.HasPrefix(a1, "artifact:") {
		t.Errorf("ArtifactKey = %q, %q", a1, a2)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "job:123:")
	if key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "pdf"}); !strings.HasPrefix(key, "job:123:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	want := "p:" + NewDefaultKeyer().ImageKey(ImageSource{Path: "x"}, ImageKeyOpts{})
	if got := nilInner.ImageKey(ImageSource{Path: "x"}, ImageKeyOpts{}); got != want {
		t.Errorf("ImageKey with nil inner = %q, want %q", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("errors.Is should see through RetryableError")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	defer func() { retryDelay = 200 * time.Millisecond }()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	plain := errors.New("permanent")
	if err := RetryWithBackoff(ctx, func() error { calls++; return plain }); err != plain || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then success: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
