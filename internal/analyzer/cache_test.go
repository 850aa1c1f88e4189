package analyzer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheBuildsOnceUnderConcurrency(t *testing.T) {
	cache := NewCache()
	var builds atomic.Int32
	build := func() (*int, error) {
		builds.Add(1)
		v := 42
		return &v, nil
	}

	var wg sync.WaitGroup
	results := make([]*int, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Load(cache, KindSentiment, build)
			if err != nil {
				t.Errorf("Load: %v", err)
				return
			}
			results[i] = v
		}()
	}
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Fatalf("expected one build, got %d", got)
	}
	for _, r := range results {
		if r != results[0] {
			t.Fatal("expected every caller to share the same handle")
		}
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	cache := NewCache()
	attempts := 0
	build := func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("service unreachable")
		}
		return "ok", nil
	}
	if _, err := Load(cache, KindEmotion, build); err == nil {
		t.Fatal("expected first build to fail")
	}
	got, err := Load(cache, KindEmotion, build)
	if err != nil || got != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", got, err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one entry, got %d", cache.Len())
	}
}

func TestCacheTypeMismatch(t *testing.T) {
	cache := NewCache()
	if _, err := Load(cache, KindPitch, func() (int, error) { return 1, nil }); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(cache, KindPitch, func() (string, error) { return "x", nil }); err == nil {
		t.Fatal("expected type mismatch error")
	}
}
