package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("search", "bbc.com", "ceasefire talks")
	b := Key("search", "bbc.com", "ceasefire talks")
	c := Key("search", "bbc.comceasefire", " talks")

	if a != b {
		t.Error("Expected stable keys")
	}
	if a == c {
		t.Error("Expected part boundaries to matter")
	}
	if !strings.HasPrefix(a, "newsgate:v1:search:") {
		t.Errorf("Unexpected key %q", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss")
	}

	_ = c.Set("k", []byte("v"), 0)
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("Expected hit, got %q %v", v, ok)
	}

	_ = c.Set("short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}

	_ = c.Clear()
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("feed:reuters", []byte(`[1,2]`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok := c.Get("feed:reuters"); !ok || string(v) != `[1,2]` {
		t.Errorf("Expected hit, got %q %v", v, ok)
	}

	// A second instance on the same directory sees the entry
	if _, ok := NewDiskCache(dir, time.Minute).Get("feed:reuters"); !ok {
		t.Error("Expected entry to persist across instances")
	}

	_ = c.Set("old", []byte("x"), -time.Second)
	if _, ok := c.Get("old"); ok {
		t.Error("Expected expired entry to miss")
	}

	if err := c.Delete("never-set"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	if err := NewDiskCache(dir, time.Minute).Set("k", []byte("from disk"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Minute)
	if v, ok := c.Get("k"); !ok || string(v) != "from disk" {
		t.Fatalf("Expected disk hit, got %q %v", v, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := c.Delete("k"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := New(time.Minute, "")

	type item struct{ Title string }
	if err := SetJSON(c, "items", []item{{Title: "a"}}, 0); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got []item
	if !GetJSON(c, "items", &got) || len(got) != 1 || got[0].Title != "a" {
		t.Errorf("Unexpected round trip: %v", got)
	}

	_ = c.Set("bad", []byte("{"), 0)
	if GetJSON(c, "bad", &got) {
		t.Error("Expected corrupt entry to miss")
	}
}
