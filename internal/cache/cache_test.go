package cache

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key(NamespaceAssessment, map[string]string{"type": "medical", "desc": "chest pain"})
	b := Key(NamespaceAssessment, map[string]string{"desc": "chest pain", "type": "medical"})
	if a != b {
		t.Errorf("same fields produced different keys:\n  %s\n  %s", a, b)
	}
}

func TestKeyDiffersByValue(t *testing.T) {
	a := Key(NamespaceAssessment, map[string]string{"type": "medical", "desc": "chest pain"})
	b := Key(NamespaceAssessment, map[string]string{"type": "medical", "desc": "broken arm"})
	if a == b {
		t.Error("different descriptions produced the same key")
	}
}

func TestKeyDiffersByNamespace(t *testing.T) {
	fields := map[string]string{"type": "fire", "desc": "kitchen fire"}
	a := Key(NamespaceAssessment, fields)
	b := Key(NamespaceFirstAid, fields)
	if a == b {
		t.Error("different namespaces produced the same key")
	}
}

func TestKeyFormat(t *testing.T) {
	k := Key(NamespaceFirstAid, map[string]string{"type": "fire"})
	parts := strings.Split(k, ":")
	if len(parts) != 3 || parts[0] != "llm" || parts[1] != NamespaceFirstAid {
		t.Errorf("unexpected key format: %s", k)
	}
	if len(parts[2]) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(parts[2]))
	}
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("x", 150)
	if got := TruncateDescription(long, 100); len(got) != 100 {
		t.Errorf("truncated length = %d, want 100", len(got))
	}
	if got := TruncateDescription("short", 100); got != "short" {
		t.Errorf("short description changed: %q", got)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemory()
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
	if !c.Set("k", []byte("v"), time.Minute) {
		t.Fatal("Set failed")
	}
	got, ok := c.Get("k")
	if !ok || !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if !c.Delete("k") {
		t.Error("Delete reported false for existing key")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("key still present after delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory()
	defer c.Close()

	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still returned")
	}
}

func TestBboltCacheRoundTrip(t *testing.T) {
	c, err := Open("bbolt", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	if !ok || !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get = %q, %v", got, ok)
	}

	c.Set("short", []byte("v"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expired entry still returned")
	}
}

func TestBboltCacheEmptyValue(t *testing.T) {
	c, err := Open("bbolt", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Set("k", nil, time.Minute)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("empty value should still be a hit")
	}
	if len(got) != 0 {
		t.Errorf("Get = %q, want empty", got)
	}
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c, err := Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	if !ok || !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get = %q, %v", got, ok)
	}

	c.Set("k", []byte("v2"), time.Minute)
	got, _ = c.Get("k")
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("overwrite not visible, Get = %q", got)
	}

	if !c.Delete("k") {
		t.Error("Delete reported false for existing key")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
