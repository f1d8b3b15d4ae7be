package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestNewEntry_ExpiresHeader(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	header := http.Header{}
	header.Set("Expires", expires.Format(http.TimeFormat))

	entry := NewEntry([]byte(`{"id":1}`), http.StatusOK, header)

	if !entry.Expires.Equal(expires) {
		t.Errorf("Expires = %v, want %v", entry.Expires, expires)
	}
	if entry.IsExpired() {
		t.Error("Entry should not be expired")
	}
	if entry.TTL() <= 0 {
		t.Errorf("TTL() = %v, want > 0", entry.TTL())
	}
}

func TestNewEntry_MissingExpiresUsesDefault(t *testing.T) {
	entry := NewEntry([]byte(`{}`), http.StatusOK, http.Header{})

	ttl := entry.TTL()
	if ttl <= 0 || ttl > DefaultTTL {
		t.Errorf("TTL() = %v, want (0, %v]", ttl, DefaultTTL)
	}
}

func TestNewEntry_UnparsableExpiresUsesDefault(t *testing.T) {
	header := http.Header{}
	header.Set("Expires", "not-a-date")

	entry := NewEntry(nil, http.StatusOK, header)
	if entry.TTL() <= 0 {
		t.Errorf("TTL() = %v, want > 0 (default fallback)", entry.TTL())
	}
}

func TestNewEntry_PastExpiresUsesDefault(t *testing.T) {
	header := http.Header{}
	header.Set("Expires", time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat))

	entry := NewEntry(nil, http.StatusOK, header)
	if entry.IsExpired() {
		t.Error("Past Expires header should fall back to the default TTL, not an expired entry")
	}
}

func TestEntry_IsExpired(t *testing.T) {
	entry := &Entry{Expires: time.Now().Add(-time.Minute)}
	if !entry.IsExpired() {
		t.Error("Entry with past Expires should report expired")
	}
	if entry.TTL() != 0 {
		t.Errorf("TTL() = %v, want 0 for expired entry", entry.TTL())
	}
}

func TestEntry_Size(t *testing.T) {
	entry := &Entry{Data: make([]byte, 1024)}
	if entry.Size() != 1024 {
		t.Errorf("Size() = %d, want 1024", entry.Size())
	}
}
