package httpcache

import (
	"testing"
	"time"
)

func TestEntry_Expiry(t *testing.T) {
	entry := NewEntry([]byte(`{"total":0}`), 200, 5*time.Minute)

	if entry.IsExpired() {
		t.Error("fresh entry should not be expired")
	}
	if ttl := entry.TTL(); ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("TTL = %v, want within (0, 5m]", ttl)
	}

	entry.Expires = time.Now().Add(-time.Second)
	if !entry.IsExpired() {
		t.Error("entry past its expiry should be expired")
	}
	if ttl := entry.TTL(); ttl != 0 {
		t.Errorf("expired TTL = %v, want 0", ttl)
	}
}
