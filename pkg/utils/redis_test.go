package utils

import "testing"

func TestUnlockScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the release script should be initialized.
	if unlockScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestNewRedisLockDefaultsTTL(t *testing.T) {
	l := NewRedisLock(nil, 0)
	if l.ttl <= 0 {
		t.Fatalf("expected positive default ttl")
	}
}
