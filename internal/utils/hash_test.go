package utils

import (
	"strings"
	"testing"
)

func TestContentHashStable(t *testing.T) {
	a := ContentHash("some observed post content")
	b := ContentHash("some observed post content")
	if a != b {
		t.Fatalf("hash must be deterministic: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "h_") {
		t.Fatalf("unexpected fingerprint format: %s", a)
	}
}

func TestContentHashDiffers(t *testing.T) {
	if ContentHash("content a") == ContentHash("content b") {
		t.Fatalf("different content must not collide")
	}
}

func TestContentHashEncodesLength(t *testing.T) {
	a := ContentHash("abc")
	if !strings.HasSuffix(a, "_3") {
		t.Fatalf("fingerprint must carry content length, got %s", a)
	}
}
