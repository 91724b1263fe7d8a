package auth

import (
	"strings"
	"testing"
)

func TestHMACKeyRoundTrip(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "unit-test-secret")

	key := GenerateHMACKey("staffing-portal")
	clientID, err := VerifyHMACKey(key)
	if err != nil {
		t.Fatalf("generated key must verify: %v", err)
	}
	if clientID != "staffing-portal" {
		t.Errorf("expected client id to round-trip, got %q", clientID)
	}
}

func TestHMACKeyRejectsTampering(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "unit-test-secret")

	if _, err := VerifyHMACKey("not-a-key"); err == nil {
		t.Errorf("malformed key must be rejected")
	}

	key := GenerateHMACKey("staffing-portal")
	signature := strings.Split(key, ".")[1]
	if _, err := VerifyHMACKey("other-client." + signature); err == nil {
		t.Errorf("signature minted for a different client must be rejected")
	}
}
