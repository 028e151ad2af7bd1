package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/myrjola/coachplan/internal/contexthelpers"
)

func TestAuthenticateContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/me", nil)
	if contexthelpers.IsAuthenticated(r.Context()) {
		t.Fatal("Expected anonymous request")
	}
	if got := contexthelpers.AuthenticatedUserID(r.Context()); got != "" {
		t.Errorf("Expected empty user id, got %q", got)
	}

	r = contexthelpers.AuthenticateContext(r, "user-1", "Petra", true)
	r = contexthelpers.SetRequestID(r, "req-1")
	ctx := r.Context()
	if !contexthelpers.IsAuthenticated(ctx) || !contexthelpers.IsAdmin(ctx) {
		t.Error("Expected authenticated admin")
	}
	if got := contexthelpers.AuthenticatedUserID(ctx); got != "user-1" {
		t.Errorf("Expected user-1, got %q", got)
	}
	if got := contexthelpers.DisplayName(ctx); got != "Petra" {
		t.Errorf("Expected Petra, got %q", got)
	}
	if got := contexthelpers.RequestID(ctx); got != "req-1" {
		t.Errorf("Expected req-1, got %q", got)
	}
}
