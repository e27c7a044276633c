package handler

import (
	"net/http"
	"testing"
)

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupTestAPI(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/inquiries"},
		{http.MethodGet, "/api/v1/inquiries/all"},
		{http.MethodDelete, "/api/v1/inquiries/1"},
		{http.MethodGet, "/api/v1/news/all"},
		{http.MethodPost, "/api/v1/news"},
		{http.MethodGet, "/api/v1/gallery/all"},
		{http.MethodDelete, "/api/v1/gallery/1"},
	}

	for _, route := range routes {
		rr := env.do(t, route.method, route.path, "", nil, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rr.Code)
		}
		if msg := errorMessage(t, rr); msg != "Access token required" {
			t.Fatalf("%s %s: unexpected error %q", route.method, route.path, msg)
		}
	}
}

func TestAdminRoutesRejectInvalidToken(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/v1/news/all", "not-a-token", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Invalid or expired token" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Bearer":          "",
		"Basic abc":       "",
		"Bearer abc":      "abc",
		"bearer  abc ":    "abc",
		"  Bearer x.y.z ": "x.y.z",
	}
	for header, expected := range tests {
		if got := bearerToken(header); got != expected {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, expected)
		}
	}
}

func TestLoginAndMe(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, rr, &resp)
	if resp.Token == "" || resp.User.Username != "admin" || resp.User.Role != "admin" {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/auth/me", resp.Token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d", rr.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Invalid credentials" {
		t.Fatalf("unexpected error %q", msg)
	}

	rr = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rr.Code)
	}
}
