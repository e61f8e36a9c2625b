package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authStack(keys map[string]string) http.Handler {
	return APIKeyAuth(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetTenantFromContext(r.Context())))
	}))
}

func TestAPIKeyAuth(t *testing.T) {
	h := authStack(map[string]string{"acme": "secret-1", "globex": "secret-2"})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/v1/acme/assessments", "", http.StatusUnauthorized},
		{"wrong key", "/v1/acme/assessments", "Bearer nope", http.StatusUnauthorized},
		{"bare key", "/v1/acme/assessments", "secret-1", http.StatusOK},
		{"bearer key", "/v1/acme/assessments", "Bearer secret-1", http.StatusOK},
		{"another tenant's key", "/v1/acme/assessments", "Bearer secret-2", http.StatusForbidden},
		{"health stays open", "/health", "", http.StatusOK},
		{"metrics stays open", "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestAPIKeyAuthSetsTenant(t *testing.T) {
	h := authStack(map[string]string{"acme": "secret-1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/summary", nil)
	req.Header.Set("Authorization", "Bearer secret-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Body.String() != "acme" {
		t.Fatalf("tenant in context = %q, want acme", rec.Body.String())
	}
}

func TestTenantFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/v1/acme/assessments", "acme"},
		{"/v1/acme/assessments/latest", "acme"},
		{"/v1/acme", "acme"},
		{"/health", ""},
		{"/metrics", ""},
		{"/v2/acme/assessments", ""},
	}
	for _, tt := range tests {
		if got := TenantFromPath(tt.path); got != tt.want {
			t.Fatalf("TenantFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
