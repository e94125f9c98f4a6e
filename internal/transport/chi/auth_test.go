package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"auth off without keys", nil, "/v1/products/search", "", http.StatusOK},
		{"blank keys are ignored", []string{"", ""}, "/v1/products/search", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/v1/products/search", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/v1/products/search", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/v1/products/search", "Bearer wrong-key", http.StatusUnauthorized},
		{"prefix of a key", []string{"secret"}, "/v1/products/count", "Bearer secre", http.StatusUnauthorized},
		{"empty bearer", []string{"secret"}, "/v1/products/count", "Bearer ", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/v1/products/search", "Bearer secret", http.StatusOK},
		{"second of two keys", []string{"key1", "key2"}, "/v1/", "Bearer key2", http.StatusOK},
		{"health is public", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics is public", []string{"secret"}, "/metrics", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			BearerAuthMiddleware(tc.keys)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if tc.want != http.StatusUnauthorized {
				return
			}

			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge")
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != CodeUnauthorized || body.Message == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestKnownKey(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}
	for token, want := range map[string]bool{"alpha": true, "beta": true, "alph": false, "gamma": false, "": false} {
		if got := knownKey(keys, token); got != want {
			t.Errorf("knownKey(%q) = %v, want %v", token, got, want)
		}
	}
}
