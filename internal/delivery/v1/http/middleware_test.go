package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	var gotUserID string
	handler := AuthMiddleware(auth.NewStaticVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromCtx(r.Context())
		if err != nil {
			t.Errorf("user id missing from context: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantUserID string
	}{
		{"valid token", "Bearer user-42", http.StatusNoContent, "user-42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dXNlcg==", http.StatusUnauthorized, ""},
		{"blank token", "Bearer   ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if gotUserID != tt.wantUserID {
				t.Errorf("user id = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}
