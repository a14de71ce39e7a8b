package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearthledger/hearthledger/internal/auth"
	"github.com/hearthledger/hearthledger/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var gotUserID string
	handler := RequireAuth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token passes identity through",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "missing header rejected",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header rejected",
			authHeader: "Token " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token rejected",
			authHeader: "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUserID != tt.wantUserID {
				t.Errorf("GetUserID() = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestGetUserIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserID(req.Context()); got != "" {
		t.Errorf("GetUserID() on bare context = %q, want empty", got)
	}
}
