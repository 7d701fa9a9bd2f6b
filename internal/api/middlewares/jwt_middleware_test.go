package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			id = "anonymous"
		}
		_, _ = w.Write([]byte(id))
	})
}

func serve(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	const secret = "s3cret"
	h := JWTMiddleware(secret)(echoUser())

	valid, err := IssueToken(secret, "u42", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "u42", -time.Hour)
	require.NoError(t, err)
	foreign, err := IssueToken("other", "u42", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		auth     string
		wantCode int
		wantBody string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, "u42"},
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, ""},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.auth)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestJWTMiddleware_Disabled(t *testing.T) {
	h := JWTMiddleware("")(echoUser())

	rec := serve(h, "Bearer whatever")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken("", "u1", time.Hour)
	assert.Error(t, err)
}
