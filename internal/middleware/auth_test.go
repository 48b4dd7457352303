package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt_internal "github.com/itchan-dev/studyboard/internal/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	token, err := jwtService.NewToken("alice")
	require.NoError(t, err)
	foreign, err := jwt_internal.New("other_secret", time.Hour).NewToken("alice")
	require.NoError(t, err)

	tests := []struct {
		name             string
		header           string
		cookie           *http.Cookie
		expectedStatus   int
		expectedUsername string
	}{
		{
			name:             "Valid bearer token",
			header:           "Bearer " + token,
			expectedStatus:   http.StatusOK,
			expectedUsername: "alice",
		},
		{
			name:             "Valid cookie",
			cookie:           &http.Cookie{Name: "accessToken", Value: token},
			expectedStatus:   http.StatusOK,
			expectedUsername: "alice",
		},
		{
			name:           "No token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage token",
			header:         "Bearer invalid_token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token signed with another key",
			header:         "Bearer " + foreign,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			var seen string
			handler := NewAuth(jwtService).NeedAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetUsernameFromContext(r)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedUsername, seen)
		})
	}
}

func TestGetUsernameFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, GetUsernameFromContext(req))
	assert.Equal(t, "bob", GetUsernameFromContext(WithUsername(req, "bob")))
}
