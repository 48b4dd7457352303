package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/studyboard/internal/domain"
	jwt_internal "github.com/itchan-dev/studyboard/internal/jwt"
	"github.com/itchan-dev/studyboard/internal/logger"
)

// Key to store the username in the request context
type key int

const UsernameKey key = 0

// Auth resolves the caller from a bearer token (or the accessToken cookie).
// Credentials are checked by the campus login service, only the token is verified here.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// Sentinel errors for extractUsername
var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) extractUsername(r *http.Request) (domain.Username, error) {
	var tokenString string
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	} else if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	}

	if tokenString == "" {
		return "", errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return "", err
	}

	username, ok := jwt_internal.Username(token)
	if !ok {
		return "", errInvalidClaims
	}
	return username, nil
}

// NeedAuth rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := a.extractUsername(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				default:
					http.Error(w, err.Error(), http.StatusUnauthorized)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsernameFromContext returns "" when the request passed no auth middleware.
func GetUsernameFromContext(r *http.Request) domain.Username {
	username, ok := r.Context().Value(UsernameKey).(domain.Username)
	if !ok {
		return ""
	}
	return username
}

// WithUsername is used by tests to fake an authenticated request.
func WithUsername(r *http.Request, username domain.Username) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UsernameKey, username))
}
