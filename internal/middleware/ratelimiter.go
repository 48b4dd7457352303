package middleware

import (
	"errors"
	"net/http"

	"github.com/itchan-dev/studyboard/internal/logger"
	"github.com/itchan-dev/studyboard/internal/middleware/ratelimiter"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Debug("rate limited", "identity", identity, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Possible if user was authorized with previous middleware
func GetUsernameIdentity(r *http.Request) (string, error) {
	username := GetUsernameFromContext(r)
	if username == "" {
		return "", errors.New("Can't get username")
	}
	return "user_" + username, nil
}
