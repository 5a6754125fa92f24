// Package authmw provides HTTP middleware for bearer token authentication.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const prefix = "Bearer "

// BearerToken returns middleware that accepts a request when its
// Authorization header carries a Bearer token equal to any of tokens.
// Several tokens allow rotation without downtime. Empty tokens are ignored;
// with none left every request is rejected.
func BearerToken(tokens ...string) func(http.Handler) http.Handler {
	var accepted [][]byte
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			accepted = append(accepted, []byte(t))
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, prefix) {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			if !matches(accepted, []byte(auth[len(prefix):])) {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matches compares got against every token in constant time, without
// stopping at the first hit.
func matches(accepted [][]byte, got []byte) bool {
	ok := 0
	for _, want := range accepted {
		ok |= subtle.ConstantTimeCompare(got, want)
	}
	return ok == 1
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="preslist"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
