// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"net/http"

	json "github.com/goccy/go-json"
)

// APIKeyHeader is the request header carrying the caller's key.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects any request whose X-API-Key header does not
// match one of the configured keys. It runs before handler logic, so
// an unauthenticated request triggers no database or counter work.
func RequireAPIKey(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if presented == "" || !keyAllowed(keys, presented) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid or missing API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keyAllowed compares the presented key against every configured key
// in constant time, so response timing leaks neither a match position
// nor a near-miss.
func keyAllowed(keys []string, presented string) bool {
	allowed := false
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(presented)) == 1 {
			allowed = true
		}
	}
	return allowed
}
