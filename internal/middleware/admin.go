package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminHeader carries the admin token on privileged requests.
const AdminHeader = "x-admin-token"

// RequireAdmin answers 403 unless the request carries token in AdminHeader.
// An empty token locks the endpoint entirely.
func RequireAdmin(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get(AdminHeader)
		if token == "" || t == "" || subtle.ConstantTimeCompare([]byte(t), []byte(token)) != 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
