package auth

import (
	"net/http"
	"strings"
)

const SessionHeader = "X-Admin-Session"

// TokenFromRequest reads the session token from the X-Admin-Session header,
// falling back to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionHeader)); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	return ""
}
