package api

import (
	"net/http"

	"github.com/KRdoubleL/cv-verification/internal/storage"
)

// Authentication lives upstream; the gateway forwards the verified
// principal in these headers and the service trusts them.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// principal extracts the authenticated principal from the request.
// A missing or malformed identity yields ok=false after a 401 has
// been written.
func principal(w http.ResponseWriter, r *http.Request) (storage.User, bool) {
	id := r.Header.Get(headerUserID)
	role := storage.UserRole(r.Header.Get(headerUserRole))

	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing authenticated principal")
		return storage.User{}, false
	}
	switch role {
	case storage.RoleRecruiter, storage.RoleVerifier, storage.RoleAdmin:
	default:
		writeError(w, http.StatusUnauthorized, "unknown principal role")
		return storage.User{}, false
	}

	return storage.User{ID: id, Role: role}, true
}
