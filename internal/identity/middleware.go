package identity

import (
	"net/http"

	"github.com/google/uuid"
)

// Middleware extracts the caller identity set by the upstream gateway.
// Authentication itself happens outside this service; the headers are
// trusted input. Requests without an identity proceed anonymously and
// fail at the capability check.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get("X-Actor-Id")
		if rawID == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		actor := Actor{ID: id, Role: Role(r.Header.Get("X-Actor-Role"))}
		if raw := r.Header.Get("X-Actor-Subsidiary"); raw != "" {
			if sub, err := uuid.Parse(raw); err == nil {
				actor.SubsidiaryID = &sub
			}
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// Require guards a route subtree with a capability check.
func Require(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !actor.Can(cap) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
