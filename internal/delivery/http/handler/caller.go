package handler

import (
	"net/http"

	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/identity"
	"telehealth-backend/pkg/response"
)

// resolveCaller derives the request's caller once, for handlers whose
// usecases take the resolved identity explicitly. Returns false after
// writing the error response when no identity can be derived.
func resolveCaller(w http.ResponseWriter, r *http.Request, resolver identity.Resolver) (identity.Caller, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return identity.Caller{}, false
	}

	caller, err := resolver.Resolve(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to resolve caller identity")
		return identity.Caller{}, false
	}

	return caller, true
}
