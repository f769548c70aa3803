package handler

import (
	"net/http"
	"strings"

	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
)

// actorFromRequest returns the authenticated caller or writes a 401.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (model.AuthClaims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return model.AuthClaims{}, false
	}
	return claims, true
}

func queryFlag(r *http.Request, key string) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get(key)), "true")
}
