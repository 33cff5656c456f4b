package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Middleware attaches the bearer token's identity to the request. When
// required is false, requests without a token pass through anonymously; a
// token that is present but invalid is always rejected.
func Middleware(issuer *Issuer, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				if required {
					writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
				return
			}
			id, err := issuer.Parse(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects requests whose identity lacks role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
				return
			}
			if id.Role != role {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginHandler serves POST /auth/login. Any non-blank email and password sign
// in; there is no credential store behind it.
func LoginHandler(issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			writeError(w, http.StatusBadRequest, ErrBadCredentials.Error())
			return
		}
		role, err := ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := Identity{Email: email, Role: role}
		token, expires, err := issuer.Issue(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrSigningDisabled) {
				status = http.StatusServiceUnavailable
			}
			writeError(w, status, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      token,
			"expires_at": expires,
			"identity":   id,
		})
	}
}

// MeHandler returns the caller's identity.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(id)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
