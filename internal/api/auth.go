package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vietddude/sparki/internal/core/domain"
)

// The gateway authenticates the caller and forwards the identity in these
// headers.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserType = "X-User-Type"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "requestID"
	contextKeyPrincipal contextKey = "principal"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// PrincipalFrom returns the caller identity stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal).(domain.Principal)
	return p, ok
}

func principalFromHeaders(r *http.Request) (domain.Principal, bool) {
	id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, false
	}
	t := domain.UserType(r.Header.Get(HeaderUserType))
	if !t.Valid() {
		return domain.Principal{}, false
	}
	return domain.Principal{UserID: id, UserType: t}, true
}

// authMiddleware rejects requests without a forwarded identity.
func authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFromHeaders(r)
		if !ok {
			fail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyPrincipal, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// adminMiddleware additionally requires the admin user type.
func adminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		if !p.IsAdmin() {
			fail(w, http.StatusForbidden, "You are not authorized to perform this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}
