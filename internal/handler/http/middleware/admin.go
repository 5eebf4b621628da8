package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
	"github.com/payrollhq/payrun-backend-go/internal/handler/http/response"
)

// AdminOnly rejects callers whose resolved capability set lacks the void
// right. The capability comes from the same claims the services use, so the
// route gate and the service check can never disagree.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, session.ErrInvalidToken.Error())
			return
		}

		roleStr, _ := claims["role"].(string)
		caps := session.Resolve(session.ParseRole(roleStr))
		if !caps.CanVoid {
			response.Forbidden(w, "Admin privileges required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
