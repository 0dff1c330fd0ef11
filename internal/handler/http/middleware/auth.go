package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/auth"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// AuthRequired rejects requests without a verified access token and stores the caller's
// user.Principal in the request context. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		principal, ok := principalFromClaims(claims)
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromClaims(claims map[string]interface{}) (user.Principal, bool) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Principal{}, false
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return user.Principal{}, false
	}

	// employee_id is null for owners without an employee profile
	employeeID, _ := claims["employee_id"].(string)

	return user.Principal{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, true
}

// PrincipalFromContext returns the caller stored by AuthRequired.
func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}
