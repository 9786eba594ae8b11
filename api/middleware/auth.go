package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/freightlink-backend/api/responses"
	pkgAuth "github.com/angelmondragon/freightlink-backend/pkg/auth"
	"github.com/angelmondragon/freightlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if !claims.Role.IsAdmin() && claims.OrganizationID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization claim required"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, claims.Role)
			if claims.OrganizationID != nil {
				ctx = context.WithValue(ctx, ctxOrgID, claims.OrganizationID.String())
			}
			if claims.OrganizationType != nil {
				ctx = context.WithValue(ctx, ctxOrgType, *claims.OrganizationType)
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
				if claims.OrganizationID != nil {
					ctx = logg.WithOrganizationID(ctx, claims.OrganizationID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
