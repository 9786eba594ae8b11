package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxOrgID   contextKey = "organization_id"
	ctxOrgType contextKey = "organization_type"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

func OrganizationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOrgID).(string); ok {
		return v
	}
	return ""
}

func OrganizationTypeFromContext(ctx context.Context) (enums.OrganizationType, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(ctxOrgType).(enums.OrganizationType)
	return v, ok
}

// WithActor seeds the context the same way Auth does. Tests and internal
// callers use it to skip token parsing.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	ctx = context.WithValue(ctx, ctxRole, actor.Role)
	if actor.OrganizationID != nil {
		ctx = context.WithValue(ctx, ctxOrgID, actor.OrganizationID.String())
	}
	return ctx
}

// ActorFromContext rebuilds the authenticated caller. ok is false when the
// request never passed through Auth.
func ActorFromContext(ctx context.Context) (authz.Actor, bool) {
	role := RoleFromContext(ctx)
	if role == "" {
		return authz.Actor{}, false
	}
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return authz.Actor{}, false
	}
	actor := authz.Actor{UserID: userID, Role: role}
	if raw := OrganizationIDFromContext(ctx); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return authz.Actor{}, false
		}
		actor.OrganizationID = &orgID
	}
	return actor, true
}
