package controllers

import (
	"net/http"

	"github.com/angelmondragon/freightlink-backend/api/middleware"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

const errServiceUnavailable = "service unavailable"

func actorFromRequest(r *http.Request) (authz.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return authz.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// resultFailure turns an unsuccessful result object into the error envelope.
// The full result travels in the details so clients still see per-party state.
func resultFailure(notFound bool, message string, view any) error {
	if notFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.New(pkgerrors.CodeBusinessRule, message).WithDetails(view)
}
