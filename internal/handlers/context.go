package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

var errInvalidUserID = errors.New("invalid user id")

func SetPrincipalInContext(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func GetPrincipalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalContextKey).(*models.Principal)
	return p
}

// resolveTargetUserID decides whose data r is about: the {userId} path value
// when the route has one, otherwise the caller. Authorization is left to the
// service layer.
func resolveTargetUserID(r *http.Request, caller *models.Principal) (uuid.UUID, error) {
	raw := r.PathValue("userId")
	if raw == "" || raw == "me" {
		return caller.UserID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidUserID
	}
	return id, nil
}

func parseUUIDPath(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
