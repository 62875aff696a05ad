package controller

import (
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserId reads the id the JWT middleware stored in locals.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals(serverutils.LocalUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, apperr.NotAuthenticated("authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NotAuthenticated("invalid user id in token")
	}
	return id, nil
}

// optionalUserId is nil for anonymous requests.
func optionalUserId(ctx *fiber.Ctx) *uuid.UUID {
	id, err := currentUserId(ctx)
	if err != nil {
		return nil
	}
	return &id
}

func pathId(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}
