package controller

import (
	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/pkg/serverutils"
	"vibenotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResponseController interface {
	RegisterRoutes(r fiber.Router)
	AddResponse(ctx *fiber.Ctx) error
	PatchResponse(ctx *fiber.Ctx) error
}

type responseController struct {
	responseService service.IResponseService
	jwtSecret       string
}

func NewResponseController(responseService service.IResponseService, jwtSecret string) IResponseController {
	return &responseController{
		responseService: responseService,
		jwtSecret:       jwtSecret,
	}
}

func (c *responseController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.JwtMiddleware(c.jwtSecret)
	h := r.Group("/notes")
	h.Post(":id/response", auth, c.AddResponse)
	h.Patch(":id/response", auth, c.PatchResponse)
}

func (c *responseController) AddResponse(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	noteId, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AddResponseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.responseService.AddResponse(ctx.UserContext(), userId, noteId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Response added", res))
}

func (c *responseController) PatchResponse(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	noteId, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.PatchResponseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.responseService.PatchResponse(ctx.UserContext(), userId, noteId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success "+req.Action, res))
}
