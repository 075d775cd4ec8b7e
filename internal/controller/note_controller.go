package controller

import (
	"sigment-be/internal/dto"
	"sigment-be/internal/pkg/serverutils"
	"sigment-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Moderate(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id/moderate", c.Moderate)
	h.Post(":id/retry", c.Retry)
}

func (c *noteController) Submit(ctx *fiber.Ctx) error {
	organizationId, userId := tenantIdentity(ctx)

	var req dto.SubmitNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Submit(ctx.Context(), organizationId, userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Note queued for processing", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid note id")
	}

	res, err := c.noteService.Show(ctx.Context(), organizationId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	var req dto.ListNotesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.noteService.List(ctx.Context(), organizationId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Moderate(ctx *fiber.Ctx) error {
	organizationId, userId := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid note id")
	}

	var req dto.ModerateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Moderate(ctx.Context(), organizationId, userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success moderate note", res))
}

func (c *noteController) Retry(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid note id")
	}

	res, err := c.noteService.Retry(ctx.Context(), organizationId, id)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Note re-queued for processing", res))
}

// tenantIdentity pulls the authenticated tenant and user out of the request
// locals set by the JWT middleware.
func tenantIdentity(ctx *fiber.Ctx) (organizationId, userId uuid.UUID) {
	organizationIdStr, _ := ctx.Locals("organization_id").(string)
	userIdStr, _ := ctx.Locals("user_id").(string)
	organizationId, _ = uuid.Parse(organizationIdStr)
	userId, _ = uuid.Parse(userIdStr)
	return organizationId, userId
}
