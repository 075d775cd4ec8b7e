package controller

import (
	"sigment-be/internal/pkg/serverutils"
	"sigment-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGalaxyController interface {
	RegisterRoutes(r fiber.Router)
	Overview(ctx *fiber.Ctx) error
	ClusterHistory(ctx *fiber.Ctx) error
	ClusterNotes(ctx *fiber.Ctx) error
}

type galaxyController struct {
	galaxyService service.IGalaxyService
}

func NewGalaxyController(galaxyService service.IGalaxyService) IGalaxyController {
	return &galaxyController{
		galaxyService: galaxyService,
	}
}

func (c *galaxyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/galaxy/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Overview)
	h.Get("cluster/:id/history", c.ClusterHistory)
	h.Get("cluster/:id/notes", c.ClusterNotes)
}

func (c *galaxyController) Overview(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	res, err := c.galaxyService.Overview(ctx.Context(), organizationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show galaxy", res))
}

func (c *galaxyController) ClusterHistory(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid cluster id")
	}

	res, err := c.galaxyService.ClusterHistory(ctx.Context(), organizationId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show cluster history", res))
}

func (c *galaxyController) ClusterNotes(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid cluster id")
	}

	res, err := c.galaxyService.ClusterNotes(ctx.Context(), organizationId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show cluster notes", res))
}
