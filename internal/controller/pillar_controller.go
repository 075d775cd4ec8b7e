package controller

import (
	"sigment-be/internal/dto"
	"sigment-be/internal/pkg/serverutils"
	"sigment-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPillarController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type pillarController struct {
	pillarService service.IPillarService
}

func NewPillarController(pillarService service.IPillarService) IPillarController {
	return &pillarController{
		pillarService: pillarService,
	}
}

func (c *pillarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pillar/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *pillarController) Create(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	var req dto.CreatePillarRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pillarService.Create(ctx.Context(), organizationId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create pillar", res))
}

func (c *pillarController) Update(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid pillar id")
	}

	var req dto.UpdatePillarRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pillarService.Update(ctx.Context(), organizationId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update pillar", res))
}

func (c *pillarController) Delete(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid pillar id")
	}

	if err := c.pillarService.Delete(ctx.Context(), organizationId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete pillar", nil))
}

func (c *pillarController) List(ctx *fiber.Ctx) error {
	organizationId, _ := tenantIdentity(ctx)

	res, err := c.pillarService.List(ctx.Context(), organizationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list pillars", res))
}
