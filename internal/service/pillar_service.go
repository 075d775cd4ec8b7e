package service

import (
	"context"

	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"
	"sigment-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPillarService interface {
	Create(ctx context.Context, organizationId uuid.UUID, req *dto.CreatePillarRequest) (*dto.CreatePillarResponse, error)
	Update(ctx context.Context, organizationId uuid.UUID, req *dto.UpdatePillarRequest) (*dto.ShowPillarResponse, error)
	Delete(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, organizationId uuid.UUID) ([]*dto.ShowPillarResponse, error)
}

type pillarService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPillarService(uowFactory unitofwork.RepositoryFactory) IPillarService {
	return &pillarService{uowFactory: uowFactory}
}

func (s *pillarService) Create(ctx context.Context, organizationId uuid.UUID, req *dto.CreatePillarRequest) (*dto.CreatePillarResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.Name == entity.FallbackPillarName {
		return nil, fiber.NewError(fiber.StatusConflict, "Pillar name is reserved")
	}

	existing, err := uow.PillarRepository().FindOne(ctx,
		specification.ByOrganization{OrganizationID: organizationId},
		specification.ByName{Name: req.Name},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fiber.NewError(fiber.StatusConflict, "Pillar name already exists")
	}

	pillar := entity.Pillar{
		Id:             uuid.New(),
		OrganizationId: organizationId,
		Name:           req.Name,
		Description:    req.Description,
		Color:          req.Color,
	}
	if err := uow.PillarRepository().Create(ctx, &pillar); err != nil {
		return nil, err
	}

	return &dto.CreatePillarResponse{Id: pillar.Id}, nil
}

func (s *pillarService) Update(ctx context.Context, organizationId uuid.UUID, req *dto.UpdatePillarRequest) (*dto.ShowPillarResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pillar, err := uow.PillarRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if pillar == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Pillar not found")
	}
	// The fallback's name is an invariant; analysis keys on it.
	if pillar.IsFallback() && req.Name != entity.FallbackPillarName {
		return nil, fiber.NewError(fiber.StatusConflict, "The fallback pillar cannot be renamed")
	}

	pillar.Name = req.Name
	pillar.Description = req.Description
	pillar.Color = req.Color
	if err := uow.PillarRepository().Update(ctx, pillar); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, uow, pillar)
}

func (s *pillarService) Delete(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pillar, err := uow.PillarRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return err
	}
	if pillar == nil {
		return fiber.NewError(fiber.StatusNotFound, "Pillar not found")
	}
	if pillar.IsFallback() {
		return fiber.NewError(fiber.StatusConflict, "The fallback pillar cannot be deleted")
	}

	count, err := uow.NoteRepository().Count(ctx, specification.ByPillar{PillarID: id})
	if err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "Pillar still has notes attached")
	}

	return uow.PillarRepository().Delete(ctx, id)
}

func (s *pillarService) List(ctx context.Context, organizationId uuid.UUID) ([]*dto.ShowPillarResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pillars, err := uow.PillarRepository().FindAll(ctx,
		specification.ByOrganization{OrganizationID: organizationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ShowPillarResponse, 0, len(pillars))
	for _, pillar := range pillars {
		res, err := s.toResponse(ctx, uow, pillar)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *pillarService) toResponse(ctx context.Context, uow unitofwork.UnitOfWork, pillar *entity.Pillar) (*dto.ShowPillarResponse, error) {
	count, err := uow.NoteRepository().Count(ctx, specification.ByPillar{PillarID: pillar.Id})
	if err != nil {
		return nil, err
	}

	return &dto.ShowPillarResponse{
		Id:          pillar.Id,
		Name:        pillar.Name,
		Description: pillar.Description,
		Color:       pillar.Color,
		IsFallback:  pillar.IsFallback(),
		NoteCount:   count,
		CreatedAt:   pillar.CreatedAt,
		UpdatedAt:   pillar.UpdatedAt,
	}, nil
}
