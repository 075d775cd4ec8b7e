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

// IGalaxyService serves the read side: the galaxy overview, one cluster's
// snapshot history and one cluster's active notes. Everything it returns is
// derived from the live rows plus the latest append-only snapshot.
type IGalaxyService interface {
	Overview(ctx context.Context, organizationId uuid.UUID) (*dto.GalaxyResponse, error)
	ClusterHistory(ctx context.Context, organizationId uuid.UUID, clusterId uuid.UUID) (*dto.ClusterHistoryResponse, error)
	ClusterNotes(ctx context.Context, organizationId uuid.UUID, clusterId uuid.UUID) (*dto.ClusterNotesResponse, error)
}

type galaxyService struct {
	uowFactory    unitofwork.RepositoryFactory
	pillarService IPillarService
}

func NewGalaxyService(uowFactory unitofwork.RepositoryFactory, pillarService IPillarService) IGalaxyService {
	return &galaxyService{
		uowFactory:    uowFactory,
		pillarService: pillarService,
	}
}

func (s *galaxyService) Overview(ctx context.Context, organizationId uuid.UUID) (*dto.GalaxyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pillars, err := s.pillarService.List(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	clusters, err := uow.ClusterRepository().FindAll(ctx,
		specification.ByOrganization{OrganizationID: organizationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.GalaxyResponse{
		Clusters: make([]dto.GalaxyClusterResponse, 0, len(clusters)),
	}
	for _, pillar := range pillars {
		res.Pillars = append(res.Pillars, *pillar)
	}

	for _, c := range clusters {
		item := dto.GalaxyClusterResponse{
			Id:        c.Id,
			PillarId:  c.PillarId,
			Title:     c.Title,
			UpdatedAt: c.UpdatedAt,
		}

		latest, err := uow.ClusterSnapshotRepository().FindLatestByCluster(ctx, c.Id)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			item.Summary = latest.Summary
			item.NoteCount = latest.NoteCount
			item.AvgScore = latest.AvgScore
			item.Metrics = latest.Metrics
		} else {
			// Snapshot job still in flight; the membership counter is the
			// only aggregate we have yet.
			item.NoteCount = c.NoteCount
		}

		res.Clusters = append(res.Clusters, item)
	}

	return res, nil
}

func (s *galaxyService) ClusterHistory(ctx context.Context, organizationId uuid.UUID, clusterId uuid.UUID) (*dto.ClusterHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	c, err := s.tenantCluster(ctx, uow, organizationId, clusterId)
	if err != nil {
		return nil, err
	}

	snapshots, err := uow.ClusterSnapshotRepository().FindAll(ctx,
		specification.ByCluster{ClusterID: clusterId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ClusterHistoryResponse{
		ClusterId: c.Id,
		Title:     c.Title,
		Snapshots: make([]dto.ClusterHistoryItem, 0, len(snapshots)),
	}
	for _, snap := range snapshots {
		res.Snapshots = append(res.Snapshots, dto.ClusterHistoryItem{
			Id:        snap.Id,
			Summary:   snap.Summary,
			NoteCount: snap.NoteCount,
			AvgScore:  snap.AvgScore,
			Metrics:   snap.Metrics,
			NoteIds:   snap.NoteIds,
			CreatedAt: snap.CreatedAt,
		})
	}
	return res, nil
}

func (s *galaxyService) ClusterNotes(ctx context.Context, organizationId uuid.UUID, clusterId uuid.UUID) (*dto.ClusterNotesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	c, err := s.tenantCluster(ctx, uow, organizationId, clusterId)
	if err != nil {
		return nil, err
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByCluster{ClusterID: clusterId},
		specification.ByStatuses{Statuses: entity.ActiveNoteStatuses()},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ClusterNotesResponse{
		ClusterId: c.Id,
		Notes:     make([]dto.ShowNoteResponse, 0, len(notes)),
	}
	for _, note := range notes {
		res.Notes = append(res.Notes, *noteToResponse(note))
	}
	return res, nil
}

func (s *galaxyService) tenantCluster(ctx context.Context, uow unitofwork.UnitOfWork, organizationId uuid.UUID, clusterId uuid.UUID) (*entity.Cluster, error) {
	c, err := uow.ClusterRepository().FindOne(ctx,
		specification.ByID{ID: clusterId},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Cluster not found")
	}
	return c, nil
}
