package snapshot

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sigment-be/internal/entity"
	"sigment-be/internal/pkg/logger"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

// Synthesizer produces the human-readable artifacts of a snapshot: the
// cluster summary and, when the placeholder is still in place, the title.
type Synthesizer interface {
	SummarizeCluster(ctx context.Context, notes []*entity.Note) (string, error)
	TitleCluster(ctx context.Context, notes []*entity.Note) (string, error)
}

// Generator materializes append-only snapshots of a cluster's active set.
// Snapshots are the only read model for cluster history; nothing here ever
// updates or deletes one.
type Generator struct {
	notes     contract.NoteRepository
	clusters  contract.ClusterRepository
	snapshots contract.ClusterSnapshotRepository
	synth     Synthesizer
	log       logger.ILogger
}

func New(
	notes contract.NoteRepository,
	clusters contract.ClusterRepository,
	snapshots contract.ClusterSnapshotRepository,
	synth Synthesizer,
	log logger.ILogger,
) *Generator {
	return &Generator{
		notes:     notes,
		clusters:  clusters,
		snapshots: snapshots,
		synth:     synth,
		log:       log,
	}
}

// Generate snapshots one cluster. A cluster whose active set is empty
// (everything refused, archived or deleted since the job was enqueued) is a
// no-op, not an error; the job is considered done.
func (g *Generator) Generate(ctx context.Context, clusterId uuid.UUID) (*entity.ClusterSnapshot, error) {
	cluster, err := g.clusters.FindOne(ctx, specification.ByID{ID: clusterId})
	if err != nil {
		return nil, fmt.Errorf("load cluster: %w", err)
	}
	if cluster == nil || cluster.IsDeleted {
		g.log.Warn("snapshot", "cluster gone before snapshot, skipping", map[string]interface{}{
			"cluster_id": clusterId,
		})
		return nil, nil
	}

	active, err := g.notes.FindAllWithAuthors(ctx,
		specification.ByCluster{ClusterID: clusterId},
		specification.ByStatuses{Statuses: entity.ActiveNoteStatuses()},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("load active notes: %w", err)
	}
	if len(active) == 0 {
		g.log.Warn("snapshot", "cluster has no active notes, skipping", map[string]interface{}{
			"cluster_id": clusterId,
		})
		return nil, nil
	}

	if err := g.maybeRetitle(ctx, cluster, active); err != nil {
		return nil, err
	}

	summary, err := g.synth.SummarizeCluster(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("synthesize summary: %w", err)
	}

	snap := &entity.ClusterSnapshot{
		Id:        uuid.New(),
		ClusterId: clusterId,
		Summary:   summary,
		Metrics:   departmentMetrics(active),
		NoteIds:   noteIds(active),
		NoteCount: len(active),
		AvgScore:  averageScore(active),
	}
	if err := g.snapshots.Create(ctx, snap); err != nil {
		return nil, fmt.Errorf("append snapshot: %w", err)
	}

	g.log.Info("snapshot", "snapshot appended", map[string]interface{}{
		"cluster_id": clusterId,
		"note_count": snap.NoteCount,
		"avg_score":  snap.AvgScore,
	})
	return snap, nil
}

// maybeRetitle replaces the cluster's title when it is still the founding
// placeholder or when the active set has drifted since the last snapshot.
// A drifted set means moderation changed the cluster's composition, so the
// old title may no longer describe it.
func (g *Generator) maybeRetitle(ctx context.Context, cluster *entity.Cluster, active []*entity.Note) error {
	regen := cluster.HasPlaceholderTitle()
	if !regen {
		latest, err := g.snapshots.FindLatestByCluster(ctx, cluster.Id)
		if err != nil {
			return fmt.Errorf("load latest snapshot: %w", err)
		}
		regen = latest != nil && latest.NoteCount != len(active)
	}
	if !regen {
		return nil
	}

	title, err := g.synth.TitleCluster(ctx, active)
	if err != nil {
		return fmt.Errorf("synthesize title: %w", err)
	}
	title = strings.TrimSpace(title)
	if title == "" || title == cluster.Title {
		return nil
	}

	cluster.Title = title
	if err := g.clusters.Update(ctx, cluster); err != nil {
		return fmt.Errorf("update cluster title: %w", err)
	}
	return nil
}

// departmentMetrics counts active notes per author department. Notes whose
// author is missing a department land in "unknown".
func departmentMetrics(notes []*entity.Note) map[string]int {
	metrics := make(map[string]int)
	for _, n := range notes {
		dept := "unknown"
		if n.Author != nil && n.Author.Department != "" {
			dept = n.Author.Department
		}
		metrics[dept]++
	}
	return metrics
}

func noteIds(notes []*entity.Note) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.Id)
	}
	return ids
}

// averageScore is the mean judgment score of the active set, rounded to two
// decimals. Notes without a score (should not happen for processed notes)
// are excluded from the mean rather than counted as zero.
func averageScore(notes []*entity.Note) float64 {
	var sum float64
	var count int
	for _, n := range notes {
		if n.Score == nil {
			continue
		}
		sum += *n.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum/float64(count)*100) / 100
}
