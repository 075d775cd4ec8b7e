package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"
	"sigment-be/internal/repository/unitofwork"
	"sigment-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	assert.NotNil(t, uow.ClusterSnapshotRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Note Repository", func(t *testing.T) {
		count, err := uow.NoteRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Note count: %d", count)
	})

	t.Run("Check Snapshot Repository", func(t *testing.T) {
		count, err := uow.ClusterSnapshotRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Snapshot count: %d", count)
	})

	t.Run("Note Roundtrip With Embedding", func(t *testing.T) {
		ctx := context.Background()

		org := &entity.Organization{Id: uuid.New(), Name: "integration-" + uuid.NewString()}
		require.NoError(t, uow.OrganizationRepository().Create(ctx, org))

		user := &entity.User{
			Id:             uuid.New(),
			OrganizationId: org.Id,
			Email:          "integration-" + uuid.NewString() + "@example.com",
			FullName:       "Integration User",
			Department:     "Engineering",
			Seniority:      "Senior",
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		embedding := make([]float32, 768)
		embedding[0] = 1

		note := &entity.Note{
			Id:             uuid.New(),
			OrganizationId: org.Id,
			AuthorId:       user.Id,
			RawContent:     "integration roundtrip note",
			Embedding:      embedding,
			Status:         entity.NoteStatusDraft,
			CreatedAt:      time.Now(),
		}
		require.NoError(t, uow.NoteRepository().Create(ctx, note))

		loaded, err := uow.NoteRepository().FindOneWithAuthor(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, note.RawContent, loaded.RawContent)
		assert.Len(t, loaded.Embedding, 768)
		require.NotNil(t, loaded.Author)
		assert.Equal(t, "Engineering", loaded.Author.Department)

		// Cleanup
		assert.NoError(t, uow.NoteRepository().Delete(ctx, note.Id))
	})
}
