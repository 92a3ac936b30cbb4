package service

import (
	"context"
	"io"
	"log/slog"

	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"
	"animehub/pkg/logger"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (int, error) {
	args := m.Called(ctx, id, passwordHash)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, term string) ([]models.User, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) DeleteWithGroups(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnimeGroupRepository mocks the AnimeGroupRepository interface
type MockAnimeGroupRepository struct {
	mock.Mock
}

func (m *MockAnimeGroupRepository) Create(ctx context.Context, group *models.AnimeGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockAnimeGroupRepository) FindByID(ctx context.Context, id string) (*models.AnimeGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeGroupRepository) ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeGroupRepository) ListPublicByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeGroupRepository) AppendEntry(ctx context.Context, groupID string, entry *models.Entry) error {
	args := m.Called(ctx, groupID, entry)
	return args.Error(0)
}

func (m *MockAnimeGroupRepository) ListFeed(ctx context.Context, limit int) ([]models.AnimeGroup, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeGroupRepository) LatestByUsers(ctx context.Context, userIDs []string, publicOnly bool) (map[string]models.AnimeGroup, error) {
	args := m.Called(ctx, userIDs, publicOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeGroupRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnimeGroupRepository) CountCompleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockModerationRepository mocks the ModerationRepository interface
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) ListPending(ctx context.Context) ([]repository.PendingEntryRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PendingEntryRow), args.Error(1)
}

func (m *MockModerationRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockModerationRepository) Approve(ctx context.Context, groupID string, ref repository.EntryRef) (*models.Entry, error) {
	args := m.Called(ctx, groupID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockModerationRepository) Reject(ctx context.Context, groupID string, ref repository.EntryRef) (*models.Entry, bool, error) {
	args := m.Called(ctx, groupID, ref)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Entry), args.Bool(1), args.Error(2)
}

// MockFeedCache mocks the FeedCache interface
type MockFeedCache struct {
	mock.Mock
}

func (m *MockFeedCache) Get(ctx context.Context, limit int) ([]byte, bool, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockFeedCache) Set(ctx context.Context, limit int, payload []byte) error {
	args := m.Called(ctx, limit, payload)
	return args.Error(0)
}

func (m *MockFeedCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func quietLogger() *slog.Logger {
	return logger.NewWithWriter(io.Discard, "error", "text")
}
