package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/middleware"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"
	"animehub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) IssueToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return time.Hour
}

// MockAnimeService mocks the AnimeService interface
type MockAnimeService struct {
	mock.Mock
}

func (m *MockAnimeService) CreateGroup(ctx context.Context, userID string, req dto.CreateAnimeRequest) (*models.AnimeGroup, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeService) AddUpdate(ctx context.Context, userID, groupID, thoughts string) (*models.AnimeGroup, error) {
	args := m.Called(ctx, userID, groupID, thoughts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeService) Complete(ctx context.Context, userID, groupID string, req dto.CompleteEntryRequest) (*models.AnimeGroup, error) {
	args := m.Called(ctx, userID, groupID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeService) ListMine(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeService) GetGroup(ctx context.Context, viewer *models.User, groupID string) (*models.AnimeGroup, error) {
	args := m.Called(ctx, viewer, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnimeGroup), args.Error(1)
}

func (m *MockAnimeService) ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnimeGroup), args.Error(1)
}

// MockFeedService mocks the FeedService interface
type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) GetFeed(ctx context.Context, limit int) ([]dto.FeedItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.FeedItem), args.Error(1)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, username, email *string) (*models.User, error) {
	args := m.Called(ctx, userID, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) UpdateProfileLinks(ctx context.Context, userID string, links models.ProfileLinks) (*models.User, error) {
	args := m.Called(ctx, userID, links)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) AddProfileLink(ctx context.Context, userID, category string, link models.ProfileLink) (*models.User, error) {
	args := m.Called(ctx, userID, category, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) RemoveProfileLink(ctx context.Context, userID, category string, index int) (*models.User, error) {
	args := m.Called(ctx, userID, category, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListPublicUsers(ctx context.Context, search string) ([]dto.PublicUserResponse, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PublicUserResponse), args.Error(1)
}

func (m *MockUserService) ListUsersForAdmin(ctx context.Context, search string) ([]dto.AdminUserResponse, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AdminUserResponse), args.Error(1)
}

func (m *MockUserService) GetPublicUser(ctx context.Context, userID string) (*dto.PublicUserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PublicUserResponse), args.Error(1)
}

// MockModerationService mocks the ModerationService interface
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) ListPendingEntries(ctx context.Context) ([]dto.PendingEntryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PendingEntryResponse), args.Error(1)
}

func (m *MockModerationService) ApproveEntry(ctx context.Context, groupID string, index int) (*models.Entry, error) {
	args := m.Called(ctx, groupID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockModerationService) ApproveEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, error) {
	args := m.Called(ctx, groupID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockModerationService) RejectEntry(ctx context.Context, groupID string, index int) (*models.Entry, bool, error) {
	args := m.Called(ctx, groupID, index)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Entry), args.Bool(1), args.Error(2)
}

func (m *MockModerationService) RejectEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, bool, error) {
	args := m.Called(ctx, groupID, entryID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Entry), args.Bool(1), args.Error(2)
}

func (m *MockModerationService) DeleteUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockStatsService mocks the StatsService interface
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) ComputeStats(ctx context.Context) (*dto.StatsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatsResponse), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func quietLogger() *slog.Logger {
	return logger.NewWithWriter(io.Discard, "error", "text")
}

// actingAs stands in for AuthMiddleware with a fixed user.
func actingAs(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserKey, user)
		c.Set(middleware.CtxUserIDKey, user.ID)
		c.Set(middleware.CtxRoleKey, user.Role)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	return response["error"]
}
