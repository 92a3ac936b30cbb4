package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"animehub/internal/config"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"
	"animehub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret",
		JWTExpiry: time.Hour,
	}
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Count", mock.Anything).Return(int64(0), nil)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, token, err := authService.Register(context.Background(), " alice ", "Alice@Example.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "secret1"))
	assert.NotEmpty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_LaterUsersAreNormal(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Count", mock.Anything).Return(int64(3), nil)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, _, err := authService.Register(context.Background(), "bob", "bob@example.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, models.RoleNormal, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_UsernameExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(&models.User{Username: "alice"}, nil)

	user, token, err := authService.Register(context.Background(), "alice", "alice@example.com", "secret1")

	assert.Equal(t, ErrNameInUse, err)
	assert.True(t, IsConflict(err))
	assert.Nil(t, user)
	assert.Empty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_EmailExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&models.User{Email: "alice@example.com"}, nil)

	_, _, err := authService.Register(context.Background(), "alice", "alice@example.com", "secret1")

	assert.Equal(t, ErrEmailInUse, err)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_RaceLostOnInsert(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Count", mock.Anything).Return(int64(1), nil)
	mockUserRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)

	_, _, err := authService.Register(context.Background(), "alice", "alice@example.com", "secret1")

	assert.Equal(t, ErrEmailInUse, err)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "al", "al@example.com", "secret1"},
		{"bad email", "alice", "not-an-email", "secret1"},
		{"display name email", "alice", "Alice <alice@example.com>", "secret1"},
		{"short password", "alice", "alice@example.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			authService := NewAuthService(mockUserRepo, testConfig())

			_, _, err := authService.Register(context.Background(), tt.username, tt.email, tt.password)

			assert.ErrorIs(t, err, ErrValidation)
			mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := &models.User{ID: "user-id", Username: "alice", Email: "alice@example.com", Password: hash, Role: models.RoleNormal}
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil)

	returned, token, err := authService.Login(context.Background(), "ALICE@example.com ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "alice", returned.Username)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-id", claims.Subject)
	assert.Equal(t, models.RoleNormal, claims.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_InvalidPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	hash, _ := auth.HashPassword("secret1")
	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&models.User{ID: "user-id", Password: hash}, nil)

	user, token, err := authService.Login(context.Background(), "alice@example.com", "wrong-password")

	assert.Equal(t, ErrInvalidCredentials, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
}

func TestLogin_UserNotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	user, _, err := authService.Login(context.Background(), "nobody@example.com", "secret1")

	assert.Equal(t, ErrInvalidCredentials, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, user)
}

func TestLogin_StoreFailure(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testConfig())

	mockUserRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("connection reset"))

	_, _, err := authService.Login(context.Background(), "alice@example.com", "secret1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	authService := NewAuthService(new(MockUserRepository), cfg)

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "animehub",
			Subject:   "user-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))

	_, err := authService.ValidateToken(tokenString)

	assert.Equal(t, ErrExpiredToken, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	cfg := testConfig()
	authService := NewAuthService(new(MockUserRepository), cfg)
	valid := jwt.RegisteredClaims{
		Issuer:    "animehub",
		Subject:   "user-id",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	wrongSecret, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: valid}).
		SignedString([]byte("some-other-secret-some-other-secret"))

	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: otherIssuer}).
		SignedString([]byte(cfg.JWTSecret))

	noExpiry := valid
	noExpiry.ExpiresAt = nil
	unbounded, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: noExpiry}).
		SignedString([]byte(cfg.JWTSecret))

	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: valid}).
		SignedString([]byte(cfg.JWTSecret))

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"no expiry":    unbounded,
		"wrong alg":    wrongAlg,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := authService.ValidateToken(token)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	user := &models.User{ID: "user-id", Username: "alice", Role: models.RoleNormal, TokenVersion: 2}

	t.Run("current token", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		authService := NewAuthService(mockUserRepo, testConfig())
		token, err := authService.IssueToken(user)
		require.NoError(t, err)

		stored := *user
		stored.Role = models.RoleAdmin
		mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(&stored, nil)

		got, err := authService.Authenticate(context.Background(), token)

		require.NoError(t, err)
		// role is read from the store, not the token
		assert.Equal(t, models.RoleAdmin, got.Role)
	})

	t.Run("password changed since issue", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		authService := NewAuthService(mockUserRepo, testConfig())
		token, _ := authService.IssueToken(user)

		stored := *user
		stored.TokenVersion = 3
		mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(&stored, nil)

		_, err := authService.Authenticate(context.Background(), token)

		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("account deleted", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		authService := NewAuthService(mockUserRepo, testConfig())
		token, _ := authService.IssueToken(user)

		mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(nil, gorm.ErrRecordNotFound)

		_, err := authService.Authenticate(context.Background(), token)

		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestTokenTTL(t *testing.T) {
	authService := NewAuthService(new(MockUserRepository), testConfig())
	assert.Equal(t, time.Hour, authService.TokenTTL())
}
