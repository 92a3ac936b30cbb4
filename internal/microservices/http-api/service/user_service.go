package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"
	"animehub/internal/middleware/auth"

	"gorm.io/gorm"
)

const (
	CategoryAnime = "anime"
	CategoryManga = "manga"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, username, email *string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error)
	UpdateProfileLinks(ctx context.Context, userID string, links models.ProfileLinks) (*models.User, error)
	AddProfileLink(ctx context.Context, userID, category string, link models.ProfileLink) (*models.User, error)
	RemoveProfileLink(ctx context.Context, userID, category string, index int) (*models.User, error)
	ListPublicUsers(ctx context.Context, search string) ([]dto.PublicUserResponse, error)
	ListUsersForAdmin(ctx context.Context, search string) ([]dto.AdminUserResponse, error)
	GetPublicUser(ctx context.Context, userID string) (*dto.PublicUserResponse, error)
}

type userService struct {
	userRepo    repository.UserRepository
	groupRepo   repository.AnimeGroupRepository
	authService AuthService
	cache       repository.FeedCache
	logger      *slog.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	groupRepo repository.AnimeGroupRepository,
	authService AuthService,
	cache repository.FeedCache,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		authService: authService,
		cache:       cache,
		logger:      logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes username and/or email; nil arguments are left alone.
func (s *userService) UpdateProfile(ctx context.Context, userID string, username, email *string) (*models.User, error) {
	if username == nil && email == nil {
		return nil, ErrNothingToUpdate
	}
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	renamed := false
	if username != nil {
		name := strings.TrimSpace(*username)
		if err := validateUsername(name); err != nil {
			return nil, err
		}
		if name != user.Username {
			if err := s.ensureUnclaimed(ctx, user.ID, name, ""); err != nil {
				return nil, err
			}
			user.Username = name
			renamed = true
		}
	}
	if email != nil {
		addr := normalizeEmail(*email)
		if err := validateEmail(addr); err != nil {
			return nil, err
		}
		if addr != user.Email {
			if err := s.ensureUnclaimed(ctx, user.ID, "", addr); err != nil {
				return nil, err
			}
			user.Email = addr
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, duplicateToDomain(err)
	}
	if renamed {
		s.invalidateFeed(ctx, "profile_renamed")
	}
	return user, nil
}

// ensureUnclaimed fails when another user already holds username or email.
func (s *userService) ensureUnclaimed(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		other, err := s.userRepo.FindByUsername(ctx, username)
		if err == nil && other.ID != selfID {
			return ErrNameInUse
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user by username: %w", err)
		}
	}
	if email != "" {
		other, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && other.ID != selfID {
			return ErrEmailInUse
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user by email: %w", err)
		}
	}
	return nil
}

// ChangePassword swaps the credential and returns a fresh token. Tokens
// issued before the change are rejected from then on.
func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := auth.VerifyPassword(user.Password, currentPassword); err != nil {
		return "", ErrWrongPassword
	}
	if len(newPassword) < minPasswordLength {
		return "", validationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	version, err := s.userRepo.UpdatePassword(ctx, user.ID, hash)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}

	user.Password = hash
	user.TokenVersion = version
	return s.authService.IssueToken(user)
}

func (s *userService) UpdateProfileLinks(ctx context.Context, userID string, links models.ProfileLinks) (*models.User, error) {
	anime, err := cleanProfileLinks(links.AnimeSites)
	if err != nil {
		return nil, err
	}
	manga, err := cleanProfileLinks(links.MangaSites)
	if err != nil {
		return nil, err
	}

	return s.editLinks(ctx, userID, func(current *models.ProfileLinks) error {
		current.AnimeSites = anime
		current.MangaSites = manga
		return nil
	})
}

func (s *userService) AddProfileLink(ctx context.Context, userID, category string, link models.ProfileLink) (*models.User, error) {
	cleaned, err := cleanProfileLinks([]models.ProfileLink{link})
	if err != nil {
		return nil, err
	}

	return s.editLinks(ctx, userID, func(current *models.ProfileLinks) error {
		list, err := linkList(current, category)
		if err != nil {
			return err
		}
		*list = append(*list, cleaned[0])
		return nil
	})
}

func (s *userService) RemoveProfileLink(ctx context.Context, userID, category string, index int) (*models.User, error) {
	return s.editLinks(ctx, userID, func(current *models.ProfileLinks) error {
		list, err := linkList(current, category)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(*list) {
			return ErrInvalidLinkIndex
		}
		*list = append((*list)[:index:index], (*list)[index+1:]...)
		return nil
	})
}

// editLinks loads the user, applies edit to the profile links and saves.
// The feed embeds profile links, so cached snapshots are dropped.
func (s *userService) editLinks(ctx context.Context, userID string, edit func(*models.ProfileLinks) error) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	links := user.ProfileLinks.Normalized()
	if err := edit(&links); err != nil {
		return nil, err
	}
	user.ProfileLinks = links

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save profile links: %w", err)
	}
	s.invalidateFeed(ctx, "profile_links_changed")
	return user, nil
}

func (s *userService) ListPublicUsers(ctx context.Context, search string) ([]dto.PublicUserResponse, error) {
	users, latest, err := s.directory(ctx, search, true)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PublicUserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewPublicUserResponse(&users[i], previewOf(latest, users[i].ID)))
	}
	return out, nil
}

// ListUsersForAdmin is the directory as the admin panel sees it: emails and
// roles included, previews drawn from private groups too.
func (s *userService) ListUsersForAdmin(ctx context.Context, search string) ([]dto.AdminUserResponse, error) {
	users, latest, err := s.directory(ctx, search, false)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.AdminUserResponse{
			PublicUserResponse: dto.NewPublicUserResponse(&users[i], previewOf(latest, users[i].ID)),
			Email:              users[i].Email,
			Role:               users[i].Role,
		})
	}
	return out, nil
}

func (s *userService) GetPublicUser(ctx context.Context, userID string) (*dto.PublicUserResponse, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.groupRepo.LatestByUsers(ctx, []string{user.ID}, true)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPublicUserResponse(user, previewOf(latest, user.ID))
	return &resp, nil
}

func (s *userService) directory(ctx context.Context, search string, publicOnly bool) ([]models.User, map[string]models.AnimeGroup, error) {
	users, err := s.userRepo.Search(ctx, search)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	latest, err := s.groupRepo.LatestByUsers(ctx, ids, publicOnly)
	if err != nil {
		return nil, nil, err
	}
	return users, latest, nil
}

func (s *userService) invalidateFeed(ctx context.Context, reason string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("feed_cache_invalidate_failed", "reason", reason, "error", err)
	}
}

func previewOf(latest map[string]models.AnimeGroup, userID string) *models.AnimeGroup {
	g, ok := latest[userID]
	if !ok {
		return nil
	}
	return &g
}

func linkList(links *models.ProfileLinks, category string) (*[]models.ProfileLink, error) {
	switch strings.ToLower(category) {
	case CategoryAnime:
		return &links.AnimeSites, nil
	case CategoryManga:
		return &links.MangaSites, nil
	default:
		return nil, ErrInvalidCategory
	}
}

func cleanProfileLinks(links []models.ProfileLink) ([]models.ProfileLink, error) {
	out := make([]models.ProfileLink, 0, len(links))
	for _, l := range links {
		name := strings.TrimSpace(l.Name)
		u := strings.TrimSpace(l.URL)
		if name == "" {
			return nil, validationError("link name is required")
		}
		if !isWebURL(u) {
			return nil, validationError("link url must be an absolute http(s) url")
		}
		out = append(out, models.ProfileLink{Name: name, URL: u})
	}
	return out, nil
}
