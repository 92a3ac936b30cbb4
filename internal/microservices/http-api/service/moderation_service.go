package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// ModerationService is the admin side of the entry lifecycle: the review
// queue, approve/reject, and account removal.
type ModerationService interface {
	ListPendingEntries(ctx context.Context) ([]dto.PendingEntryResponse, error)
	ApproveEntry(ctx context.Context, groupID string, index int) (*models.Entry, error)
	ApproveEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, error)
	RejectEntry(ctx context.Context, groupID string, index int) (*models.Entry, bool, error)
	RejectEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, bool, error)
	DeleteUser(ctx context.Context, userID string) (int64, error)
}

type moderationService struct {
	modRepo  repository.ModerationRepository
	userRepo repository.UserRepository
	cache    repository.FeedCache
	logger   *slog.Logger
}

func NewModerationService(
	modRepo repository.ModerationRepository,
	userRepo repository.UserRepository,
	cache repository.FeedCache,
	logger *slog.Logger,
) ModerationService {
	return &moderationService{
		modRepo:  modRepo,
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// ParseEntryIndex turns a path segment into a zero-based entry index.
func ParseEntryIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, ErrInvalidEntryIndex
	}
	return index, nil
}

func (s *moderationService) ListPendingEntries(ctx context.Context) ([]dto.PendingEntryResponse, error) {
	rows, err := s.modRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PendingEntryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PendingEntryResponse{
			EntryID:    r.EntryID,
			GroupID:    r.GroupID,
			AnimeName:  r.AnimeName,
			UserID:     r.UserID,
			Username:   r.Username,
			EntryIndex: r.EntryIndex,
			Entry: dto.NewEntryResponse(models.Entry{
				ID:        r.EntryID,
				GroupID:   r.GroupID,
				Type:      r.Type,
				Thoughts:  r.Thoughts,
				Date:      r.Date,
				StartTime: r.StartTime,
				EndTime:   r.EndTime,
				CreatedAt: r.CreatedAt,
			}, r.EntryIndex),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *moderationService) ApproveEntry(ctx context.Context, groupID string, index int) (*models.Entry, error) {
	if index < 0 {
		return nil, ErrInvalidEntryIndex
	}
	return s.approve(ctx, groupID, repository.EntryRef{Index: index})
}

func (s *moderationService) ApproveEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, error) {
	if entryID == "" {
		return nil, ErrEntryNotFound
	}
	return s.approve(ctx, groupID, repository.EntryRef{ID: entryID})
}

func (s *moderationService) RejectEntry(ctx context.Context, groupID string, index int) (*models.Entry, bool, error) {
	if index < 0 {
		return nil, false, ErrInvalidEntryIndex
	}
	return s.reject(ctx, groupID, repository.EntryRef{Index: index})
}

func (s *moderationService) RejectEntryByID(ctx context.Context, groupID, entryID string) (*models.Entry, bool, error) {
	if entryID == "" {
		return nil, false, ErrEntryNotFound
	}
	return s.reject(ctx, groupID, repository.EntryRef{ID: entryID})
}

func (s *moderationService) approve(ctx context.Context, groupID string, ref repository.EntryRef) (*models.Entry, error) {
	entry, err := s.modRepo.Approve(ctx, groupID, ref)
	if err != nil {
		return nil, moderationError(err)
	}

	s.logger.Info("entry_approved", "group_id", groupID, "entry_id", entry.ID)
	s.invalidateFeed(ctx)
	return entry, nil
}

func (s *moderationService) reject(ctx context.Context, groupID string, ref repository.EntryRef) (*models.Entry, bool, error) {
	entry, deleted, err := s.modRepo.Reject(ctx, groupID, ref)
	if err != nil {
		return nil, false, moderationError(err)
	}

	s.logger.Info("entry_rejected", "group_id", groupID, "entry_id", entry.ID, "group_deleted", deleted)
	s.invalidateFeed(ctx)
	return entry, deleted, nil
}

// DeleteUser removes a normal account with everything it owns. Admin accounts
// are refused without any change.
func (s *moderationService) DeleteUser(ctx context.Context, userID string) (int64, error) {
	removed, err := s.userRepo.DeleteWithGroups(ctx, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, ErrUserNotFound
	case errors.Is(err, repository.ErrProtectedUser):
		return 0, ErrCannotDeleteAdmin
	case err != nil:
		return 0, fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user_deleted", "user_id", userID, "groups_removed", removed)
	s.invalidateFeed(ctx)
	return removed, nil
}

func (s *moderationService) invalidateFeed(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("feed_cache_invalidate_failed", "error", err)
	}
}

func moderationError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repository.ErrEntryNotFound):
		return ErrEntryNotFound
	default:
		return err
	}
}
