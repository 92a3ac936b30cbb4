package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"
)

const MaxFeedLimit = 100

type FeedService interface {
	GetFeed(ctx context.Context, limit int) ([]dto.FeedItem, error)
}

type feedService struct {
	groupRepo    repository.AnimeGroupRepository
	cache        repository.FeedCache
	defaultLimit int
	logger       *slog.Logger
}

func NewFeedService(groupRepo repository.AnimeGroupRepository, cache repository.FeedCache, defaultLimit int, logger *slog.Logger) FeedService {
	return &feedService{
		groupRepo:    groupRepo,
		cache:        cache,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// GetFeed returns the newest public groups with approved entries only.
// Non-positive limits use the default; larger ones are capped.
func (s *feedService) GetFeed(ctx context.Context, limit int) ([]dto.FeedItem, error) {
	limit = s.clamp(limit)

	if payload, ok, err := s.cache.Get(ctx, limit); err != nil {
		s.logger.Warn("feed_cache_read_failed", "limit", limit, "error", err)
	} else if ok {
		var items []dto.FeedItem
		if err := json.Unmarshal(payload, &items); err == nil {
			return items, nil
		}
		s.logger.Warn("feed_cache_corrupt", "limit", limit)
	}

	groups, err := s.groupRepo.ListFeed(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := assembleFeed(groups)

	if payload, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, limit, payload); err != nil {
			s.logger.Warn("feed_cache_write_failed", "limit", limit, "error", err)
		}
	}
	return items, nil
}

func (s *feedService) clamp(limit int) int {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit <= 0 || limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	return limit
}

// assembleFeed keeps approved entries only and drops groups left empty.
func assembleFeed(groups []models.AnimeGroup) []dto.FeedItem {
	items := make([]dto.FeedItem, 0, len(groups))
	for i := range groups {
		g := &groups[i]

		approved := make([]models.Entry, 0, len(g.Entries))
		for _, e := range g.Entries {
			if e.AdminApproved {
				approved = append(approved, e)
			}
		}
		if len(approved) == 0 {
			continue
		}
		g.Entries = approved

		owner := dto.FeedOwner{ID: g.UserID, Username: "Unknown", ProfileLinks: models.ProfileLinks{}.Normalized()}
		if g.User != nil {
			owner.Username = g.User.Username
			owner.ProfileLinks = g.User.ProfileLinks.Normalized()
		}

		items = append(items, dto.FeedItem{
			GroupResponse: dto.NewGroupResponse(g),
			User:          owner,
		})
	}
	return items
}
