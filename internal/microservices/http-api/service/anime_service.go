package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"animehub/internal/config"
	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type AnimeService interface {
	CreateGroup(ctx context.Context, userID string, req dto.CreateAnimeRequest) (*models.AnimeGroup, error)
	AddUpdate(ctx context.Context, userID, groupID, thoughts string) (*models.AnimeGroup, error)
	Complete(ctx context.Context, userID, groupID string, req dto.CompleteEntryRequest) (*models.AnimeGroup, error)
	ListMine(ctx context.Context, userID string) ([]models.AnimeGroup, error)
	GetGroup(ctx context.Context, viewer *models.User, groupID string) (*models.AnimeGroup, error)
	ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error)
}

// EntryRules are the length limits applied to entry thoughts.
type EntryRules struct {
	MinThoughts      int
	MinStartThoughts int
	MaxCoverBytes    int
}

func EntryRulesFromConfig(cfg *config.Config) EntryRules {
	return EntryRules{
		MinThoughts:      cfg.MinThoughtsLength,
		MinStartThoughts: cfg.MinStartThoughtsLength,
		MaxCoverBytes:    cfg.MaxCoverImageBytes,
	}
}

type animeService struct {
	groupRepo repository.AnimeGroupRepository
	rules     EntryRules
}

func NewAnimeService(groupRepo repository.AnimeGroupRepository, rules EntryRules) AnimeService {
	return &animeService{groupRepo: groupRepo, rules: rules}
}

// CreateGroup starts tracking a show with a single pending start entry.
func (s *animeService) CreateGroup(ctx context.Context, userID string, req dto.CreateAnimeRequest) (*models.AnimeGroup, error) {
	name := strings.TrimSpace(req.AnimeName)
	genre := strings.TrimSpace(req.Genre)
	switch {
	case name == "":
		return nil, validationError("anime name is required")
	case genre == "":
		return nil, validationError("genre is required")
	case req.TotalEpisodes < 1:
		return nil, validationError("total episodes must be at least 1")
	case len(req.Links) == 0:
		return nil, validationError("at least one watch link is required")
	}
	links, err := cleanAnimeLinks(req.Links)
	if err != nil {
		return nil, err
	}
	if err := checkThoughts(req.Thoughts, s.rules.MinStartThoughts); err != nil {
		return nil, err
	}

	date, err := parseEntryDate(req.StartDate, "start date")
	if err != nil {
		return nil, err
	}
	startTime, err := parseClock(req.StartTime, "start time")
	if err != nil {
		return nil, err
	}

	var cover *string
	if req.CoverImage != nil && *req.CoverImage != "" {
		if s.rules.MaxCoverBytes > 0 && len(*req.CoverImage) > s.rules.MaxCoverBytes {
			return nil, validationError("cover image is too large")
		}
		cover = req.CoverImage
	}

	group := &models.AnimeGroup{
		UserID:        userID,
		AnimeName:     name,
		Genre:         genre,
		TotalEpisodes: req.TotalEpisodes,
		Links:         links,
		CoverImage:    cover,
		Entries: []models.Entry{{
			Type:      models.EntryTypeStart,
			Thoughts:  strings.TrimSpace(req.Thoughts),
			Date:      date,
			StartTime: &startTime,
		}},
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *animeService) AddUpdate(ctx context.Context, userID, groupID, thoughts string) (*models.AnimeGroup, error) {
	return s.submitEntry(ctx, userID, groupID, func() (*models.Entry, error) {
		if err := checkThoughts(thoughts, s.rules.MinThoughts); err != nil {
			return nil, err
		}
		return &models.Entry{
			Type:     models.EntryTypeUpdate,
			Thoughts: strings.TrimSpace(thoughts),
			Date:     time.Now().UTC(),
		}, nil
	})
}

func (s *animeService) Complete(ctx context.Context, userID, groupID string, req dto.CompleteEntryRequest) (*models.AnimeGroup, error) {
	return s.submitEntry(ctx, userID, groupID, func() (*models.Entry, error) {
		if err := checkThoughts(req.Thoughts, s.rules.MinThoughts); err != nil {
			return nil, err
		}
		date, err := parseEntryDate(req.EndDate, "end date")
		if err != nil {
			return nil, err
		}
		endTime, err := parseClock(req.EndTime, "end time")
		if err != nil {
			return nil, err
		}
		return &models.Entry{
			Type:     models.EntryTypeComplete,
			Thoughts: strings.TrimSpace(req.Thoughts),
			Date:     date,
			EndTime:  &endTime,
		}, nil
	})
}

// submitEntry appends a pending entry built by draft to a group the caller owns.
// Checks run in order: the group exists, the caller owns it, the draft is valid.
func (s *animeService) submitEntry(ctx context.Context, userID, groupID string, draft func() (*models.Entry, error)) (*models.AnimeGroup, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.UserID != userID {
		return nil, ErrNotOwner
	}

	entry, err := draft()
	if err != nil {
		return nil, err
	}

	if err := s.groupRepo.AppendEntry(ctx, groupID, entry); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.findGroup(ctx, groupID)
}

func (s *animeService) ListMine(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	return s.groupRepo.ListByUser(ctx, userID)
}

// GetGroup returns the group as viewer may see it. Owners and admins get every
// entry; anyone else only approved entries, and a group with none is hidden.
func (s *animeService) GetGroup(ctx context.Context, viewer *models.User, groupID string) (*models.AnimeGroup, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if viewer != nil && (viewer.ID == group.UserID || viewer.IsAdmin()) {
		return group, nil
	}

	approved := make([]models.Entry, 0, len(group.Entries))
	for _, e := range group.Entries {
		if e.AdminApproved {
			approved = append(approved, e)
		}
	}
	if len(approved) == 0 {
		return nil, ErrGroupNotFound
	}
	group.Entries = approved
	return group, nil
}

func (s *animeService) ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	return s.groupRepo.ListPublicByUser(ctx, userID)
}

func (s *animeService) findGroup(ctx context.Context, groupID string) (*models.AnimeGroup, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find anime group: %w", err)
	}
	return group, nil
}

func checkThoughts(thoughts string, minLen int) error {
	if len([]rune(strings.TrimSpace(thoughts))) < minLen {
		return validationError(fmt.Sprintf("thoughts must be at least %d characters", minLen))
	}
	return nil
}

// parseEntryDate accepts a calendar date or a full RFC 3339 timestamp.
func parseEntryDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, validationError(field + " is required")
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, validationError(field + " must be YYYY-MM-DD")
}

// parseClock validates an HH:MM wall clock time and returns it normalized.
func parseClock(raw, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", validationError(field + " is required")
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", validationError(field + " must be HH:MM")
	}
	return t.Format("15:04"), nil
}

func cleanAnimeLinks(links []models.AnimeLink) ([]models.AnimeLink, error) {
	out := make([]models.AnimeLink, 0, len(links))
	for _, l := range links {
		u := strings.TrimSpace(l.URL)
		if !isWebURL(u) {
			return nil, validationError("watch links need an http(s) url")
		}
		out = append(out, models.AnimeLink{Label: strings.TrimSpace(l.Label), URL: u})
	}
	return out, nil
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
