package service

import (
	"context"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/repository"
)

type StatsService interface {
	ComputeStats(ctx context.Context) (*dto.StatsResponse, error)
}

type statsService struct {
	userRepo  repository.UserRepository
	groupRepo repository.AnimeGroupRepository
	modRepo   repository.ModerationRepository
}

func NewStatsService(userRepo repository.UserRepository, groupRepo repository.AnimeGroupRepository, modRepo repository.ModerationRepository) StatsService {
	return &statsService{userRepo: userRepo, groupRepo: groupRepo, modRepo: modRepo}
}

func (s *statsService) ComputeStats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.modRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.groupRepo.CountCompleted(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		TotalUsers:       users,
		TotalAnimeGroups: groups,
		PendingEntries:   pending,
		CompletionRate:   completionRate(completed, groups),
	}, nil
}

// completionRate is completed/total as a percentage, 0 when there is nothing to rate.
func completionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
