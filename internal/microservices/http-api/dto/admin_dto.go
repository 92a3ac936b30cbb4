package dto

import (
	"time"

	"animehub/internal/microservices/http-api/models"
)

type PendingEntryResponse struct {
	EntryID    string        `json:"entry_id"`
	GroupID    string        `json:"group_id"`
	AnimeName  string        `json:"anime_name"`
	UserID     string        `json:"user_id"`
	Username   string        `json:"username"`
	EntryIndex int           `json:"entry_index"`
	Entry      EntryResponse `json:"entry"`
	CreatedAt  time.Time     `json:"created_at"`
}

type StatsResponse struct {
	TotalUsers       int64   `json:"total_users"`
	TotalAnimeGroups int64   `json:"total_anime_groups"`
	PendingEntries   int64   `json:"pending_entries"`
	CompletionRate   float64 `json:"completion_rate"`
}

// ModerationResponse reports an approve or reject. EntryIndex is set only
// when the entry was addressed by position.
type ModerationResponse struct {
	Message      string        `json:"message"`
	Entry        *models.Entry `json:"entry,omitempty"`
	EntryIndex   *int          `json:"entry_index,omitempty"`
	GroupDeleted bool          `json:"group_deleted"`
}

type DeleteUserResponse struct {
	Message       string `json:"message"`
	GroupsRemoved int64  `json:"groups_removed"`
}
