package dto

import (
	"time"

	"animehub/internal/microservices/http-api/models"
)

// CreateAnimeRequest starts tracking a show. StartDate accepts YYYY-MM-DD or
// RFC 3339; StartTime is HH:MM.
type CreateAnimeRequest struct {
	AnimeName     string             `json:"anime_name"`
	Genre         string             `json:"genre"`
	TotalEpisodes int                `json:"total_episodes"`
	Links         []models.AnimeLink `json:"links"`
	Thoughts      string             `json:"thoughts"`
	StartDate     string             `json:"start_date"`
	StartTime     string             `json:"start_time"`
	CoverImage    *string            `json:"cover_image"`
}

type UpdateEntryRequest struct {
	Thoughts string `json:"thoughts"`
}

type CompleteEntryRequest struct {
	Thoughts string `json:"thoughts"`
	EndDate  string `json:"end_date"`
	EndTime  string `json:"end_time"`
}

type EntryResponse struct {
	ID            string    `json:"id"`
	Index         int       `json:"index"`
	Type          string    `json:"type"`
	Thoughts      string    `json:"thoughts"`
	Date          time.Time `json:"date"`
	StartTime     *string   `json:"start_time,omitempty"`
	EndTime       *string   `json:"end_time,omitempty"`
	AdminApproved bool      `json:"admin_approved"`
	CreatedAt     time.Time `json:"created_at"`
}

type GroupResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	AnimeName     string             `json:"anime_name"`
	Genre         string             `json:"genre"`
	TotalEpisodes int                `json:"total_episodes"`
	Links         []models.AnimeLink `json:"links"`
	CoverImage    *string            `json:"cover_image,omitempty"`
	IsPublic      bool               `json:"is_public"`
	Status        string             `json:"status"`
	Entries       []EntryResponse    `json:"entries"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewEntryResponse keeps the index the entry had in the list it was taken from.
func NewEntryResponse(e models.Entry, index int) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Index:         index,
		Type:          e.Type,
		Thoughts:      e.Thoughts,
		Date:          e.Date,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		AdminApproved: e.AdminApproved,
		CreatedAt:     e.CreatedAt,
	}
}

// NewGroupResponse renders g with the entries it currently holds. Callers
// filter g.Entries before rendering when the viewer may only see approved ones.
func NewGroupResponse(g *models.AnimeGroup) GroupResponse {
	entries := make([]EntryResponse, 0, len(g.Entries))
	for i, e := range g.Entries {
		entries = append(entries, NewEntryResponse(e, i))
	}
	links := g.Links
	if links == nil {
		links = []models.AnimeLink{}
	}
	return GroupResponse{
		ID:            g.ID,
		UserID:        g.UserID,
		AnimeName:     g.AnimeName,
		Genre:         g.Genre,
		TotalEpisodes: g.TotalEpisodes,
		Links:         links,
		CoverImage:    g.CoverImage,
		IsPublic:      g.IsPublic,
		Status:        g.Status(),
		Entries:       entries,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func NewGroupResponses(groups []models.AnimeGroup) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, NewGroupResponse(&groups[i]))
	}
	return out
}

// FeedOwner is the public projection of a group owner embedded in feed items.
type FeedOwner struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	ProfileLinks models.ProfileLinks `json:"profile_links"`
}

type FeedItem struct {
	GroupResponse
	User FeedOwner `json:"user"`
}
