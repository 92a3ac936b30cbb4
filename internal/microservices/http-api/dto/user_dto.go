package dto

import (
	"time"

	"animehub/internal/microservices/http-api/models"
)

// UpdateProfileRequest: nil fields are left unchanged
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePasswordResponse carries a replacement token; older tokens stop working.
type ChangePasswordResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// ProfileLinksRequest replaces both link lists. Missing lists become empty.
type ProfileLinksRequest struct {
	AnimeSites []models.ProfileLink `json:"anime_sites"`
	MangaSites []models.ProfileLink `json:"manga_sites"`
}

type ProfileLinkRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

// AnimePreview is the single-item teaser shown next to a user in the directory.
type AnimePreview struct {
	GroupID    string  `json:"group_id"`
	AnimeName  string  `json:"anime_name"`
	CoverImage *string `json:"cover_image,omitempty"`
}

// PublicUserResponse is what anyone may see about a user.
type PublicUserResponse struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	ProfileLinks models.ProfileLinks `json:"profile_links"`
	CreatedAt    time.Time           `json:"created_at"`
	LatestAnime  *AnimePreview       `json:"latest_anime"`
}

// AdminUserResponse adds the fields only the admin panel needs.
type AdminUserResponse struct {
	PublicUserResponse
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewPublicUserResponse(u *models.User, latest *models.AnimeGroup) PublicUserResponse {
	resp := PublicUserResponse{
		ID:           u.ID,
		Username:     u.Username,
		ProfileLinks: u.ProfileLinks.Normalized(),
		CreatedAt:    u.CreatedAt,
	}
	if latest != nil {
		resp.LatestAnime = &AnimePreview{
			GroupID:    latest.ID,
			AnimeName:  latest.AnimeName,
			CoverImage: latest.CoverImage,
		}
	}
	return resp
}
