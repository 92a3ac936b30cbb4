package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// RegisterRoutes registers profile and directory routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		// Public directory
		users.GET("", h.List)
		users.GET("/:id", h.GetPublic)

		// Own profile
		users.GET("/me", authMW, h.GetMe)
		users.PUT("/me", authMW, h.UpdateMe)
		users.PUT("/me/password", authMW, h.ChangePassword)
		users.PUT("/profile-links", authMW, h.ReplaceLinks)
		users.POST("/profile-links/:category", authMW, h.AddLink)
		users.DELETE("/profile-links/:category/:index", authMW, h.RemoveLink)
	}
}

// List returns the public user directory
// GET /api/users?search=
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListPublicUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.logger, "list_users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetPublic returns one directory entry
// GET /api/users/:id
func (h *UserHandler) GetPublic(c *gin.Context) {
	user, err := h.userService.GetPublicUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get_public_user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, req.Username, req.Email)
	if err != nil {
		respondError(c, h.logger, "update_profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}

// ChangePassword replaces the password and hands back a new token
// PUT /api/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.userService.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, h.logger, "change_password", err)
		return
	}

	h.logger.Info("password_changed", "user_id", user.ID)
	c.JSON(http.StatusOK, dto.ChangePasswordResponse{
		Message:   "password updated",
		Token:     token,
		TokenType: "Bearer",
	})
}

// ReplaceLinks overwrites both profile link lists
// PUT /api/users/profile-links
func (h *UserHandler) ReplaceLinks(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ProfileLinksRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.UpdateProfileLinks(c.Request.Context(), user.ID, models.ProfileLinks{
		AnimeSites: req.AnimeSites,
		MangaSites: req.MangaSites,
	})
	if err != nil {
		respondError(c, h.logger, "update_profile_links", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}

// POST /api/users/profile-links/:category
func (h *UserHandler) AddLink(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ProfileLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.AddProfileLink(c.Request.Context(), user.ID, c.Param("category"), models.ProfileLink{
		Name: req.Name,
		URL:  req.URL,
	})
	if err != nil {
		respondError(c, h.logger, "add_profile_link", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(updated))
}

// DELETE /api/users/profile-links/:category/:index
func (h *UserHandler) RemoveLink(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, h.logger, "remove_profile_link", service.ErrInvalidLinkIndex)
		return
	}

	updated, err := h.userService.RemoveProfileLink(c.Request.Context(), user.ID, c.Param("category"), index)
	if err != nil {
		respondError(c, h.logger, "remove_profile_link", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}
