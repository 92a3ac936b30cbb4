package handler

import (
	"log/slog"
	"net/http"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	moderation service.ModerationService
	stats      service.StatsService
	users      service.UserService
	logger     *slog.Logger
}

func NewAdminHandler(moderation service.ModerationService, stats service.StatsService, users service.UserService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		stats:      stats,
		users:      users,
		logger:     logger,
	}
}

// RegisterRoutes registers admin routes behind authMW and the admin role check
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	admin := rg.Group("/admin", authMW, adminMW)
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/pending-entries", h.PendingEntries)
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:user_id", h.DeleteUser)

		// Positional moderation
		admin.POST("/approve-entry/:group_id/:index", h.ApproveByIndex)
		admin.POST("/reject-entry/:group_id/:index", h.RejectByIndex)

		// Id-addressed moderation
		admin.POST("/groups/:group_id/entries/:entry_id/approve", h.ApproveByID)
		admin.POST("/groups/:group_id/entries/:entry_id/reject", h.RejectByID)
	}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.stats.ComputeStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "compute_stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/pending-entries
func (h *AdminHandler) PendingEntries(c *gin.Context) {
	pending, err := h.moderation.ListPendingEntries(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list_pending_entries", err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// GET /api/admin/users?search=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsersForAdmin(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.logger, "admin_list_users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DELETE /api/admin/users/:user_id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	removed, err := h.moderation.DeleteUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, "delete_user", err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteUserResponse{
		Message:       "user deleted",
		GroupsRemoved: removed,
	})
}

// POST /api/admin/approve-entry/:group_id/:index
func (h *AdminHandler) ApproveByIndex(c *gin.Context) {
	index, err := service.ParseEntryIndex(c.Param("index"))
	if err != nil {
		respondError(c, h.logger, "approve_entry", err)
		return
	}
	entry, err := h.moderation.ApproveEntry(c.Request.Context(), c.Param("group_id"), index)
	h.writeApproved(c, entry, &index, err)
}

// POST /api/admin/groups/:group_id/entries/:entry_id/approve
func (h *AdminHandler) ApproveByID(c *gin.Context) {
	entry, err := h.moderation.ApproveEntryByID(c.Request.Context(), c.Param("group_id"), c.Param("entry_id"))
	h.writeApproved(c, entry, nil, err)
}

// POST /api/admin/reject-entry/:group_id/:index
func (h *AdminHandler) RejectByIndex(c *gin.Context) {
	index, err := service.ParseEntryIndex(c.Param("index"))
	if err != nil {
		respondError(c, h.logger, "reject_entry", err)
		return
	}
	entry, deleted, err := h.moderation.RejectEntry(c.Request.Context(), c.Param("group_id"), index)
	h.writeRejected(c, entry, &index, deleted, err)
}

// POST /api/admin/groups/:group_id/entries/:entry_id/reject
func (h *AdminHandler) RejectByID(c *gin.Context) {
	entry, deleted, err := h.moderation.RejectEntryByID(c.Request.Context(), c.Param("group_id"), c.Param("entry_id"))
	h.writeRejected(c, entry, nil, deleted, err)
}

// index is nil when the entry was addressed by id.
func (h *AdminHandler) writeApproved(c *gin.Context, entry *models.Entry, index *int, err error) {
	if err != nil {
		respondError(c, h.logger, "approve_entry", err)
		return
	}
	c.JSON(http.StatusOK, dto.ModerationResponse{Message: "entry approved", Entry: entry, EntryIndex: index})
}

func (h *AdminHandler) writeRejected(c *gin.Context, entry *models.Entry, index *int, deleted bool, err error) {
	if err != nil {
		respondError(c, h.logger, "reject_entry", err)
		return
	}
	msg := "entry rejected"
	if deleted {
		msg = "entry rejected and group deleted (no entries left)"
	}
	c.JSON(http.StatusOK, dto.ModerationResponse{Message: msg, Entry: entry, EntryIndex: index, GroupDeleted: deleted})
}
