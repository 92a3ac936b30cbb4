package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct {
	animeService service.AnimeService
	feedService  service.FeedService
	logger       *slog.Logger
}

func NewAnimeHandler(animeService service.AnimeService, feedService service.FeedService, logger *slog.Logger) *AnimeHandler {
	return &AnimeHandler{
		animeService: animeService,
		feedService:  feedService,
		logger:       logger,
	}
}

// RegisterRoutes registers anime group routes; authMW guards the private ones
func (h *AnimeHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	anime := rg.Group("/anime")
	{
		// Public routes
		anime.GET("/feed", h.Feed)
		anime.GET("/user/:user_id", h.ListByUser)

		// Owner routes
		anime.GET("/my-anime", authMW, h.ListMine)
		anime.POST("", authMW, h.Create)
		anime.GET("/:id", authMW, h.Get)
		anime.POST("/:id/update", authMW, h.AddUpdate)
		anime.POST("/:id/complete", authMW, h.Complete)
	}
}

// Feed returns the public activity feed
// GET /api/anime/feed?limit=
func (h *AnimeHandler) Feed(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	items, err := h.feedService.GetFeed(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "get_feed", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListByUser returns another user's public groups
// GET /api/anime/user/:user_id
func (h *AnimeHandler) ListByUser(c *gin.Context) {
	groups, err := h.animeService.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, "list_user_groups", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponses(groups))
}

// ListMine returns the caller's groups with every entry
// GET /api/anime/my-anime
func (h *AnimeHandler) ListMine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	groups, err := h.animeService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, "list_my_groups", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponses(groups))
}

// Create starts tracking a new show
// POST /api/anime
func (h *AnimeHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateAnimeRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.animeService.CreateGroup(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, h.logger, "create_group", err)
		return
	}

	h.logger.Info("anime_group_created", "group_id", group.ID, "user_id", user.ID)
	c.JSON(http.StatusCreated, dto.NewGroupResponse(group))
}

// Get returns one group as the caller may see it
// GET /api/anime/:id
func (h *AnimeHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	group, err := h.animeService.GetGroup(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get_group", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(group))
}

// AddUpdate appends a pending progress entry
// POST /api/anime/:id/update
func (h *AnimeHandler) AddUpdate(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.animeService.AddUpdate(c.Request.Context(), user.ID, c.Param("id"), req.Thoughts)
	if err != nil {
		respondError(c, h.logger, "add_update", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewGroupResponse(group))
}

// Complete appends a pending completion entry
// POST /api/anime/:id/complete
func (h *AnimeHandler) Complete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CompleteEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.animeService.Complete(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, "complete_group", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewGroupResponse(group))
}
