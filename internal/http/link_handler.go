package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"branch-api/internal/service"
)

// LinkHandler mantiene dependencias para endpoints de enlaces.
type LinkHandler struct {
	logger   *zap.Logger
	linkServ *service.LinkService
}

func NewLinkHandler(logger *zap.Logger, linkServ *service.LinkService) *LinkHandler {
	return &LinkHandler{
		logger:   logger,
		linkServ: linkServ,
	}
}

// AddLink maneja POST /api/v1/me/links.
func (h *LinkHandler) AddLink(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
		URL   string `json:"url" binding:"required"`
		Icon  string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add link request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	link, err := h.linkServ.AddLink(c.Request.Context(), user.ID, service.LinkInput{
		Title: req.Title,
		URL:   req.URL,
		Icon:  req.Icon,
	})
	if err != nil {
		h.respondLinkError(c, err, "add link failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"link": link})
}

// UpdateLink maneja PUT /api/v1/me/links/:id.
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req struct {
		Title *string `json:"title"`
		URL   *string `json:"url"`
		Icon  *string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update link request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	link, err := h.linkServ.UpdateLink(c.Request.Context(), user.ID, c.Param("id"), service.LinkUpdateInput{
		Title: req.Title,
		URL:   req.URL,
		Icon:  req.Icon,
	})
	if err != nil {
		h.respondLinkError(c, err, "update link failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

// DeleteLink maneja DELETE /api/v1/me/links/:id.
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.linkServ.DeleteLink(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.respondLinkError(c, err, "delete link failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LinkHandler) respondLinkError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrInvalidLink):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	}
}
