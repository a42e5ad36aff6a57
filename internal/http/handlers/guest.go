package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

// GuestHandler exposes the guest tier keyed by the guest cookie.
type GuestHandler struct {
	log     *logger.Logger
	actions *services.Actions
}

func NewGuestHandler(log *logger.Logger, actions *services.Actions) *GuestHandler {
	return &GuestHandler{
		log:     log.With("handler", "GuestHandler"),
		actions: actions,
	}
}

func (h *GuestHandler) History(c *gin.Context) {
	out, err := h.actions.GuestHistory(c.Request.Context(), middleware.GuestIDFrom(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"roadmaps": out})
}

func (h *GuestHandler) Get(c *gin.Context) {
	out, err := h.actions.GuestRoadmap(c.Request.Context(), middleware.GuestIDFrom(c), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *GuestHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	err := h.actions.UpdateGuestStatus(c.Request.Context(), middleware.GuestIDFrom(c), c.Param("id"), c.Param("nodeId"), req.Status)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
