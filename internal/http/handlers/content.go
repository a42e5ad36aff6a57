package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/domain/content"
	"github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

// ContentHandler serves the per-topic generators. None of them need a
// session.
type ContentHandler struct {
	log     *logger.Logger
	actions *services.Actions
}

func NewContentHandler(log *logger.Logger, actions *services.Actions) *ContentHandler {
	return &ContentHandler{
		log:     log.With("handler", "ContentHandler"),
		actions: actions,
	}
}

func (h *ContentHandler) Insight(c *gin.Context) {
	var req struct {
		NodeContent string `json:"nodeContent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.actions.Insight(c.Request.Context(), req.NodeContent)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ContentHandler) FollowUp(c *gin.Context) {
	var req struct {
		NodeContent string `json:"nodeContent"`
		Question    string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.actions.FollowUp(c.Request.Context(), req.NodeContent, req.Question)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ContentHandler) Challenge(c *gin.Context) {
	var req content.ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.actions.Challenge(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ContentHandler) DailyChallenge(c *gin.Context) {
	out, err := h.actions.DailyChallenge(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
