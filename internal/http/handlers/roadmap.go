package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type RoadmapHandler struct {
	log     *logger.Logger
	actions *services.Actions
	metrics *observability.Metrics
}

func NewRoadmapHandler(log *logger.Logger, actions *services.Actions, metrics *observability.Metrics) *RoadmapHandler {
	return &RoadmapHandler{
		log:     log.With("handler", "RoadmapHandler"),
		actions: actions,
		metrics: metrics,
	}
}

func (h *RoadmapHandler) Generate(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.actions.GenerateRoadmapForUser(c.Request.Context(), middleware.CallerFrom(c), middleware.GuestIDFrom(c), req.Query)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *RoadmapHandler) List(c *gin.Context) {
	out, err := h.actions.History(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"roadmaps": out})
}

func (h *RoadmapHandler) Get(c *gin.Context) {
	out, err := h.actions.FetchRoadmap(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *RoadmapHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	err := h.actions.UpdateStatus(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), c.Param("nodeId"), req.Status)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// Adopt promotes the guest tier of this browser, plus any roadmaps it
// uploads, into the caller's account.
func (h *RoadmapHandler) Adopt(c *gin.Context) {
	var req struct {
		Roadmaps []roadmap.LocalSnapshot `json:"roadmaps"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	out, err := h.actions.Adopt(c.Request.Context(), middleware.CallerFrom(c), middleware.GuestIDFrom(c), req.Roadmaps)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.metrics.AddAdoptions(len(out.Adopted), len(out.Failed))
	response.RespondOK(c, out)
}

func (h *RoadmapHandler) Dashboard(c *gin.Context) {
	out, err := h.actions.Dashboard(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
