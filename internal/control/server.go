// Package control exposes a small loopback HTTP API for inspecting and
// nudging the sync daemon: cycle state, last report, pending records, and a
// manual trigger.
package control

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/repository"
	syncmgr "github.com/alcyxob/FitnessClient-sub001/internal/sync"
	"github.com/alcyxob/FitnessClient-sub001/internal/upload"
)

// Reachability mirrors the network monitor's observable state.
type Reachability interface {
	Reachable() bool
}

// Handler serves the control endpoints.
type Handler struct {
	manager  *syncmgr.Manager
	network  Reachability
	uploader *upload.Uploader
	plans    *repository.PlanRepository
	logger   *zap.Logger
}

func NewHandler(manager *syncmgr.Manager, network Reachability, uploader *upload.Uploader, plans *repository.PlanRepository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: manager, network: network, uploader: uploader, plans: plans, logger: logger}
}

// Router builds the gin engine with all control routes.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/network", h.getNetwork)
	router.GET("/sync/status", h.getSyncStatus)
	router.GET("/sync/pending", h.getPending)
	router.POST("/sync/trigger", h.triggerSync)
	router.POST("/assignments/:id/submit-video", h.submitVideo)
	router.POST("/clients/:id/plans", h.createPlan)

	return router
}

func (h *Handler) getNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reachable": h.network.Reachable()})
}

func (h *Handler) getSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":      h.manager.State(),
		"lastReport": h.manager.LastReport(),
	})
}

func (h *Handler) getPending(c *gin.Context) {
	records, err := h.manager.PendingRecords(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list pending records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "records": records})
}

func (h *Handler) triggerSync(c *gin.Context) {
	// Runs the cycle inline; a cycle already in flight makes this a no-op,
	// mirroring every other trigger source.
	started := h.manager.TrySync(context.WithoutCancel(c.Request.Context()))
	if !started {
		c.JSON(http.StatusConflict, gin.H{"status": "already running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

type submitVideoRequest struct {
	FilePath    string `json:"filePath" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// submitVideo runs the three-step upload for a recorded assignment video.
// The file at filePath is consumed: it is removed whether or not the
// submission succeeds.
func (h *Handler) submitVideo(c *gin.Context) {
	var req submitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filePath and contentType are required"})
		return
	}

	assignment, err := h.uploader.SubmitVideo(c.Request.Context(), c.Param("id"), req.FilePath, req.ContentType)
	if err != nil {
		h.logger.Error("video submission failed",
			zap.String("assignmentId", c.Param("id")), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, upload.ErrInvalidContentType) || errors.Is(err, upload.ErrFileMissing) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// createPlan posts a new training plan for the client. Plans are not cached,
// so this is an online, trainer-only action; the backend rejects it for a
// client session.
func (h *Handler) createPlan(c *gin.Context) {
	var req api.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan payload"})
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Error("plan creation failed",
			zap.String("clientId", c.Param("id")), zap.Error(err))
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}
