package handler

import (
	"errors"
	"io"
	"net/http"

	"go-procflow/internal/api/dto"
	"go-procflow/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProcessHandler struct {
	tracker  service.LifecycleTracker
	resolver service.StatusResolver
	logger   *zap.Logger
}

func NewProcessHandler(tracker service.LifecycleTracker, resolver service.StatusResolver, logger *zap.Logger) *ProcessHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessHandler{tracker: tracker, resolver: resolver, logger: logger}
}

// StartProcess handles POST /api/processes/:id/start, where :id is the
// process definition key.
func (h *ProcessHandler) StartProcess(c *gin.Context) {
	var req dto.StartProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := h.tracker.Start(c.Request.Context(), service.StartRequest{
		ProcessDefinitionKey: c.Param("id"),
		BusinessKey:          req.BusinessKey,
		Variables:            req.Variables,
		Principal:            principal(c),
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, dto.StartProcessResponse{ID: id})
	case degraded(err):
		c.JSON(http.StatusCreated, dto.StartProcessResponse{ID: id, Tracking: dto.TrackingDegraded})
	default:
		writeError(c, err)
	}
}

// ListDefinitions handles GET /api/processes.
func (h *ProcessHandler) ListDefinitions(c *gin.Context) {
	defs, err := h.tracker.ListDefinitions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, defs)
}

// GetStatus handles GET /api/processes/:id/status.
func (h *ProcessHandler) GetStatus(c *gin.Context) {
	status, found, err := h.resolver.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "process instance not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewStatusResponse(status))
}

// Terminate handles DELETE /api/processes/:id?reason=.
func (h *ProcessHandler) Terminate(c *gin.Context) {
	err := h.tracker.Terminate(c.Request.Context(), c.Param("id"), c.Query("reason"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ActionResponse{Status: "terminated"})
	case degraded(err):
		h.logger.Warn("terminate tracking degraded", zap.String("process_instance_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusOK, dto.ActionResponse{Status: "terminated", Tracking: dto.TrackingDegraded})
	default:
		writeError(c, err)
	}
}

// ListActiveInstances handles GET /api/workflows/:id/instances.
func (h *ProcessHandler) ListActiveInstances(c *gin.Context) {
	instances, err := h.tracker.ListActiveInstances(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instances)
}

// ListTracked handles GET /api/workflows/tracked?businessKey=.
func (h *ProcessHandler) ListTracked(c *gin.Context) {
	rows, err := h.tracker.ListTracked(c.Request.Context(), c.Query("businessKey"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTrackedInstances(rows))
}

// Diagram handles GET /api/workflows/:id/diagram.
func (h *ProcessHandler) Diagram(c *gin.Context) {
	doc, err := h.tracker.ExportDiagram(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

// Validate handles POST /api/workflows/:id/validate.
func (h *ProcessHandler) Validate(c *gin.Context) {
	result, err := h.tracker.ValidateDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
