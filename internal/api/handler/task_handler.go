package handler

import (
	"errors"
	"io"
	"net/http"

	"go-procflow/internal/api/dto"
	"go-procflow/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks service.TaskLifecycleTracker
}

func NewTaskHandler(tasks service.TaskLifecycleTracker) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListTasks handles GET /api/tasks for the calling user.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListUserTasks(c.Request.Context(), user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTask handles GET /api/tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	details, err := h.tasks.GetTaskDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Claim handles POST /api/tasks/:id/claim.
func (h *TaskHandler) Claim(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	err := h.tasks.Claim(c.Request.Context(), c.Param("id"), user)
	respondAction(c, "claimed", err)
}

// Complete handles POST /api/tasks/:id/complete.
func (h *TaskHandler) Complete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.tasks.Complete(c.Request.Context(), service.CompleteRequest{
		TaskID:    c.Param("id"),
		UserID:    user,
		Variables: req.Variables,
		Comment:   req.Comment,
	})
	respondAction(c, "completed", err)
}

// Delegate handles POST /api/tasks/:id/delegate.
func (h *TaskHandler) Delegate(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.DelegateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	err := h.tasks.Delegate(c.Request.Context(), c.Param("id"), user, req.UserID)
	respondAction(c, "delegated", err)
}

// History handles GET /api/processes/:id/tasks/history.
func (h *TaskHandler) History(c *gin.Context) {
	history, err := h.tasks.TaskHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func respondAction(c *gin.Context, status string, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ActionResponse{Status: status})
	case degraded(err):
		c.JSON(http.StatusOK, dto.ActionResponse{Status: status, Tracking: dto.TrackingDegraded})
	default:
		writeError(c, err)
	}
}
