package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planbook/internal/model"
)

// StagedRowsResponse 审核界面的数据集
type StagedRowsResponse struct {
	Goals   []*model.StagedGoal   `json:"goals"`
	Metrics []*model.StagedMetric `json:"metrics"`
}

// ListStaged 列出会话的全部暂存行
// GET /api/sessions/:id/staged
func (h *Handler) ListStaged(c *gin.Context) {
	sessionID := c.Param("id")

	goals, err := h.store.ListStagedGoals(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics, err := h.store.ListStagedMetrics(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StagedRowsResponse{Goals: goals, Metrics: metrics})
}

// UpdateStagedGoalRequest 审核界面可编辑的字段，均为可选
type UpdateStagedGoalRequest struct {
	GoalNumber  *string `json:"goalNumber"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	OwnerName   *string `json:"ownerName"`
	Action      *string `json:"action"`
	Status      *string `json:"status"`
}

// UpdateStagedGoal 编辑单条暂存行
// PATCH /api/staged-goals/:id
func (h *Handler) UpdateStagedGoal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staged goal id"})
		return
	}

	var req UpdateStagedGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	staged, err := h.store.GetStagedGoal(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if staged == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staged goal not found"})
		return
	}

	if req.GoalNumber != nil {
		staged.GoalNumber = *req.GoalNumber
	}
	if req.Title != nil {
		staged.Title = *req.Title
	}
	if req.Description != nil {
		staged.Description = *req.Description
	}
	if req.OwnerName != nil {
		staged.OwnerName = *req.OwnerName
	}
	if req.Action != nil {
		staged.Action = model.StagedAction(*req.Action)
	}
	if req.Status != nil {
		staged.Status = model.ValidationStatus(*req.Status)
	}

	if err := h.store.UpdateStagedGoal(staged); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, staged)
}

// BulkActionRequest 整批动作切换请求
type BulkActionRequest struct {
	Action string `json:"action"` // create / skip
}

// BulkSetAction 整批切换动作（“全选导入”开关）
// POST /api/sessions/:id/staged/bulk-action
func (h *Handler) BulkSetAction(c *gin.Context) {
	sessionID := c.Param("id")

	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	action := model.StagedAction(req.Action)
	if action != model.ActionCreate && action != model.ActionSkip {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be create or skip"})
		return
	}

	if err := h.store.SetAllStagedGoalActions(sessionID, action); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": action})
}
