package v1

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"planbook/internal/goalnum"
)

// GetGoalTree 按自然序返回租户目标（扁平列表，父子关系由 parentId 表达）
// GET /api/districts/:districtId/goals
func (h *Handler) GetGoalTree(c *gin.Context) {
	districtID, err := strconv.ParseInt(c.Param("districtId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid district id"})
		return
	}

	goals, err := h.store.ListGoals(districtID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// "1.9" 排在 "1.10" 之前；短前缀在前，父级天然先于子级
	sort.SliceStable(goals, func(i, j int) bool {
		return goalnum.Less(goals[i].GoalNumber, goals[j].GoalNumber)
	})

	c.JSON(http.StatusOK, goals)
}

// ListGoalMetrics 列出目标下的指标
// GET /api/goals/:id/metrics
func (h *Handler) ListGoalMetrics(c *gin.Context) {
	goalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}

	metrics, err := h.store.ListMetricsByGoal(goalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, metrics)
}
