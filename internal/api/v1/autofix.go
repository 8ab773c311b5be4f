package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planbook/internal/model"
	"planbook/internal/service/validate"
)

// ListFixes 递归检测会话内缺失的祖先，返回修复建议
// GET /api/sessions/:id/fixes
func (h *Handler) ListFixes(c *gin.Context) {
	sessionID := c.Param("id")

	suggestions, err := h.collectFixes(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// ApplyFixRequest 应用单条建议
type ApplyFixRequest struct {
	Suggestion model.AutoFixSuggestion `json:"suggestion"`
}

// ApplyFix 应用单条修复建议，插入合成的占位行
// POST /api/sessions/:id/fixes/apply
func (h *Handler) ApplyFix(c *gin.Context) {
	sessionID := c.Param("id")

	var req ApplyFixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Suggestion.MissingNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestion.missingNumber is required"})
		return
	}

	staged, err := h.planner.Apply(sessionID, req.Suggestion)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, staged)
}

// ApplyAllFixes 批量应用全部建议
// POST /api/sessions/:id/fixes/apply-all
func (h *Handler) ApplyAllFixes(c *gin.Context) {
	sessionID := c.Param("id")

	suggestions, err := h.collectFixes(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	staged, err := h.planner.ApplyAll(sessionID, suggestions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"applied": len(staged),
		"goals":   staged,
	})
}

// collectFixes 汇集会话的递归修复建议
func (h *Handler) collectFixes(sessionID string) ([]model.AutoFixSuggestion, error) {
	sess, err := h.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return []model.AutoFixSuggestion{}, nil
	}

	staged, err := h.store.ListStagedGoals(sessionID)
	if err != nil {
		return nil, err
	}
	existingList, err := h.store.ListGoals(sess.DistrictID)
	if err != nil {
		return nil, err
	}

	return h.planner.DetectMissingAncestors(staged, validate.BuildExisting(existingList)), nil
}
