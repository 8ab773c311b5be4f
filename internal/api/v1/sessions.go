package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListSessions 列出租户的导入会话
// GET /api/districts/:districtId/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	districtID, err := strconv.ParseInt(c.Param("districtId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid district id"})
		return
	}

	sessions, err := h.store.ListSessions(districtID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession 查询单个会话
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.store.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// DeleteSession 删除会话及其暂存行（放弃未完成的导入）
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	sess, err := h.store.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if err := h.store.DeleteSession(sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": sess.ID})
}
