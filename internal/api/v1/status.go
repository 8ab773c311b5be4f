package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool `json:"initialized"`   // 是否已有数据
	TotalGoals    int  `json:"totalGoals"`    // 目标总数
	TotalMetrics  int  `json:"totalMetrics"`  // 指标总数
	TotalSessions int  `json:"totalSessions"` // 导入会话总数
}

// GetStatus 获取系统状态
// GET /api/status?districtId=1
func (h *Handler) GetStatus(c *gin.Context) {
	districtID, err := strconv.ParseInt(c.DefaultQuery("districtId", "0"), 10, 64)
	if err != nil || districtID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid districtId"})
		return
	}

	goals, err := h.store.CountGoals(districtID)
	if err != nil {
		goals = 0
	}
	metrics, err := h.store.CountMetrics(districtID)
	if err != nil {
		metrics = 0
	}
	sessions, err := h.store.CountSessions(districtID)
	if err != nil {
		sessions = 0
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:   goals > 0,
		TotalGoals:    goals,
		TotalMetrics:  metrics,
		TotalSessions: sessions,
	})
}
