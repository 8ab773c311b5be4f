package v1

import (
	"github.com/gin-gonic/gin"

	"planbook/internal/importer"
	"planbook/internal/service/autofix"
	"planbook/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store          *store.Store
	orchestrator   *importer.Orchestrator
	planner        *autofix.Planner
	maxUploadBytes int64  // 0 表示不限制
	uploadDir      string // 非空时保留上传文件副本
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, maxUploadBytes int64, uploadDir string) *Handler {
	return &Handler{
		store:          st,
		orchestrator:   importer.NewOrchestrator(st),
		planner:        autofix.NewPlanner(st),
		maxUploadBytes: maxUploadBytes,
		uploadDir:      uploadDir,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 学区管理
	router.GET("/districts", h.ListDistricts)
	router.POST("/districts", h.CreateDistrict)

	// 正式目标树与指标
	router.GET("/districts/:districtId/goals", h.GetGoalTree)
	router.GET("/goals/:id/metrics", h.ListGoalMetrics)

	// 导入会话
	router.POST("/districts/:districtId/import", h.Upload)
	router.GET("/districts/:districtId/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.DeleteSession)

	// 暂存行审核
	router.GET("/sessions/:id/staged", h.ListStaged)
	router.PATCH("/staged-goals/:id", h.UpdateStagedGoal)
	router.POST("/sessions/:id/staged/bulk-action", h.BulkSetAction)

	// 自动修复
	router.GET("/sessions/:id/fixes", h.ListFixes)
	router.POST("/sessions/:id/fixes/apply", h.ApplyFix)
	router.POST("/sessions/:id/fixes/apply-all", h.ApplyAllFixes)

	// 提交（SSE 进度流）
	router.POST("/sessions/:id/commit", h.Commit)
}
