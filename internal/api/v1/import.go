package v1

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"planbook/internal/importer"
	"planbook/internal/model"
)

// UploadResponse 上传解析结果
type UploadResponse struct {
	Session *model.ImportSession     `json:"session"`
	Summary *model.ValidationSummary `json:"summary"`
}

// Upload 上传计划表格：建会话 → 解析 → 校验 → 暂存
// POST /api/districts/:districtId/import
func (h *Handler) Upload(c *gin.Context) {
	districtID, err := strconv.ParseInt(c.Param("districtId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid district id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	// 整个文件会一次性读入内存解析，超限直接拒绝
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file size %d exceeds limit of %d bytes", fileHeader.Size, h.maxUploadBytes),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	uploadedBy := c.DefaultPostForm("uploadedBy", "")

	sess, summary, err := h.orchestrator.ProcessUpload(districtID, fileHeader.Filename, fileHeader.Size, uploadedBy, file)
	if err != nil {
		// 会话已标记 failed，错误原文透传给调用方
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"session": sess,
		})
		return
	}

	// 配置要求留档时，把原始文件副本存入上传目录
	if h.uploadDir != "" {
		dst := filepath.Join(h.uploadDir, sess.ID+"_"+filepath.Base(fileHeader.Filename))
		if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
			log.Printf("Failed to save upload copy: %v", err)
		}
	}

	c.JSON(http.StatusOK, UploadResponse{Session: sess, Summary: summary})
}

// Commit 提交已审核的暂存行 (SSE 流式响应)
// POST /api/sessions/:id/commit
func (h *Handler) Commit(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := h.store.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	progressChan := make(chan importer.ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		sendProgress(progressChan, importer.ProgressEvent{
			Type:      "start",
			Message:   fmt.Sprintf("Importing session %s", sessionID),
			Timestamp: time.Now(),
		})

		if _, err := h.orchestrator.ExecuteImport(sessionID, func(e importer.ProgressEvent) {
			sendProgress(progressChan, e)
		}); err != nil {
			sendProgress(progressChan, importer.ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
		}
	}()

	// 流式发送进度事件
	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// sendProgress 发送进度事件，通道满时丢弃
func sendProgress(ch chan importer.ProgressEvent, event importer.ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
