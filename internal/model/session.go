package model

import "time"

// SessionStatus 导入会话生命周期状态，只允许单调前进
type SessionStatus string

const (
	SessionUploaded  SessionStatus = "uploaded"
	SessionParsing   SessionStatus = "parsing"
	SessionParsed    SessionStatus = "parsed"
	SessionMapping   SessionStatus = "mapping"
	SessionImporting SessionStatus = "importing"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// ImportSummary 提交阶段的累计统计
type ImportSummary struct {
	GoalsCreated   int `json:"goalsCreated"`
	GoalsUpdated   int `json:"goalsUpdated"`
	MetricsCreated int `json:"metricsCreated"`
	MetricsUpdated int `json:"metricsUpdated"`
	Errors         int `json:"errors"`
	Warnings       int `json:"warnings"` // 预留字段，提交步骤不写入
}

// ImportSession 一次文件上传对应的工作单元
type ImportSession struct {
	ID           string         `json:"id"` // uuid
	DistrictID   int64          `json:"districtId"`
	Filename     string         `json:"filename"`
	FileSize     int64          `json:"fileSize"`
	Status       SessionStatus  `json:"status"`
	UploadedBy   string         `json:"uploadedBy"`
	ErrorMessage string         `json:"errorMessage"`
	Summary      *ImportSummary `json:"summary"`
	CreatedAt    time.Time      `json:"createdAt"`
	CompletedAt  *time.Time     `json:"completedAt"`
}

// IsTerminal 是否已到终态
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionFailed
}
