package model

import "time"

// District 学区（租户）
type District struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Goal 正式目标节点，parent_id 构成深度不超过 3 的树
// 无环性依赖创建顺序保证：子节点插入时父节点必须已有 ID
type Goal struct {
	ID          int64  `json:"id"`
	DistrictID  int64  `json:"districtId"`
	ParentID    *int64 `json:"parentId"` // 顶级目标为 nil
	GoalNumber  string `json:"goalNumber"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       int    `json:"level"` // 0=战略目标 1=目标 2=子目标
	OwnerName   string `json:"ownerName"`
	Position    int    `json:"position"` // 提交序号，用于展示排序
}

// Frequency 指标统计频率
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// TimeSeriesEntry 指标时间序列中的一个周期
type TimeSeriesEntry struct {
	Period string   `json:"period"` // 归一化周期键，如 "2024-06"、"FY24/25"
	Label  string   `json:"label"`  // 表头原文
	Target *float64 `json:"target"`
	Actual *float64 `json:"actual"`
}

// Metric 挂在目标下的绩效指标
type Metric struct {
	ID          int64             `json:"id"`
	GoalID      int64             `json:"goalId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Baseline    *float64          `json:"baseline"`
	UnitSymbol  string            `json:"unitSymbol"`
	Frequency   Frequency         `json:"frequency"`
	TimeSeries  []TimeSeriesEntry `json:"timeSeries"`
}
