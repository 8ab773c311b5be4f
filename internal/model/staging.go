package model

// StagedAction 审核后对单行执行的动作
type StagedAction string

const (
	ActionCreate StagedAction = "create"
	ActionUpdate StagedAction = "update"
	ActionSkip   StagedAction = "skip"
)

// SyntheticRowNumber 自动补全行的行号哨兵值（非表格来源）
const SyntheticRowNumber = -1

// StagedGoal 待审核的候选目标行，随会话删除而删除
type StagedGoal struct {
	ID              int64               `json:"id"`
	SessionID       string              `json:"sessionId"`
	RowNumber       int                 `json:"rowNumber"` // -1 表示自动生成
	RawCells        []string            `json:"rawCells"`
	Hierarchy       string              `json:"hierarchy"`
	GoalNumber      string              `json:"goalNumber"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Level           int                 `json:"level"`
	OwnerName       string              `json:"ownerName"`
	Status          ValidationStatus    `json:"status"`
	Messages        []string            `json:"messages"`
	IsMapped        bool                `json:"isMapped"`
	MappedGoalID    *int64              `json:"mappedGoalId"`
	Action          StagedAction        `json:"action"`
	IsAutoGenerated bool                `json:"isAutoGenerated"`
	Suggestions     []AutoFixSuggestion `json:"suggestions"`
}

// StagedMetric 待审核的候选指标行，外键指向所属 StagedGoal
type StagedMetric struct {
	ID           int64             `json:"id"`
	SessionID    string            `json:"sessionId"`
	StagedGoalID int64             `json:"stagedGoalId"`
	RowNumber    int               `json:"rowNumber"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Baseline     *float64          `json:"baseline"`
	UnitSymbol   string            `json:"unitSymbol"`
	Frequency    string            `json:"frequency"`
	TimeSeries   []TimeSeriesEntry `json:"timeSeries"`
	Status       ValidationStatus  `json:"status"`
	Messages     []string          `json:"messages"`
	Action       StagedAction      `json:"action"`
}
