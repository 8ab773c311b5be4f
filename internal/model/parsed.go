package model

// ParsedMetric 解析阶段的指标记录，仅存在于内存中
type ParsedMetric struct {
	RowNumber   int               `json:"rowNumber"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Baseline    *float64          `json:"baseline"`
	UnitSymbol  string            `json:"unitSymbol"`
	Frequency   string            `json:"frequency"` // 表格原文，提交时归一化
	TimeSeries  []TimeSeriesEntry `json:"timeSeries"`
}

// ParsedGoal 解析阶段的目标记录：一个层级标记行及其后续指标行
type ParsedGoal struct {
	RowNumber   int            `json:"rowNumber"`
	RawCells    []string       `json:"rawCells"` // 标记行原始单元格快照
	Hierarchy   string         `json:"hierarchy"`
	GoalNumber  string         `json:"goalNumber"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Level       int            `json:"level"` // 编号缺失时为 -1
	OwnerName   string         `json:"ownerName"`
	Metrics     []ParsedMetric `json:"metrics"`
}

// ParseResult 单个工作表的解析产物
type ParseResult struct {
	SheetName string       `json:"sheetName"`
	RowCount  int          `json:"rowCount"`
	Goals     []ParsedGoal `json:"goals"`
}
