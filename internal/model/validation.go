package model

// ValidationStatus 行校验状态，按严重度全序排列
type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusWarning ValidationStatus = "warning"
	StatusFixable ValidationStatus = "fixable"
	StatusError   ValidationStatus = "error"
)

// severity 严重度数值：error > fixable > warning > valid
var severity = map[ValidationStatus]int{
	StatusValid:   0,
	StatusWarning: 1,
	StatusFixable: 2,
	StatusError:   3,
}

// Severity 状态的严重度数值，未知状态按 valid 处理
func (s ValidationStatus) Severity() int {
	return severity[s]
}

// Worse 返回两个状态中更严重的一个
// Validator 与汇总统计共用此比较，避免各处重复判定优先级
func Worse(a, b ValidationStatus) ValidationStatus {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// FixType 自动修复类型
type FixType string

const (
	// FixCreateMissingParent 创建缺失的上级目标占位行
	FixCreateMissingParent FixType = "create_missing_parent"
)

// AutoFixSuggestion 一条修复建议：永不自动执行，必须人工确认
type AutoFixSuggestion struct {
	Type           FixType `json:"type"`
	MissingNumber  string  `json:"missingNumber"`
	SuggestedTitle string  `json:"suggestedTitle"`
	SuggestedOwner string  `json:"suggestedOwner"`
	Level          int     `json:"level"`
	Action         string  `json:"action"` // 给审核界面的动作说明
}

// ValidationResult 单行目标的校验结论
type ValidationResult struct {
	Status         ValidationStatus    `json:"status"`
	Messages       []string            `json:"messages"`
	Suggestions    []AutoFixSuggestion `json:"suggestions"`
	ExistingGoalID *int64              `json:"existingGoalId"` // 编号已存在时指向正式目标
}

// MetricValidationResult 单条指标的校验结论
type MetricValidationResult struct {
	Status   ValidationStatus `json:"status"`
	Messages []string         `json:"messages"`
}

// ValidationSummary 一批解析记录的校验统计
type ValidationSummary struct {
	Total     int  `json:"total"`
	Valid     int  `json:"valid"`
	Warnings  int  `json:"warnings"`
	Fixable   int  `json:"fixable"`
	Errors    int  `json:"errors"`
	CanImport bool `json:"canImport"` // 无 error 行即可提交
}
