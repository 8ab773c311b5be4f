package validate

import (
	"fmt"
	"strings"

	"planbook/internal/goalnum"
	"planbook/internal/model"
)

// ExistingGoals 租户已持久化目标的编号索引
type ExistingGoals map[string]*model.Goal

// BuildExisting 将目标列表构建为编号索引
func BuildExisting(goals []*model.Goal) ExistingGoals {
	m := make(ExistingGoals, len(goals))
	for _, g := range goals {
		m[g.GoalNumber] = g
	}
	return m
}

// ValidateBatch 校验整批解析记录，返回与输入同序的结果
func ValidateBatch(batch []model.ParsedGoal, existing ExistingGoals) []model.ValidationResult {
	counts := numberCounts(batch)
	results := make([]model.ValidationResult, 0, len(batch))
	for _, g := range batch {
		results = append(results, validateGoal(g, batch, counts, existing))
	}
	return results
}

// validateGoal 按固定顺序执行检查，状态取出现过的最严重级别
func validateGoal(g model.ParsedGoal, batch []model.ParsedGoal, counts map[string]int, existing ExistingGoals) model.ValidationResult {
	result := model.ValidationResult{
		Status:      model.StatusValid,
		Messages:    make([]string, 0),
		Suggestions: make([]model.AutoFixSuggestion, 0),
	}

	// 1. 标题缺失
	if strings.TrimSpace(g.Title) == "" {
		result.Status = model.Worse(result.Status, model.StatusError)
		result.Messages = append(result.Messages, "Missing title")
	}

	// 2. 编号缺失
	number := strings.TrimSpace(g.GoalNumber)
	if number == "" {
		result.Status = model.Worse(result.Status, model.StatusError)
		result.Messages = append(result.Messages, "Missing goal number")
	}

	// 3. 层级非法
	if g.Level < goalnum.LevelObjective || g.Level > goalnum.LevelSubGoal {
		result.Status = model.Worse(result.Status, model.StatusError)
		result.Messages = append(result.Messages, "Undefined level")
	}

	// 4. 批内编号重复
	if number != "" && counts[number] > 1 {
		result.Status = model.Worse(result.Status, model.StatusError)
		result.Messages = append(result.Messages,
			fmt.Sprintf("Goal number %s appears %d times in this import", number, counts[number]))
	}

	// 5. 编号已存在于正式数据：是更新候选而非缺陷
	if number != "" {
		if exist, ok := existing[number]; ok {
			result.Status = model.Worse(result.Status, model.StatusWarning)
			result.Messages = append(result.Messages,
				fmt.Sprintf("Goal number %s already exists and will be treated as an update candidate", number))
			id := exist.ID
			result.ExistingGoalID = &id
		}
	}

	// 6. 父级缺失：可自动修复
	if g.Level > goalnum.LevelObjective && number != "" {
		if parent, ok := goalnum.ParentNumber(number); ok {
			if !numberInBatch(parent, counts) && existing[parent] == nil {
				result.Status = model.Worse(result.Status, model.StatusFixable)
				result.Messages = append(result.Messages,
					fmt.Sprintf("Parent goal %s not found in this import or existing goals", parent))
				result.Suggestions = append(result.Suggestions, SuggestParent(parent, g.OwnerName))
			}
		}
	}

	// 7. 负责人缺失
	if strings.TrimSpace(g.OwnerName) == "" {
		result.Status = model.Worse(result.Status, model.StatusWarning)
		result.Messages = append(result.Messages, "Missing owner name")
	}

	// 8. 无指标（顶级战略目标豁免）
	if len(g.Metrics) == 0 && g.Level > goalnum.LevelObjective {
		result.Status = model.Worse(result.Status, model.StatusWarning)
		result.Messages = append(result.Messages, "No metrics attached")
	}

	return result
}

// SuggestParent 为缺失的父级编号生成占位建议
func SuggestParent(parentNumber, ownerName string) model.AutoFixSuggestion {
	level := goalnum.Level(parentNumber)
	label := goalnum.LevelLabel(level)
	return model.AutoFixSuggestion{
		Type:           model.FixCreateMissingParent,
		MissingNumber:  parentNumber,
		SuggestedTitle: fmt.Sprintf("%s %s (Please rename)", label, parentNumber),
		SuggestedOwner: ownerName,
		Level:          level,
		Action:         fmt.Sprintf("Create placeholder %s %s", label, parentNumber),
	}
}

// ValidateMetric 校验单条解析指标
func ValidateMetric(m model.ParsedMetric) model.MetricValidationResult {
	result := model.MetricValidationResult{
		Status:   model.StatusValid,
		Messages: make([]string, 0),
	}

	if strings.TrimSpace(m.Name) == "" {
		result.Status = model.Worse(result.Status, model.StatusError)
		result.Messages = append(result.Messages, "Missing metric name")
	}
	if len(m.TimeSeries) == 0 {
		result.Status = model.Worse(result.Status, model.StatusWarning)
		result.Messages = append(result.Messages, "No time series data")
	}

	return result
}

// Summarize 汇总整批校验结果，无 error 行即可提交
func Summarize(results []model.ValidationResult) model.ValidationSummary {
	summary := model.ValidationSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case model.StatusError:
			summary.Errors++
		case model.StatusFixable:
			summary.Fixable++
		case model.StatusWarning:
			summary.Warnings++
		default:
			summary.Valid++
		}
	}
	summary.CanImport = summary.Errors == 0
	return summary
}

// numberCounts 统计批内各编号出现次数
func numberCounts(batch []model.ParsedGoal) map[string]int {
	counts := make(map[string]int, len(batch))
	for _, g := range batch {
		number := strings.TrimSpace(g.GoalNumber)
		if number != "" {
			counts[number]++
		}
	}
	return counts
}

func numberInBatch(number string, counts map[string]int) bool {
	return counts[number] > 0
}
