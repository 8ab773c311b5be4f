package autofix

import (
	"fmt"
	"sort"
	"strings"

	"planbook/internal/goalnum"
	"planbook/internal/model"
	"planbook/internal/service/validate"
	"planbook/internal/store"
)

// PlaceholderDescription 占位目标的固定描述文本
const PlaceholderDescription = "Auto-generated placeholder goal - Please update"

// Planner 缺失上级目标的检测与补全
type Planner struct {
	store *store.Store
}

// NewPlanner 创建修复规划器
func NewPlanner(st *store.Store) *Planner {
	return &Planner{store: st}
}

// DetectMissingParents 单层检测：找出批内所有缺失的直接父级，按编号去重
func (p *Planner) DetectMissingParents(staged []*model.StagedGoal, existing validate.ExistingGoals) []model.AutoFixSuggestion {
	numbers := stagedNumbers(staged)
	seen := make(map[string]bool)
	suggestions := make([]model.AutoFixSuggestion, 0)

	for _, g := range staged {
		number := strings.TrimSpace(g.GoalNumber)
		if number == "" || g.Level <= goalnum.LevelObjective {
			continue
		}
		parent, ok := goalnum.ParentNumber(number)
		if !ok || numbers[parent] || existing[parent] != nil || seen[parent] {
			continue
		}
		seen[parent] = true
		suggestions = append(suggestions, validate.SuggestParent(parent, g.OwnerName))
	}

	sortSuggestions(suggestions)
	return suggestions
}

// DetectMissingAncestors 递归检测：沿每个目标的祖先链向上，
// 为所有既不在批内也未持久化的祖先生成建议，直到碰到已存在的祖先或根
// 结果按编号自然序排列，应用时祖先天然先于后代
func (p *Planner) DetectMissingAncestors(staged []*model.StagedGoal, existing validate.ExistingGoals) []model.AutoFixSuggestion {
	numbers := stagedNumbers(staged)
	seen := make(map[string]bool)
	suggestions := make([]model.AutoFixSuggestion, 0)

	for _, g := range staged {
		number := strings.TrimSpace(g.GoalNumber)
		if number == "" {
			continue
		}

		for {
			parent, ok := goalnum.ParentNumber(number)
			if !ok {
				break // 到根
			}
			if numbers[parent] || existing[parent] != nil {
				break // 碰到已存在的祖先
			}
			if seen[parent] {
				break // 该链更上方已在此前的遍历中处理
			}
			seen[parent] = true
			suggestions = append(suggestions, validate.SuggestParent(parent, g.OwnerName))
			number = parent
		}
	}

	sortSuggestions(suggestions)
	return suggestions
}

// Synthesize 由建议合成一条待审核目标行（行号 -1 标记非表格来源）
func Synthesize(sessionID string, s model.AutoFixSuggestion) *model.StagedGoal {
	title := s.SuggestedTitle
	if title == "" {
		title = fmt.Sprintf("Goal %s", s.MissingNumber)
	}
	return &model.StagedGoal{
		SessionID:       sessionID,
		RowNumber:       model.SyntheticRowNumber,
		RawCells:        make([]string, 0),
		Hierarchy:       fmt.Sprintf("|%s|", s.MissingNumber),
		GoalNumber:      s.MissingNumber,
		Title:           title,
		Description:     PlaceholderDescription,
		Level:           s.Level,
		OwnerName:       s.SuggestedOwner,
		Status:          model.StatusValid,
		Messages:        []string{"Auto-generated placeholder"},
		Action:          model.ActionCreate,
		IsAutoGenerated: true,
		Suggestions:     make([]model.AutoFixSuggestion, 0),
	}
}

// Apply 应用单条建议，插入合成行
func (p *Planner) Apply(sessionID string, s model.AutoFixSuggestion) (*model.StagedGoal, error) {
	g := Synthesize(sessionID, s)
	if err := p.store.InsertStagedGoal(g); err != nil {
		return nil, fmt.Errorf("failed to apply fix for %s: %w", s.MissingNumber, err)
	}
	return g, nil
}

// ApplyAll 批量应用建议，一次事务插入全部合成行
func (p *Planner) ApplyAll(sessionID string, suggestions []model.AutoFixSuggestion) ([]*model.StagedGoal, error) {
	goals := make([]*model.StagedGoal, 0, len(suggestions))
	for _, s := range suggestions {
		goals = append(goals, Synthesize(sessionID, s))
	}
	if err := p.store.BatchInsertStagedGoals(goals); err != nil {
		return nil, fmt.Errorf("failed to apply fixes: %w", err)
	}
	return goals, nil
}

func stagedNumbers(staged []*model.StagedGoal) map[string]bool {
	numbers := make(map[string]bool, len(staged))
	for _, g := range staged {
		number := strings.TrimSpace(g.GoalNumber)
		if number != "" {
			numbers[number] = true
		}
	}
	return numbers
}

func sortSuggestions(suggestions []model.AutoFixSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return goalnum.Less(suggestions[i].MissingNumber, suggestions[j].MissingNumber)
	})
}
