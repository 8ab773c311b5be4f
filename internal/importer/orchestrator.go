package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"planbook/internal/goalnum"
	"planbook/internal/model"
	"planbook/internal/service/excel"
	"planbook/internal/service/validate"
	"planbook/internal/store"
)

// Orchestrator 导入编排器：会话生命周期、暂存投影与按依赖序提交
type Orchestrator struct {
	store *store.Store
}

// NewOrchestrator 创建导入编排器
func NewOrchestrator(st *store.Store) *Orchestrator {
	return &Orchestrator{store: st}
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`  // start/goal/metric/done/error
	Stage     string      `json:"stage"` // goals/metrics
	Current   int         `json:"current"`
	Total     int         `json:"total"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ProgressFunc 调用方提供的进度回调，逐行同步调用
type ProgressFunc func(ProgressEvent)

// CreateSession 创建导入会话（状态 uploaded）
func (o *Orchestrator) CreateSession(districtID int64, filename string, fileSize int64, uploadedBy string) (*model.ImportSession, error) {
	sess := &model.ImportSession{
		ID:         uuid.New().String(),
		DistrictID: districtID,
		Filename:   filename,
		FileSize:   fileSize,
		Status:     model.SessionUploaded,
		UploadedBy: uploadedBy,
	}
	if err := o.store.CreateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateSessionStatus 推进会话状态
func (o *Orchestrator) UpdateSessionStatus(id string, status model.SessionStatus, errorMessage string) error {
	return o.store.UpdateSessionStatus(id, status, errorMessage)
}

// ProcessUpload 上传入口：建会话 → 解析首个工作表 → 校验 → 暂存
// 解析失败属于致命错误，会话直接标记 failed
func (o *Orchestrator) ProcessUpload(districtID int64, filename string, fileSize int64, uploadedBy string, reader io.Reader) (*model.ImportSession, *model.ValidationSummary, error) {
	sess, err := o.CreateSession(districtID, filename, fileSize, uploadedBy)
	if err != nil {
		return nil, nil, err
	}

	if err := o.store.UpdateSessionStatus(sess.ID, model.SessionParsing, ""); err != nil {
		return sess, nil, err
	}

	parser := excel.NewParser()
	if err := parser.LoadFile(reader); err != nil {
		o.failSession(sess.ID, err)
		return sess, nil, err
	}
	defer parser.Close()

	result, err := parser.ParseFirstSheet()
	if err != nil {
		o.failSession(sess.ID, err)
		return sess, nil, err
	}

	if err := o.store.UpdateSessionStatus(sess.ID, model.SessionParsed, ""); err != nil {
		return sess, nil, err
	}

	summary, err := o.Stage(sess, result)
	if err != nil {
		o.failSession(sess.ID, err)
		return sess, nil, err
	}

	return sess, &summary, nil
}

// Stage 暂存投影：校验整批后写入待审核行，不触碰正式存储
func (o *Orchestrator) Stage(sess *model.ImportSession, result *model.ParseResult) (model.ValidationSummary, error) {
	existingList, err := o.store.ListGoals(sess.DistrictID)
	if err != nil {
		return model.ValidationSummary{}, err
	}
	existing := validate.BuildExisting(existingList)

	results := validate.ValidateBatch(result.Goals, existing)

	stagedGoals := make([]*model.StagedGoal, 0, len(result.Goals))
	for i, g := range result.Goals {
		r := results[i]
		staged := &model.StagedGoal{
			SessionID:   sess.ID,
			RowNumber:   g.RowNumber,
			RawCells:    g.RawCells,
			Hierarchy:   g.Hierarchy,
			GoalNumber:  g.GoalNumber,
			Title:       g.Title,
			Description: g.Description,
			Level:       g.Level,
			OwnerName:   g.OwnerName,
			Status:      r.Status,
			Messages:    r.Messages,
			Action:      model.ActionCreate,
			Suggestions: r.Suggestions,
		}
		if r.ExistingGoalID != nil {
			staged.IsMapped = true
			staged.MappedGoalID = r.ExistingGoalID
		}
		stagedGoals = append(stagedGoals, staged)
	}

	if err := o.store.BatchInsertStagedGoals(stagedGoals); err != nil {
		return model.ValidationSummary{}, err
	}

	stagedMetrics := make([]*model.StagedMetric, 0)
	for i, g := range result.Goals {
		for _, m := range g.Metrics {
			mr := validate.ValidateMetric(m)
			stagedMetrics = append(stagedMetrics, &model.StagedMetric{
				SessionID:    sess.ID,
				StagedGoalID: stagedGoals[i].ID,
				RowNumber:    m.RowNumber,
				Name:         m.Name,
				Description:  m.Description,
				Baseline:     m.Baseline,
				UnitSymbol:   m.UnitSymbol,
				Frequency:    m.Frequency,
				TimeSeries:   m.TimeSeries,
				Status:       mr.Status,
				Messages:     mr.Messages,
				Action:       model.ActionCreate,
			})
		}
	}

	if err := o.store.BatchInsertStagedMetrics(stagedMetrics); err != nil {
		return model.ValidationSummary{}, err
	}

	return validate.Summarize(results), nil
}

// ExecuteImport 提交阶段：按层级升序逐行写入正式存储
//
// 排序只按层级分层，父节点总在子节点之前处理；同层之间不再做
// 拓扑排序，跨多根批次的同层前向引用不在保护范围内（已知限制）。
// 单行失败计入 errors 并跳过，不中断整体提交；无回滚
func (o *Orchestrator) ExecuteImport(sessionID string, progress ProgressFunc) (*model.ImportSummary, error) {
	sess, err := o.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	if err := o.store.UpdateSessionStatus(sessionID, model.SessionImporting, ""); err != nil {
		return nil, err
	}

	allGoals, err := o.store.ListStagedGoals(sessionID)
	if err != nil {
		o.failSession(sessionID, err)
		return nil, err
	}
	allMetrics, err := o.store.ListStagedMetrics(sessionID)
	if err != nil {
		o.failSession(sessionID, err)
		return nil, err
	}

	// 过滤掉跳过行与校验失败行
	eligible := make([]*model.StagedGoal, 0, len(allGoals))
	for _, g := range allGoals {
		if g.Action == model.ActionSkip || g.Status == model.StatusError {
			continue
		}
		eligible = append(eligible, g)
	}

	// 层级升序：父节点先于子节点获得持久化 ID
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Level < eligible[j].Level
	})

	// 同批内编号 → 暂存行 ID，用于父级解析
	stagedByNumber := make(map[string]int64, len(eligible))
	for _, g := range eligible {
		number := strings.TrimSpace(g.GoalNumber)
		if number != "" {
			if _, ok := stagedByNumber[number]; !ok {
				stagedByNumber[number] = g.ID
			}
		}
	}

	summary := &model.ImportSummary{}
	idMap := make(map[int64]int64, len(eligible)) // 暂存 ID → 持久化 ID

	for i, g := range eligible {
		o.report(progress, ProgressEvent{
			Type:      "goal",
			Stage:     "goals",
			Current:   i + 1,
			Total:     len(eligible),
			Message:   fmt.Sprintf("Importing goal %s", g.GoalNumber),
			Timestamp: time.Now(),
		})

		if g.Action == model.ActionUpdate && g.IsMapped && g.MappedGoalID != nil {
			if err := o.store.UpdateGoalFields(*g.MappedGoalID, g.Title, g.Description, g.OwnerName); err != nil {
				summary.Errors++
				continue
			}
			idMap[g.ID] = *g.MappedGoalID
			summary.GoalsUpdated++
			continue
		}

		// 非顶级行解析不到父级即按单行失败处理
		parentID := o.resolveParent(sess.DistrictID, g.GoalNumber, stagedByNumber, idMap)
		if g.Level > goalnum.LevelObjective && parentID == nil {
			summary.Errors++
			continue
		}

		goal := &model.Goal{
			DistrictID:  sess.DistrictID,
			ParentID:    parentID,
			GoalNumber:  g.GoalNumber,
			Title:       g.Title,
			Description: g.Description,
			Level:       g.Level,
			OwnerName:   g.OwnerName,
			Position:    i,
		}
		id, err := o.store.InsertGoal(goal)
		if err != nil {
			summary.Errors++
			continue
		}
		idMap[g.ID] = id
		summary.GoalsCreated++
	}

	// 指标提交：仅限所属目标已成功解析出持久化 ID 的行
	eligibleMetrics := 0
	for _, m := range allMetrics {
		if m.Action != model.ActionSkip && m.Status != model.StatusError {
			eligibleMetrics++
		}
	}

	metricIdx := 0
	for _, m := range allMetrics {
		if m.Action == model.ActionSkip || m.Status == model.StatusError {
			continue
		}
		metricIdx++
		o.report(progress, ProgressEvent{
			Type:      "metric",
			Stage:     "metrics",
			Current:   metricIdx,
			Total:     eligibleMetrics,
			Message:   fmt.Sprintf("Importing metric %s", m.Name),
			Timestamp: time.Now(),
		})

		goalID, ok := idMap[m.StagedGoalID]
		if !ok {
			continue
		}

		metric := &model.Metric{
			GoalID:      goalID,
			Name:        m.Name,
			Description: m.Description,
			Baseline:    m.Baseline,
			UnitSymbol:  m.UnitSymbol,
			Frequency:   NormalizeFrequency(m.Frequency),
			TimeSeries:  m.TimeSeries,
		}
		if _, err := o.store.InsertMetric(metric); err != nil {
			summary.Errors++
			continue
		}
		summary.MetricsCreated++
	}

	if err := o.store.SetSessionSummary(sessionID, summary); err != nil {
		o.failSession(sessionID, err)
		return nil, err
	}
	if err := o.store.UpdateSessionStatus(sessionID, model.SessionCompleted, ""); err != nil {
		return nil, err
	}

	o.report(progress, ProgressEvent{
		Type:      "done",
		Stage:     "goals",
		Current:   len(eligible),
		Total:     len(eligible),
		Message:   "Import completed",
		Data:      summary,
		Timestamp: time.Now(),
	})

	return summary, nil
}

// resolveParent 解析父级持久化 ID：先查本次提交已处理的映射，再查正式存储
func (o *Orchestrator) resolveParent(districtID int64, number string, stagedByNumber map[string]int64, idMap map[int64]int64) *int64 {
	parentNumber, ok := goalnum.ParentNumber(strings.TrimSpace(number))
	if !ok {
		return nil
	}

	if stagedID, ok := stagedByNumber[parentNumber]; ok {
		if persistedID, done := idMap[stagedID]; done {
			return &persistedID
		}
	}

	existing, err := o.store.GetGoalByNumber(districtID, parentNumber)
	if err != nil || existing == nil {
		return nil
	}
	return &existing.ID
}

// failSession 尽力把会话标记为 failed，保留原始错误
func (o *Orchestrator) failSession(id string, cause error) {
	_ = o.store.UpdateSessionStatus(id, model.SessionFailed, cause.Error())
}

func (o *Orchestrator) report(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

// NormalizeFrequency 频率文本归一化，不认识的一律按月
func NormalizeFrequency(text string) model.Frequency {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "":
		return model.FrequencyMonthly
	case strings.Contains(lower, "dail"):
		return model.FrequencyDaily
	case strings.Contains(lower, "week"):
		return model.FrequencyWeekly
	case strings.Contains(lower, "annual") || strings.Contains(lower, "year"):
		return model.FrequencyYearly
	case strings.Contains(lower, "quarter") || strings.Contains(lower, "q"):
		return model.FrequencyQuarterly
	case strings.Contains(lower, "month"):
		return model.FrequencyMonthly
	default:
		return model.FrequencyMonthly
	}
}
