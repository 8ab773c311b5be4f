package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"planbook/internal/importer"
	"planbook/internal/model"
	"planbook/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestDistrict(t *testing.T, st *store.Store) int64 {
	t.Helper()
	d, err := st.CreateDistrict("Test District", "test")
	if err != nil {
		t.Fatalf("CreateDistrict failed: %v", err)
	}
	return d.ID
}

// buildPlanFile 按列约定构造计划表格文件内容
func buildPlanFile(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	header := make([]interface{}, 24)
	header[0] = "Hierarchy"
	header[1] = "Title"
	header[2] = "Owner"
	header[3] = "Measure"
	header[4] = "Baseline"
	header[5] = "2024-06-01"
	header[22] = "Symbol"
	header[23] = "Frequency"

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func upload(t *testing.T, o *importer.Orchestrator, districtID int64, rows [][]interface{}) (*model.ImportSession, *model.ValidationSummary) {
	t.Helper()
	sess, summary, err := o.ProcessUpload(districtID, "plan.xlsx", 0, "admin", buildPlanFile(t, rows))
	if err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}
	return sess, summary
}

func TestProcessUpload_StagesRows(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	sess, summary, err := o.ProcessUpload(districtID, "plan.xlsx", 123, "admin", buildPlanFile(t, [][]interface{}{
		{"|1|", "Objective A", "Jane", ""},
		{"", "", "", "Proficiency", "75%", "80"},
		{"|1.1|", "Reading goal", "Lee", "Reading rate", "60", "70"},
	}))
	if err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}

	got, err := st.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != model.SessionParsed {
		t.Fatalf("Status=%q, want parsed", got.Status)
	}
	if got.Filename != "plan.xlsx" || got.FileSize != 123 {
		t.Fatalf("session=%+v", got)
	}

	goals, err := st.ListStagedGoals(sess.ID)
	if err != nil {
		t.Fatalf("ListStagedGoals failed: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("len(staged goals)=%d, want 2", len(goals))
	}

	metrics, err := st.ListStagedMetrics(sess.ID)
	if err != nil {
		t.Fatalf("ListStagedMetrics failed: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("len(staged metrics)=%d, want 2", len(metrics))
	}
	if metrics[0].StagedGoalID != goals[0].ID || metrics[1].StagedGoalID != goals[1].ID {
		t.Fatalf("metric links wrong: %d->%d, %d->%d", metrics[0].StagedGoalID, goals[0].ID, metrics[1].StagedGoalID, goals[1].ID)
	}

	if summary.Total != 2 || !summary.CanImport {
		t.Fatalf("summary=%+v", summary)
	}
}

func TestProcessUpload_UnreadableFileFailsSession(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	sess, _, err := o.ProcessUpload(districtID, "junk.xlsx", 4, "admin", strings.NewReader("not an excel file"))
	if err == nil {
		t.Fatalf("ProcessUpload should fail on junk input")
	}

	got, gerr := st.GetSession(sess.ID)
	if gerr != nil {
		t.Fatalf("GetSession failed: %v", gerr)
	}
	if got.Status != model.SessionFailed {
		t.Fatalf("Status=%q, want failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Fatalf("failed session should carry an error message")
	}
	if got.CompletedAt == nil {
		t.Fatalf("terminal session should stamp completion time")
	}
}

func TestExecuteImport_ParentResolvedBeforeChild(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	// 表格内子目标排在父目标之前，提交按层级重排
	sess, _ := upload(t, o, districtID, [][]interface{}{
		{"|1.1.1|", "Sub goal", "Kim", "Rate", "50", "55"},
		{"|1.1|", "Goal", "Lee", "Rate", "60", "65"},
		{"|1|", "Objective", "Jane", ""},
	})

	var events []importer.ProgressEvent
	summary, err := o.ExecuteImport(sess.ID, func(e importer.ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("ExecuteImport failed: %v", err)
	}

	if summary.GoalsCreated != 3 || summary.Errors != 0 {
		t.Fatalf("summary=%+v", summary)
	}
	if summary.MetricsCreated != 2 {
		t.Fatalf("MetricsCreated=%d, want 2", summary.MetricsCreated)
	}

	objective, err := st.GetGoalByNumber(districtID, "1")
	if err != nil || objective == nil {
		t.Fatalf("objective not found: %v", err)
	}
	if objective.ParentID != nil {
		t.Fatalf("objective should have no parent")
	}

	mid, err := st.GetGoalByNumber(districtID, "1.1")
	if err != nil || mid == nil {
		t.Fatalf("goal 1.1 not found: %v", err)
	}
	if mid.ParentID == nil || *mid.ParentID != objective.ID {
		t.Fatalf("goal 1.1 parent=%v, want %d", mid.ParentID, objective.ID)
	}

	leaf, err := st.GetGoalByNumber(districtID, "1.1.1")
	if err != nil || leaf == nil {
		t.Fatalf("goal 1.1.1 not found: %v", err)
	}
	if leaf.ParentID == nil || *leaf.ParentID != mid.ID {
		t.Fatalf("goal 1.1.1 parent=%v, want %d", leaf.ParentID, mid.ID)
	}

	// 会话进入终态并带统计
	got, err := st.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != model.SessionCompleted || got.Summary == nil {
		t.Fatalf("session=%+v", got)
	}
	if got.Summary.GoalsCreated != 3 {
		t.Fatalf("stored summary=%+v", got.Summary)
	}

	// 每个目标、每条指标各一条进度事件，最后一条 done
	if len(events) != 6 {
		t.Fatalf("len(events)=%d, want 6", len(events))
	}
	if events[0].Current != 1 || events[0].Total != 3 || events[0].Stage != "goals" {
		t.Fatalf("events[0]=%+v", events[0])
	}
	if events[3].Stage != "metrics" || events[3].Type != "metric" || events[3].Total != 2 {
		t.Fatalf("events[3]=%+v", events[3])
	}
	if events[4].Current != 2 {
		t.Fatalf("events[4]=%+v", events[4])
	}
	if events[len(events)-1].Type != "done" {
		t.Fatalf("last event=%+v", events[len(events)-1])
	}
}

func TestExecuteImport_SkipAndErrorRowsExcluded(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	sess, _ := upload(t, o, districtID, [][]interface{}{
		{"|1|", "Objective A", "Jane", ""},
		{"|2|", "Objective B", "Jane", ""},
		{"|3|", "", "Jane", ""}, // 标题缺失 → error 行
	})

	staged, err := st.ListStagedGoals(sess.ID)
	if err != nil {
		t.Fatalf("ListStagedGoals failed: %v", err)
	}
	// 人工把 Objective B 标记为跳过
	for _, g := range staged {
		if g.GoalNumber == "2" {
			g.Action = model.ActionSkip
			if err := st.UpdateStagedGoal(g); err != nil {
				t.Fatalf("UpdateStagedGoal failed: %v", err)
			}
		}
	}

	summary, err := o.ExecuteImport(sess.ID, nil)
	if err != nil {
		t.Fatalf("ExecuteImport failed: %v", err)
	}
	if summary.GoalsCreated != 1 {
		t.Fatalf("GoalsCreated=%d, want 1", summary.GoalsCreated)
	}

	n, err := st.CountGoals(districtID)
	if err != nil {
		t.Fatalf("CountGoals failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("persisted goals=%d, want 1", n)
	}
}

func TestExecuteImport_UpdateMappedGoal(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	existingID, err := st.InsertGoal(&model.Goal{
		DistrictID: districtID,
		GoalNumber: "1",
		Title:      "Old title",
		OwnerName:  "Old owner",
	})
	if err != nil {
		t.Fatalf("InsertGoal failed: %v", err)
	}

	sess, summary := upload(t, o, districtID, [][]interface{}{
		{"|1|", "New title", "Jane", ""},
	})
	// 编号冲突只是告警，不阻塞提交
	if summary.Warnings != 1 || !summary.CanImport {
		t.Fatalf("summary=%+v", summary)
	}

	staged, err := st.ListStagedGoals(sess.ID)
	if err != nil {
		t.Fatalf("ListStagedGoals failed: %v", err)
	}
	if !staged[0].IsMapped || staged[0].MappedGoalID == nil || *staged[0].MappedGoalID != existingID {
		t.Fatalf("staged row should be mapped to existing goal, got %+v", staged[0])
	}

	staged[0].Action = model.ActionUpdate
	if err := st.UpdateStagedGoal(staged[0]); err != nil {
		t.Fatalf("UpdateStagedGoal failed: %v", err)
	}

	result, err := o.ExecuteImport(sess.ID, nil)
	if err != nil {
		t.Fatalf("ExecuteImport failed: %v", err)
	}
	if result.GoalsUpdated != 1 || result.GoalsCreated != 0 {
		t.Fatalf("result=%+v", result)
	}

	updated, err := st.GetGoal(existingID)
	if err != nil || updated == nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if updated.Title != "New title" || updated.OwnerName != "Jane" {
		t.Fatalf("updated=%+v", updated)
	}
}

func TestExecuteImport_UnresolvedParentCountsError(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	// 2.1 的父级缺失且未应用修复：提交时单行失败，不影响会话完成
	sess, _ := upload(t, o, districtID, [][]interface{}{
		{"|1|", "Objective A", "Jane", ""},
		{"|2.1|", "Orphan goal", "Lee", "Rate", "10", "20"},
	})

	summary, err := o.ExecuteImport(sess.ID, nil)
	if err != nil {
		t.Fatalf("ExecuteImport failed: %v", err)
	}
	if summary.GoalsCreated != 1 || summary.Errors != 1 {
		t.Fatalf("summary=%+v", summary)
	}
	// 孤儿行的指标因目标未解析而被跳过
	if summary.MetricsCreated != 0 {
		t.Fatalf("MetricsCreated=%d, want 0", summary.MetricsCreated)
	}

	got, err := st.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != model.SessionCompleted {
		t.Fatalf("Status=%q, want completed despite row errors", got.Status)
	}
}

func TestExecuteImport_RerunIsNotIdempotent(t *testing.T) {
	st := newTestStore(t)
	districtID := newTestDistrict(t, st)
	o := importer.NewOrchestrator(st)

	sess, _ := upload(t, o, districtID, [][]interface{}{
		{"|1|", "Objective A", "Jane", ""},
	})

	first, err := o.ExecuteImport(sess.ID, nil)
	if err != nil {
		t.Fatalf("first ExecuteImport failed: %v", err)
	}
	if first.GoalsCreated != 1 || first.Errors != 0 {
		t.Fatalf("first=%+v", first)
	}

	// 已完成的会话未做防重：再次提交会重新尝试插入，
	// 行级动作未重置时由编号唯一约束逐行拒绝并计入 errors
	second, err := o.ExecuteImport(sess.ID, nil)
	if err != nil {
		t.Fatalf("second ExecuteImport failed: %v", err)
	}
	if second.GoalsCreated != 0 || second.Errors != 1 {
		t.Fatalf("second=%+v", second)
	}

	n, err := st.CountGoals(districtID)
	if err != nil {
		t.Fatalf("CountGoals failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("persisted goals=%d, want 1", n)
	}
}

func TestNormalizeFrequency(t *testing.T) {
	cases := []struct {
		text string
		want model.Frequency
	}{
		{"FY Annual Report", model.FrequencyYearly},
		{"Q1 data", model.FrequencyQuarterly},
		{"Monthly", model.FrequencyMonthly},
		{"per week", model.FrequencyWeekly},
		{"Daily check", model.FrequencyDaily},
		{"something else", model.FrequencyMonthly},
		{"", model.FrequencyMonthly},
	}

	for _, c := range cases {
		if got := importer.NormalizeFrequency(c.text); got != c.want {
			t.Fatalf("NormalizeFrequency(%q)=%q, want %q", c.text, got, c.want)
		}
	}
}
