package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"planbook/internal/model"
	"planbook/internal/store"
)

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "planbook.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	h := NewHandler(st, 0, "")
	r := gin.New()
	api := r.Group("/api")
	h.RegisterRoutes(api)

	return r, st
}

func seedSession(t *testing.T, st *store.Store) (*model.District, *model.ImportSession) {
	t.Helper()

	district, err := st.CreateDistrict("Riverside USD", "riverside")
	if err != nil {
		t.Fatalf("create district: %v", err)
	}

	sess := &model.ImportSession{
		ID:         "sess-test-1",
		DistrictID: district.ID,
		Filename:   "plan.xlsx",
		FileSize:   1024,
		Status:     model.SessionParsed,
	}
	if err := st.CreateSession(sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return district, sess
}

func TestUpdateStagedGoal_Patch(t *testing.T) {
	r, st := newTestServer(t)
	_, sess := seedSession(t, st)

	staged := &model.StagedGoal{
		SessionID:  sess.ID,
		RowNumber:  2,
		Hierarchy:  "|1.1|",
		GoalNumber: "1.1",
		Title:      "Improve literacy",
		Level:      1,
		Status:     model.StatusValid,
		Action:     model.ActionCreate,
	}
	if err := st.InsertStagedGoal(staged); err != nil {
		t.Fatalf("insert staged goal: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"title":  "Improve K-3 literacy",
		"action": "update",
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/staged-goals/"+strconv.FormatInt(staged.ID, 10), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	got, err := st.GetStagedGoal(staged.ID)
	if err != nil {
		t.Fatalf("get staged goal: %v", err)
	}
	if got.Title != "Improve K-3 literacy" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if got.Action != model.ActionUpdate {
		t.Errorf("action not updated: %q", got.Action)
	}
	// 未提交的字段保持原值
	if got.GoalNumber != "1.1" {
		t.Errorf("goal number should be unchanged, got %q", got.GoalNumber)
	}
}

func TestBulkSetAction(t *testing.T) {
	r, st := newTestServer(t)
	_, sess := seedSession(t, st)

	for i, number := range []string{"1", "1.1", "1.2"} {
		staged := &model.StagedGoal{
			SessionID:  sess.ID,
			RowNumber:  i + 2,
			GoalNumber: number,
			Title:      "Goal " + number,
			Status:     model.StatusValid,
			Action:     model.ActionCreate,
		}
		if err := st.InsertStagedGoal(staged); err != nil {
			t.Fatalf("insert staged goal: %v", err)
		}
	}

	body, _ := json.Marshal(map[string]string{"action": "skip"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sess.ID+"/staged/bulk-action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	goals, err := st.ListStagedGoals(sess.ID)
	if err != nil {
		t.Fatalf("list staged goals: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("expected 3 staged goals, got %d", len(goals))
	}
	for _, g := range goals {
		if g.Action != model.ActionSkip {
			t.Errorf("row %s action = %q, want skip", g.GoalNumber, g.Action)
		}
	}
}

func TestBulkSetAction_RejectsUnknownAction(t *testing.T) {
	r, st := newTestServer(t)
	_, sess := seedSession(t, st)

	body, _ := json.Marshal(map[string]string{"action": "delete"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sess.ID+"/staged/bulk-action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestListStaged(t *testing.T) {
	r, st := newTestServer(t)
	_, sess := seedSession(t, st)

	staged := &model.StagedGoal{
		SessionID:  sess.ID,
		RowNumber:  2,
		GoalNumber: "1",
		Title:      "Student Achievement",
		Status:     model.StatusValid,
		Action:     model.ActionCreate,
	}
	if err := st.InsertStagedGoal(staged); err != nil {
		t.Fatalf("insert staged goal: %v", err)
	}
	metric := &model.StagedMetric{
		SessionID:    sess.ID,
		StagedGoalID: staged.ID,
		RowNumber:    2,
		Name:         "Reading proficiency",
		Status:       model.StatusValid,
		Action:       model.ActionCreate,
	}
	if err := st.BatchInsertStagedMetrics([]*model.StagedMetric{metric}); err != nil {
		t.Fatalf("insert staged metric: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/staged", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	var resp StagedRowsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Goals) != 1 || len(resp.Metrics) != 1 {
		t.Fatalf("expected 1 goal and 1 metric, got %d/%d", len(resp.Goals), len(resp.Metrics))
	}
	if resp.Metrics[0].StagedGoalID != resp.Goals[0].ID {
		t.Errorf("metric not linked to staged goal")
	}
}
