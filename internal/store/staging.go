package store

import (
	"database/sql"
	"fmt"

	"planbook/internal/model"
)

// BatchInsertStagedGoals 批量插入待审核目标行，回填每行的新 ID
func (s *Store) BatchInsertStagedGoals(goals []*model.StagedGoal) error {
	if len(goals) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO staged_goals (
			session_id, row_number, raw_cells, hierarchy, goal_number,
			title, description, level, owner_name,
			validation_status, validation_messages,
			is_mapped, mapped_goal_id, action, is_auto_generated, suggestions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range goals {
		res, err := stmt.Exec(
			g.SessionID, g.RowNumber, marshalJSON(g.RawCells), g.Hierarchy, g.GoalNumber,
			g.Title, g.Description, g.Level, g.OwnerName,
			string(g.Status), marshalJSON(g.Messages),
			g.IsMapped, g.MappedGoalID, string(g.Action), g.IsAutoGenerated, marshalJSON(g.Suggestions),
		)
		if err != nil {
			return fmt.Errorf("failed to insert staged goal (row %d): %w", g.RowNumber, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get staged goal id: %w", err)
		}
		g.ID = id
	}

	return tx.Commit()
}

// InsertStagedGoal 插入单条待审核目标行（自动修复使用）
func (s *Store) InsertStagedGoal(g *model.StagedGoal) error {
	return s.BatchInsertStagedGoals([]*model.StagedGoal{g})
}

// BatchInsertStagedMetrics 批量插入待审核指标行
func (s *Store) BatchInsertStagedMetrics(metrics []*model.StagedMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO staged_metrics (
			session_id, staged_goal_id, row_number, name, description,
			baseline, unit_symbol, frequency, time_series,
			validation_status, validation_messages, action
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range metrics {
		res, err := stmt.Exec(
			m.SessionID, m.StagedGoalID, m.RowNumber, m.Name, m.Description,
			m.Baseline, m.UnitSymbol, m.Frequency, marshalJSON(m.TimeSeries),
			string(m.Status), marshalJSON(m.Messages), string(m.Action),
		)
		if err != nil {
			return fmt.Errorf("failed to insert staged metric (row %d): %w", m.RowNumber, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get staged metric id: %w", err)
		}
		m.ID = id
	}

	return tx.Commit()
}

func scanStagedGoal(rows *sql.Rows) (*model.StagedGoal, error) {
	g := &model.StagedGoal{}
	var rawCells, status, messages, action, suggestions string
	if err := rows.Scan(
		&g.ID, &g.SessionID, &g.RowNumber, &rawCells, &g.Hierarchy, &g.GoalNumber,
		&g.Title, &g.Description, &g.Level, &g.OwnerName,
		&status, &messages, &g.IsMapped, &g.MappedGoalID, &action, &g.IsAutoGenerated, &suggestions,
	); err != nil {
		return nil, fmt.Errorf("failed to scan staged goal: %w", err)
	}
	g.RawCells = make([]string, 0)
	unmarshalJSON(rawCells, &g.RawCells)
	g.Status = model.ValidationStatus(status)
	g.Messages = make([]string, 0)
	unmarshalJSON(messages, &g.Messages)
	g.Action = model.StagedAction(action)
	g.Suggestions = make([]model.AutoFixSuggestion, 0)
	unmarshalJSON(suggestions, &g.Suggestions)
	return g, nil
}

const stagedGoalColumns = `
	id, session_id, row_number, raw_cells, hierarchy, goal_number,
	title, description, level, owner_name,
	validation_status, validation_messages, is_mapped, mapped_goal_id,
	action, is_auto_generated, suggestions
`

// ListStagedGoals 列出会话的待审核目标行，按插入顺序
func (s *Store) ListStagedGoals(sessionID string) ([]*model.StagedGoal, error) {
	rows, err := s.db.Query(`
		SELECT `+stagedGoalColumns+`
		FROM staged_goals WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged goals: %w", err)
	}
	defer rows.Close()

	result := make([]*model.StagedGoal, 0)
	for rows.Next() {
		g, err := scanStagedGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// GetStagedGoal 按 ID 查询待审核目标行，不存在时返回 nil
func (s *Store) GetStagedGoal(id int64) (*model.StagedGoal, error) {
	rows, err := s.db.Query(`
		SELECT `+stagedGoalColumns+`
		FROM staged_goals WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged goal: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanStagedGoal(rows)
}

// UpdateStagedGoal 更新审核界面可编辑的字段
func (s *Store) UpdateStagedGoal(g *model.StagedGoal) error {
	_, err := s.db.Exec(`
		UPDATE staged_goals SET
			goal_number = ?,
			title = ?,
			description = ?,
			owner_name = ?,
			level = ?,
			validation_status = ?,
			validation_messages = ?,
			is_mapped = ?,
			mapped_goal_id = ?,
			action = ?,
			suggestions = ?
		WHERE id = ?
	`,
		g.GoalNumber, g.Title, g.Description, g.OwnerName, g.Level,
		string(g.Status), marshalJSON(g.Messages),
		g.IsMapped, g.MappedGoalID, string(g.Action), marshalJSON(g.Suggestions),
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staged goal: %w", err)
	}
	return nil
}

// SetAllStagedGoalActions 整批切换动作（全选导入 / 全部跳过）
func (s *Store) SetAllStagedGoalActions(sessionID string, action model.StagedAction) error {
	_, err := s.db.Exec(`
		UPDATE staged_goals SET action = ? WHERE session_id = ?
	`, string(action), sessionID)
	if err != nil {
		return fmt.Errorf("failed to set staged goal actions: %w", err)
	}
	return nil
}

// ListStagedMetrics 列出会话的待审核指标行，按插入顺序
func (s *Store) ListStagedMetrics(sessionID string) ([]*model.StagedMetric, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, staged_goal_id, row_number, name, description,
			baseline, unit_symbol, frequency, time_series,
			validation_status, validation_messages, action
		FROM staged_metrics WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged metrics: %w", err)
	}
	defer rows.Close()

	result := make([]*model.StagedMetric, 0)
	for rows.Next() {
		m := &model.StagedMetric{}
		var series, status, messages, action string
		if err := rows.Scan(
			&m.ID, &m.SessionID, &m.StagedGoalID, &m.RowNumber, &m.Name, &m.Description,
			&m.Baseline, &m.UnitSymbol, &m.Frequency, &series,
			&status, &messages, &action,
		); err != nil {
			return nil, fmt.Errorf("failed to scan staged metric: %w", err)
		}
		m.TimeSeries = make([]model.TimeSeriesEntry, 0)
		unmarshalJSON(series, &m.TimeSeries)
		m.Status = model.ValidationStatus(status)
		m.Messages = make([]string, 0)
		unmarshalJSON(messages, &m.Messages)
		m.Action = model.StagedAction(action)
		result = append(result, m)
	}
	return result, rows.Err()
}
