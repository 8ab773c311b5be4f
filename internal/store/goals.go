package store

import (
	"database/sql"
	"fmt"

	"planbook/internal/model"
)

// InsertGoal 插入正式目标，返回新 ID
// 调用方必须保证父节点已存在（树的无环性由创建顺序保证）
func (s *Store) InsertGoal(g *model.Goal) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO goals (district_id, parent_id, goal_number, title, description, level, owner_name, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, g.DistrictID, g.ParentID, g.GoalNumber, g.Title, g.Description, g.Level, g.OwnerName, g.Position)
	if err != nil {
		return 0, fmt.Errorf("failed to insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get goal id: %w", err)
	}
	g.ID = id
	return id, nil
}

// UpdateGoalFields 更新目标的可编辑字段
func (s *Store) UpdateGoalFields(id int64, title, description, owner string) error {
	_, err := s.db.Exec(`
		UPDATE goals SET title = ?, description = ?, owner_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, title, description, owner, id)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// GetGoalByNumber 按租户和编号查询目标，不存在时返回 nil
func (s *Store) GetGoalByNumber(districtID int64, number string) (*model.Goal, error) {
	g := &model.Goal{}
	err := s.db.QueryRow(`
		SELECT id, district_id, parent_id, goal_number, title, description, level, owner_name, position
		FROM goals WHERE district_id = ? AND goal_number = ?
	`, districtID, number).Scan(
		&g.ID, &g.DistrictID, &g.ParentID, &g.GoalNumber, &g.Title, &g.Description, &g.Level, &g.OwnerName, &g.Position,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal by number: %w", err)
	}
	return g, nil
}

// GetGoal 按 ID 查询目标
func (s *Store) GetGoal(id int64) (*model.Goal, error) {
	g := &model.Goal{}
	err := s.db.QueryRow(`
		SELECT id, district_id, parent_id, goal_number, title, description, level, owner_name, position
		FROM goals WHERE id = ?
	`, id).Scan(
		&g.ID, &g.DistrictID, &g.ParentID, &g.GoalNumber, &g.Title, &g.Description, &g.Level, &g.OwnerName, &g.Position,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// ListGoals 列出租户全部目标（调用方负责自然序排序）
func (s *Store) ListGoals(districtID int64) ([]*model.Goal, error) {
	rows, err := s.db.Query(`
		SELECT id, district_id, parent_id, goal_number, title, description, level, owner_name, position
		FROM goals WHERE district_id = ?
	`, districtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Goal, 0)
	for rows.Next() {
		g := &model.Goal{}
		if err := rows.Scan(
			&g.ID, &g.DistrictID, &g.ParentID, &g.GoalNumber, &g.Title, &g.Description, &g.Level, &g.OwnerName, &g.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// CountGoals 统计租户目标数量
func (s *Store) CountGoals(districtID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM goals WHERE district_id = ?`, districtID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return n, nil
}

// InsertMetric 插入正式指标，返回新 ID
func (s *Store) InsertMetric(m *model.Metric) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO metrics (goal_id, name, description, baseline, unit_symbol, frequency, time_series)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.GoalID, m.Name, m.Description, m.Baseline, m.UnitSymbol, string(m.Frequency), marshalJSON(m.TimeSeries))
	if err != nil {
		return 0, fmt.Errorf("failed to insert metric: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get metric id: %w", err)
	}
	m.ID = id
	return id, nil
}

// ListMetricsByGoal 列出目标下的指标
func (s *Store) ListMetricsByGoal(goalID int64) ([]*model.Metric, error) {
	rows, err := s.db.Query(`
		SELECT id, goal_id, name, description, baseline, unit_symbol, frequency, time_series
		FROM metrics WHERE goal_id = ? ORDER BY id
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Metric, 0)
	for rows.Next() {
		m := &model.Metric{}
		var freq, series string
		if err := rows.Scan(&m.ID, &m.GoalID, &m.Name, &m.Description, &m.Baseline, &m.UnitSymbol, &freq, &series); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		m.Frequency = model.Frequency(freq)
		m.TimeSeries = make([]model.TimeSeriesEntry, 0)
		unmarshalJSON(series, &m.TimeSeries)
		result = append(result, m)
	}
	return result, rows.Err()
}

// CountMetrics 统计租户指标数量
func (s *Store) CountMetrics(districtID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM metrics m JOIN goals g ON g.id = m.goal_id WHERE g.district_id = ?
	`, districtID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return n, nil
}
