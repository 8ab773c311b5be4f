package store

import (
	"database/sql"
	"fmt"

	"planbook/internal/model"
)

// CreateSession 创建导入会话
func (s *Store) CreateSession(sess *model.ImportSession) error {
	_, err := s.db.Exec(`
		INSERT INTO import_sessions (id, district_id, filename, file_size, status, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.DistrictID, sess.Filename, sess.FileSize, string(sess.Status), sess.UploadedBy)
	if err != nil {
		return fmt.Errorf("failed to create import session: %w", err)
	}
	return nil
}

// GetSession 按 ID 查询会话，不存在时返回 nil
func (s *Store) GetSession(id string) (*model.ImportSession, error) {
	sess := &model.ImportSession{}
	var status string
	var summary sql.NullString
	var completedAt sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, district_id, filename, file_size, status, uploaded_by, error_message, summary, created_at, completed_at
		FROM import_sessions WHERE id = ?
	`, id).Scan(
		&sess.ID, &sess.DistrictID, &sess.Filename, &sess.FileSize, &status,
		&sess.UploadedBy, &sess.ErrorMessage, &summary, &sess.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Status = model.SessionStatus(status)
	if summary.Valid && summary.String != "" {
		sum := &model.ImportSummary{}
		unmarshalJSON(summary.String, sum)
		sess.Summary = sum
	}
	if completedAt.Valid {
		t := completedAt.Time
		sess.CompletedAt = &t
	}
	return sess, nil
}

// ListSessions 列出租户的导入会话，最新在前
func (s *Store) ListSessions(districtID int64) ([]*model.ImportSession, error) {
	rows, err := s.db.Query(`
		SELECT id, district_id, filename, file_size, status, uploaded_by, error_message, summary, created_at, completed_at
		FROM import_sessions WHERE district_id = ? ORDER BY created_at DESC, id DESC
	`, districtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	result := make([]*model.ImportSession, 0)
	for rows.Next() {
		sess := &model.ImportSession{}
		var status string
		var summary sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(
			&sess.ID, &sess.DistrictID, &sess.Filename, &sess.FileSize, &status,
			&sess.UploadedBy, &sess.ErrorMessage, &summary, &sess.CreatedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.Status = model.SessionStatus(status)
		if summary.Valid && summary.String != "" {
			sum := &model.ImportSummary{}
			unmarshalJSON(summary.String, sum)
			sess.Summary = sum
		}
		if completedAt.Valid {
			t := completedAt.Time
			sess.CompletedAt = &t
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

// UpdateSessionStatus 推进会话状态，终态时写入完成时间
func (s *Store) UpdateSessionStatus(id string, status model.SessionStatus, errorMessage string) error {
	var err error
	if status.IsTerminal() {
		_, err = s.db.Exec(`
			UPDATE import_sessions SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, string(status), errorMessage, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE import_sessions SET status = ?, error_message = ? WHERE id = ?
		`, string(status), errorMessage, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// SetSessionSummary 写入提交统计
func (s *Store) SetSessionSummary(id string, summary *model.ImportSummary) error {
	_, err := s.db.Exec(`
		UPDATE import_sessions SET summary = ? WHERE id = ?
	`, marshalJSON(summary), id)
	if err != nil {
		return fmt.Errorf("failed to set session summary: %w", err)
	}
	return nil
}

// DeleteSession 删除会话及其全部待审核行
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM staged_metrics WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete staged metrics: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM staged_goals WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete staged goals: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM import_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return tx.Commit()
}

// CountSessions 统计租户会话数量
func (s *Store) CountSessions(districtID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM import_sessions WHERE district_id = ?`, districtID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
