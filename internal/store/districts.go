package store

import (
	"database/sql"
	"fmt"

	"planbook/internal/model"
)

// CreateDistrict 创建学区
func (s *Store) CreateDistrict(name, slug string) (*model.District, error) {
	res, err := s.db.Exec(`
		INSERT INTO districts (name, slug) VALUES (?, ?)
	`, name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to create district: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get district id: %w", err)
	}

	return s.GetDistrict(id)
}

// GetDistrict 按 ID 查询学区
func (s *Store) GetDistrict(id int64) (*model.District, error) {
	d := &model.District{}
	err := s.db.QueryRow(`
		SELECT id, name, slug, created_at FROM districts WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get district: %w", err)
	}
	return d, nil
}

// ListDistricts 列出全部学区
func (s *Store) ListDistricts() ([]*model.District, error) {
	rows, err := s.db.Query(`
		SELECT id, name, slug, created_at FROM districts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}
	defer rows.Close()

	result := make([]*model.District, 0)
	for rows.Next() {
		d := &model.District{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan district: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
