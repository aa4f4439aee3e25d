package store

import (
	"fmt"
	"time"
)

// ImportLog 导入日志记录
type ImportLog struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Filename     string     `json:"filename"`
	SheetName    string     `json:"sheetName"`
	ArchiveURL   string     `json:"archiveUrl,omitempty"`
	TotalRows    int        `json:"totalRows"`
	ImportedRows int        `json:"importedRows"`
	SkippedRows  int        `json:"skippedRows"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志
func (s *Store) CreateImportLog(id, kind, filename string) error {
	_, err := s.db.Exec(`
		INSERT INTO import_logs (id, kind, filename, status)
		VALUES (?, ?, ?, 'processing')
	`, id, kind, filename)
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id, sheetName, archiveURL string, totalRows, importedRows, skippedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			sheet_name = ?,
			archive_url = ?,
			total_rows = ?,
			imported_rows = ?,
			skipped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sheetName, archiveURL, totalRows, importedRows, skippedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// RecentImportLogs 按时间倒序获取最近的导入日志
func (s *Store) RecentImportLogs(limit int) ([]*ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, kind, filename, sheet_name, archive_url, total_rows, imported_rows,
			skipped_rows, status, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var logs []*ImportLog
	for rows.Next() {
		l := &ImportLog{}
		if err := rows.Scan(
			&l.ID, &l.Kind, &l.Filename, &l.SheetName, &l.ArchiveURL,
			&l.TotalRows, &l.ImportedRows, &l.SkippedRows,
			&l.Status, &l.ErrorMessage, &l.CreatedAt, &l.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
