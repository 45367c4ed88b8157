package database

import (
	"fmt"

	"github.com/thinkscotty/explainer/internal/models"
)

func (db *DB) LogExplain(entry models.ExplainLog) error {
	var errMsg any
	if entry.ErrorMessage != "" {
		errMsg = entry.ErrorMessage
	}
	_, err := db.conn.Exec(`
		INSERT INTO explain_log (simplicity, tone, custom_tone, input_kind, file_count, outcome,
		                         error_message, tokens_used, model, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Simplicity, entry.Tone, entry.CustomTone, entry.InputKind, entry.FileCount,
		entry.Outcome, errMsg, entry.TokensUsed, entry.Model, entry.DurationMs)
	return err
}

func (db *DB) GetStats() (models.Stats, error) {
	var s models.Stats

	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN outcome = 'content_blocked' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN input_kind = 'url' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN input_kind = 'files' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(custom_tone), 0),
		       COALESCE(SUM(tokens_used), 0),
		       CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER)
		FROM explain_log`, models.OutcomeOK).Scan(
		&s.TotalRequests, &s.Succeeded, &s.Blocked, &s.URLRequests, &s.FileRequests,
		&s.CustomToneUsed, &s.TotalTokensUsed, &s.AvgDurationMs)
	if err != nil {
		return s, fmt.Errorf("query stats: %w", err)
	}
	s.Failed = s.TotalRequests - s.Succeeded

	size, _ := db.DatabaseSizeBytes()
	s.DatabaseSizeBytes = size

	return s, nil
}

// RecentExplains returns the N most recent log entries, newest first.
func (db *DB) RecentExplains(limit int) ([]models.ExplainLog, error) {
	rows, err := db.conn.Query(`
		SELECT id, simplicity, tone, custom_tone, input_kind, file_count, outcome,
		       COALESCE(error_message, ''), tokens_used, model, duration_ms, created_at
		FROM explain_log
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ExplainLog
	for rows.Next() {
		var entry models.ExplainLog
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Simplicity, &entry.Tone, &entry.CustomTone,
			&entry.InputKind, &entry.FileCount, &entry.Outcome, &entry.ErrorMessage,
			&entry.TokensUsed, &entry.Model, &entry.DurationMs, &createdAt); err != nil {
			return nil, err
		}
		entry.CreatedAt, _ = parseTime(createdAt)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// CleanOldLogs removes log entries older than the given number of days and
// reports how many were deleted.
func (db *DB) CleanOldLogs(days int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM explain_log WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
