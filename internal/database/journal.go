package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// Journal records executed mutations in the mutation_log table
type Journal struct {
	db *sql.DB
}

// NewJournal wraps an opened, migrated database
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record appends an entry
func (j *Journal) Record(ctx context.Context, entry *models.MutationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO mutation_log (name, subject, succeeded, error, invalidated, duration_ms, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := j.db.ExecContext(ctx, query, entry.Name, entry.Subject, entry.Succeeded,
		entry.Error, strings.Join(entry.Invalidated, ","), entry.Duration.Milliseconds(), entry.CreatedAt)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	entry.ID = id
	return nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]*models.MutationEntry, error) {
	query := `SELECT id, name, subject, succeeded, error, invalidated, duration_ms, created_at
			  FROM mutation_log ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.MutationEntry{}
	for rows.Next() {
		entry := &models.MutationEntry{}
		var subject, errMsg, invalidated sql.NullString
		var durationMS int64
		err := rows.Scan(&entry.ID, &entry.Name, &subject, &entry.Succeeded, &errMsg,
			&invalidated, &durationMS, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		entry.Subject = subject.String
		entry.Error = errMsg.String
		if invalidated.String != "" {
			entry.Invalidated = strings.Split(invalidated.String, ",")
		}
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and returns how many were removed
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := j.db.ExecContext(ctx, `DELETE FROM mutation_log WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
