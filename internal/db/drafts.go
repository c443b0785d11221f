package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Draft Methods
// -----------------------------------------------------------------------------

// SaveDraft stores a draft and returns it with its generated ID and timestamp
func (db *DB) SaveDraft(ctx context.Context, input *DraftInput) (*Draft, error) {
	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	draft := Draft{
		RawText:        input.RawText,
		Record:         input.Record,
		ReasonCategory: input.ReasonCategory,
		StudentName:    input.StudentName,
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO intake_drafts (raw_text, record, reason_category, student_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		input.RawText, recordJSON, input.ReasonCategory, input.StudentName,
	).Scan(&draft.ID, &draft.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return &draft, nil
}

// GetDraft retrieves a draft by ID. Returns nil, nil when it does not exist.
func (db *DB) GetDraft(ctx context.Context, id uuid.UUID) (*Draft, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, raw_text, record, reason_category, student_name, created_at
		 FROM intake_drafts
		 WHERE id = $1`,
		id,
	)
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// ListDrafts returns drafts newest first.
func (db *DB) ListDrafts(ctx context.Context, limit, offset int) ([]Draft, error) {
	limit, offset = NormalizePage(limit, offset)

	rows, err := db.pool.Query(ctx,
		`SELECT id, raw_text, record, reason_category, student_name, created_at
		 FROM intake_drafts
		 ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]Draft, 0)
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, *draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// CountDrafts returns the total number of stored drafts
func (db *DB) CountDrafts(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM intake_drafts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count drafts: %w", err)
	}
	return n, nil
}

// DeleteDraft removes a draft. It reports whether a row was deleted.
func (db *DB) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM intake_drafts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReasonCounts returns the number of drafts per reason category, most
// frequent first. Drafts without a category are not counted.
func (db *DB) ReasonCounts(ctx context.Context) ([]ReasonCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT reason_category, COUNT(*)
		 FROM intake_drafts
		 WHERE reason_category <> ''
		 GROUP BY reason_category
		 ORDER BY COUNT(*) DESC, reason_category`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count reasons: %w", err)
	}
	defer rows.Close()

	counts := make([]ReasonCount, 0)
	for rows.Next() {
		var rc ReasonCount
		if err := rows.Scan(&rc.Category, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan reason count: %w", err)
		}
		counts = append(counts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count reasons: %w", err)
	}
	return counts, nil
}

func scanDraft(row pgx.Row) (*Draft, error) {
	var draft Draft
	var recordJSON []byte
	if err := row.Scan(&draft.ID, &draft.RawText, &recordJSON, &draft.ReasonCategory,
		&draft.StudentName, &draft.CreatedAt); err != nil {
		return nil, err
	}
	if len(recordJSON) > 0 {
		if err := json.Unmarshal(recordJSON, &draft.Record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return &draft, nil
}
