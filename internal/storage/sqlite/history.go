package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/pkg/log"
)

// History persists issued questions. One attempt row per ask invocation,
// appended in a single transaction so concurrent requests cannot lose each
// other's updates.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

func (h *History) PreviouslyAsked(ctx context.Context, userID string) (map[core.AskedPair]struct{}, error) {
	query := `SELECT q.field, q.question FROM attempt_questions q
		JOIN attempts a ON a.id = q.attempt_id
		WHERE a.employee_id = ?`

	rows, err := h.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asked questions: %w", err)
	}
	defer rows.Close()

	asked := make(map[core.AskedPair]struct{})
	for rows.Next() {
		var pair core.AskedPair
		if err := rows.Scan(&pair.Field, &pair.Text); err != nil {
			return nil, fmt.Errorf("failed to scan asked question: %w", err)
		}
		asked[pair] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("employee_id", userID).Int("count", len(asked)).Msg("loaded asked questions")
	return asked, nil
}

func (h *History) RecordAttempt(ctx context.Context, record core.Record, questions []core.Question) error {
	snapshot, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record snapshot: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin attempt transaction: %w", err)
	}
	defer tx.Rollback()

	attemptID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, employee_id, record) VALUES (?, ?, ?)`,
		attemptID, record.UserID(), string(snapshot))
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	for _, q := range questions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempt_questions (attempt_id, field, template, question) VALUES (?, ?, ?, ?)`,
			attemptID, q.Field, q.Template, q.Text)
		if err != nil {
			return fmt.Errorf("failed to insert attempt question: %w", err)
		}
	}

	return tx.Commit()
}
