package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/pkg/log"
)

// Interactions is the append-only log of graded answers.
type Interactions struct {
	db *sql.DB
}

func NewInteractions(db *sql.DB) *Interactions {
	return &Interactions{db: db}
}

func (r *Interactions) AddInteraction(ctx context.Context, it core.Interaction) error {
	correctJSON, err := json.Marshal(it.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("failed to marshal correct answers: %w", err)
	}

	query := `INSERT INTO interactions (employee_id, field, template, answer, correct_answers, success)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		it.UserID, it.Field, it.Template, it.Answer, string(correctJSON), it.Success)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

func (r *Interactions) GetInteractions(ctx context.Context) ([]core.Interaction, error) {
	query := `SELECT id, employee_id, field, template, answer, correct_answers, success, created_at
		FROM interactions ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []core.Interaction
	for rows.Next() {
		var it core.Interaction
		var correctJSON string
		if err := rows.Scan(&it.ID, &it.UserID, &it.Field, &it.Template,
			&it.Answer, &correctJSON, &it.Success, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		if correctJSON != "" {
			if err := json.Unmarshal([]byte(correctJSON), &it.CorrectAnswers); err != nil {
				return nil, fmt.Errorf("failed to unmarshal correct answers: %w", err)
			}
		}
		interactions = append(interactions, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(interactions)).Msg("loaded interactions")
	return interactions, nil
}
