package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"confernet/internal/domain"
)

type HintRepository struct {
	DB *sql.DB
}

func NewHintRepository(db *sql.DB) domain.HintStore {
	return &HintRepository{
		DB: db,
	}
}

func (r *HintRepository) Get(ctx context.Context, clientID string) (*domain.SessionHints, error) {
	query := `
		SELECT user_id, display_name, role, signup_in_progress, updated_at
		FROM session_hints
		WHERE client_id = $1
	`
	h := &domain.SessionHints{}
	err := r.DB.QueryRowContext(ctx, query, clientID).Scan(&h.UserID, &h.DisplayName, &h.Role, &h.SignupInProgress, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.SessionHints{}, nil
		}
		return nil, err
	}
	return h, nil
}

func (r *HintRepository) Save(ctx context.Context, clientID string, hints *domain.SessionHints) error {
	query := `
		INSERT INTO session_hints (client_id, user_id, display_name, role, signup_in_progress, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (client_id) DO UPDATE
		SET user_id = EXCLUDED.user_id, display_name = EXCLUDED.display_name, role = EXCLUDED.role,
			signup_in_progress = EXCLUDED.signup_in_progress, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`
	return r.DB.QueryRowContext(ctx, query, clientID, hints.UserID, hints.DisplayName, hints.Role, hints.SignupInProgress).Scan(&hints.UpdatedAt)
}

func (r *HintRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM session_hints WHERE updated_at < $1`
	res, err := r.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *HintRepository) Clear(ctx context.Context, clientID string) error {
	query := `DELETE FROM session_hints WHERE client_id = $1`
	_, err := r.DB.ExecContext(ctx, query, clientID)
	return err
}
