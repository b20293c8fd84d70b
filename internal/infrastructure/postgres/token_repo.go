package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/careslot/internal/internaltypes"
)

// TokenRepo stores encrypted calendar OAuth tokens, one row per account.
type TokenRepo struct{ db DBTX }

func NewTokenRepo(db DBTX) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Get(ctx context.Context, account string) (string, error) {
	row := r.db.QueryRow(ctx, `SELECT token_ciphertext FROM calendar_tokens WHERE account=$1`, account)
	var ct string
	if err := row.Scan(&ct); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", internaltypes.ErrNotFound
		}
		return "", err
	}
	return ct, nil
}

func (r *TokenRepo) Put(ctx context.Context, account, ciphertext string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calendar_tokens (account, token_ciphertext, updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (account) DO UPDATE SET token_ciphertext=EXCLUDED.token_ciphertext, updated_at=EXCLUDED.updated_at
	`, account, ciphertext, time.Now().UTC())
	return err
}
