package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
)

// TokenRepo represents registration token repository.
type TokenRepo struct{ db *pgxpool.Pool }

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(db *pgxpool.Pool) *TokenRepo { return &TokenRepo{db: db} }

// Create persists a fresh registration token.
func (r *TokenRepo) Create(ctx context.Context, t *domain.RegistrationToken) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO courier_tokens (token, created_by, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id
    `, t.Token, t.CreatedBy, t.ExpiresAt).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.Conflict
		}
		return 0, fmt.Errorf("create token: %w", err)
	}
	return id, nil
}

// GetUnused returns an unused token by its string, nil when absent or already consumed.
func (r *TokenRepo) GetUnused(ctx context.Context, token string) (*domain.RegistrationToken, error) {
	var t domain.RegistrationToken
	err := r.db.QueryRow(ctx, `
        SELECT id, token, used, used_by, created_by, created_at, expires_at, used_at
        FROM courier_tokens
        WHERE token = $1 AND used = false
    `, token).Scan(&t.ID, &t.Token, &t.Used, &t.UsedByID, &t.CreatedBy, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &t, nil
}

// Consume atomically marks the token used and creates the courier it gates.
// The token row is locked for the duration of the transaction; a token that
// turns out used or expired under the lock yields apperr.Conflict and no
// courier is created.
func (r *TokenRepo) Consume(ctx context.Context, tokenID int64, c *domain.Courier) (courierID int64, err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("consume token %d: begin tx: %w", tokenID, err)
	}

	// отменяем в случае паники
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int64
	err = tx.QueryRow(ctx, `
        SELECT id FROM courier_tokens
        WHERE id = $1 AND used = false AND expires_at > now()
        FOR UPDATE
    `, tokenID).Scan(&locked)
	if err != nil {
		if IsNotFound(err) {
			return 0, apperr.Conflict
		}
		return 0, fmt.Errorf("consume token %d: lock: %w", tokenID, err)
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO couriers
            (first_name, last_name, phone, telegram_id, telegram_username, region, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id
    `, c.FirstName, c.LastName, c.Phone, c.TelegramID, c.TelegramUsername, c.Region, c.Status).Scan(&courierID)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.Conflict
		}
		return 0, fmt.Errorf("consume token %d: create courier: %w", tokenID, err)
	}

	if _, err = tx.Exec(ctx, `
        UPDATE courier_tokens
        SET used = true, used_by = $2, used_at = now()
        WHERE id = $1
    `, tokenID, courierID); err != nil {
		return 0, fmt.Errorf("consume token %d: mark used: %w", tokenID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("consume token %d: commit: %w", tokenID, err)
	}
	return courierID, nil
}

// DeleteExpired removes unused tokens whose validity window closed before cutoff.
func (r *TokenRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        DELETE FROM courier_tokens WHERE used = false AND expires_at < $1
    `, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return ct.RowsAffected(), nil
}
