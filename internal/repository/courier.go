package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

const courierColumns = `
	id, first_name, last_name, phone, telegram_id, COALESCE(telegram_username,''),
	region, status, total_orders, completed_orders, cancelled_orders, created_at`

func scanCourier(row pgx.Row) (*domain.Courier, error) {
	var c domain.Courier
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.TelegramID, &c.TelegramUsername,
		&c.Region, &c.Status, &c.TotalOrders, &c.CompletedOrders, &c.CancelledOrders, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByTelegramID - returns courier by its Telegram identity, nil when absent.
func (r *CourierRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE telegram_id=$1`, telegramID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier by telegram id %d: %w", telegramID, err)
	}
	return c, nil
}

// Get - returns courier by its internal ID, nil when absent.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return c, nil
}

// ListActiveByRegion returns active couriers with a Telegram identity in the
// given region. This is the fan-out recipient pool.
func (r *CourierRepo) ListActiveByRegion(ctx context.Context, region domain.RegionCode) ([]domain.Courier, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+courierColumns+`
        FROM couriers
        WHERE region = $1 AND status = $2 AND telegram_id <> 0
        ORDER BY id
    `, region, domain.CourierActive)
	if err != nil {
		return nil, fmt.Errorf("list active couriers in %q: %w", region, err)
	}
	defer rows.Close()

	var out []domain.Courier
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateStatus sets a courier's status (administrative surface).
func (r *CourierRepo) UpdateStatus(ctx context.Context, id int64, status domain.CourierStatus) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers SET status = $2, updated_at = now() WHERE id = $1
    `, id, status)
	if err != nil {
		return fmt.Errorf("update courier status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound
	}
	return nil
}

// counterColumn guards the aggregate counter name against arbitrary input.
func counterColumn(name string) (string, bool) {
	switch name {
	case "total_orders", "completed_orders", "cancelled_orders":
		return name, true
	default:
		return "", false
	}
}

// IncCounter increments one of the courier aggregate counters.
func (r *CourierRepo) IncCounter(ctx context.Context, id int64, name string) error {
	col, ok := counterColumn(name)
	if !ok {
		return fmt.Errorf("inc courier counter: unknown counter %q", name)
	}
	ct, err := r.db.Exec(ctx, fmt.Sprintf(`
        UPDATE couriers SET %s = %s + 1, updated_at = now() WHERE id = $1
    `, col, col), id)
	if err != nil {
		return fmt.Errorf("inc courier counter %s for %d: %w", name, id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound
	}
	return nil
}
