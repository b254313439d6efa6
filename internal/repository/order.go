package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kuryer-manager/internal/domain"
)

// OrderRepo represents order repository.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `
	order_id, courier_id, customer_name, phone,
	COALESCE(address,''), COALESCE(region,''), COALESCE(district,''),
	payment_method, COALESCE(comment,''), total_price, status,
	created_at, accepted_at, delivering_at, delivered_at, cancelled_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.CourierID, &o.CustomerName, &o.Phone,
		&o.Address, &o.Region, &o.District,
		&o.Payment, &o.Comment, &o.TotalPrice, &o.Status,
		&o.CreatedAt, &o.AcceptedAt, &o.DeliveringAt, &o.DeliveredAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists a new pending order together with its item lines.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("create order %q: begin tx: %w", o.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
        INSERT INTO orders
            (order_id, customer_name, phone, address, region, district,
             payment_method, comment, total_price, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at
    `, o.ID, o.CustomerName, o.Phone, o.Address, o.Region, o.District,
		o.Payment, o.Comment, o.TotalPrice, o.Status).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order %q: %w", o.ID, err)
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
            INSERT INTO order_items (order_id, product_id, quantity)
            VALUES ($1,$2,$3)
        `, o.ID, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("create order %q: insert item %d: %w", o.ID, it.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create order %q: commit: %w", o.ID, err)
	}
	return nil
}

// GetByID returns an order by its public id, nil when absent.
func (r *OrderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", orderID, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT product_id FROM order_items WHERE order_id=$1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %q: items: %w", orderID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		o.ItemIDs = append(o.ItemIDs, pid)
	}
	return o, rows.Err()
}

// Accept atomically assigns the order to a courier. The conditional UPDATE on
// status='pending' is the serialization point for the acceptance race: of N
// concurrent callers exactly one observes an affected row.
func (r *OrderRepo) Accept(ctx context.Context, orderID string, courierID int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders
        SET status      = $3,
            courier_id  = $2,
            accepted_at = now()
        WHERE order_id = $1 AND status = $4
    `, orderID, courierID, domain.OrderAccepted, domain.OrderPending)
	if err != nil {
		return false, fmt.Errorf("accept order %q: %w", orderID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// timestampColumn returns the column stamped when an order enters the status.
func timestampColumn(s domain.OrderStatus) (string, bool) {
	switch s {
	case domain.OrderDelivering:
		return "delivering_at", true
	case domain.OrderDelivered:
		return "delivered_at", true
	case domain.OrderCancelled:
		return "cancelled_at", true
	default:
		return "", false
	}
}

// Advance moves the order from an expected status to its successor,
// stamping the transition time. Compare-and-set: no row affected means the
// order was not in the expected status (or does not exist).
func (r *OrderRepo) Advance(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	col, ok := timestampColumn(to)
	if !ok {
		return false, fmt.Errorf("advance order %q: no timestamp column for status %q", orderID, to)
	}
	ct, err := r.db.Exec(ctx, fmt.Sprintf(`
        UPDATE orders
        SET status = $3, %s = now()
        WHERE order_id = $1 AND status = $2
    `, col), orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("advance order %q to %q: %w", orderID, to, err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListByCourier returns a courier's orders in the given statuses,
// newest first, at most limit rows. Empty statuses means any.
func (r *OrderRepo) ListByCourier(ctx context.Context, courierID int64, statuses []domain.OrderStatus, limit int) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE courier_id = $1`
	args := []any{courierID}
	if len(statuses) > 0 {
		q += fmt.Sprintf(" AND status = ANY($%d)", len(args)+1)
		ss := make([]string, 0, len(statuses))
		for _, s := range statuses {
			ss = append(ss, string(s))
		}
		args = append(args, ss)
	}
	q += " ORDER BY created_at DESC"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders for courier %d: %w", courierID, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// CountByCourier counts a courier's orders, optionally filtered by status
// and by creation time lower bound.
func (r *OrderRepo) CountByCourier(ctx context.Context, courierID int64, status domain.OrderStatus, since *time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM orders WHERE courier_id = $1`
	args := []any{courierID}
	if status != "" {
		q += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}
	if since != nil {
		q += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
		args = append(args, *since)
	}

	var n int
	if err := r.db.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders for courier %d: %w", courierID, err)
	}
	return n, nil
}
