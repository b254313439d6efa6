package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"kuryer-manager/internal/domain"
)

// ProductRepo represents product repository.
type ProductRepo struct{ db *pgxpool.Pool }

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *pgxpool.Pool) *ProductRepo { return &ProductRepo{db: db} }

// GetActive returns an active product by id, nil when absent or inactive.
func (r *ProductRepo) GetActive(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, `
        SELECT id, name, price, promo_price, is_active
        FROM products
        WHERE id = $1 AND is_active = true
    `, id).Scan(&p.ID, &p.Name, &p.Price, &p.PromoPrice, &p.Active)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}
