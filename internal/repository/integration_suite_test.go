//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var tcPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate(ctx, pgContainer)
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		terminate(ctx, pgContainer)
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		terminate(ctx, pgContainer)
		log.Fatalf("failed to ping postgres in testcontainer: %v", err)
	}

	tcPool = pool

	if err := createTables(ctx, tcPool); err != nil {
		pool.Close()
		terminate(ctx, pgContainer)
		log.Fatalf("failed to create test tables: %v", err)
	}

	code := m.Run()

	pool.Close()
	terminate(ctx, pgContainer)
	os.Exit(code)
}

func terminate(ctx context.Context, c *postgres.PostgresContainer) {
	if err := c.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}
}

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS couriers (
			id                BIGSERIAL PRIMARY KEY,
			first_name        TEXT NOT NULL,
			last_name         TEXT NOT NULL,
			phone             TEXT NOT NULL,
			telegram_id       BIGINT NOT NULL UNIQUE,
			telegram_username TEXT,
			region            TEXT NOT NULL,
			status            TEXT NOT NULL,
			total_orders      INT NOT NULL DEFAULT 0,
			completed_orders  INT NOT NULL DEFAULT 0,
			cancelled_orders  INT NOT NULL DEFAULT 0,
			created_at        TIMESTAMP WITHOUT TIME ZONE DEFAULT now() NOT NULL,
			updated_at        TIMESTAMP WITHOUT TIME ZONE DEFAULT now() NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create couriers table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			order_id       TEXT PRIMARY KEY,
			courier_id     BIGINT REFERENCES couriers(id),
			customer_name  TEXT NOT NULL,
			phone          TEXT NOT NULL,
			address        TEXT,
			region         TEXT,
			district       TEXT,
			payment_method TEXT NOT NULL,
			comment        TEXT,
			total_price    DOUBLE PRECISION NOT NULL,
			status         TEXT NOT NULL,
			created_at     TIMESTAMP WITHOUT TIME ZONE DEFAULT now() NOT NULL,
			accepted_at    TIMESTAMP WITHOUT TIME ZONE,
			delivering_at  TIMESTAMP WITHOUT TIME ZONE,
			delivered_at   TIMESTAMP WITHOUT TIME ZONE,
			cancelled_at   TIMESTAMP WITHOUT TIME ZONE
		);
	`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS order_items (
			id         BIGSERIAL PRIMARY KEY,
			order_id   TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL,
			quantity   DOUBLE PRECISION NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create order_items table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS courier_tokens (
			id         BIGSERIAL PRIMARY KEY,
			token      TEXT NOT NULL UNIQUE,
			used       BOOLEAN NOT NULL DEFAULT false,
			used_by    BIGINT,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITHOUT TIME ZONE DEFAULT now() NOT NULL,
			expires_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
			used_at    TIMESTAMP WITHOUT TIME ZONE
		);
	`)
	if err != nil {
		return fmt.Errorf("create courier_tokens table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			promo_price DOUBLE PRECISION,
			is_active   BOOLEAN NOT NULL DEFAULT true
		);
	`)
	if err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	return nil
}
