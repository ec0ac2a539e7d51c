package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// Postgres persists the latest order snapshot per order id. The upsert
// makes re-execution of a status activity harmless: writing the same
// snapshot twice leaves the same row.
type Postgres struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewPostgres(log *slog.Logger, pool *pgxpool.Pool) *Postgres {
	return &Postgres{log: log, pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS order_snapshots (
			id              TEXT PRIMARY KEY,
			order_status    TEXT NOT NULL,
			payment_status  TEXT NOT NULL,
			shipping_status TEXT NOT NULL,
			tracking_number TEXT,
			total_amount    NUMERIC(12,2) NOT NULL,
			payload         JSONB NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure order_snapshots schema: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.ID, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO order_snapshots (id, order_status, payment_status, shipping_status, tracking_number, total_amount, payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			order_status=$2, payment_status=$3, shipping_status=$4,
			tracking_number=$5, total_amount=$6, payload=$7, updated_at=$8`,
		order.ID, string(order.Status), string(order.PaymentStatus), string(order.ShippingStatus),
		order.TrackingNumber, order.TotalAmount, payload, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.ID, err)
	}
	p.log.Debug("order snapshot saved", "order_id", order.ID, "status", order.Status)
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (domain.Order, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx, `SELECT payload FROM order_snapshots WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	var order domain.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return order, nil
}
