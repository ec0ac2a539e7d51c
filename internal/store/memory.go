package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// ErrNotFound is returned when no snapshot exists for an order id.
var ErrNotFound = fmt.Errorf("order not found")

// Memory keeps order snapshots in a map. Used by tests and local runs
// without Postgres.
type Memory struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemory() *Memory {
	return &Memory{orders: make(map[string]domain.Order)}
}

func (m *Memory) Save(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return order, nil
}
