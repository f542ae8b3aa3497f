package simplesorter

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// OrderStore reads and writes the sort order attribute of items.
type OrderStore struct {
	meta MetaStore
	key  string
}

// NewOrderStore creates an OrderStore backed by meta.
func NewOrderStore(meta MetaStore) *OrderStore {
	return &OrderStore{meta: meta, key: SortOrderKey}
}

// GetOrder returns the item's sort order and whether one is stored.
func (s *OrderStore) GetOrder(ctx context.Context, itemID uuid.UUID) (int, bool, error) {
	raw, ok, err := s.meta.GetMeta(ctx, itemID, s.key)
	if err != nil {
		return 0, false, storageError("get_order", itemID, err)
	}
	if !ok {
		return 0, false, nil
	}
	return coerceOrder(raw), true, nil
}

// SetOrder stores value as the item's sort order. ErrItemNotFound from the
// collaborator is returned unwrapped.
func (s *OrderStore) SetOrder(ctx context.Context, itemID uuid.UUID, value int) error {
	err := s.meta.SetMeta(ctx, itemID, s.key, strconv.Itoa(value))
	if err == nil || errors.Is(err, ErrItemNotFound) {
		return err
	}
	return storageError("set_order", itemID, err)
}

// GetOrders returns the stored sort orders of the given items in one read.
// Items without an order are absent from the map.
func (s *OrderStore) GetOrders(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	orders := make(map[uuid.UUID]int, len(itemIDs))
	if len(itemIDs) == 0 {
		return orders, nil
	}

	raw, err := s.meta.GetMetaBulk(ctx, itemIDs, s.key)
	if err != nil {
		return nil, storageError("get_orders", uuid.Nil, err)
	}
	for id, v := range raw {
		orders[id] = coerceOrder(v)
	}
	return orders, nil
}

// coerceOrder parses a stored value as an integer; anything else reads as 0.
func coerceOrder(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
