package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
)

// Repository implements simplesorter.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*simplesorter.Item
	meta  map[uuid.UUID]map[string]string // item_id -> key -> value
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items: make(map[uuid.UUID]*simplesorter.Item),
		meta:  make(map[uuid.UUID]map[string]string),
	}
}

var _ simplesorter.Repository = (*Repository)(nil)

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *simplesorter.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to avoid external modifications
	itemCopy := *item
	itemCopy.SortOrder = nil
	r.items[item.ID] = &itemCopy

	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*simplesorter.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, simplesorter.ErrItemNotFound
	}

	// Return a copy to prevent external modifications
	itemCopy := *item
	return &itemCopy, nil
}

func (r *Repository) ListItems(ctx context.Context, filter simplesorter.ListFilter) ([]*simplesorter.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplesorter.Item
	for _, item := range r.items {
		if !matches(item, filter.Category, filter.Status, filter.ParentID) {
			continue
		}
		itemCopy := *item
		result = append(result, &itemCopy)
	}

	sortNewestFirst(result)
	return result, nil
}

func (r *Repository) SearchItems(ctx context.Context, filter simplesorter.SearchFilter) ([]*simplesorter.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(filter.Term)
	var result []*simplesorter.Item
	for _, item := range r.items {
		if !matches(item, filter.Category, filter.Status, nil) {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Title), term) {
			continue
		}
		itemCopy := *item
		result = append(result, &itemCopy)
	}

	sortNewestFirst(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Metadata operations

func (r *Repository) GetMeta(ctx context.Context, itemID uuid.UUID, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.meta[itemID][key]
	return value, ok, nil
}

func (r *Repository) SetMeta(ctx context.Context, itemID uuid.UUID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify item exists
	if _, exists := r.items[itemID]; !exists {
		return simplesorter.ErrItemNotFound
	}

	values, ok := r.meta[itemID]
	if !ok {
		values = make(map[string]string)
		r.meta[itemID] = values
	}
	values[key] = value
	return nil
}

func (r *Repository) GetMetaBulk(ctx context.Context, itemIDs []uuid.UUID, key string) (map[uuid.UUID]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uuid.UUID]string)
	for _, id := range itemIDs {
		if value, ok := r.meta[id][key]; ok {
			result[id] = value
		}
	}
	return result, nil
}

func matches(item *simplesorter.Item, category, status string, parentID *uuid.UUID) bool {
	if category != "" && item.Category != category {
		return false
	}
	if status != "" && item.Status != status {
		return false
	}
	if parentID != nil {
		if item.ParentID == nil || *item.ParentID != *parentID {
			return false
		}
	}
	return true
}

// sortNewestFirst orders by created_at descending, then by ID for a
// deterministic result when timestamps tie.
func sortNewestFirst(items []*simplesorter.Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}
