package simplesorter

import (
	"context"

	"github.com/google/uuid"
)

// MetaStore defines per-item attribute storage
type MetaStore interface {
	// GetMeta returns the value stored under key and whether it exists
	GetMeta(ctx context.Context, itemID uuid.UUID, key string) (string, bool, error)

	// SetMeta stores value under key, replacing any previous value.
	// It returns ErrItemNotFound when the item does not exist.
	SetMeta(ctx context.Context, itemID uuid.UUID, key, value string) error

	// GetMetaBulk returns the values stored under key for the given items.
	// Items without a value are absent from the result.
	GetMetaBulk(ctx context.Context, itemIDs []uuid.UUID, key string) (map[uuid.UUID]string, error)
}

// ItemLister defines the content listing collaborator
type ItemLister interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// ListItems returns matching items, newest first
	ListItems(ctx context.Context, filter ListFilter) ([]*Item, error)
}

// Searcher defines title search over items
type Searcher interface {
	SearchItems(ctx context.Context, filter SearchFilter) ([]*Item, error)
}

// Repository combines every collaborator the service depends on
type Repository interface {
	MetaStore
	ItemLister
	Searcher
}

// EventSink defines the interface for order change notifications
type EventSink interface {
	// OrderSaved is fired after a full reorder has been written
	OrderSaved(ctx context.Context, category string, itemIDs []uuid.UUID) error

	// ItemRepositioned is fired after a move or insert has been written
	ItemRepositioned(ctx context.Context, result *RepositionResult) error
}
