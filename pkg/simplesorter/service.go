package simplesorter

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-sorter library
type Service interface {
	// Item operations
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// Ordering operations
	ListOrdered(ctx context.Context, req ListOrderedRequest) ([]*Item, error)
	Reorder(ctx context.Context, req ReorderRequest) error
	Reposition(ctx context.Context, req RepositionRequest) (*RepositionResult, error)

	// Search for items to insert
	Search(ctx context.Context, req SearchRequest) ([]*SearchResult, error)
}
