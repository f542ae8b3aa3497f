package simplesorter

import "github.com/google/uuid"

// Request/Response DTOs

// CreateItemRequest contains parameters for creating an item
type CreateItemRequest struct {
	Category string
	ParentID *uuid.UUID
	Title    string
	Status   ItemStatus
}

// ListOrderedRequest contains parameters for listing a category in order
type ListOrderedRequest struct {
	Category string
	ParentID *uuid.UUID
}

// ReorderRequest commits a complete order for a category.
//
// ItemIDs is the final order as determined by the client; each item's sort
// order becomes its index in the slice.
type ReorderRequest struct {
	Category string
	ItemIDs  []uuid.UUID
}

// RepositionRequest moves or inserts one item.
//
// TargetIndex is the index the client clicked on; Position says whether the
// item goes before or after it. An item without a sort order is treated as a
// new insert.
type RepositionRequest struct {
	Category    string
	ParentID    *uuid.UUID
	ItemID      uuid.UUID
	Position    Position
	TargetIndex int
}

// SearchRequest contains parameters for searching items to insert
type SearchRequest struct {
	Term     string
	Category string
}
