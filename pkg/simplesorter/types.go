package simplesorter

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SortOrderKey is the metadata key holding an item's sort order.
const SortOrderKey = "_sort_order"

// DefaultCategory is used when a request does not name a category.
const DefaultCategory = "post"

// NewItemOrder is the previous order assigned to an item that has never
// been ordered.
const NewItemOrder = -1

// ItemStatus is the domain type for item publication states.
type ItemStatus string

// Item status constants (typed).
const (
	ItemStatusPublished ItemStatus = "publish"
	ItemStatusDraft     ItemStatus = "draft"
)

// IsValid reports whether s is a known item status.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPublished, ItemStatusDraft:
		return true
	}
	return false
}

// Position selects which side of the target index an item lands on.
type Position string

// Position constants (typed).
const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// IsValid reports whether p is before or after.
func (p Position) IsValid() bool {
	return p == PositionBefore || p == PositionAfter
}

// ParsePosition converts user input into a Position. An empty string
// defaults to PositionAfter.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PositionAfter, nil
	}
	if !p.IsValid() {
		return "", ErrInvalidPosition
	}
	return p, nil
}

// Item represents one orderable content entry.
//
// SortOrder is not persisted on the item itself; it is populated from the
// item's metadata when the item is returned by the service.
type Item struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Category  string     `json:"category" yaml:"category"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title     string     `json:"title" yaml:"title"`
	Status    string     `json:"status" yaml:"status"`
	SortOrder *int       `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// HasOrder reports whether the item has an established sort order.
func (i *Item) HasOrder() bool {
	return i.SortOrder != nil
}

// ListFilter selects items from the listing collaborator.
type ListFilter struct {
	Category string
	ParentID *uuid.UUID
	Status   string
}

// SearchFilter selects items by title.
type SearchFilter struct {
	Term     string
	Category string
	Status   string
	Limit    int
}

// Shift is a single sort order change applied to an item that is not the
// one being moved.
type Shift struct {
	ItemID uuid.UUID `json:"item_id" yaml:"item_id"`
	From   int       `json:"from" yaml:"from"`
	To     int       `json:"to" yaml:"to"`
}

// RepositionResult is the outcome of moving or inserting one item.
type RepositionResult struct {
	ItemID        uuid.UUID `json:"item_id" yaml:"item_id"`
	Category      string    `json:"category" yaml:"category"`
	PreviousOrder int       `json:"previous_order" yaml:"previous_order"`
	NewOrder      int       `json:"new_order" yaml:"new_order"`
	Shifts        []Shift   `json:"shifts,omitempty" yaml:"shifts,omitempty"`
	Item          *Item     `json:"item,omitempty" yaml:"item,omitempty"`
}

// IsInsert reports whether the moved item had no order before the call.
func (r *RepositionResult) IsInsert() bool {
	return r.PreviousOrder == NewItemOrder
}

// SearchResult is one entry in an insert-by-search response.
type SearchResult struct {
	ID    uuid.UUID `json:"id" yaml:"id"`
	Label string    `json:"label" yaml:"label"`
	Value string    `json:"value" yaml:"value"`
	Date  string    `json:"date" yaml:"date"`
}
