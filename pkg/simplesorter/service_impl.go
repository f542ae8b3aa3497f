package simplesorter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minSearchTermLength = 2
	maxSearchResults    = 10
	searchDateLayout    = "2006-01-02"
)

// service implements the Service interface
type service struct {
	repository Repository
	orders     *OrderStore
	eventSink  EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.orders = NewOrderStore(s.repository)

	return s, nil
}

// Item operations

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	status := req.Status
	if status == "" {
		status = ItemStatusPublished
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid item status: %s", status)
	}

	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New(),
		Category:  categoryOrDefault(req.Category),
		ParentID:  req.ParentID,
		Title:     req.Title,
		Status:    string(status),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repository.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		return nil, storageError("get_item", id, err)
	}

	order, ok, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		item.SortOrder = &order
	}
	return item, nil
}

// Ordering operations

func (s *service) ListOrdered(ctx context.Context, req ListOrderedRequest) ([]*Item, error) {
	items, err := s.repository.ListItems(ctx, ListFilter{
		Category: categoryOrDefault(req.Category),
		ParentID: req.ParentID,
		Status:   string(ItemStatusPublished),
	})
	if err != nil {
		return nil, storageError("list_items", uuid.Nil, err)
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	orders, err := s.orders.GetOrders(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Nothing ordered yet: keep the listing's newest-first order.
	if len(orders) == 0 {
		return items, nil
	}

	for _, item := range items {
		if order, ok := orders[item.ID]; ok {
			item.SortOrder = &order
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.HasOrder() && b.HasOrder():
			return *a.SortOrder < *b.SortOrder
		case a.HasOrder():
			return true
		default:
			return false
		}
	})

	return items, nil
}

func (s *service) Reorder(ctx context.Context, req ReorderRequest) error {
	seen := make(map[uuid.UUID]struct{}, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: item %s appears more than once", ErrInvalidOrderData, id)
		}
		seen[id] = struct{}{}
	}

	category := categoryOrDefault(req.Category)
	for index, id := range req.ItemIDs {
		if id == uuid.Nil {
			continue
		}
		if err := s.orders.SetOrder(ctx, id, index); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				s.logger.Warn("Skipping unknown item in reorder", "category", category, "item_id", id.String())
				continue
			}
			s.logger.Error("Failed to save order", "category", category, "item_id", id.String(), "index", index, "error", err)
			return storageError("set_order", id, err)
		}
	}

	if err := s.eventSink.OrderSaved(ctx, category, req.ItemIDs); err != nil {
		s.logger.Warn("Event sink failed", "event", "order_saved", "error", err)
	}

	s.logger.Info("Order saved", "category", category, "count", len(req.ItemIDs))
	return nil
}

func (s *service) Reposition(ctx context.Context, req RepositionRequest) (*RepositionResult, error) {
	if req.ItemID == uuid.Nil {
		return nil, ErrInvalidItem
	}
	position := req.Position
	if position == "" {
		position = PositionAfter
	}
	if !position.IsValid() || req.TargetIndex < 0 {
		return nil, ErrInvalidPosition
	}
	// after the item at MaxInt has no representable slot
	if position == PositionAfter && req.TargetIndex == math.MaxInt {
		return nil, ErrInvalidPosition
	}

	item, err := s.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidItem, req.ItemID)
		}
		return nil, storageError("get_item", req.ItemID, err)
	}

	category := categoryOrDefault(req.Category)
	listed, err := s.ListOrdered(ctx, ListOrderedRequest{Category: category, ParentID: req.ParentID})
	if err != nil {
		return nil, err
	}

	previous, ok, err := s.orders.GetOrder(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		previous = NewItemOrder
	}

	entries := make([]OrderEntry, len(listed))
	for i, it := range listed {
		entries[i] = OrderEntry{ItemID: it.ID, HasOrder: it.HasOrder()}
		if it.HasOrder() {
			entries[i].Order = *it.SortOrder
		}
	}
	plan := PlanReposition(req.ItemID, previous, position, req.TargetIndex, entries)

	// Shifts are written one by one; a failure leaves earlier writes in place.
	for _, shift := range plan.Shifts {
		if err := s.orders.SetOrder(ctx, shift.ItemID, shift.To); err != nil {
			s.logger.Error("Failed to shift item", "category", category, "item_id", shift.ItemID.String(), "from", shift.From, "to", shift.To, "error", err)
			return nil, storageError("set_order", shift.ItemID, err)
		}
	}
	if err := s.orders.SetOrder(ctx, req.ItemID, plan.DesiredOrder); err != nil {
		s.logger.Error("Failed to set item order", "category", category, "item_id", req.ItemID.String(), "error", err)
		return nil, storageError("set_order", req.ItemID, err)
	}

	newOrder := plan.DesiredOrder
	item.SortOrder = &newOrder
	result := &RepositionResult{
		ItemID:        req.ItemID,
		Category:      category,
		PreviousOrder: plan.PreviousOrder,
		NewOrder:      newOrder,
		Shifts:        plan.Shifts,
		Item:          item,
	}

	if err := s.eventSink.ItemRepositioned(ctx, result); err != nil {
		s.logger.Warn("Event sink failed", "event", "item_repositioned", "error", err)
	}

	s.logger.Info("Item repositioned",
		"category", category,
		"item_id", req.ItemID.String(),
		"position", string(position),
		"target_index", req.TargetIndex,
		"previous_order", plan.PreviousOrder,
		"new_order", newOrder,
		"shifted", len(plan.Shifts))

	return result, nil
}

// Search

func (s *service) Search(ctx context.Context, req SearchRequest) ([]*SearchResult, error) {
	term := strings.TrimSpace(req.Term)
	results := []*SearchResult{}
	if utf8.RuneCountInString(term) < minSearchTermLength {
		return results, nil
	}

	items, err := s.repository.SearchItems(ctx, SearchFilter{
		Term:     term,
		Category: categoryOrDefault(req.Category),
		Status:   string(ItemStatusPublished),
		Limit:    maxSearchResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	for _, item := range items {
		results = append(results, &SearchResult{
			ID:    item.ID,
			Label: item.Title,
			Value: item.Title,
			Date:  item.CreatedAt.Format(searchDateLayout),
		})
		if len(results) == maxSearchResults {
			break
		}
	}
	return results, nil
}

func categoryOrDefault(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return DefaultCategory
}
