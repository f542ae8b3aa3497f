package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
)

// Response is the JSON envelope for every sorter endpoint. On failure Data
// carries the error label.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// SaveOrderRequest is the request body for committing a full order
type SaveOrderRequest struct {
	Order []string `json:"order" validate:"required"`
}

// InsertItemRequest is the request body for moving or inserting one item
type InsertItemRequest struct {
	ItemID      string `json:"item_id" validate:"required,anyuuid"`
	ParentID    string `json:"parent_id,omitempty" validate:"omitempty,anyuuid"`
	Position    string `json:"position,omitempty"`
	TargetIndex *int   `json:"target_index,omitempty" validate:"omitempty,min=0"`
	ReturnItem  bool   `json:"return_item,omitempty"`
}

// InsertItemResponse is returned by a successful insert
type InsertItemResponse struct {
	Message  string             `json:"message"`
	NewOrder int                `json:"new_order"`
	Shifted  int                `json:"shifted"`
	Item     *simplesorter.Item `json:"item,omitempty"`
}

// CreateItemRequest is the request body for creating an item
type CreateItemRequest struct {
	ParentID string `json:"parent_id,omitempty" validate:"omitempty,anyuuid"`
	Title    string `json:"title" validate:"required,max=500"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=publish draft"`
}

// SorterHandler handles HTTP requests for ordering items
type SorterHandler struct {
	service simplesorter.Service
}

// NewSorterHandler creates a new sorter handler
func NewSorterHandler(service simplesorter.Service) *SorterHandler {
	return &SorterHandler{service: service}
}

// Routes returns the admin routes
func (h *SorterHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/categories/{category}", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Post("/items", h.CreateItem)
		r.Put("/order", h.SaveOrder)
		r.Post("/insert", h.InsertItem)
		r.Get("/search", h.SearchItems)
	})
	r.Get("/items/{id}", h.GetItem)

	return r
}

// PublicRoutes returns the read-only routes
func (h *SorterHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/categories/{category}/items", h.ListItems)
	return r
}

// ListItems returns the published items of a category in sort order
func (h *SorterHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	req := simplesorter.ListOrderedRequest{Category: category}
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "Invalid parent ID")
			return
		}
		req.ParentID = &parentID
	}

	items, err := h.service.ListOrdered(r.Context(), req)
	if err != nil {
		slog.Error("Failed to list items", "category", category, "error", err)
		h.serviceError(w, r, err, "Failed to list items")
		return
	}
	if items == nil {
		items = []*simplesorter.Item{}
	}

	ok(w, r, http.StatusOK, items)
}

// SaveOrder commits the complete order of a category
func (h *SorterHandler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var body SaveOrderRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid order data")
		return
	}
	if err := validateStruct(body); err != nil {
		slog.Warn("Rejected order", "category", category, "error", err)
		fail(w, r, http.StatusBadRequest, "Invalid order data")
		return
	}

	ids, err := parseOrder(body.Order)
	if err != nil {
		slog.Warn("Rejected order", "category", category, "error", err)
		fail(w, r, http.StatusBadRequest, "Invalid order data")
		return
	}

	if err := h.service.Reorder(r.Context(), simplesorter.ReorderRequest{
		Category: category,
		ItemIDs:  ids,
	}); err != nil {
		slog.Error("Failed to save order", "category", category, "error", err)
		h.serviceError(w, r, err, "Failed to save order")
		return
	}

	ok(w, r, http.StatusOK, "Order saved successfully")
}

// InsertItem moves an item, or inserts one that has no order yet
func (h *SorterHandler) InsertItem(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var body InsertItemRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateStruct(body); err != nil {
		switch invalidField(err) {
		case "ItemID":
			fail(w, r, http.StatusBadRequest, "Invalid item ID")
		case "ParentID":
			fail(w, r, http.StatusBadRequest, "Invalid parent ID")
		default:
			fail(w, r, http.StatusBadRequest, "Invalid position")
		}
		return
	}

	position, err := simplesorter.ParsePosition(body.Position)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid position")
		return
	}

	// A missing target index means the first slot.
	targetIndex := 0
	if body.TargetIndex != nil {
		targetIndex = *body.TargetIndex
	}

	req := simplesorter.RepositionRequest{
		Category:    category,
		ItemID:      uuid.MustParse(body.ItemID),
		Position:    position,
		TargetIndex: targetIndex,
	}
	if body.ParentID != "" {
		parentID := uuid.MustParse(body.ParentID)
		req.ParentID = &parentID
	}

	result, err := h.service.Reposition(r.Context(), req)
	if err != nil {
		slog.Error("Failed to insert item", "category", category, "item_id", body.ItemID, "error", err)
		h.serviceError(w, r, err, "Failed to insert item")
		return
	}

	resp := InsertItemResponse{
		Message:  "Item inserted successfully",
		NewOrder: result.NewOrder,
		Shifted:  len(result.Shifts),
	}
	if body.ReturnItem {
		resp.Item = result.Item
	}

	ok(w, r, http.StatusOK, resp)
}

// SearchItems finds published items by title for insertion
func (h *SorterHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	term := r.URL.Query().Get("term")

	results, err := h.service.Search(r.Context(), simplesorter.SearchRequest{
		Term:     term,
		Category: category,
	})
	if err != nil {
		slog.Error("Failed to search items", "category", category, "term", term, "error", err)
		h.serviceError(w, r, err, "Failed to search items")
		return
	}

	ok(w, r, http.StatusOK, results)
}

// CreateItem creates an item in a category
func (h *SorterHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var body CreateItemRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if err := validateStruct(body); err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req := simplesorter.CreateItemRequest{
		Category: category,
		Title:    body.Title,
		Status:   simplesorter.ItemStatus(body.Status),
	}
	if body.ParentID != "" {
		parentID := uuid.MustParse(body.ParentID)
		req.ParentID = &parentID
	}

	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		slog.Error("Failed to create item", "category", category, "error", err)
		h.serviceError(w, r, err, "Failed to create item")
		return
	}

	slog.Info("Item created", "item_id", item.ID.String(), "category", item.Category)
	ok(w, r, http.StatusCreated, item)
}

// GetItem returns one item with its current sort order
func (h *SorterHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err, "Failed to get item")
		return
	}

	ok(w, r, http.StatusOK, item)
}

// serviceError maps service errors onto status codes and labels
func (h *SorterHandler) serviceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, simplesorter.ErrInvalidItem):
		fail(w, r, http.StatusBadRequest, "Invalid item ID")
	case errors.Is(err, simplesorter.ErrInvalidOrderData):
		fail(w, r, http.StatusBadRequest, "Invalid order data")
	case errors.Is(err, simplesorter.ErrInvalidPosition):
		fail(w, r, http.StatusBadRequest, "Invalid position")
	case errors.Is(err, simplesorter.ErrStorageFailure):
		fail(w, r, http.StatusInternalServerError, fallback)
	case errors.Is(err, simplesorter.ErrItemNotFound):
		fail(w, r, http.StatusNotFound, "Item not found")
	default:
		fail(w, r, http.StatusInternalServerError, fallback)
	}
}

// parseOrder converts client ids into UUIDs. Empty entries keep their slot
// as uuid.Nil.
func parseOrder(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func ok(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, status int, label string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: false, Data: label})
}
