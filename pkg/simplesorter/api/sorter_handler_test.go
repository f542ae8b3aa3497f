package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	"github.com/tendant/simple-sorter/pkg/simplesorter/repo/memory"
)

// setupSorterHandlerTest creates a router over an in-memory service
func setupSorterHandlerTest(t *testing.T) (http.Handler, simplesorter.Service) {
	t.Helper()
	svc, err := simplesorter.New(
		simplesorter.WithRepository(memory.New()),
		simplesorter.WithEventSink(simplesorter.NewNoopEventSink()),
	)
	require.NoError(t, err)

	handler := NewSorterHandler(svc)
	r := chi.NewRouter()
	r.Mount("/admin", handler.Routes())
	r.Mount("/public", handler.PublicRoutes())
	return r, svc
}

func createItems(t *testing.T, svc simplesorter.Service, category string, titles ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, len(titles))
	for i, title := range titles {
		item, err := svc.CreateItem(context.Background(), simplesorter.CreateItemRequest{Category: category, Title: title})
		require.NoError(t, err)
		ids[i] = item.ID
	}
	return ids
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeLabel(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	var label string
	require.NoError(t, json.Unmarshal(env.Data, &label))
	return label
}

func listedIDs(t *testing.T, w *httptest.ResponseRecorder) []uuid.UUID {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success)
	var items []simplesorter.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestSorterHandler_SaveOrderAndList(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	ids := createItems(t, svc, "post", "a", "b", "c")

	order := []string{ids[1].String(), ids[2].String(), ids[0].String()}
	w := doJSON(t, h, http.MethodPut, "/admin/categories/post/order", SaveOrderRequest{Order: order})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.JSONEq(t, `"Order saved successfully"`, string(env.Data))

	w = doJSON(t, h, http.MethodGet, "/public/categories/post/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{ids[1], ids[2], ids[0]}, listedIDs(t, w))
}

func TestSorterHandler_ListEmptyCategory(t *testing.T) {
	h, _ := setupSorterHandlerTest(t)

	w := doJSON(t, h, http.MethodGet, "/admin/categories/page/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestSorterHandler_SaveOrderInvalid(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	id := createItems(t, svc, "post", "a")[0]

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing order", body: map[string]interface{}{}},
		{name: "malformed id", body: SaveOrderRequest{Order: []string{"not-a-uuid"}}},
		{name: "duplicate id", body: SaveOrderRequest{Order: []string{id.String(), id.String()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPut, "/admin/categories/post/order", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid order data", decodeLabel(t, w))
		})
	}
}

func TestSorterHandler_InsertItem(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	ids := createItems(t, svc, "post", "a", "b")
	require.NoError(t, svc.Reorder(context.Background(), simplesorter.ReorderRequest{ItemIDs: ids}))
	x := createItems(t, svc, "post", "x")[0]

	target := 0
	w := doJSON(t, h, http.MethodPost, "/admin/categories/post/insert", InsertItemRequest{
		ItemID:      x.String(),
		Position:    "before",
		TargetIndex: &target,
		ReturnItem:  true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	var resp InsertItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "Item inserted successfully", resp.Message)
	assert.Equal(t, 0, resp.NewOrder)
	assert.Equal(t, 2, resp.Shifted)
	require.NotNil(t, resp.Item)
	assert.Equal(t, x, resp.Item.ID)

	w = doJSON(t, h, http.MethodGet, "/admin/categories/post/items", nil)
	assert.Equal(t, []uuid.UUID{x, ids[0], ids[1]}, listedIDs(t, w))
}

func TestSorterHandler_InsertItemWithoutReturnItem(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	x := createItems(t, svc, "post", "x")[0]

	target := 0
	w := doJSON(t, h, http.MethodPost, "/admin/categories/post/insert", InsertItemRequest{
		ItemID:      x.String(),
		TargetIndex: &target,
	})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var resp InsertItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Nil(t, resp.Item)
	assert.Equal(t, 1, resp.NewOrder, "position defaults to after")
}

func TestSorterHandler_InsertItemInvalid(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	x := createItems(t, svc, "post", "x")[0]
	zero, negative, maxIndex := 0, -1, math.MaxInt

	tests := []struct {
		name  string
		body  interface{}
		label string
	}{
		{name: "missing item", body: InsertItemRequest{TargetIndex: &zero}, label: "Invalid item ID"},
		{name: "malformed item", body: InsertItemRequest{ItemID: "abc", TargetIndex: &zero}, label: "Invalid item ID"},
		{name: "nil item", body: InsertItemRequest{ItemID: uuid.Nil.String(), TargetIndex: &zero}, label: "Invalid item ID"},
		{name: "unknown item", body: InsertItemRequest{ItemID: uuid.New().String(), TargetIndex: &zero}, label: "Invalid item ID"},
		{name: "target without slot after it", body: InsertItemRequest{ItemID: x.String(), TargetIndex: &maxIndex}, label: "Invalid position"},
		{name: "negative target", body: InsertItemRequest{ItemID: x.String(), TargetIndex: &negative}, label: "Invalid position"},
		{name: "unknown position", body: InsertItemRequest{ItemID: x.String(), Position: "inside", TargetIndex: &zero}, label: "Invalid position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/admin/categories/post/insert", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.label, decodeLabel(t, w))
		})
	}
}

func TestSorterHandler_InsertItemDefaultsTarget(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	ids := createItems(t, svc, "post", "a", "b")
	require.NoError(t, svc.Reorder(context.Background(), simplesorter.ReorderRequest{ItemIDs: ids}))
	x := createItems(t, svc, "post", "x")[0]

	w := doJSON(t, h, http.MethodPost, "/admin/categories/post/insert", map[string]interface{}{
		"item_id":  x.String(),
		"position": "before",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp InsertItemResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, 0, resp.NewOrder)

	w = doJSON(t, h, http.MethodGet, "/admin/categories/post/items", nil)
	assert.Equal(t, []uuid.UUID{x, ids[0], ids[1]}, listedIDs(t, w))
}

func TestSorterHandler_UppercaseIDs(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	ids := createItems(t, svc, "post", "a", "b")

	order := []string{strings.ToUpper(ids[1].String()), strings.ToUpper(ids[0].String())}
	w := doJSON(t, h, http.MethodPut, "/admin/categories/post/order", SaveOrderRequest{Order: order})
	require.Equal(t, http.StatusOK, w.Code)

	target := 1
	w = doJSON(t, h, http.MethodPost, "/admin/categories/post/insert", InsertItemRequest{
		ItemID:      strings.ToUpper(ids[1].String()),
		TargetIndex: &target,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/admin/categories/post/items", nil)
	assert.Equal(t, []uuid.UUID{ids[0], ids[1]}, listedIDs(t, w))
}

func TestSorterHandler_Search(t *testing.T) {
	h, svc := setupSorterHandlerTest(t)
	createItems(t, svc, "post", "Hello world", "Goodbye")

	w := doJSON(t, h, http.MethodGet, "/admin/categories/post/search?term=hello", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var results []simplesorter.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Hello world", results[0].Label)
	assert.Equal(t, "Hello world", results[0].Value)
	assert.Len(t, results[0].Date, len("2006-01-02"))

	w = doJSON(t, h, http.MethodGet, "/admin/categories/post/search?term=h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestSorterHandler_CreateAndGetItem(t *testing.T) {
	h, _ := setupSorterHandlerTest(t)

	w := doJSON(t, h, http.MethodPost, "/admin/categories/page/items", CreateItemRequest{Title: "About"})
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var item simplesorter.Item
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, "page", item.Category)
	assert.Equal(t, "About", item.Title)

	w = doJSON(t, h, http.MethodGet, "/admin/items/"+item.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/admin/items/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item not found", decodeLabel(t, w))

	w = doJSON(t, h, http.MethodGet, "/admin/items/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid item ID", decodeLabel(t, w))
}

func TestSorterHandler_CreateItemValidation(t *testing.T) {
	h, _ := setupSorterHandlerTest(t)

	w := doJSON(t, h, http.MethodPost, "/admin/categories/post/items", CreateItemRequest{Title: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title is required", decodeLabel(t, w))

	w = doJSON(t, h, http.MethodPost, "/admin/categories/post/items", CreateItemRequest{Title: "x", Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status must be one of: publish draft", decodeLabel(t, w))
}

func TestSorterHandler_PublicRoutesAreReadOnly(t *testing.T) {
	h, _ := setupSorterHandlerTest(t)

	w := doJSON(t, h, http.MethodPost, "/public/categories/post/items", CreateItemRequest{Title: "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = doJSON(t, h, http.MethodPut, "/public/categories/post/order", SaveOrderRequest{Order: []string{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// failingService returns a storage failure for every ordering call
type failingService struct {
	simplesorter.Service
}

func (failingService) ListOrdered(ctx context.Context, req simplesorter.ListOrderedRequest) ([]*simplesorter.Item, error) {
	return nil, &simplesorter.OrderError{Op: "get_orders", Err: assert.AnError}
}

func TestSorterHandler_StorageFailure(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/", NewSorterHandler(failingService{}).Routes())

	w := doJSON(t, r, http.MethodGet, "/categories/post/items", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to list items", decodeLabel(t, w))
}
