package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS item (
    id         TEXT PRIMARY KEY,
    category   TEXT NOT NULL DEFAULT 'post',
    parent_id  TEXT NULL REFERENCES item(id),
    title      TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'publish',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_item_category ON item(category, status);

CREATE TABLE IF NOT EXISTS item_meta (
    item_id    TEXT NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    meta_key   TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    updated_at DATETIME NOT NULL,
    PRIMARY KEY (item_id, meta_key)
);
`

// Repository implements simplesorter.Repository using SQLite.
type Repository struct {
	db *sqlx.DB
}

var _ simplesorter.Repository = (*Repository)(nil)

// row mirrors the item table.
type row struct {
	ID        uuid.UUID     `db:"id"`
	Category  string        `db:"category"`
	ParentID  uuid.NullUUID `db:"parent_id"`
	Title     string        `db:"title"`
	Status    string        `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (r row) toItem() *simplesorter.Item {
	item := &simplesorter.Item{
		ID:        r.ID,
		Category:  r.Category,
		Title:     r.Title,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ParentID.Valid {
		p := r.ParentID.UUID
		item.ParentID = &p
	}
	return item
}

// New opens a SQLite database and creates the schema.
func New(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) CreateItem(ctx context.Context, item *simplesorter.Item) error {
	parent := uuid.NullUUID{}
	if item.ParentID != nil {
		parent = uuid.NullUUID{UUID: *item.ParentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item (id, category, parent_id, title, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Category, parent, item.Title, item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create item %s: %w", item.ID, err)
	}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*simplesorter.Item, error) {
	var rec row
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM item WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, simplesorter.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return rec.toItem(), nil
}

func (r *Repository) ListItems(ctx context.Context, filter simplesorter.ListFilter) ([]*simplesorter.Item, error) {
	query := "SELECT * FROM item WHERE 1=1"
	var args []any

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.ParentID != nil {
		query += " AND parent_id = ?"
		args = append(args, *filter.ParentID)
	}

	query += " ORDER BY created_at DESC, id"

	return r.selectItems(ctx, "list items", query, args...)
}

func (r *Repository) SearchItems(ctx context.Context, filter simplesorter.SearchFilter) ([]*simplesorter.Item, error) {
	query := "SELECT * FROM item WHERE title LIKE ? ESCAPE '\\'"
	args := []any{"%" + escapeLike(filter.Term) + "%"}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return r.selectItems(ctx, "search items", query, args...)
}

func (r *Repository) selectItems(ctx context.Context, op, query string, args ...any) ([]*simplesorter.Item, error) {
	var recs []row
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items := make([]*simplesorter.Item, len(recs))
	for i, rec := range recs {
		items[i] = rec.toItem()
	}
	return items, nil
}

func (r *Repository) GetMeta(ctx context.Context, itemID uuid.UUID, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		"SELECT meta_value FROM item_meta WHERE item_id = ? AND meta_key = ?", itemID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get meta %s/%s: %w", itemID, key, err)
	}
	return value, true, nil
}

func (r *Repository) SetMeta(ctx context.Context, itemID uuid.UUID, key, value string) error {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT COUNT(1) FROM item WHERE id = ?", itemID); err != nil {
		return fmt.Errorf("set meta %s/%s: %w", itemID, key, err)
	}
	if exists == 0 {
		return simplesorter.ErrItemNotFound
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_meta (item_id, meta_key, meta_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id, meta_key) DO UPDATE SET
			meta_value = excluded.meta_value,
			updated_at = excluded.updated_at
	`, itemID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set meta %s/%s: %w", itemID, key, err)
	}
	return nil
}

func (r *Repository) GetMetaBulk(ctx context.Context, itemIDs []uuid.UUID, key string) (map[uuid.UUID]string, error) {
	result := make(map[uuid.UUID]string)
	if len(itemIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}

	query, args, err := sqlx.In("SELECT item_id, meta_value FROM item_meta WHERE meta_key = ? AND item_id IN (?)", key, ids)
	if err != nil {
		return nil, fmt.Errorf("build meta bulk query: %w", err)
	}

	var recs []struct {
		ItemID uuid.UUID `db:"item_id"`
		Value  string    `db:"meta_value"`
	}
	if err := r.db.SelectContext(ctx, &recs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get meta bulk: %w", err)
	}
	for _, rec := range recs {
		result[rec.ItemID] = rec.Value
	}
	return result, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
