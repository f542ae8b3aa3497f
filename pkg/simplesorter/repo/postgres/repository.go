package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplesorter.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

var _ simplesorter.Repository = (*Repository)(nil)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Schema creates the tables used by the repository.
const Schema = `
CREATE TABLE IF NOT EXISTS item (
    id         UUID PRIMARY KEY,
    category   VARCHAR(64) NOT NULL DEFAULT 'post',
    parent_id  UUID NULL REFERENCES item(id),
    title      TEXT NOT NULL,
    status     VARCHAR(20) NOT NULL DEFAULT 'publish',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_item_category ON item(category, status);
CREATE INDEX IF NOT EXISTS idx_item_parent ON item(parent_id);

CREATE TABLE IF NOT EXISTS item_meta (
    item_id    UUID NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    meta_key   VARCHAR(255) NOT NULL,
    meta_value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (item_id, meta_key)
);
`

// EnsureSchema creates the repository tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("item already exists")
		case "23503": // foreign_key_violation
			return simplesorter.ErrItemNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplesorter.ErrItemNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Item operations

const itemColumns = `id, category, parent_id, title, status, created_at, updated_at`

func (r *Repository) CreateItem(ctx context.Context, item *simplesorter.Item) error {
	query := `
		INSERT INTO item (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.Category, nullUUID(item.ParentID), item.Title,
		item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create item", err)
	}

	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*simplesorter.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM item WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get item", err)
	}
	return item, nil
}

func (r *Repository) ListItems(ctx context.Context, filter simplesorter.ListFilter) ([]*simplesorter.Item, error) {
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM item`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	return r.queryItems(ctx, "list items", query, args...)
}

func (r *Repository) SearchItems(ctx context.Context, filter simplesorter.SearchFilter) ([]*simplesorter.Item, error) {
	args := []interface{}{filter.Term}
	query := `SELECT ` + itemColumns + ` FROM item WHERE title ILIKE '%' || $1 || '%'`

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryItems(ctx, "search items", query, args...)
}

func (r *Repository) queryItems(ctx context.Context, operation, query string, args ...interface{}) ([]*simplesorter.Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var items []*simplesorter.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}

	return items, nil
}

// Metadata operations

func (r *Repository) GetMeta(ctx context.Context, itemID uuid.UUID, key string) (string, bool, error) {
	query := `SELECT meta_value FROM item_meta WHERE item_id = $1 AND meta_key = $2`

	var value string
	err := r.db.QueryRow(ctx, query, itemID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, r.handlePostgresError("get meta", err)
	}
	return value, true, nil
}

func (r *Repository) SetMeta(ctx context.Context, itemID uuid.UUID, key, value string) error {
	query := `
		INSERT INTO item_meta (item_id, meta_key, meta_value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (item_id, meta_key) DO UPDATE SET
			meta_value = EXCLUDED.meta_value,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, itemID, key, value); err != nil {
		return r.handlePostgresError("set meta", err)
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

	query := `SELECT item_id, meta_value FROM item_meta WHERE meta_key = $1 AND item_id = ANY($2::uuid[])`
	rows, err := r.db.Query(ctx, query, key, ids)
	if err != nil {
		return nil, r.handlePostgresError("get meta bulk", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, r.handlePostgresError("get meta bulk", err)
		}
		result[id] = value
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get meta bulk", err)
	}

	return result, nil
}

func scanItem(row pgx.Row) (*simplesorter.Item, error) {
	var item simplesorter.Item
	var parent uuid.NullUUID
	if err := row.Scan(
		&item.ID, &item.Category, &parent, &item.Title,
		&item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.UUID
		item.ParentID = &p
	}
	return &item, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
