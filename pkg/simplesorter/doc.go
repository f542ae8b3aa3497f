// Package simplesorter provides manual ordering of content items within a
// category: committing a full drag-and-drop result, moving a single item
// before or after a position, and inserting an item that has never been
// ordered.
//
// Each item carries one integer sort order stored as item metadata under
// SortOrderKey. The Service reads the whole category, plans the shifts for
// every affected item and writes them back through the MetaStore
// collaborator. Writes are not transactional; a partially applied
// reposition is repaired by the next full Reorder.
//
// Ordering Rules
//
// A category listing is ordered by sort order ascending. Items without a
// value follow the ordered ones in the collaborator's default order (newest
// first). When no item in the category has a value, the listing falls back
// entirely to newest first.
//
// Repository implementations (memory, Postgres, SQLite) live under repo/.
package simplesorter
