package store

import (
	"database/sql"
	"time"
)

// InsertContent adds an item to its collection and assigns the backend id.
func (db *DB) InsertContent(item *ContentItem) error {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	res, err := db.Exec(`
		INSERT INTO content_items (kind, judul, deskripsi, kategori, penulis, file_url, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.Judul, item.Deskripsi, item.Kategori, item.Penulis, item.FileURL, item.ImageURL, item.CreatedAt)
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}

// ListContent returns every item of a collection, newest first.
func (db *DB) ListContent(kind Kind) ([]ContentItem, error) {
	rows, err := db.Query(`
		SELECT id, kind, judul, deskripsi, kategori, penulis, file_url, image_url, created_at
		FROM content_items WHERE kind = ? ORDER BY created_at DESC, id DESC`, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContentItem
	for rows.Next() {
		var it ContentItem
		if err := rows.Scan(&it.ID, &it.Kind, &it.Judul, &it.Deskripsi, &it.Kategori, &it.Penulis, &it.FileURL, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetContent returns one item by collection and id, or ErrNotFound.
func (db *DB) GetContent(kind Kind, id int64) (*ContentItem, error) {
	var it ContentItem
	err := db.QueryRow(`
		SELECT id, kind, judul, deskripsi, kategori, penulis, file_url, image_url, created_at
		FROM content_items WHERE kind = ? AND id = ?`, kind, id).
		Scan(&it.ID, &it.Kind, &it.Judul, &it.Deskripsi, &it.Kategori, &it.Penulis, &it.FileURL, &it.ImageURL, &it.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateContent rewrites the mutable fields of an item. ErrNotFound when the
// (kind, id) pair does not exist.
func (db *DB) UpdateContent(item *ContentItem) error {
	res, err := db.Exec(`
		UPDATE content_items SET judul = ?, deskripsi = ?, kategori = ?, penulis = ?, file_url = ?, image_url = ?
		WHERE kind = ? AND id = ?`,
		item.Judul, item.Deskripsi, item.Kategori, item.Penulis, item.FileURL, item.ImageURL, item.Kind, item.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SearchContent matches items whose judul, deskripsi, penulis or kategori
// contain the query. An empty kind searches every collection.
func (db *DB) SearchContent(kind Kind, query string, limit int) ([]ContentItem, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
		SELECT id, kind, judul, deskripsi, kategori, penulis, file_url, image_url, created_at
		FROM content_items
		WHERE (judul LIKE ? OR deskripsi LIKE ? OR penulis LIKE ? OR kategori LIKE ?)`
	pat := "%" + query + "%"
	args := []any{pat, pat, pat, pat}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContentItem
	for rows.Next() {
		var it ContentItem
		if err := rows.Scan(&it.ID, &it.Kind, &it.Judul, &it.Deskripsi, &it.Kategori, &it.Penulis, &it.FileURL, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteContent removes an item. ErrNotFound when absent.
func (db *DB) DeleteContent(kind Kind, id int64) error {
	res, err := db.Exec(`DELETE FROM content_items WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
