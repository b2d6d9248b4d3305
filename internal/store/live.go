package store

import (
	"database/sql"
	"time"
)

// GetLiveStream returns the singleton live-stream record. When none was ever
// saved, a zero record (inactive) is returned.
func (db *DB) GetLiveStream() (*LiveStream, error) {
	var ls LiveStream
	err := db.QueryRow(`SELECT judul, url, aktif, updated_at FROM live_stream WHERE id = 1`).
		Scan(&ls.Judul, &ls.URL, &ls.Aktif, &ls.UpdatedAt)
	if err == sql.ErrNoRows {
		return &LiveStream{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ls, nil
}

// SaveLiveStream writes the singleton live-stream record.
func (db *DB) SaveLiveStream(ls *LiveStream) error {
	ls.UpdatedAt = time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO live_stream (id, judul, url, aktif, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			judul = excluded.judul,
			url = excluded.url,
			aktif = excluded.aktif,
			updated_at = excluded.updated_at`,
		ls.Judul, ls.URL, ls.Aktif, ls.UpdatedAt)
	return err
}
