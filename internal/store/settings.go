package store

import (
	"database/sql"
	"time"
)

// GetSettings returns the singleton settings record, or (nil, nil) when no
// record has ever been saved.
func (db *DB) GetSettings() (*Settings, error) {
	var s Settings
	err := db.QueryRow(`
		SELECT nama_perpustakaan, admin_password, login_logo, admin_photo, revisi
		FROM settings WHERE id = 1`).
		Scan(&s.NamaPerpustakaan, &s.AdminPassword, &s.LoginLogo, &s.AdminPhoto, &s.Revisi)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings writes the singleton settings record as-is, including its
// revision. The resolver owns revision bumping.
func (db *DB) SaveSettings(s *Settings) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO settings (id, nama_perpustakaan, admin_password, login_logo, admin_photo, revisi, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nama_perpustakaan = excluded.nama_perpustakaan,
			admin_password = excluded.admin_password,
			login_logo = excluded.login_logo,
			admin_photo = excluded.admin_photo,
			revisi = excluded.revisi,
			updated_at = excluded.updated_at`,
		s.NamaPerpustakaan, s.AdminPassword, s.LoginLogo, s.AdminPhoto, s.Revisi, now)
	return err
}
