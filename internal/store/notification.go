package store

import "time"

// InsertNotification creates a notification row and assigns its id.
func (db *DB) InsertNotification(n *Notification) error {
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	res, err := db.Exec(`
		INSERT INTO notifications (tipe, judul, pesan, dibaca, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.Tipe, n.Judul, n.Pesan, n.Dibaca, n.CreatedAt)
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

// ListNotifications returns notifications, newest first.
func (db *DB) ListNotifications(limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, tipe, judul, pesan, dibaca, created_at
		FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notifs []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Tipe, &n.Judul, &n.Pesan, &n.Dibaca, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationRead flags one notification as read. ErrNotFound when absent.
func (db *DB) MarkNotificationRead(id int64) error {
	res, err := db.Exec(`UPDATE notifications SET dibaca = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MarkAllNotificationsRead flags every notification as read.
func (db *DB) MarkAllNotificationsRead() error {
	_, err := db.Exec(`UPDATE notifications SET dibaca = 1 WHERE dibaca = 0`)
	return err
}
