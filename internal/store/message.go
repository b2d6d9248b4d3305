package store

import "time"

// InsertMessage appends a message to the flat log. Inserts are idempotent on
// client_msg_id so a retried send does not duplicate the row.
func (db *DB) InsertMessage(m *ChatMessage) error {
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().UnixMilli()
	}
	res, err := db.Exec(`
		INSERT OR IGNORE INTO chat_messages (client_msg_id, pengirim, pesan, is_admin, conversation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ClientMsgID, m.Pengirim, m.Pesan, m.IsAdmin, m.ConversationID, m.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Ignored duplicate. LastInsertId would report the connection's
		// previous insert, so look the original row up instead.
		return db.QueryRow(`SELECT id, created_at FROM chat_messages WHERE client_msg_id = ?`,
			m.ClientMsgID).Scan(&m.ID, &m.CreatedAt)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// ListMessages returns the full message log in backend creation-time order.
// The synchronizer always re-reads the whole log; there is no delta fetch.
func (db *DB) ListMessages() ([]ChatMessage, error) {
	rows, err := db.Query(`
		SELECT id, client_msg_id, pengirim, pesan, is_admin, conversation_id, created_at
		FROM chat_messages ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ClientMsgID, &m.Pengirim, &m.Pesan, &m.IsAdmin, &m.ConversationID, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MessageCount returns the total number of messages in the log.
func (db *DB) MessageCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM chat_messages`).Scan(&count)
	return count, err
}

// ReadMarks returns the per-user read watermarks keyed by user id.
func (db *DB) ReadMarks() (map[int64]ChatRead, error) {
	rows, err := db.Query(`SELECT user_id, admin_read_at, user_read_at FROM chat_reads`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	marks := make(map[int64]ChatRead)
	for rows.Next() {
		var r ChatRead
		if err := rows.Scan(&r.UserID, &r.AdminReadAt, &r.UserReadAt); err != nil {
			return nil, err
		}
		marks[r.UserID] = r
	}
	return marks, rows.Err()
}

// MarkAdminRead records that the admin has seen the thread for userID up to now.
func (db *DB) MarkAdminRead(userID int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO chat_reads (user_id, admin_read_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET admin_read_at = excluded.admin_read_at`,
		userID, now)
	return err
}

// MarkUserRead records that the user has seen their thread up to now.
func (db *DB) MarkUserRead(userID int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO chat_reads (user_id, user_read_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET user_read_at = excluded.user_read_at`,
		userID, now)
	return err
}
