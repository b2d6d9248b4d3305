package store

import (
	"database/sql"
	"time"
)

const userColumns = `id, nama_lengkap, status, alamat, telepon, username, password, akun_status, foto, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.NamaLengkap, &u.Status, &u.Alamat, &u.Telepon,
		&u.Username, &u.Password, &u.AkunStatus, &u.Foto, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and assigns its backend id.
// Username uniqueness is enforced here; use IsUniqueViolation to detect it.
func (db *DB) CreateUser(u *User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().UnixMilli()
	}
	res, err := db.Exec(`
		INSERT INTO users (nama_lengkap, status, alamat, telepon, username, password, akun_status, foto, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.NamaLengkap, u.Status, u.Alamat, u.Telepon, u.Username, u.Password, u.AkunStatus, u.Foto, u.CreatedAt)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

// UserByID returns a user by id, or ErrNotFound.
func (db *DB) UserByID(id int64) (*User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// UserByCredentials returns the user with an exact username and password
// match, or ErrNotFound. Account status is not checked here; the session
// manager rejects inactive accounts with the same generic result as a
// credential mismatch.
func (db *DB) UserByCredentials(username, password string) (*User, error) {
	u, err := scanUser(db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE username = ? AND password = ?`,
		username, password))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// ListUsers returns all users ordered by creation time.
func (db *DB) ListUsers() ([]User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser rewrites all mutable fields of a user. Returns ErrNotFound when
// the id does not exist.
func (db *DB) UpdateUser(u *User) error {
	res, err := db.Exec(`
		UPDATE users SET nama_lengkap = ?, status = ?, alamat = ?, telepon = ?,
			username = ?, password = ?, akun_status = ?, foto = ?
		WHERE id = ?`,
		u.NamaLengkap, u.Status, u.Alamat, u.Telepon, u.Username, u.Password, u.AkunStatus, u.Foto, u.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateUserFoto updates only the photo, the one field a user may change
// about their own record.
func (db *DB) UpdateUserFoto(id int64, foto string) error {
	res, err := db.Exec(`UPDATE users SET foto = ? WHERE id = ?`, foto, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteUser removes a user by id. Returns ErrNotFound when absent.
func (db *DB) DeleteUser(id int64) error {
	res, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UserCount returns the total number of users.
func (db *DB) UserCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
