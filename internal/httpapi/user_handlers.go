package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := s.db.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []store.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// handleCreateUser is the admin-side create: unlike self-registration the
// account starts active.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u store.User
	if err := decodeBody(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if u.Username == "" || u.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	u.ID = 0
	if u.AkunStatus == "" {
		u.AkunStatus = store.AkunAktif
	}
	if err := s.db.CreateUser(&u); err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var u store.User
	if err := decodeBody(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	u.ID = pathID(r)
	if err := s.db.UpdateUser(&u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteUser(pathID(r)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleApproveUser activates a pending registration.
func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	u, err := s.db.UserByID(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	u.AkunStatus = store.AkunAktif
	if err := s.db.UpdateUser(u); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to approve user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
