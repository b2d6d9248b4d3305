package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/session"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	Type  string      `json:"type"`
	User  *store.User `json:"user,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.manager.Login(req.Username, req.Password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "backend unreachable")
		return
	}

	state, user := s.manager.Current()
	resp := loginResponse{}
	switch state {
	case session.AdminSession:
		resp.Type = session.TypeAdmin
	case session.UserSession:
		resp.Type = session.TypeUser
		resp.User = user
	}
	var uid int64
	if user != nil {
		uid = user.ID
	}
	tok, err := s.mintToken(resp.Type, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	resp.Token = tok
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var u store.User
	if err := decodeBody(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if u.Username == "" || u.Password == "" || u.NamaLengkap == "" {
		writeError(w, http.StatusBadRequest, "namaLengkap, username and password are required")
		return
	}
	if u.Username == session.AdminUsername {
		writeError(w, http.StatusBadRequest, "username is reserved")
		return
	}

	// Self-registered accounts wait for admin approval.
	u.ID = 0
	u.AkunStatus = store.AkunNonaktif
	if err := s.db.CreateUser(&u); err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.manager.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	writeJSON(w, http.StatusOK, loginResponse{Type: id.Typ, User: id.User})
}

type fotoRequest struct {
	Foto string `json:"foto"`
}

// handleUpdateOwnFoto lets a user change the one field of their own record
// they are allowed to: the profile photo.
func (s *Server) handleUpdateOwnFoto(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id.User == nil {
		writeError(w, http.StatusForbidden, "user session required")
		return
	}
	var req fotoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.db.UpdateUserFoto(id.User.ID, req.Foto); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update photo")
		return
	}
	id.User.Foto = req.Foto
	writeJSON(w, http.StatusOK, id.User)
}
