package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// handleGetSettings is public: the login page needs the library name and logo
// before anyone is authenticated. The admin password never leaves the daemon.
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	cfg := s.resolver.Resolve()
	cfg.AdminPassword = ""
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in store.Settings
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	// An empty password field means "keep the current one".
	if in.AdminPassword == "" {
		in.AdminPassword = s.resolver.Resolve().AdminPassword
	}
	if err := s.resolver.Save(in); err != nil {
		s.logger.Error("failed to save settings", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "failed to save settings")
		return
	}
	out := s.resolver.Last()
	out.AdminPassword = ""
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLive(w http.ResponseWriter, _ *http.Request) {
	ls, err := s.db.GetLiveStream()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load live stream")
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (s *Server) handlePutLive(w http.ResponseWriter, r *http.Request) {
	var ls store.LiveStream
	if err := decodeBody(r, &ls); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.db.SaveLiveStream(&ls); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save live stream")
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifs, err := s.db.ListNotifications(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifs == nil {
		notifs = []store.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := s.db.MarkNotificationRead(id); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to mark notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.MarkAllNotificationsRead(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
