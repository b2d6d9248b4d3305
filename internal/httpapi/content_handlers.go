package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

func pathKind(r *http.Request) (store.Kind, bool) {
	k := store.Kind(mux.Vars(r)["kind"])
	return k, k.Valid()
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	items, err := s.content.FetchAll(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list content")
		return
	}
	if items == nil {
		items = []store.ContentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSearchContent is the public free-text search over published content.
// An optional kind parameter narrows it to one collection.
func (s *Server) handleSearchContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	kind := store.Kind(r.URL.Query().Get("kind"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.content.Search(kind, query, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown content kind")
		return
	}
	if items == nil {
		items = []store.ContentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	var item store.ContentItem
	if err := decodeBody(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	item.ID = 0
	item.Kind = kind
	if err := s.content.Add(&item); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add content")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	var item store.ContentItem
	if err := decodeBody(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	item.Kind = kind
	item.ID = pathID(r)
	if err := s.content.Update(&item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "content not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update content")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return
	}
	if err := s.content.Delete(kind, pathID(r)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "content not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
