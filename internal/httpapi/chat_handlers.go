package httpapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/chat"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

type sendMessageRequest struct {
	Pesan          string `json:"pesan"`
	ClientMsgID    string `json:"clientMsgId"`
	ConversationID int64  `json:"conversationId"`
}

// handleSendMessage appends to the flat log. The caller may supply a client
// message id for retry dedupe; otherwise the daemon assigns one. A refresh
// runs immediately after so the sender's next poll already sees the message.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Pesan == "" {
		writeError(w, http.StatusBadRequest, "pesan is required")
		return
	}
	if req.ClientMsgID == "" {
		req.ClientMsgID = uuid.NewString()
	}

	id := identityFrom(r)
	msg := store.ChatMessage{
		ClientMsgID: req.ClientMsgID,
		Pesan:       req.Pesan,
	}
	if id.isAdmin() {
		if req.ConversationID == 0 {
			writeError(w, http.StatusBadRequest, "conversationId is required for admin replies")
			return
		}
		msg.Pengirim = chat.AdminMarker
		msg.IsAdmin = true
		msg.ConversationID = req.ConversationID
	} else {
		msg.Pengirim = id.User.Username
		msg.ConversationID = id.User.ID
	}

	if err := s.db.InsertMessage(&msg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	s.bus.Publish(bus.Event{
		Kind:      bus.KindMessageSent,
		Timestamp: time.Now(),
		Payload:   msg,
	})
	if err := s.sync.Refresh(); err != nil {
		s.logger.Warn("post-send refresh failed", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleListMessages returns the messages visible to the caller: the full log
// for the admin, the conversation-scoped view for a user.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.db.ListMessages()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	id := identityFrom(r)
	if !id.isAdmin() {
		msgs = chat.VisibleMessages(msgs, *id.User)
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleListThreads(w http.ResponseWriter, _ *http.Request) {
	byUser := s.sync.Threads()
	threads := make([]*chat.Thread, 0, len(byUser))
	for _, t := range byUser {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].User.ID < threads[j].User.ID })
	writeJSON(w, http.StatusOK, threads)
}

type markReadRequest struct {
	UserID int64 `json:"userId"`
}

// handleMarkRead advances a read watermark: the admin marks a user's thread
// as seen, a user marks their own.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)

	var err error
	if id.isAdmin() {
		var req markReadRequest
		if decodeErr := decodeBody(r, &req); decodeErr != nil || req.UserID == 0 {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		err = s.db.MarkAdminRead(req.UserID)
	} else {
		err = s.db.MarkUserRead(id.User.ID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}
	if err := s.sync.Refresh(); err != nil {
		s.logger.Warn("post-mark refresh failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
