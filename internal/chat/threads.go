package chat

import "github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"

// AdminMarker is the literal sender string of admin-authored legacy messages.
const AdminMarker = "Admin"

// Thread is the derived per-user conversation view. It is never persisted;
// every rebuild starts from the flat log.
type Thread struct {
	User          store.User          `json:"user"`
	Messages      []store.ChatMessage `json:"messages"`
	UnreadByAdmin bool                `json:"unreadByAdmin"`
	UnreadByUser  bool                `json:"unreadByUser"`
}

// BuildThreads reconciles the flat message log into one thread per known
// user. Messages carrying a conversation id are grouped by it. Legacy rows
// without one are attributed by exact sender match against a user's username
// or full display name; legacy admin rows match no user and are dropped from
// per-user views — they remain in the raw log but cannot be reattached.
func BuildThreads(users []store.User, msgs []store.ChatMessage, marks map[int64]store.ChatRead) map[int64]*Thread {
	threads := make(map[int64]*Thread, len(users))
	byName := make(map[string]int64, len(users)*2)
	for _, u := range users {
		threads[u.ID] = &Thread{User: u}
		if u.Username != "" {
			byName[u.Username] = u.ID
		}
		if u.NamaLengkap != "" {
			byName[u.NamaLengkap] = u.ID
		}
	}

	for _, m := range msgs {
		id := m.ConversationID
		if id == 0 && !m.IsAdmin {
			id = byName[m.Pengirim]
		}
		t, ok := threads[id]
		if !ok {
			// Unattributable: legacy admin reply, or a conversation whose
			// user was deleted.
			continue
		}
		t.Messages = append(t.Messages, m)
	}

	for id, t := range threads {
		mark := marks[id]
		for _, m := range t.Messages {
			if m.IsAdmin {
				if m.CreatedAt > mark.UserReadAt {
					t.UnreadByUser = true
				}
			} else {
				if m.CreatedAt > mark.AdminReadAt {
					t.UnreadByAdmin = true
				}
			}
		}
	}
	return threads
}

// VisibleMessages filters the flat log to what the given user should see:
// their own conversation, plus legacy rows they sent and every legacy
// admin-authored row (the old data model had no way to scope those).
func VisibleMessages(msgs []store.ChatMessage, self store.User) []store.ChatMessage {
	var out []store.ChatMessage
	for _, m := range msgs {
		if m.ConversationID != 0 {
			if m.ConversationID == self.ID {
				out = append(out, m)
			}
			continue
		}
		switch m.Pengirim {
		case self.Username, self.NamaLengkap, AdminMarker:
			out = append(out, m)
		}
	}
	return out
}
