package chat

import (
	"testing"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

var (
	userSiti = store.User{ID: 1, Username: "siti", NamaLengkap: "Siti Aminah", AkunStatus: store.AkunAktif}
	userBudi = store.User{ID: 2, Username: "budi", NamaLengkap: "Budi Santoso", AkunStatus: store.AkunAktif}
)

func TestBuildThreadsGroupsByConversationID(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "siti", Pesan: "halo", ConversationID: 1, CreatedAt: 100},
		{ID: 2, Pengirim: AdminMarker, Pesan: "ya?", IsAdmin: true, ConversationID: 1, CreatedAt: 200},
		{ID: 3, Pengirim: "budi", Pesan: "tanya", ConversationID: 2, CreatedAt: 300},
	}

	threads := BuildThreads([]store.User{userSiti, userBudi}, msgs, nil)
	if len(threads) != 2 {
		t.Fatalf("got %d threads, want 2", len(threads))
	}
	if got := len(threads[1].Messages); got != 2 {
		t.Errorf("siti thread has %d messages, want 2", got)
	}
	if got := len(threads[2].Messages); got != 1 {
		t.Errorf("budi thread has %d messages, want 1", got)
	}
	// Admin reply with a conversation id is correctly attributed.
	if !threads[1].Messages[1].IsAdmin {
		t.Error("admin reply missing from siti thread")
	}
}

func TestBuildThreadsLegacyAttributionByName(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "siti", Pesan: "via username", CreatedAt: 100},
		{ID: 2, Pengirim: "Budi Santoso", Pesan: "via full name", CreatedAt: 200},
		{ID: 3, Pengirim: "tidak dikenal", Pesan: "stray", CreatedAt: 300},
	}

	threads := BuildThreads([]store.User{userSiti, userBudi}, msgs, nil)
	if got := len(threads[1].Messages); got != 1 {
		t.Errorf("siti thread has %d messages, want 1", got)
	}
	if got := len(threads[2].Messages); got != 1 {
		t.Errorf("budi thread has %d messages, want 1", got)
	}
}

// Legacy admin messages carry no conversation id and no recipient, so they
// cannot be reattached to any thread after a reload. They must be silently
// dropped from per-user views, never crash the rebuild.
func TestBuildThreadsDropsLegacyAdminMessages(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: AdminMarker, Pesan: "reply lama", IsAdmin: true, CreatedAt: 100},
	}

	threads := BuildThreads([]store.User{userSiti}, msgs, nil)
	if got := len(threads[1].Messages); got != 0 {
		t.Errorf("legacy admin message reattached to a thread: %d messages", got)
	}
}

func TestBuildThreadsDeletedUserConversation(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "ghost", Pesan: "x", ConversationID: 99, CreatedAt: 100},
	}
	threads := BuildThreads([]store.User{userSiti}, msgs, nil)
	if len(threads) != 1 {
		t.Fatalf("got %d threads, want 1", len(threads))
	}
	if len(threads[1].Messages) != 0 {
		t.Error("message for deleted user leaked into another thread")
	}
}

func TestBuildThreadsUnreadFlags(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "siti", Pesan: "a", ConversationID: 1, CreatedAt: 100},
		{ID: 2, Pengirim: AdminMarker, Pesan: "b", IsAdmin: true, ConversationID: 1, CreatedAt: 200},
	}
	marks := map[int64]store.ChatRead{
		1: {UserID: 1, AdminReadAt: 150, UserReadAt: 50},
	}

	threads := BuildThreads([]store.User{userSiti}, msgs, marks)
	th := threads[1]
	if th.UnreadByAdmin {
		t.Error("admin already read the user message at 100")
	}
	if !th.UnreadByUser {
		t.Error("user has not read the admin reply at 200")
	}

	// Admin catches up.
	marks[1] = store.ChatRead{UserID: 1, AdminReadAt: 150, UserReadAt: 250}
	threads = BuildThreads([]store.User{userSiti}, msgs, marks)
	if threads[1].UnreadByUser {
		t.Error("user read watermark not honored")
	}
}

func TestVisibleMessagesScopedByConversation(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "siti", ConversationID: 1, CreatedAt: 100},
		{ID: 2, Pengirim: AdminMarker, IsAdmin: true, ConversationID: 1, CreatedAt: 200},
		{ID: 3, Pengirim: "budi", ConversationID: 2, CreatedAt: 300},
		{ID: 4, Pengirim: AdminMarker, IsAdmin: true, ConversationID: 2, CreatedAt: 400},
	}

	visible := VisibleMessages(msgs, userSiti)
	if len(visible) != 2 {
		t.Fatalf("got %d messages, want 2", len(visible))
	}
	for _, m := range visible {
		if m.ConversationID != 1 {
			t.Errorf("message %d from another conversation leaked", m.ID)
		}
	}
}

// Legacy rows have no conversation scope: a user sees their own sends plus
// every admin-authored legacy message system-wide.
func TestVisibleMessagesLegacyRows(t *testing.T) {
	msgs := []store.ChatMessage{
		{ID: 1, Pengirim: "siti", CreatedAt: 100},
		{ID: 2, Pengirim: "Siti Aminah", CreatedAt: 200},
		{ID: 3, Pengirim: AdminMarker, IsAdmin: true, CreatedAt: 300},
		{ID: 4, Pengirim: "budi", CreatedAt: 400},
	}

	visible := VisibleMessages(msgs, userSiti)
	if len(visible) != 3 {
		t.Fatalf("got %d messages, want 3", len(visible))
	}
	if visible[0].ID != 1 || visible[1].ID != 2 || visible[2].ID != 3 {
		t.Errorf("wrong selection or order: %+v", visible)
	}
}
