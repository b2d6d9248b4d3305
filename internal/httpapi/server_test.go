package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/chat"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/config"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/content"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/localstore"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/session"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/settings"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	dir := t.TempDir()

	db, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ls, err := localstore.Open(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}

	b := bus.New()
	resolver := settings.NewResolver(ls, db, b, nil)
	manager := session.NewManager(ls, db, resolver, b, nil)
	synchronizer := chat.NewSynchronizer(db, b, nil, 3*time.Second)
	contentSvc := content.NewService(db, b, nil)

	cfg := &config.Config{
		ListenAddr:  "127.0.0.1:0",
		JWTSecret:   "test-secret",
		CORSOrigins: []string{"*"},
	}
	return NewServer(cfg, nil, b, db, resolver, manager, synchronizer, contentSvc), db
}

func doReq(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResp[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func adminToken(t *testing.T, s *Server) string {
	t.Helper()
	rec := doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "admin", "password": "admin",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: %d %s", rec.Code, rec.Body.String())
	}
	return decodeResp[loginResponse](t, rec).Token
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doReq(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestAdminLoginDefaultPassword(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d", rec.Code)
	}

	tok := adminToken(t, s)
	rec = doReq(t, s, http.MethodGet, "/api/v1/session", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session check: %d", rec.Code)
	}
	if resp := decodeResp[loginResponse](t, rec); resp.Type != session.TypeAdmin {
		t.Errorf("type = %q", resp.Type)
	}
}

func TestSettingsUpdateAndRotatedPassword(t *testing.T) {
	s, _ := newTestServer(t)
	tok := adminToken(t, s)

	rec := doReq(t, s, http.MethodPut, "/api/v1/settings", tok, store.Settings{
		NamaPerpustakaan: "Perpustakaan Baru",
		AdminPassword:    "rahasia",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings: %d %s", rec.Code, rec.Body.String())
	}
	saved := decodeResp[store.Settings](t, rec)
	if saved.Revisi != 1 {
		t.Errorf("revisi = %d, want 1", saved.Revisi)
	}
	if saved.AdminPassword != "" {
		t.Error("admin password leaked in response")
	}

	// The public settings endpoint reflects the change, password stripped.
	rec = doReq(t, s, http.MethodGet, "/api/v1/settings", "", nil)
	pub := decodeResp[store.Settings](t, rec)
	if pub.NamaPerpustakaan != "Perpustakaan Baru" || pub.AdminPassword != "" {
		t.Errorf("got %+v", pub)
	}

	// The old admin password no longer works; the rotated one does.
	rec = doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "admin", "password": "admin",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password still accepted: %d", rec.Code)
	}
	rec = doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "admin", "password": "rahasia",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("rotated password rejected: %d", rec.Code)
	}
}

func TestRegisterApproveLogin(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doReq(t, s, http.MethodPost, "/api/v1/register", "", map[string]string{
		"namaLengkap": "Siti Aminah", "username": "siti", "password": "pw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	created := decodeResp[store.User](t, rec)
	if created.AkunStatus != store.AkunNonaktif {
		t.Errorf("fresh registration should be pending, got %q", created.AkunStatus)
	}

	// Pending accounts cannot log in, with the same generic rejection as a
	// wrong password.
	rec = doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "siti", "password": "pw",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("pending login: got %d", rec.Code)
	}

	admin := adminToken(t, s)
	rec = doReq(t, s, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/approve", created.ID), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}

	rec = doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "siti", "password": "pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("approved login: %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeResp[loginResponse](t, rec)
	if resp.Type != session.TypeUser || resp.User == nil || resp.User.Username != "siti" {
		t.Errorf("got %+v", resp)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s, _ := newTestServer(t)
	body := map[string]string{"namaLengkap": "A", "username": "siti", "password": "pw"}

	if rec := doReq(t, s, http.MethodPost, "/api/v1/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	if rec := doReq(t, s, http.MethodPost, "/api/v1/register", "", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: got %d, want 409", rec.Code)
	}
}

func TestReservedAdminUsername(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doReq(t, s, http.MethodPost, "/api/v1/register", "", map[string]string{
		"namaLengkap": "X", "username": "admin", "password": "pw",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func userToken(t *testing.T, s *Server, db *store.DB, username string) (string, *store.User) {
	t.Helper()
	u := &store.User{NamaLengkap: username, Username: username, Password: "pw", AkunStatus: store.AkunAktif}
	if err := db.CreateUser(u); err != nil {
		t.Fatal(err)
	}
	rec := doReq(t, s, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": username, "password": "pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("user login: %d %s", rec.Code, rec.Body.String())
	}
	return decodeResp[loginResponse](t, rec).Token, u
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	s, db := newTestServer(t)
	tok, _ := userToken(t, s, db, "budi")

	if rec := doReq(t, s, http.MethodGet, "/api/v1/users", tok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user on /users: got %d, want 403", rec.Code)
	}
	if rec := doReq(t, s, http.MethodGet, "/api/v1/users", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous on /users: got %d, want 401", rec.Code)
	}
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s, db := newTestServer(t)
	tok, u := userToken(t, s, db, "budi")

	u.AkunStatus = store.AkunNonaktif
	if err := db.UpdateUser(u); err != nil {
		t.Fatal(err)
	}
	rec := doReq(t, s, http.MethodGet, "/api/v1/session", tok, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated user still authenticated: %d", rec.Code)
	}
}

func TestContentLifecycleCreatesNotification(t *testing.T) {
	s, _ := newTestServer(t)
	admin := adminToken(t, s)

	rec := doReq(t, s, http.MethodPost, "/api/v1/content/buletin", admin, store.ContentItem{
		Judul: "Edisi Ramadhan", Penulis: "Redaksi",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add content: %d %s", rec.Code, rec.Body.String())
	}
	item := decodeResp[store.ContentItem](t, rec)
	if item.ID == 0 || item.Kind != store.KindBuletin {
		t.Errorf("got %+v", item)
	}

	// Listing is public.
	rec = doReq(t, s, http.MethodGet, "/api/v1/content/buletin", "", nil)
	items := decodeResp[[]store.ContentItem](t, rec)
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}

	// The publish raised a dashboard notification.
	rec = doReq(t, s, http.MethodGet, "/api/v1/notifications", admin, nil)
	notifs := decodeResp[[]store.Notification](t, rec)
	if len(notifs) != 1 || notifs[0].Tipe != "buletin" {
		t.Errorf("got %+v", notifs)
	}

	item.Judul = "Edisi Syawal"
	rec = doReq(t, s, http.MethodPut, fmt.Sprintf("/api/v1/content/buletin/%d", item.ID), admin, item)
	if rec.Code != http.StatusOK {
		t.Fatalf("update content: %d", rec.Code)
	}

	rec = doReq(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/content/buletin/%d", item.ID), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete content: %d", rec.Code)
	}
	rec = doReq(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/content/buletin/%d", item.ID), admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: got %d, want 404", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	admin := adminToken(t, s)

	doReq(t, s, http.MethodPost, "/api/v1/content/buku_umum", admin, store.ContentItem{
		Judul: "Fiqih Praktis",
	})
	doReq(t, s, http.MethodPost, "/api/v1/content/artikel", admin, store.ContentItem{
		Judul: "Sejarah", Deskripsi: "kajian fiqih",
	})

	rec := doReq(t, s, http.MethodGet, "/api/v1/search?q=fiqih", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	if items := decodeResp[[]store.ContentItem](t, rec); len(items) != 2 {
		t.Errorf("got %d items", len(items))
	}

	rec = doReq(t, s, http.MethodGet, "/api/v1/search?q=fiqih&kind=buku_umum", "", nil)
	if items := decodeResp[[]store.ContentItem](t, rec); len(items) != 1 {
		t.Errorf("scoped: got %d items", len(items))
	}

	if rec := doReq(t, s, http.MethodGet, "/api/v1/search", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: got %d", rec.Code)
	}
}

func TestUnknownContentKind(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := doReq(t, s, http.MethodGet, "/api/v1/content/tabloid", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestChatRoundTrip(t *testing.T) {
	s, db := newTestServer(t)
	userTok, u := userToken(t, s, db, "siti")

	rec := doReq(t, s, http.MethodPost, "/api/v1/chat/messages", userTok, map[string]string{
		"pesan": "assalamualaikum",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: %d %s", rec.Code, rec.Body.String())
	}
	sent := decodeResp[store.ChatMessage](t, rec)
	if sent.ConversationID != u.ID || sent.ClientMsgID == "" {
		t.Errorf("got %+v", sent)
	}

	admin := adminToken(t, s)
	rec = doReq(t, s, http.MethodGet, "/api/v1/chat/threads", admin, nil)
	threads := decodeResp[[]chat.Thread](t, rec)
	if len(threads) != 1 || !threads[0].UnreadByAdmin {
		t.Fatalf("got %+v", threads)
	}

	rec = doReq(t, s, http.MethodPost, "/api/v1/chat/messages", admin, map[string]any{
		"pesan": "waalaikumsalam", "conversationId": u.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin reply: %d %s", rec.Code, rec.Body.String())
	}

	// The user sees both sides of their conversation and nothing else.
	rec = doReq(t, s, http.MethodGet, "/api/v1/chat/messages", userTok, nil)
	msgs := decodeResp[[]store.ChatMessage](t, rec)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if !msgs[1].IsAdmin || msgs[1].ConversationID != u.ID {
		t.Errorf("reply not scoped to conversation: %+v", msgs[1])
	}

	// Admin marks the thread read; the unread flag clears.
	rec = doReq(t, s, http.MethodPost, "/api/v1/chat/read", admin, map[string]int64{"userId": u.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: %d", rec.Code)
	}
	rec = doReq(t, s, http.MethodGet, "/api/v1/chat/threads", admin, nil)
	threads = decodeResp[[]chat.Thread](t, rec)
	if threads[0].UnreadByAdmin {
		t.Error("unread flag not cleared after mark read")
	}
}

func TestRetriedSendDoesNotDuplicate(t *testing.T) {
	s, db := newTestServer(t)
	tok, _ := userToken(t, s, db, "siti")

	body := map[string]string{"pesan": "halo", "clientMsgId": "abc-123"}
	rec := doReq(t, s, http.MethodPost, "/api/v1/chat/messages", tok, body)
	first := decodeResp[store.ChatMessage](t, rec)

	// An unrelated send in between must not leak its id into the retry.
	doReq(t, s, http.MethodPost, "/api/v1/chat/messages", tok, map[string]string{
		"pesan": "ada kabar?", "clientMsgId": "abc-456",
	})
	rec = doReq(t, s, http.MethodPost, "/api/v1/chat/messages", tok, body)
	retried := decodeResp[store.ChatMessage](t, rec)
	if retried.ID != first.ID {
		t.Errorf("retried send id = %d, want original id %d", retried.ID, first.ID)
	}

	n, err := db.MessageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("message count = %d, want 2", n)
	}
}

func TestLiveStreamRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	// Unset: a zero, inactive record.
	rec := doReq(t, s, http.MethodGet, "/api/v1/live", "", nil)
	if ls := decodeResp[store.LiveStream](t, rec); ls.Aktif {
		t.Errorf("got %+v", ls)
	}

	admin := adminToken(t, s)
	rec = doReq(t, s, http.MethodPut, "/api/v1/live", admin, map[string]any{
		"judul": "Kajian Subuh", "url": "https://youtube.com/watch?v=x", "aktif": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put live: %d %s", rec.Code, rec.Body.String())
	}

	rec = doReq(t, s, http.MethodGet, "/api/v1/live", "", nil)
	ls := decodeResp[store.LiveStream](t, rec)
	if !ls.Aktif || ls.Judul != "Kajian Subuh" {
		t.Errorf("got %+v", ls)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	s, db := newTestServer(t)
	tok, _ := userToken(t, s, db, "siti")

	n := &store.Notification{Tipe: "informasi", Judul: "Baru", Pesan: "x"}
	if err := db.InsertNotification(n); err != nil {
		t.Fatal(err)
	}

	rec := doReq(t, s, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", n.ID), tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: %d", rec.Code)
	}
	rec = doReq(t, s, http.MethodGet, "/api/v1/notifications", tok, nil)
	notifs := decodeResp[[]store.Notification](t, rec)
	if !notifs[0].Dibaca {
		t.Error("notification still unread")
	}
}

func TestOwnFotoUpdate(t *testing.T) {
	s, db := newTestServer(t)
	tok, u := userToken(t, s, db, "siti")

	rec := doReq(t, s, http.MethodPut, "/api/v1/me/foto", tok, map[string]string{"foto": "avatar.png"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put foto: %d %s", rec.Code, rec.Body.String())
	}
	got, err := db.UserByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Foto != "avatar.png" {
		t.Errorf("foto = %q", got.Foto)
	}
}
