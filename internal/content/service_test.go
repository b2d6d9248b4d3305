package content

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAddAssignsIDAndNotifies(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	ch, unsub := b.Subscribe("notification.", 10)
	defer unsub()
	svc := NewService(db, b, nil)

	item := &store.ContentItem{Kind: store.KindBuletin, Judul: "Edisi Syawal"}
	if err := svc.Add(item); err != nil {
		t.Fatal(err)
	}
	if item.ID == 0 {
		t.Fatal("id not assigned")
	}

	// A notification row was created for the dashboard.
	notifs, err := db.ListNotifications(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(notifs) != 1 || notifs[0].Tipe != "buletin" || notifs[0].Pesan != "Edisi Syawal" {
		t.Errorf("got %+v", notifs)
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindNotificationCreated {
			t.Errorf("kind = %q", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification.created event")
	}
}

func TestFetchAllPerCollection(t *testing.T) {
	svc := NewService(testDB(t), bus.New(), nil)

	if err := svc.Add(&store.ContentItem{Kind: store.KindArtikel, Judul: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(&store.ContentItem{Kind: store.KindBanner, Judul: "B"}); err != nil {
		t.Fatal(err)
	}

	items, err := svc.FetchAll(store.KindArtikel)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Judul != "A" {
		t.Errorf("got %+v", items)
	}
}

func TestUnknownKindRejected(t *testing.T) {
	svc := NewService(testDB(t), bus.New(), nil)

	if _, err := svc.FetchAll("tabloid"); err == nil {
		t.Error("FetchAll with unknown kind should fail")
	}
	if err := svc.Add(&store.ContentItem{Kind: "tabloid"}); err == nil {
		t.Error("Add with unknown kind should fail")
	}
}

func TestSearchAcrossCollections(t *testing.T) {
	svc := NewService(testDB(t), bus.New(), nil)

	items := []store.ContentItem{
		{Kind: store.KindBukuUmum, Judul: "Fiqih Praktis", Penulis: "Ust. Ahmad"},
		{Kind: store.KindArtikel, Judul: "Sejarah Pesantren", Deskripsi: "kajian fiqih dan sejarah"},
		{Kind: store.KindBanner, Judul: "Promo"},
	}
	for i := range items {
		if err := svc.Add(&items[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.Search("", "fiqih", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("global search: got %d items", len(got))
	}

	got, err = svc.Search(store.KindBukuUmum, "fiqih", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != store.KindBukuUmum {
		t.Errorf("scoped search: got %+v", got)
	}

	if _, err := svc.Search("tabloid", "x", 0); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(testDB(t), bus.New(), nil)

	item := &store.ContentItem{Kind: store.KindInformasi, Judul: "Pengumuman"}
	if err := svc.Add(item); err != nil {
		t.Fatal(err)
	}

	item.Judul = "Pengumuman (revisi)"
	if err := svc.Update(item); err != nil {
		t.Fatal(err)
	}
	items, _ := svc.FetchAll(store.KindInformasi)
	if items[0].Judul != "Pengumuman (revisi)" {
		t.Errorf("judul = %q", items[0].Judul)
	}

	if err := svc.Delete(store.KindInformasi, item.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(store.KindInformasi, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}
