package content

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// Labels shown in notifications per content collection.
var kindLabels = map[store.Kind]string{
	store.KindBuletin:      "Buletin",
	store.KindKaryaTulis:   "Karya Tulis",
	store.KindBukuUmum:     "Buku Umum",
	store.KindKaryaAsatidz: "Karya Asatidz",
	store.KindMateriDakwah: "Materi Dakwah",
	store.KindKhutbahJumat: "Khutbah Jumat",
	store.KindInformasi:    "Informasi",
	store.KindBanner:       "Banner",
	store.KindArtikel:      "Artikel",
}

// Service is the single CRUD surface behind every content collection. All
// collections behave identically; Kind selects the one to operate on.
type Service struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
}

// NewService creates a content service over the store.
func NewService(db *store.DB, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, bus: b, logger: logger}
}

// FetchAll returns every item of a collection, newest first.
func (s *Service) FetchAll(kind store.Kind) ([]store.ContentItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	return s.db.ListContent(kind)
}

// Search matches items against a free-text query, across every collection
// when kind is empty.
func (s *Service) Search(kind store.Kind, query string, limit int) ([]store.ContentItem, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	return s.db.SearchContent(kind, query, limit)
}

// Add publishes a new item: the backend assigns the id, and a notification
// is created so the end-user dashboard picks it up.
func (s *Service) Add(item *store.ContentItem) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("unknown content kind %q", item.Kind)
	}
	if err := s.db.InsertContent(item); err != nil {
		return fmt.Errorf("insert %s: %w", item.Kind, err)
	}

	notif := &store.Notification{
		Tipe:  string(item.Kind),
		Judul: fmt.Sprintf("%s Baru", kindLabels[item.Kind]),
		Pesan: item.Judul,
	}
	if err := s.db.InsertNotification(notif); err != nil {
		// The item is already published; a missing notification is not
		// worth failing the whole add.
		s.logger.Warn("failed to create notification",
			zap.String("kind", string(item.Kind)), zap.Error(err))
		return nil
	}
	s.bus.Publish(bus.Event{
		Kind:      bus.KindNotificationCreated,
		Timestamp: time.Now(),
		Payload:   *notif,
	})
	return nil
}

// Update rewrites an existing item. store.ErrNotFound when the id is gone.
func (s *Service) Update(item *store.ContentItem) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("unknown content kind %q", item.Kind)
	}
	if err := s.db.UpdateContent(item); err != nil {
		return fmt.Errorf("update %s %d: %w", item.Kind, item.ID, err)
	}
	return nil
}

// Delete removes an item. store.ErrNotFound when the id is gone.
func (s *Service) Delete(kind store.Kind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	if err := s.db.DeleteContent(kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}
