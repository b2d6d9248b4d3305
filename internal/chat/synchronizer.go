package chat

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// Synchronizer re-derives the per-user thread snapshot from the flat message
// log on a fixed interval and on demand after a send. There is no delta
// fetch: every cycle reads the whole log, matching the polling contract of
// the chat views.
type Synchronizer struct {
	db       *store.DB
	bus      *bus.Bus
	logger   *zap.Logger
	interval time.Duration
	cancel   context.CancelFunc

	mu      sync.RWMutex
	threads map[int64]*Thread
	digest  string
}

// NewSynchronizer creates a synchronizer polling at the given interval.
func NewSynchronizer(db *store.DB, b *bus.Bus, logger *zap.Logger, interval time.Duration) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		db:       db,
		bus:      b,
		logger:   logger,
		interval: interval,
		threads:  make(map[int64]*Thread),
	}
}

// Start begins the polling loop. An immediate refresh runs before the first
// tick so the snapshot is populated at startup.
func (s *Synchronizer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop stops the polling loop.
func (s *Synchronizer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Synchronizer) loop(ctx context.Context) {
	if err := s.Refresh(); err != nil {
		s.logger.Warn("initial chat refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(); err != nil {
				// Degrade to the previous snapshot; a stale view is the
				// worst case, never a crash.
				s.logger.Warn("chat refresh failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Refresh rebuilds the snapshot from the backend and publishes
// chat.threads_updated when it changed.
func (s *Synchronizer) Refresh() error {
	users, err := s.db.ListUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	msgs, err := s.db.ListMessages()
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	marks, err := s.db.ReadMarks()
	if err != nil {
		return fmt.Errorf("read marks: %w", err)
	}

	threads := BuildThreads(users, msgs, marks)
	digest := snapshotDigest(users, msgs, marks)

	s.mu.Lock()
	changed := digest != s.digest
	s.threads = threads
	s.digest = digest
	s.mu.Unlock()

	if changed {
		s.bus.Publish(bus.Event{
			Kind:      bus.KindThreadsUpdated,
			Timestamp: time.Now(),
			Payload:   len(threads),
		})
	}
	return nil
}

// Threads returns the current snapshot.
func (s *Synchronizer) Threads() map[int64]*Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]*Thread, len(s.threads))
	for id, t := range s.threads {
		out[id] = t
	}
	return out
}

// Thread returns the snapshot thread for one user, or nil.
func (s *Synchronizer) Thread(userID int64) *Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threads[userID]
}

func snapshotDigest(users []store.User, msgs []store.ChatMessage, marks map[int64]store.ChatRead) string {
	var lastID int64
	if len(msgs) > 0 {
		lastID = msgs[len(msgs)-1].ID
	}
	var markSum int64
	for _, r := range marks {
		markSum += r.AdminReadAt + r.UserReadAt
	}
	// Hash the user fields the thread views render, so a rename or photo
	// change publishes an update even when the message log is unchanged.
	h := fnv.New64a()
	for _, u := range users {
		fmt.Fprintf(h, "%d|%s|%s|%s|%s;", u.ID, u.Username, u.NamaLengkap, u.AkunStatus, u.Foto)
	}
	return fmt.Sprintf("%d/%d/%d/%d/%x", len(users), len(msgs), lastID, markSum, h.Sum64())
}
