package settings

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/localstore"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// CacheKey is the local-store key holding the cached settings copy.
const CacheKey = "literasi_settings"

// Backend is the remote settings store. GetSettings returns (nil, nil) when
// no record was ever saved; a non-nil error means the backend is unreachable.
type Backend interface {
	GetSettings() (*store.Settings, error)
	SaveSettings(*store.Settings) error
}

// Default returns the hard-coded settings used before anything was saved and
// when the backend is unreachable with no cached copy.
func Default() store.Settings {
	return store.Settings{
		NamaPerpustakaan: "Literasi Digital PPI",
		AdminPassword:    "admin",
	}
}

// Resolver determines the effective settings record. Precedence: a local
// cached copy, refreshed when the backend carries a newer revision; the
// backend copy; hard-coded defaults. Backend unavailability never raises to
// the caller except on explicit Save.
type Resolver struct {
	mu      sync.Mutex
	cache   *localstore.Store
	backend Backend
	bus     *bus.Bus
	logger  *zap.Logger
	last    store.Settings
	hasLast bool
}

// NewResolver creates a resolver over the local cache and the backend.
func NewResolver(cache *localstore.Store, backend Backend, b *bus.Bus, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cache:   cache,
		backend: backend,
		bus:     b,
		logger:  logger,
	}
}

// Resolve returns the effective settings. It never fails; degraded paths fall
// back to the cache or the defaults silently.
func (r *Resolver) Resolve() store.Settings {
	cached := r.cachedCopy()

	remote, err := r.backend.GetSettings()
	if err != nil {
		if cached != nil {
			return r.remember(*cached)
		}
		r.logger.Warn("settings backend unreachable, using defaults", zap.Error(err))
		return r.remember(Default())
	}
	if remote == nil {
		if cached != nil {
			return r.remember(*cached)
		}
		return r.remember(Default())
	}
	if cached == nil {
		return r.remember(*remote)
	}
	// A newer backend revision supersedes the cache; an equal or older one
	// means the cache is authoritative for this client.
	if remote.Revisi > cached.Revisi {
		r.writeCache(*remote)
		return r.remember(*remote)
	}
	return r.remember(*cached)
}

// Fresh fetches settings from the backend, bypassing the cache. On backend
// failure it returns the last resolved copy along with the error so the
// caller can decide whether to trust it.
func (r *Resolver) Fresh() (store.Settings, error) {
	remote, err := r.backend.GetSettings()
	if err != nil {
		return r.Last(), fmt.Errorf("fetch settings: %w", err)
	}
	if remote == nil {
		return r.remember(Default()), nil
	}
	return r.remember(*remote), nil
}

// Last returns the most recently resolved settings without touching the
// backend or the cache.
func (r *Resolver) Last() store.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasLast {
		return Default()
	}
	return r.last
}

// Save writes settings to the backend with a bumped revision, rewrites the
// local cache, and broadcasts the change. Unlike Resolve, backend failure is
// surfaced to the caller.
func (r *Resolver) Save(s store.Settings) error {
	cur, err := r.backend.GetSettings()
	if err != nil {
		return fmt.Errorf("fetch settings: %w", err)
	}
	if cur != nil {
		s.Revisi = cur.Revisi + 1
	} else {
		s.Revisi = 1
	}

	if err := r.backend.SaveSettings(&s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	r.writeCache(s)
	r.remember(s)
	r.bus.Publish(bus.Event{
		Kind:      bus.KindSettingsChanged,
		Timestamp: time.Now(),
		Payload:   s,
	})
	return nil
}

func (r *Resolver) cachedCopy() *store.Settings {
	raw, ok := r.cache.Get(CacheKey)
	if !ok {
		return nil
	}
	var s store.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		r.logger.Warn("discarding malformed settings cache", zap.Error(err))
		_ = r.cache.Delete(CacheKey)
		return nil
	}
	return &s
}

func (r *Resolver) writeCache(s store.Settings) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := r.cache.Put(CacheKey, string(data)); err != nil {
		r.logger.Warn("failed to write settings cache", zap.Error(err))
	}
}

func (r *Resolver) remember(s store.Settings) store.Settings {
	r.mu.Lock()
	r.last = s
	r.hasLast = true
	r.mu.Unlock()
	return s
}
