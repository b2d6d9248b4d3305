package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/localstore"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// State is the session lifecycle state.
type State string

const (
	LoggedOut      State = "LOGGED_OUT"
	PendingRestore State = "PENDING_RESTORE"
	AdminSession   State = "ADMIN"
	UserSession    State = "USER"
)

// AdminUsername is the reserved login name of the shared admin role. There is
// exactly one admin identity, authenticated by the settings-held password.
const AdminUsername = "admin"

// ErrInvalidCredentials is the generic rejection for any failed login:
// unknown username, wrong password, or an inactive account. The three cases
// are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("session: invalid credentials")

// ErrSessionExpired is returned when a previously valid session references an
// account that no longer exists or is inactive.
var ErrSessionExpired = errors.New("session: expired")

// Directory looks up users in the backend. UserByID returns
// store.ErrNotFound for a missing account; any other error means the backend
// is unreachable, which is treated differently from a missing account.
type Directory interface {
	UserByID(id int64) (*store.User, error)
	UserByCredentials(username, password string) (*store.User, error)
}

// SettingsSource supplies the admin credential. Fresh bypasses any local
// cache; Last is the in-memory fallback used when the backend is down.
type SettingsSource interface {
	Fresh() (store.Settings, error)
	Last() store.Settings
}

// Manager establishes and restores the authenticated identity and owns the
// persisted session token.
type Manager struct {
	mu       sync.Mutex
	state    State
	user     *store.User
	tokens   *localstore.Store
	dir      Directory
	settings SettingsSource
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewManager creates a manager in the LoggedOut state.
func NewManager(tokens *localstore.Store, dir Directory, settings SettingsSource, b *bus.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		state:    LoggedOut,
		tokens:   tokens,
		dir:      dir,
		settings: settings,
		bus:      b,
		logger:   logger,
	}
}

// Current returns the state and, for user sessions, the user record.
func (m *Manager) Current() (State, *store.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.user
}

// Restore re-establishes a prior session from the persisted token. It never
// fails: malformed or absent tokens yield LoggedOut.
func (m *Manager) Restore() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.tokens.Get(TokenKey)
	if !ok {
		m.state = LoggedOut
		m.user = nil
		return m.state
	}
	m.state = PendingRestore

	tok, err := decodeToken(raw)
	if err != nil {
		m.logger.Warn("discarding malformed session token", zap.Error(err))
		_ = m.tokens.Delete(TokenKey)
		m.state = LoggedOut
		m.user = nil
		return m.state
	}

	if tok.Type == TypeAdmin {
		// Admin identity is trusted from the token alone.
		m.state = AdminSession
		m.user = nil
		return m.state
	}

	latest, err := m.dir.UserByID(tok.User.ID)
	switch {
	case err == nil && latest.AkunStatus == store.AkunAktif:
		// Self-heal: rewrite the token with the refreshed record so stale
		// cached fields (photo, name) do not survive.
		m.user = latest
		m.state = UserSession
		m.persistLocked(Token{Type: TypeUser, User: latest})

	case errors.Is(err, store.ErrNotFound) || err == nil:
		// Account deleted or deactivated: the session is over.
		_ = m.tokens.Delete(TokenKey)
		m.state = LoggedOut
		m.user = nil
		m.bus.Publish(bus.Event{
			Kind:      bus.KindSessionExpired,
			Timestamp: time.Now(),
			Payload:   tok.User.ID,
		})

	default:
		// Backend unreachable: keep the stale record and flag degraded
		// connectivity instead of logging the user out.
		m.logger.Warn("session validation unreachable, keeping stale record",
			zap.Int64("user_id", tok.User.ID), zap.Error(err))
		m.user = tok.User
		m.state = UserSession
		m.bus.Publish(bus.Event{
			Kind:      bus.KindSessionDegraded,
			Timestamp: time.Now(),
			Payload:   tok.User.ID,
		})
	}
	return m.state
}

// Login authenticates either the shared admin role (username "admin") or a
// user account. No state changes on failure.
func (m *Manager) Login(username, password string) error {
	if username == AdminUsername {
		return m.loginAdmin(password)
	}

	u, err := m.dir.UserByCredentials(username, password)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u.AkunStatus != store.AkunAktif {
		// Same generic rejection as a wrong password, so account state is
		// not leaked.
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	m.state = UserSession
	m.user = u
	m.persistLocked(Token{Type: TypeUser, User: u})
	m.mu.Unlock()
	return nil
}

func (m *Manager) loginAdmin(password string) error {
	// Fetch fresh, ignoring the local cache; a rotated password must win.
	s, err := m.settings.Fresh()
	if err != nil {
		m.logger.Warn("settings backend unreachable, comparing against last known", zap.Error(err))
		s = m.settings.Last()
	}
	if password != s.AdminPassword {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	m.state = AdminSession
	m.user = nil
	m.persistLocked(Token{Type: TypeAdmin})
	m.mu.Unlock()
	return nil
}

// Logout clears the persisted token unconditionally.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.tokens.Delete(TokenKey)
	m.state = LoggedOut
	m.user = nil
}

// ValidateUser re-checks a user session against current backend state.
// Returns ErrSessionExpired when the account is gone or inactive; a transport
// error passes through so the caller can keep trusting the stale record.
func (m *Manager) ValidateUser(id int64) (*store.User, error) {
	u, err := m.dir.UserByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	if u.AkunStatus != store.AkunAktif {
		return nil, ErrSessionExpired
	}
	return u, nil
}

func (m *Manager) persistLocked(t Token) {
	raw, err := encodeToken(t)
	if err != nil {
		m.logger.Error("failed to encode session token", zap.Error(err))
		return
	}
	if err := m.tokens.Put(TokenKey, raw); err != nil {
		m.logger.Error("failed to persist session token", zap.Error(err))
	}
}
