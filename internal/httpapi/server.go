package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/chat"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/config"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/content"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/session"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/settings"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// Server is the JSON HTTP API surface of the daemon.
type Server struct {
	logger    *zap.Logger
	bus       *bus.Bus
	db        *store.DB
	resolver  *settings.Resolver
	manager   *session.Manager
	sync      *chat.Synchronizer
	content   *content.Service
	jwtSecret string

	handler   http.Handler
	httpSrv   *http.Server
	addr      string
	boundAddr string
}

// NewServer wires the API over the service layer. The server does not listen
// until Start is called.
func NewServer(cfg *config.Config, logger *zap.Logger, b *bus.Bus, db *store.DB, resolver *settings.Resolver,
	manager *session.Manager, sync *chat.Synchronizer, contentSvc *content.Service) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:    logger,
		bus:       b,
		db:        db,
		resolver:  resolver,
		manager:   manager,
		sync:      sync,
		content:   contentSvc,
		jwtSecret: cfg.JWTSecret,
		addr:      cfg.ListenAddr,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/session", s.requireAuth(s.handleSession)).Methods(http.MethodGet)
	api.HandleFunc("/me/foto", s.requireAuth(s.handleUpdateOwnFoto)).Methods(http.MethodPut)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.requireAdmin(s.handlePutSettings)).Methods(http.MethodPut)

	api.HandleFunc("/users", s.requireAdmin(s.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.requireAdmin(s.handleCreateUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", s.requireAdmin(s.handleUpdateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", s.requireAdmin(s.handleDeleteUser)).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id:[0-9]+}/approve", s.requireAdmin(s.handleApproveUser)).Methods(http.MethodPost)

	api.HandleFunc("/search", s.handleSearchContent).Methods(http.MethodGet)
	api.HandleFunc("/content/{kind}", s.handleListContent).Methods(http.MethodGet)
	api.HandleFunc("/content/{kind}", s.requireAdmin(s.handleAddContent)).Methods(http.MethodPost)
	api.HandleFunc("/content/{kind}/{id:[0-9]+}", s.requireAdmin(s.handleUpdateContent)).Methods(http.MethodPut)
	api.HandleFunc("/content/{kind}/{id:[0-9]+}", s.requireAdmin(s.handleDeleteContent)).Methods(http.MethodDelete)

	api.HandleFunc("/chat/messages", s.requireAuth(s.handleListMessages)).Methods(http.MethodGet)
	api.HandleFunc("/chat/messages", s.requireAuth(s.handleSendMessage)).Methods(http.MethodPost)
	api.HandleFunc("/chat/threads", s.requireAdmin(s.handleListThreads)).Methods(http.MethodGet)
	api.HandleFunc("/chat/read", s.requireAuth(s.handleMarkRead)).Methods(http.MethodPost)

	api.HandleFunc("/notifications", s.requireAuth(s.handleListNotifications)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", s.requireAuth(s.handleMarkNotificationRead)).Methods(http.MethodPost)
	api.HandleFunc("/notifications/read-all", s.requireAuth(s.handleMarkAllNotificationsRead)).Methods(http.MethodPost)

	api.HandleFunc("/live", s.handleGetLive).Methods(http.MethodGet)
	api.HandleFunc("/live", s.requireAdmin(s.handlePutLive)).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	s.handler = c.Handler(r)
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string { return s.boundAddr }

// Start binds the listen address and serves until Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.boundAddr = ln.Addr().String()
	s.httpSrv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
