package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/session"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

const tokenTTL = 7 * 24 * time.Hour

type apiClaims struct {
	Typ string `json:"typ"`
	UID int64  `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// identity is the authenticated caller attached to the request context.
type identity struct {
	Typ  string // session.TypeAdmin or session.TypeUser
	User *store.User
}

func (id identity) isAdmin() bool { return id.Typ == session.TypeAdmin }

type ctxKey struct{}

func identityFrom(r *http.Request) identity {
	id, _ := r.Context().Value(ctxKey{}).(identity)
	return id
}

func (s *Server) mintToken(typ string, uid int64) (string, error) {
	now := time.Now()
	claims := apiClaims{
		Typ: typ,
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func (s *Server) parseToken(raw string) (*apiClaims, error) {
	var claims apiClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

// requireAuth authenticates the bearer token and, for user tokens, re-checks
// the account against current backend state so a deactivated or deleted
// account loses access on its next request.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		id := identity{Typ: claims.Typ}
		if claims.Typ == session.TypeUser {
			u, err := s.manager.ValidateUser(claims.UID)
			if errors.Is(err, session.ErrSessionExpired) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "backend unreachable")
				return
			}
			id.User = u
		} else if claims.Typ != session.TypeAdmin {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	}
}

// requireAdmin allows only the shared admin role through.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r).isAdmin() {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
