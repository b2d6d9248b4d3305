package session

import (
	"encoding/json"
	"fmt"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// TokenKey is the local-store key holding the serialized session token.
const TokenKey = "literasi_session"

// Token types.
const (
	TypeAdmin = "admin"
	TypeUser  = "user"
)

// Token is the persisted marker of the current authenticated identity:
// {"type":"admin"} for the shared admin role, or {"type":"user","user":{...}}
// carrying the full user record.
type Token struct {
	Type string      `json:"type"`
	User *store.User `json:"user,omitempty"`
}

func encodeToken(t Token) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeToken(raw string) (Token, error) {
	var t Token
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Token{}, err
	}
	switch t.Type {
	case TypeAdmin:
	case TypeUser:
		if t.User == nil {
			return Token{}, fmt.Errorf("user token without user record")
		}
	default:
		return Token{}, fmt.Errorf("unknown token type %q", t.Type)
	}
	return t, nil
}
