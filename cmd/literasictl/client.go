package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/appdir"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/localstore"
)

// tokenKey is the client-state key holding the bearer token issued at login.
const tokenKey = "literasi_session"

type client struct {
	base  string
	state *localstore.Store
	http  *http.Client
}

func newClient(addr string) (*client, error) {
	state, err := localstore.Open(appdir.ClientStatePath())
	if err != nil {
		return nil, fmt.Errorf("open client state: %w", err)
	}
	return &client{
		base:  "http://" + addr,
		state: state,
		http:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok, ok := c.state.Get(tokenKey); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s: %w", c.base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *client) saveToken(tok string) error {
	return c.state.Put(tokenKey, tok)
}

func (c *client) clearToken() error {
	return c.state.Delete(tokenKey)
}
