package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/rs/zerolog/log"
)

// sessionDir is the per-user directory for captured browser sessions.
const sessionDir = ".scrapex/sessions"

// Cookie is the persisted form of a browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"http_only"`
	Secure   bool    `json:"secure"`
}

// SessionData holds the cookies captured after a successful login so later
// runs can skip the password flow while they remain valid.
type SessionData struct {
	Username  string    `json:"username"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// SaveSession persists the session cookies for the given username.
func SaveSession(username string, cookies []*network.Cookie) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies to save")
	}

	data := &SessionData{
		Username:  username,
		Cookies:   make([]Cookie, len(cookies)),
		CreatedAt: time.Now(),
	}
	maxExpires := 0.0
	for i, c := range cookies {
		data.Cookies[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		data.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}

	path, err := sessionPath(username)
	if err != nil {
		return err
	}
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, blob, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	log.Debug().Str("path", path).Int("cookies", len(cookies)).Msg("Session saved")
	return nil
}

// LoadSession retrieves a previously saved session, or an error when none
// exists or it cannot be parsed.
func LoadSession(username string) (*SessionData, error) {
	path, err := sessionPath(username)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no saved session: %w", err)
	}
	var data SessionData
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	return &data, nil
}

// DeleteSession removes the saved session, ignoring a missing file.
func DeleteSession(username string) {
	if path, err := sessionPath(username); err == nil {
		_ = os.Remove(path)
	}
}

// Valid reports whether the session has not expired. Sessions without
// expiring cookies are trusted for a day.
func (s *SessionData) Valid() bool {
	if s == nil || len(s.Cookies) == 0 {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return time.Since(s.CreatedAt) < 24*time.Hour
	}
	return time.Now().Before(s.ExpiresAt)
}

// CookieParams converts the stored cookies for injection into a browser.
func (s *SessionData) CookieParams() []*network.CookieParam {
	params := make([]*network.CookieParam, len(s.Cookies))
	for i, c := range s.Cookies {
		params[i] = &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
	}
	return params
}

func sessionPath(username string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, sessionDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return filepath.Join(dir, username+".json"), nil
}
