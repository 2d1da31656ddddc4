// Package websession keeps the browser-facing state of a user in a signed cookie:
// who is logged in and which flash messages are waiting to be shown.
package websession

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/yigit/tutorledger/internal/app/models"
)

// Severity of a flash message
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Flash is a one-time message for the user
type Flash struct {
	Severity Severity `json:"severity" example:"success"`
	Message  string   `json:"message" example:"Session added"`
}

const (
	keyUserID = "user_id"
	keyRole   = "role"
)

// ErrNoIdentity is returned when the cookie session carries no logged-in user
var ErrNoIdentity = errors.New("no identity in session")

func init() {
	gob.Register(Flash{})
}

// Options configures the cookie store
type Options struct {
	Name   string
	Secret string
	MaxAge int
	Secure bool
}

// Manager reads and writes the cookie session
type Manager struct {
	store sessions.Store
	name  string
}

// NewManager builds a Manager backed by a gorilla CookieStore
func NewManager(opts Options) *Manager {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: opts.Name}
}

// NewManagerWithStore allows any gorilla sessions.Store
func NewManagerWithStore(store sessions.Store, name string) *Manager {
	return &Manager{store: store, name: name}
}

func (m *Manager) session(r *http.Request) (*sessions.Session, error) {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		// a cookie signed with an old secret still yields a fresh, usable session
		if s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// SetIdentity records the logged-in user in the cookie
func (m *Manager) SetIdentity(w http.ResponseWriter, r *http.Request, userID int64, role models.RoleType) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.Values[keyUserID] = userID
	s.Values[keyRole] = string(role)
	return s.Save(r, w)
}

// Identity returns the user stored in the cookie, or ErrNoIdentity
func (m *Manager) Identity(r *http.Request) (int64, models.RoleType, error) {
	s, err := m.session(r)
	if err != nil {
		return 0, "", err
	}
	userID, ok := s.Values[keyUserID].(int64)
	if !ok || userID <= 0 {
		return 0, "", ErrNoIdentity
	}
	role, ok := s.Values[keyRole].(string)
	if !ok || !models.RoleType(role).Valid() {
		return 0, "", ErrNoIdentity
	}
	return userID, models.RoleType(role), nil
}

// ClearIdentity logs the user out of the cookie session while keeping pending flashes
func (m *Manager) ClearIdentity(w http.ResponseWriter, r *http.Request) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	delete(s.Values, keyUserID)
	delete(s.Values, keyRole)
	return s.Save(r, w)
}

// AddFlash queues a message to be shown on the next view
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, severity Severity, message string) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.AddFlash(Flash{Severity: severity, Message: message})
	return s.Save(r, w)
}

// Flashes returns the queued messages and removes them, so each is shown once
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	s, err := m.session(r)
	if err != nil {
		return nil, err
	}
	raw := s.Flashes()
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	if len(raw) > 0 {
		if err := s.Save(r, w); err != nil {
			return nil, err
		}
	}
	return out, nil
}
