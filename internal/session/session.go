// Package session owns login, the driver profile and the per-session state:
// the navigation stack and the settings toggles. Session tokens live in
// memory only and die with the process.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/navigation"
)

var (
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrNoSession      = errors.New("no active session for token")
	ErrUnknownSetting = errors.New("unknown setting")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator is the external authentication collaborator.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*model.Driver, error)
}

// Session is one logged-in driver.
type Session struct {
	Token     string
	Driver    *model.Driver
	Nav       *navigation.Stack
	CreatedAt time.Time

	mu sync.Mutex
}

// ToggleSetting flips a known settings key and returns the new value.
func (s *Session) ToggleSetting(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Driver.Settings[key]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	s.Driver.Settings[key] = !s.Driver.Settings[key]
	return s.Driver.Settings[key], nil
}

// Manager tracks active sessions by token.
type Manager struct {
	auth Authenticator
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(auth Authenticator, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		auth:     auth,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Login authenticates and opens a session. The navigation stack starts on
// the dashboard via replace, so back never returns to the login screen.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	driver, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.log.Warn("login rejected", zap.String("username", creds.Username))
		return nil, err
	}

	s := &Session{
		Token:     uuid.NewString(),
		Driver:    driver.Clone(),
		Nav:       navigation.NewStack(),
		CreatedAt: time.Now(),
	}
	if s.Driver.Settings == nil {
		s.Driver.Settings = model.DefaultSettings()
	}
	if err := s.Nav.Replace(navigation.Entry{Screen: navigation.ScreenDashboard}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	m.log.Info("driver logged in",
		zap.String("driver_id", driver.ID),
		zap.String("driver", driver.Name))
	return s, nil
}

func (m *Manager) Get(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *Manager) Logout(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return ErrNoSession
	}
	delete(m.sessions, token)
	return nil
}
