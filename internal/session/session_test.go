package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/navigation"
	"gitlab.com/swifttrack/driver-app/internal/session"
)

func fixtureDriver() *model.Driver {
	return &model.Driver{
		ID:       "drv-001",
		Name:     "John Anderson",
		Settings: model.DefaultSettings(),
	}
}

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	auth, err := session.NewStaticAuthenticator(fixtureDriver(), "driver", "secret")
	require.NoError(t, err)
	return session.NewManager(auth, zap.NewNop())
}

func TestLoginOpensSessionOnDashboard(t *testing.T) {
	m := newManager(t)

	s, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "John Anderson", s.Driver.Name)

	assert.Equal(t, navigation.ScreenDashboard, s.Nav.Current().Screen)
	_, err = s.Nav.Back()
	require.ErrorIs(t, err, navigation.ErrEmptyStack, "back from dashboard never reaches login")

	got, err := m.Get(s.Token)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := newManager(t)

	_, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "wrong"})
	require.ErrorIs(t, err, session.ErrUnauthorized)

	_, err = m.Login(context.Background(), session.Credentials{Username: "ghost", Password: "secret"})
	require.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	m := newManager(t)
	s, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, m.Logout(s.Token))
	_, err = m.Get(s.Token)
	require.ErrorIs(t, err, session.ErrNoSession)
	require.ErrorIs(t, m.Logout(s.Token), session.ErrNoSession)
}

func TestToggleSetting(t *testing.T) {
	m := newManager(t)
	s, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "secret"})
	require.NoError(t, err)

	v, err := s.ToggleSetting(model.SettingOfflineMode)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = s.ToggleSetting(model.SettingOfflineMode)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = s.ToggleSetting("dark_mode")
	require.ErrorIs(t, err, session.ErrUnknownSetting)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newManager(t)
	a, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "secret"})
	require.NoError(t, err)
	b, err := m.Login(context.Background(), session.Credentials{Username: "driver", Password: "secret"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)

	_, err = a.ToggleSetting(model.SettingPushNotifications)
	require.NoError(t, err)
	assert.True(t, b.Driver.Settings[model.SettingPushNotifications], "settings are per session")
}
