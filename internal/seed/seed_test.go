package seed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/seed"
	"gitlab.com/swifttrack/driver-app/internal/store"
)

func TestFixtureManifestAdmits(t *testing.T) {
	now := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)
	pkgs := seed.Packages(now)

	for _, p := range pkgs {
		require.NoError(t, p.Validate(), p.ID)
	}

	st := store.New(zap.NewNop())
	require.NoError(t, st.Admit(pkgs))

	today := st.ListByDate(now)
	assert.Len(t, today, 6)
	assert.Equal(t, "PKG-1001", today[0].ID)

	assert.Greater(t, len(pkgs), len(today), "history days come along")
}

func TestFixtureNotificationsValid(t *testing.T) {
	for _, n := range seed.Notifications(time.Now()) {
		assert.True(t, n.Kind.Valid(), n.ID)
		assert.NotEmpty(t, n.Title, n.ID)
	}
}

func TestFixtureRouteInputsCoverManifest(t *testing.T) {
	now := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)
	distances := seed.DistanceKm()
	etas := seed.ETAs(now)

	st := store.New(zap.NewNop())
	require.NoError(t, st.Admit(seed.Packages(now)))
	for _, p := range st.ListByDate(now) {
		_, ok := distances[p.ID]
		assert.True(t, ok, "distance for %s", p.ID)
		_, ok = etas[p.ID]
		assert.True(t, ok, "eta for %s", p.ID)
	}
}

func TestFixtureDriver(t *testing.T) {
	d := seed.Driver()
	assert.Equal(t, "DRV-001", d.EmployeeID)
	assert.Equal(t, model.DefaultSettings(), d.Settings)
}
