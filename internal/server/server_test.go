package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/delivery"
	"gitlab.com/swifttrack/driver-app/internal/feed"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/proof"
	"gitlab.com/swifttrack/driver-app/internal/seed"
	"gitlab.com/swifttrack/driver-app/internal/server"
	"gitlab.com/swifttrack/driver-app/internal/session"
	"gitlab.com/swifttrack/driver-app/internal/store"
	"gitlab.com/swifttrack/driver-app/internal/viewmodel"
)

type fixture struct {
	srv    *httptest.Server
	token  string
	client *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.New(zap.NewNop())
	now := time.Now()
	require.NoError(t, st.Admit(seed.Packages(now)))

	machine := delivery.NewMachine(st, delivery.DefaultCatalog(), zap.NewNop())
	fd := feed.New(zap.NewNop())
	st.Subscribe(fd.ObserveStore())
	for _, n := range seed.Notifications(now) {
		_, err := fd.Add(n)
		require.NoError(t, err)
	}

	auth, err := session.NewStaticAuthenticator(seed.Driver(), "driver", "secret")
	require.NoError(t, err)
	sessions := session.NewManager(auth, zap.NewNop())

	proofs := proof.NewRegistry(
		adapters.NewLocalCamera(nil),
		&adapters.LocalSignaturePad{},
		adapters.NewLocalMediaLibrary(nil),
		zap.NewNop(),
	)

	s := server.New(
		sessions, st, machine, fd, proofs,
		adapters.NewLogTelephony(nil),
		adapters.NewLogDirections(nil),
		server.RouteInputs{
			ETA:        viewmodel.StaticETAProvider(seed.ETAs(now)),
			Traffic:    viewmodel.StaticTrafficSignal(seed.TrafficDelays()),
			DistanceKm: seed.DistanceKm(),
			RouteID:    "RT-TEST",
		},
		zap.NewNop(),
	)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	f := &fixture{srv: ts, client: ts.Client()}
	f.token = f.login(t, "driver", "secret", http.StatusOK)
	return f
}

func (f *fixture) login(t *testing.T, username, password string, wantStatus int) string {
	t.Helper()
	body, err := json.Marshal(session.Credentials{Username: username, Password: password})
	require.NoError(t, err)

	resp, err := f.client.Post(f.srv.URL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	if wantStatus != http.StatusOK {
		return ""
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, f.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.login(t, "driver", "wrong", http.StatusUnauthorized)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/screens/manifest", nil)
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer bogus-token")
	resp, err = f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestManifestScreen(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/screens/manifest?filter=pending&search=alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m viewmodel.Manifest
	decode(t, resp, &m)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "PKG-1001", m.Packages[0].ID)
	assert.Equal(t, 6, m.Summary.Total, "summary covers today's unfiltered manifest")
}

func TestDeliveryLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/packages/PKG-1001/transit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pkg model.Package
	decode(t, resp, &pkg)
	assert.Equal(t, model.StatusInTransit, pkg.Status)

	resp = f.do(t, http.MethodPost, "/packages/PKG-1001/delivered", model.ProofOfDelivery{
		RecipientName: "Alice Johnson",
		PhotoImage:    "photo-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &pkg)
	assert.Equal(t, model.StatusDelivered, pkg.Status)

	// Terminal: replays conflict.
	resp = f.do(t, http.MethodPost, "/packages/PKG-1001/transit", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown package is 404", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/packages/PKG-404/transit", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("incomplete proof is 422", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/packages/PKG-1003/delivered", model.ProofOfDelivery{})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown failure reason is 422", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/packages/PKG-1003/failed", map[string]string{"reason_id": "dog_ate_it"})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("missing note is 422", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/packages/PKG-1003/failed", map[string]string{"reason_id": "other"})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestProofFlowOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/proof/PKG-1004/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/proof/PKG-1004/photo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/proof/PKG-1004/recipient", map[string]string{"name": "David Brown"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/proof/PKG-1004/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pkg model.Package
	decode(t, resp, &pkg)
	assert.Equal(t, model.StatusDelivered, pkg.Status)
	require.NotNil(t, pkg.Proof)
	assert.Equal(t, "David Brown", pkg.Proof.RecipientName)

	// The flow is gone once complete hands over the proof.
	resp = f.do(t, http.MethodPost, "/proof/PKG-1004/complete", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProofCompleteWithoutArtifactsIs422(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/proof/PKG-1003/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/proof/PKG-1003/complete", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Still open after the rejection.
	resp = f.do(t, http.MethodPost, "/proof/PKG-1003/cancel", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProofOpenRejectsTerminalPackage(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/proof/PKG-1002/open", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "PKG-1002 is already delivered")
}

func TestNotificationsOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/screens/notifications?filter=priority", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Notifications []model.Notification `json:"notifications"`
		UnreadCount   int                  `json:"unread_count"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "update-003", list.Notifications[0].ID)
	assert.Equal(t, 3, list.UnreadCount)

	resp = f.do(t, http.MethodPost, "/notifications/update-003/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var opened struct {
		Notification model.Notification `json:"notification"`
		NavigatedTo  *struct {
			Screen    string `json:"screen"`
			PackageID string `json:"package_id"`
		} `json:"navigated_to"`
	}
	decode(t, resp, &opened)
	assert.True(t, opened.Notification.Read)
	require.NotNil(t, opened.NavigatedTo)
	assert.Equal(t, "package-details", opened.NavigatedTo.Screen)
	assert.Equal(t, "PKG-1004", opened.NavigatedTo.PackageID)

	resp = f.do(t, http.MethodPost, "/notifications/read-all", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/screens/notifications?filter=unread", nil)
	decode(t, resp, &list)
	assert.Empty(t, list.Notifications)
	assert.Equal(t, 0, list.UnreadCount)
}

func TestRouteScreen(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/screens/route", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var route model.Route
	decode(t, resp, &route)
	assert.Equal(t, "RT-TEST", route.RouteID)
	require.Len(t, route.Stops, 6, "today's packages only")

	currents := 0
	for _, s := range route.Stops {
		if s.Status == model.StopCurrent || s.Status == model.StopDelayed {
			currents++
		}
	}
	assert.Equal(t, 1, currents)
}

func TestNavTracksScreens(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/screens/manifest", nil)
	resp.Body.Close()
	resp = f.do(t, http.MethodGet, "/screens/package-details/PKG-1001", nil)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/nav", nil)
	var nav struct {
		Current struct {
			Screen    string `json:"screen"`
			PackageID string `json:"package_id"`
		} `json:"current"`
		Path []json.RawMessage `json:"path"`
	}
	decode(t, resp, &nav)
	assert.Equal(t, "package-details", nav.Current.Screen)
	assert.Equal(t, "PKG-1001", nav.Current.PackageID)
	assert.Len(t, nav.Path, 3, "dashboard, manifest, package-details")

	resp = f.do(t, http.MethodPost, "/nav/back", nil)
	var back struct {
		Current struct {
			Screen string `json:"screen"`
		} `json:"current"`
	}
	decode(t, resp, &back)
	assert.Equal(t, "manifest", back.Current.Screen)
}

func TestToggleSettingOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/settings/offline_mode", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled struct {
		Setting string `json:"setting"`
		Value   bool   `json:"value"`
	}
	decode(t, resp, &toggled)
	assert.True(t, toggled.Value)

	resp = f.do(t, http.MethodPost, "/settings/dark_mode", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptimizeRouteEmitsNotification(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/route/optimize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var optimized struct {
		Notification model.Notification `json:"notification"`
	}
	decode(t, resp, &optimized)
	assert.Equal(t, model.KindRoute, optimized.Notification.Kind)
	assert.Contains(t, optimized.Notification.Title, "optimization")
}

func TestFailureReasonsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/failure-reasons", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reasons struct {
		Reasons []delivery.FailureReason `json:"reasons"`
	}
	decode(t, resp, &reasons)
	require.Len(t, reasons.Reasons, 9)
	assert.Equal(t, "recipient_not_available", reasons.Reasons[0].ID)
}

func TestHealthAndMetricsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.Get(f.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = f.client.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
