// Package server exposes the driver session over HTTP: one route per screen
// and per driver action. All delivery semantics live in the inner packages;
// handlers translate requests, call in, and map errors to statuses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/delivery"
	"gitlab.com/swifttrack/driver-app/internal/feed"
	"gitlab.com/swifttrack/driver-app/internal/proof"
	"gitlab.com/swifttrack/driver-app/internal/session"
	"gitlab.com/swifttrack/driver-app/internal/store"
	"gitlab.com/swifttrack/driver-app/internal/viewmodel"
)

type ctxKey int

const sessionKey ctxKey = 0

// RouteInputs are the upstream signals the route derivation needs but cannot
// compute: arrival estimates, traffic flags and planned leg distances.
type RouteInputs struct {
	ETA        viewmodel.ETAProvider
	Traffic    viewmodel.TrafficSignal
	DistanceKm map[string]float64
	RouteID    string
}

type Server struct {
	sessions   *session.Manager
	store      *store.Store
	machine    *delivery.Machine
	feed       *feed.Feed
	proofs     *proof.Registry
	telephony  adapters.Telephony
	directions adapters.Directions
	route      RouteInputs
	log        *zap.Logger

	server *http.Server
}

func New(
	sessions *session.Manager,
	st *store.Store,
	machine *delivery.Machine,
	fd *feed.Feed,
	proofs *proof.Registry,
	telephony adapters.Telephony,
	directions adapters.Directions,
	route RouteInputs,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if route.RouteID == "" {
		route.RouteID = "RT-" + time.Now().Format("20060102")
	}
	return &Server{
		sessions:   sessions,
		store:      st,
		machine:    machine,
		feed:       fd,
		proofs:     proofs,
		telephony:  telephony,
		directions: directions,
		route:      route,
		log:        log,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.log.Info("http server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	auth := r.NewRoute().Subrouter()
	auth.Use(s.authMiddleware)

	auth.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	auth.HandleFunc("/screens/dashboard", s.handleDashboard).Methods(http.MethodGet)
	auth.HandleFunc("/screens/manifest", s.handleManifest).Methods(http.MethodGet)
	auth.HandleFunc("/screens/older-deliveries", s.handleOlderDeliveries).Methods(http.MethodGet)
	auth.HandleFunc("/screens/route", s.handleRoute).Methods(http.MethodGet)
	auth.HandleFunc("/screens/notifications", s.handleNotifications).Methods(http.MethodGet)
	auth.HandleFunc("/screens/profile", s.handleProfile).Methods(http.MethodGet)
	auth.HandleFunc("/screens/package-details/{id}", s.handlePackageDetails).Methods(http.MethodGet)
	auth.HandleFunc("/screens/proof-of-delivery/{id}", s.handleProofScreen).Methods(http.MethodGet)

	auth.HandleFunc("/failure-reasons", s.handleFailureReasons).Methods(http.MethodGet)

	auth.HandleFunc("/packages/{id}/transit", s.handleMarkInTransit).Methods(http.MethodPost)
	auth.HandleFunc("/packages/{id}/delivered", s.handleMarkDelivered).Methods(http.MethodPost)
	auth.HandleFunc("/packages/{id}/failed", s.handleMarkFailed).Methods(http.MethodPost)
	auth.HandleFunc("/packages/{id}/call", s.handleCallCustomer).Methods(http.MethodPost)
	auth.HandleFunc("/packages/{id}/directions", s.handleGetDirections).Methods(http.MethodPost)

	auth.HandleFunc("/proof/{id}/open", s.handleProofOpen).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/photo", s.handleProofPhoto).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/photo", s.handleProofClearPhoto).Methods(http.MethodDelete)
	auth.HandleFunc("/proof/{id}/signature", s.handleProofSignature).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/signature", s.handleProofClearSignature).Methods(http.MethodDelete)
	auth.HandleFunc("/proof/{id}/recipient", s.handleProofRecipient).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/notes", s.handleProofNotes).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/complete", s.handleProofComplete).Methods(http.MethodPost)
	auth.HandleFunc("/proof/{id}/cancel", s.handleProofCancel).Methods(http.MethodPost)

	auth.HandleFunc("/notifications/{id}/read", s.handleNotificationRead).Methods(http.MethodPost)
	auth.HandleFunc("/notifications/read-all", s.handleNotificationsReadAll).Methods(http.MethodPost)
	auth.HandleFunc("/notifications/{id}/open", s.handleNotificationOpen).Methods(http.MethodPost)

	auth.HandleFunc("/route/optimize", s.handleOptimizeRoute).Methods(http.MethodPost)
	auth.HandleFunc("/settings/{key}", s.handleToggleSetting).Methods(http.MethodPost)

	auth.HandleFunc("/nav", s.handleNav).Methods(http.MethodGet)
	auth.HandleFunc("/nav/back", s.handleNavBack).Methods(http.MethodPost)

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess, err := s.sessions.Get(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the inner error kinds onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		illegal    *delivery.IllegalTransition
		incomplete *delivery.ProofIncomplete
		badReason  *delivery.FailureReasonInvalid
		denied     *adapters.PermissionDenied
		capture    *adapters.CaptureError
		storage    *adapters.StorageError
	)
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, feed.ErrNotFound),
		errors.Is(err, proof.ErrNoFlow):
		return http.StatusNotFound
	case errors.As(err, &illegal):
		return http.StatusConflict
	case errors.As(err, &incomplete), errors.As(err, &badReason):
		return http.StatusUnprocessableEntity
	case errors.Is(err, proof.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &capture), errors.As(err, &storage):
		return http.StatusBadGateway
	case errors.Is(err, adapters.ErrSignatureEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, adapters.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnauthorized), errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrUnknownSetting):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.sessions.Login(r.Context(), creds)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":  sess.Token,
		"driver": sess.Driver,
		"screen": sess.Nav.Current(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.sessions.Logout(sess.Token); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
