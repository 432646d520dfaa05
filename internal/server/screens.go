package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/feed"
	"gitlab.com/swifttrack/driver-app/internal/navigation"
	"gitlab.com/swifttrack/driver-app/internal/viewmodel"
)

// Screen handlers render the view model for each named screen and record the
// visit on the session's navigation stack.

func (s *Server) visit(r *http.Request, e navigation.Entry) {
	sess := sessionFrom(r)
	if sess.Nav.Current() == e {
		return
	}
	if err := sess.Nav.Push(e); err != nil {
		s.log.Warn("navigation push rejected", zap.Error(err))
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.visit(r, navigation.Entry{Screen: navigation.ScreenDashboard})

	pkgs := s.store.ListByDate(time.Now())
	dash := viewmodel.BuildDashboard(sess.Driver, pkgs, s.store.History(5), s.feed.UnreadCount())
	respondJSON(w, http.StatusOK, dash)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.visit(r, navigation.Entry{Screen: navigation.ScreenManifest})

	filter := viewmodel.StatusFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = viewmodel.FilterAll
	}
	search := r.URL.Query().Get("search")

	m := viewmodel.BuildManifest(s.store.ListByDate(time.Now()), filter, search)
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleOlderDeliveries(w http.ResponseWriter, r *http.Request) {
	s.visit(r, navigation.Entry{Screen: navigation.ScreenOlderDeliveries})

	filter := viewmodel.StatusFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = viewmodel.FilterAll
	}
	search := r.URL.Query().Get("search")

	entries := viewmodel.BuildHistory(s.store.List(), time.Now(), filter, search)
	respondJSON(w, http.StatusOK, map[string]interface{}{"deliveries": entries})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.visit(r, navigation.Entry{Screen: navigation.ScreenRoute})

	now := time.Now()
	route := viewmodel.BuildRoute(s.route.RouteID, sess.Driver.ID, now, s.store.ListByDate(now), viewmodel.RouteOptions{
		ETA:        s.route.ETA,
		Traffic:    s.route.Traffic,
		DistanceKm: s.route.DistanceKm,
		Now:        now,
	})
	respondJSON(w, http.StatusOK, route)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.visit(r, navigation.Entry{Screen: navigation.ScreenNotifications})

	filter := feed.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = feed.FilterAll
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.feed.List(filter),
		"unread_count":  s.feed.UnreadCount(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.visit(r, navigation.Entry{Screen: navigation.ScreenProfile})
	respondJSON(w, http.StatusOK, sess.Driver)
}

func (s *Server) handlePackageDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pkg, err := s.store.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.visit(r, navigation.Entry{Screen: navigation.ScreenPackageDetails, PackageID: id})
	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleProofScreen(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pkg, err := s.store.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.visit(r, navigation.Entry{Screen: navigation.ScreenProofOfDelivery, PackageID: id})

	resp := map[string]interface{}{"package": pkg}
	if c, err := s.proofs.Get(id); err == nil {
		resp["draft"] = c.Draft()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"current": sess.Nav.Current(),
		"path":    sess.Nav.Path(),
	})
}

func (s *Server) handleNavBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	entry, err := sess.Nav.Back()
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"current": entry})
}
