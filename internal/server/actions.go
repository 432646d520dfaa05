package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/metrics"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/navigation"
)

func navEntryFor(screen, packageID string) navigation.Entry {
	return navigation.Entry{Screen: navigation.Screen(screen), PackageID: packageID}
}

func (s *Server) handleFailureReasons(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"reasons": s.machine.Catalog().Reasons()})
}

func (s *Server) handleMarkInTransit(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.machine.MarkInTransit(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	var proofRequest model.ProofOfDelivery
	if err := json.NewDecoder(r.Body).Decode(&proofRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pkg, err := s.machine.MarkDelivered(mux.Vars(r)["id"], proofRequest)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleMarkFailed(w http.ResponseWriter, r *http.Request) {
	var failRequest struct {
		ReasonID string `json:"reason_id"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&failRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pkg, err := s.machine.MarkFailed(mux.Vars(r)["id"], model.FailureRecord{
		ReasonID: failRequest.ReasonID,
		Note:     failRequest.Note,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleCallCustomer(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if pkg.Customer.Phone == "" {
		respondError(w, http.StatusUnprocessableEntity, "package has no customer phone number")
		return
	}
	if err := s.telephony.Dial(r.Context(), pkg.Customer.Phone); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "dialing " + pkg.Customer.Phone})
}

func (s *Server) handleGetDirections(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := s.directions.OpenDirections(r.Context(), pkg.Customer.Address); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "directions opened for " + pkg.Customer.Address})
}

// Proof capture flow. Open starts (or resumes) the flow for a package; the
// artifact endpoints delegate to the coordinator; complete hands the proof to
// the state machine and closes the flow.

func (s *Server) handleProofOpen(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pkg, err := s.store.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if pkg.Status.Terminal() {
		respondError(w, http.StatusConflict, "package "+id+" is already "+string(pkg.Status))
		return
	}
	c := s.proofs.Open(id)
	respondJSON(w, http.StatusOK, map[string]interface{}{"package_id": id, "draft": c.Draft()})
}

func (s *Server) handleProofPhoto(w http.ResponseWriter, r *http.Request) {
	var photoRequest struct {
		Quality float64 `json:"quality"`
	}
	// Body is optional; default quality applies.
	_ = json.NewDecoder(r.Body).Decode(&photoRequest)
	if photoRequest.Quality == 0 {
		photoRequest.Quality = 0.7
	}

	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	ref, err := c.AttachPhoto(r.Context(), adapters.CaptureOptions{Quality: photoRequest.Quality})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"photo": ref, "draft": c.Draft()})
}

func (s *Server) handleProofClearPhoto(w http.ResponseWriter, r *http.Request) {
	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := c.ClearPhoto(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"draft": c.Draft()})
}

func (s *Server) handleProofSignature(w http.ResponseWriter, r *http.Request) {
	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	ref, err := c.AttachSignature(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"signature": ref, "draft": c.Draft()})
}

func (s *Server) handleProofClearSignature(w http.ResponseWriter, r *http.Request) {
	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := c.ClearSignature(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"draft": c.Draft()})
}

func (s *Server) handleProofRecipient(w http.ResponseWriter, r *http.Request) {
	var nameRequest struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&nameRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := c.SetRecipientName(nameRequest.Name); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"draft": c.Draft()})
}

func (s *Server) handleProofNotes(w http.ResponseWriter, r *http.Request) {
	var notesRequest struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&notesRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.proofs.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := c.SetNotes(notesRequest.Notes); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"draft": c.Draft()})
}

func (s *Server) handleProofComplete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := s.proofs.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	p, err := c.Complete()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	pkg, err := s.machine.MarkDelivered(id, p)
	if err != nil {
		// The flow stays open: the proof is intact and the driver can retry
		// once the conflict is resolved.
		respondDomainError(w, err)
		return
	}
	s.proofs.Close(id)
	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleProofCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := s.proofs.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	c.Cancel()
	s.proofs.Close(id)
	respondJSON(w, http.StatusOK, map[string]string{"message": "proof capture cancelled"})
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.feed.MarkRead(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleNotificationsReadAll(w http.ResponseWriter, r *http.Request) {
	s.feed.MarkAllRead()
	respondJSON(w, http.StatusOK, map[string]string{"message": "all notifications read"})
}

func (s *Server) handleNotificationOpen(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	n, target, err := s.feed.Open(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	resp := map[string]interface{}{"notification": n}
	if target != nil {
		entry := navEntryFor(target.Screen, target.PackageID)
		if err := sess.Nav.Push(entry); err != nil {
			s.log.Warn("notification navigation rejected", zap.Error(err))
		} else {
			resp["navigated_to"] = entry
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	metrics.RouteOptimizeRequestsTotal.Inc()
	n, err := s.feed.Add(model.Notification{
		Kind:      model.KindRoute,
		Title:     "Route optimization applied",
		Body:      "Your stop sequence was reviewed against current conditions.",
		Priority:  model.PriorityLow,
		CreatedAt: time.Now(),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notification": n})
}

func (s *Server) handleToggleSetting(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	key := mux.Vars(r)["key"]
	value, err := sess.ToggleSetting(key)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"setting": key, "value": value})
}
